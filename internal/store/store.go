// Package store persists validation runs for audit. Two drivers: postgres
// via pgxpool for shared deployments, sqlite for local CLI use. The engine
// never reads from the store; it is write-mostly audit infrastructure.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/relist-ai/comps-cli/internal/config"
	"github.com/relist-ai/comps-cli/internal/model"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = eris.New("store: run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	// ShouldReidentify filters runs by whether their check verdict asked
	// for re-identification. Nil means no filtering.
	ShouldReidentify *bool `json:"should_reidentify,omitempty"`

	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Store defines the persistence interface for validation runs.
type Store interface {
	CreateRun(ctx context.Context, item model.ItemContext, comps []model.Comp, check *model.ValidationCheckResult) (*model.Run, error)
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver. An empty driver returns
// nil with no error: persistence is optional.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "":
		return nil, nil
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	case "sqlite":
		return NewSQLite(cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
