package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/relist-ai/comps-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id                TEXT PRIMARY KEY,
	item              TEXT NOT NULL,
	comps             TEXT NOT NULL,
	check_result      TEXT,
	should_reidentify INTEGER NOT NULL DEFAULT 0,
	created_at        DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_should_reidentify ON runs(should_reidentify);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, item model.ItemContext, comps []model.Comp, check *model.ValidationCheckResult) (*model.Run, error) {
	run := model.Run{
		ID:        uuid.New().String(),
		Item:      item,
		Comps:     comps,
		Check:     check,
		CreatedAt: time.Now().UTC(),
	}

	itemJSON, err := json.Marshal(run.Item)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal item")
	}
	compsJSON, err := json.Marshal(run.Comps)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal comps")
	}

	var checkJSON []byte
	reidentify := 0
	if check != nil {
		if checkJSON, err = json.Marshal(check); err != nil {
			return nil, eris.Wrap(err, "sqlite: marshal check result")
		}
		if check.ShouldReidentify {
			reidentify = 1
		}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, item, comps, check_result, should_reidentify, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, string(itemJSON), string(compsJSON), nullableString(checkJSON), reidentify, run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return &run, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, item, comps, check_result, created_at FROM runs WHERE id = ?`,
		runID,
	)
	run, err := scanSQLiteRun(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, item, comps, check_result, created_at FROM runs WHERE true`
	args := []any{}

	if filter.ShouldReidentify != nil {
		query += ` AND should_reidentify = ?`
		v := 0
		if *filter.ShouldReidentify {
			v = 1
		}
		args = append(args, v)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanSQLiteRun(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs")
}

func scanSQLiteRun(scan func(dest ...any) error) (*model.Run, error) {
	var run model.Run
	var itemJSON, compsJSON string
	var checkJSON sql.NullString

	if err := scan(&run.ID, &itemJSON, &compsJSON, &checkJSON, &run.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(itemJSON), &run.Item); err != nil {
		return nil, eris.Wrap(err, "unmarshal item")
	}
	if err := json.Unmarshal([]byte(compsJSON), &run.Comps); err != nil {
		return nil, eris.Wrap(err, "unmarshal comps")
	}
	if checkJSON.Valid && checkJSON.String != "" {
		run.Check = &model.ValidationCheckResult{}
		if err := json.Unmarshal([]byte(checkJSON.String), run.Check); err != nil {
			return nil, eris.Wrap(err, "unmarshal check result")
		}
	}
	return &run, nil
}

func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
