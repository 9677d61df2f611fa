package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/relist-ai/comps-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses, narrowed so tests can
// substitute pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id                TEXT PRIMARY KEY,
	item              JSONB NOT NULL,
	comps             JSONB NOT NULL,
	check_result      JSONB,
	should_reidentify BOOLEAN NOT NULL DEFAULT false,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_should_reidentify ON runs(should_reidentify);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, item model.ItemContext, comps []model.Comp, check *model.ValidationCheckResult) (*model.Run, error) {
	run := model.Run{
		ID:        uuid.New().String(),
		Item:      item,
		Comps:     comps,
		Check:     check,
		CreatedAt: time.Now().UTC(),
	}

	itemJSON, err := json.Marshal(run.Item)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal item")
	}
	compsJSON, err := json.Marshal(run.Comps)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal comps")
	}
	var checkJSON []byte
	var reidentify bool
	if check != nil {
		if checkJSON, err = json.Marshal(check); err != nil {
			return nil, eris.Wrap(err, "postgres: marshal check result")
		}
		reidentify = check.ShouldReidentify
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, item, comps, check_result, should_reidentify, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, itemJSON, compsJSON, checkJSON, reidentify, run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}
	return &run, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, item, comps, check_result, created_at FROM runs WHERE id = $1`,
		runID,
	)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, item, comps, check_result, created_at FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.ShouldReidentify != nil {
		query += fmt.Sprintf(` AND should_reidentify = $%d`, argIdx)
		args = append(args, *filter.ShouldReidentify)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs")
}

func scanRun(row pgx.Row) (*model.Run, error) {
	var run model.Run
	var itemJSON, compsJSON []byte
	var checkJSON []byte

	if err := row.Scan(&run.ID, &itemJSON, &compsJSON, &checkJSON, &run.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemJSON, &run.Item); err != nil {
		return nil, eris.Wrap(err, "unmarshal item")
	}
	if err := json.Unmarshal(compsJSON, &run.Comps); err != nil {
		return nil, eris.Wrap(err, "unmarshal comps")
	}
	if len(checkJSON) > 0 {
		run.Check = &model.ValidationCheckResult{}
		if err := json.Unmarshal(checkJSON, run.Check); err != nil {
			return nil, eris.Wrap(err, "unmarshal check result")
		}
	}
	return &run, nil
}
