package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx used by the repositories. Both *pgxpool.Pool and
// pgx.Tx satisfy it, so the same repository code runs pooled or inside a
// transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Users() UserRepository { return &PostgresUserRepository{db: s.pool} }

func (s *PostgresStore) Images() ImageRepository { return &PostgresImageRepository{db: s.pool} }

func (s *PostgresStore) ImageVersions() ImageVersionRepository {
	return &PostgresImageVersionRepository{db: s.pool}
}

func (s *PostgresStore) Jobs() JobRepository { return &PostgresJobRepository{db: s.pool} }

func (s *PostgresStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return &postgresTx{tx: tx}, nil
}

type postgresTx struct {
	tx pgx.Tx
}

func (t *postgresTx) Users() UserRepository { return &PostgresUserRepository{db: t.tx} }

func (t *postgresTx) Images() ImageRepository { return &PostgresImageRepository{db: t.tx} }

func (t *postgresTx) ImageVersions() ImageVersionRepository {
	return &PostgresImageVersionRepository{db: t.tx}
}

func (t *postgresTx) Jobs() JobRepository { return &PostgresJobRepository{db: t.tx} }

func (t *postgresTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *postgresTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}
