package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"liquidityEngine/internal/model"
	"liquidityEngine/internal/num"
)

const schema = `
CREATE TABLE IF NOT EXISTS pool_valuations (
	slot BIGINT NOT NULL,
	pool_key TEXT NOT NULL,
	pool_name TEXT NOT NULL,
	multiplier TEXT NOT NULL,
	price NUMERIC,
	tvl NUMERIC,
	total_staked NUMERIC,
	user_staked NUMERIC,
	apr NUMERIC,
	computed_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (slot, pool_key)
);
CREATE TABLE IF NOT EXISTS tvl_snapshots (
	slot BIGINT PRIMARY KEY,
	total_tvl NUMERIC,
	pool_count INT NOT NULL,
	computed_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS valuation_checkpoints (
	name TEXT PRIMARY KEY,
	slot BIGINT NOT NULL,
	total_tvl NUMERIC,
	pool_count INT NOT NULL,
	computed_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Store provides Postgres persistence for valuations.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables used by the store when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PutValuationBatch stores per-pool rows and the total in one transaction.
// Unknown figures are stored as NULL.
func (s *Store) PutValuationBatch(ctx context.Context, batch model.ValuationBatch) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := upsertPoolValuations(ctx, tx, batch.Pools); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO tvl_snapshots (slot, total_tvl, pool_count, computed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slot) DO UPDATE SET
			total_tvl = EXCLUDED.total_tvl,
			pool_count = EXCLUDED.pool_count,
			computed_at = EXCLUDED.computed_at
	`, int64(batch.Slot), batch.TotalTVL, len(batch.Pools), batch.ComputedAt)
	if err != nil {
		return fmt.Errorf("upsert tvl snapshot: %w", err)
	}

	return tx.Commit(ctx)
}

func upsertPoolValuations(ctx context.Context, tx pgx.Tx, rows []model.PoolValuation) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, v := range rows {
		batch.Queue(`
			INSERT INTO pool_valuations (
				slot, pool_key, pool_name, multiplier, price, tvl, total_staked, user_staked, apr,
				computed_at, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
			ON CONFLICT (slot, pool_key)
			DO UPDATE SET
				pool_name = EXCLUDED.pool_name,
				multiplier = EXCLUDED.multiplier,
				price = EXCLUDED.price,
				tvl = EXCLUDED.tvl,
				total_staked = EXCLUDED.total_staked,
				user_staked = EXCLUDED.user_staked,
				apr = EXCLUDED.apr,
				computed_at = EXCLUDED.computed_at,
				updated_at = now()
		`,
			int64(v.Slot),
			v.PoolKey,
			v.PoolName,
			v.Multiplier,
			v.Price,
			v.TVL,
			v.TotalStaked,
			v.UserStaked,
			v.APR,
			v.ComputedAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	defer br.Close()

	for range rows {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert pool valuation: %w", err)
		}
	}
	return nil
}

// LoadCheckpoint returns the last batch summary written under name.
func (s *Store) LoadCheckpoint(ctx context.Context, name string) (model.Checkpoint, bool, error) {
	if name == "" {
		return model.Checkpoint{}, false, fmt.Errorf("checkpoint name required")
	}
	var (
		slot int64
		tvl  *string
		cp   model.Checkpoint
	)
	row := s.pool.QueryRow(ctx, `
		SELECT slot, total_tvl::text, pool_count, computed_at
		FROM valuation_checkpoints WHERE name=$1
	`, name)
	if err := row.Scan(&slot, &tvl, &cp.Pools, &cp.ComputedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Checkpoint{}, false, nil
		}
		return model.Checkpoint{}, false, err
	}
	cp.Slot = uint64(slot)
	cp.TotalTVL = num.Unknown()
	if tvl != nil {
		v, err := num.Parse(*tvl)
		if err != nil {
			return model.Checkpoint{}, false, fmt.Errorf("checkpoint %s total tvl: %w", name, err)
		}
		cp.TotalTVL = v
	}
	return cp, true, nil
}

// SaveCheckpoint upserts the batch summary for name.
func (s *Store) SaveCheckpoint(ctx context.Context, name string, cp model.Checkpoint) error {
	if name == "" {
		return fmt.Errorf("checkpoint name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO valuation_checkpoints (name, slot, total_tvl, pool_count, computed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (name) DO UPDATE SET
			slot = EXCLUDED.slot,
			total_tvl = EXCLUDED.total_tvl,
			pool_count = EXCLUDED.pool_count,
			computed_at = EXCLUDED.computed_at,
			updated_at = now()
	`, name, int64(cp.Slot), cp.TotalTVL, cp.Pools, cp.ComputedAt)
	return err
}
