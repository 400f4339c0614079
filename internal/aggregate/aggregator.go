package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"liquidityEngine/internal/curve"
	"liquidityEngine/internal/model"
	"liquidityEngine/internal/num"
	"liquidityEngine/internal/snapshot"
	"liquidityEngine/internal/storage"
	"liquidityEngine/internal/valuation"
)

// DefaultName names the checkpoint of a loop when Config.Name is empty.
const DefaultName = "valuation"

// Config controls valuation rounds. Pools limits the round to the named
// pools; empty values every pool of the snapshot.
type Config struct {
	SnapshotPath string
	Pools        []string
	Interval     time.Duration
	Checkpoints  storage.CheckpointStore
	Name         string
	Force        bool
	WriteRetries int
	RetryBackoff time.Duration
}

// Summary describes one valuation round. A skipped round carries the
// checkpoint of the batch that is still current in Last.
type Summary struct {
	Slot     uint64
	Skipped  bool
	Pools    int
	Failed   int
	TotalTVL num.Value
	Last     model.Checkpoint
}

// Aggregator values every pool of a snapshot and writes the rows to sinks.
type Aggregator struct {
	cfg    Config
	source *snapshot.Source
	sinks  []storage.Sink
	logger *zap.Logger
	now    func() time.Time
}

func NewAggregator(cfg Config, source *snapshot.Source, sinks []storage.Sink, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WriteRetries < 0 {
		cfg.WriteRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}

	return &Aggregator{
		cfg:    cfg,
		source: source,
		sinks:  sinks,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Run executes a round every Interval until ctx is cancelled. Round errors
// are logged and do not stop the loop.
func (a *Aggregator) Run(ctx context.Context) error {
	if a.cfg.Interval <= 0 {
		return fmt.Errorf("interval must be > 0")
	}

	ticker := time.NewTicker(a.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := a.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			a.logger.Error("valuation round failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce reads the snapshot fresh, values it and writes the batch. A
// snapshot whose slot is not past the stored slot is skipped unless Force is
// set.
func (a *Aggregator) RunOnce(ctx context.Context) (Summary, error) {
	if a.source == nil {
		return Summary{}, fmt.Errorf("snapshot source is nil")
	}

	a.source.Cache().Invalidate(a.cfg.SnapshotPath)
	loaded, err := a.source.Load(ctx, a.cfg.SnapshotPath)
	if err != nil {
		return Summary{}, err
	}
	snap, err := loaded.Select(a.cfg.Pools)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Slot: snap.Slot, TotalTVL: num.Unknown()}

	if !a.cfg.Force {
		last, ok, err := a.loadCheckpoint(ctx)
		if err != nil {
			return summary, err
		}
		if ok && snap.Slot <= last.Slot {
			summary.Skipped = true
			summary.Last = last
			summary.TotalTVL = last.TotalTVL
			a.logger.Info("slot not advanced",
				zap.Uint64("slot", snap.Slot),
				zap.Uint64("last_slot", last.Slot),
				zap.Stringer("last_total_tvl", last.TotalTVL),
				zap.Time("last_computed_at", last.ComputedAt),
			)
			return summary, nil
		}
	}

	computedAt := a.now()
	rows, failed := Valuate(snap, computedAt, a.logger)

	total, err := valuation.TotalValueLocked(snap.Pools, snap.Tokens, snap.States, snap.Prices)
	if err != nil {
		a.logger.Warn("total tvl", zap.Uint64("slot", snap.Slot), zap.Error(err))
		total = num.Unknown()
	}

	batch := model.ValuationBatch{
		Slot:       snap.Slot,
		TotalTVL:   total,
		Pools:      rows,
		ComputedAt: computedAt,
	}
	if err := a.writeSinks(ctx, batch); err != nil {
		return summary, err
	}

	summary.Last = batch.Checkpoint()
	if a.cfg.Checkpoints != nil {
		if err := a.cfg.Checkpoints.SaveCheckpoint(ctx, a.cfg.Name, summary.Last); err != nil {
			return summary, fmt.Errorf("save checkpoint: %w", err)
		}
	}

	summary.Pools = len(rows)
	summary.Failed = failed
	summary.TotalTVL = total

	a.logger.Info("valuation complete",
		zap.Uint64("slot", snap.Slot),
		zap.Int("pools", len(rows)),
		zap.Int("failed", failed),
		zap.Stringer("total_tvl", total),
	)
	return summary, nil
}

// Valuate computes one row per pool. A failing pool is logged and keeps
// unknown figures; the count of such pools is returned.
func Valuate(snap *snapshot.Snapshot, computedAt time.Time, logger *zap.Logger) ([]model.PoolValuation, int) {
	if logger == nil {
		logger = zap.NewNop()
	}

	inputs := valuation.FarmInputs{
		Pools:        snap.Pools,
		Tokens:       snap.Tokens,
		States:       snap.States,
		Farms:        snap.Farms,
		FarmUsers:    snap.FarmUsers,
		Prices:       snap.Prices,
		RewardSymbol: snap.RewardSymbol,
	}

	rows := make([]model.PoolValuation, 0, len(snap.Pools))
	var failed int
	for _, pool := range snap.Pools {
		row, err := valuePool(pool, snap, inputs)
		if err != nil {
			failed++
			logger.Warn("pool valuation", zap.String("pool", pool.Key), zap.Error(err))
		}
		row.Slot = snap.Slot
		row.ComputedAt = computedAt
		rows = append(rows, row)
	}
	return rows, failed
}

// valuePool returns a row even on error, with the figures computed so far.
func valuePool(pool model.PoolConfig, snap *snapshot.Snapshot, inputs valuation.FarmInputs) (model.PoolValuation, error) {
	row := model.PoolValuation{
		PoolKey:     pool.Key,
		PoolName:    pool.Name,
		Price:       num.Unknown(),
		TVL:         num.Unknown(),
		TotalStaked: num.Unknown(),
		UserStaked:  num.Unknown(),
		APR:         num.Unknown(),
	}

	base, quote, err := snap.Tokens.Pair(pool)
	if err != nil {
		return row, err
	}
	state := snap.States[pool.Key]
	if state == nil {
		return row, nil
	}

	multiplier := curve.MultiplierOf(*state)
	row.Multiplier = multiplier.String()
	row.TVL = valuation.PoolTVL(*state, base, quote, snap.Prices)

	if err := pool.Curve.Validate(); err != nil {
		return row, err
	}
	row.Price, err = curve.GetPrice(*state, pool.Curve, multiplier)
	if err != nil {
		row.Price = num.Unknown()
		return row, fmt.Errorf("price: %w", err)
	}

	if pool.FarmKey == "" {
		return row, nil
	}
	stake, err := valuation.PoolStakeInfo(pool, inputs)
	if err != nil {
		return row, err
	}
	row.TotalStaked = stake.TotalStaked
	row.UserStaked = stake.UserStaked
	row.APR = stake.APR
	return row, nil
}

func (a *Aggregator) writeSinks(ctx context.Context, batch model.ValuationBatch) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, sink := range a.sinks {
		if sink == nil {
			continue
		}
		sink := sink
		g.Go(func() error {
			return a.put(gctx, sink, batch)
		})
	}
	return g.Wait()
}

func (a *Aggregator) put(ctx context.Context, sink storage.Sink, batch model.ValuationBatch) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = a.cfg.RetryBackoff

	op := func() (struct{}, error) {
		return struct{}{}, sink.PutValuationBatch(ctx, batch)
	}
	notify := func(err error, wait time.Duration) {
		a.logger.Warn("sink write failed", zap.Uint64("slot", batch.Slot), zap.Error(err), zap.Duration("backoff", wait))
	}

	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(a.cfg.WriteRetries)+1),
		backoff.WithNotify(notify))
	if err != nil {
		return fmt.Errorf("write batch slot %d: %w", batch.Slot, err)
	}
	return nil
}

func (a *Aggregator) loadCheckpoint(ctx context.Context) (model.Checkpoint, bool, error) {
	if a.cfg.Checkpoints == nil {
		return model.Checkpoint{}, false, nil
	}
	cp, ok, err := a.cfg.Checkpoints.LoadCheckpoint(ctx, a.cfg.Name)
	if err != nil {
		return model.Checkpoint{}, false, fmt.Errorf("load checkpoint: %w", err)
	}
	return cp, ok, nil
}
