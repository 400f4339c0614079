package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityEngine/internal/aggregate"
	"liquidityEngine/internal/config"
	"liquidityEngine/internal/storage"
	"liquidityEngine/internal/storage/postgres"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Value the snapshot periodically and write the results",
		RunE:  runValuation,
	}

	cmd.Flags().String("out", "./data/valuations.jsonl", "output JSONL path (empty disables)")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN (empty disables)")
	cmd.Flags().Duration("interval", time.Minute, "valuation interval")
	cmd.Flags().String("state-file", "", "optional local checkpoint file for the last valued batch")
	cmd.Flags().String("state-name", aggregate.DefaultName, "checkpoint name, one per pool selection")
	cmd.Flags().Bool("force", false, "value the snapshot even when its slot did not advance")
	cmd.Flags().Bool("once", false, "run a single round and exit")
	cmd.Flags().Int("write-retries", 3, "sink write retry attempts")
	return cmd
}

func runValuation(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadRun(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()

	var sinks []storage.Sink
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Out))
	}

	var checkpoints storage.CheckpointStore
	if cfg.StateFile != "" {
		checkpoints = storage.NewCheckpointFile(cfg.StateFile)
	}

	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()

		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks = append(sinks, store)
		if checkpoints == nil {
			checkpoints = store
		}
	}

	agg := aggregate.NewAggregator(aggregate.Config{
		SnapshotPath: cfg.Snapshot,
		Pools:        cfg.Pools,
		Interval:     cfg.Interval,
		Checkpoints:  checkpoints,
		Name:         cfg.StateName,
		Force:        cfg.Force,
		WriteRetries: cfg.WriteRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, newSource(cfg.Config, logger), sinks, logger.Named("aggregate"))

	logger.Info("valuation start",
		zap.String("snapshot", cfg.Snapshot),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Strings("pools", cfg.Pools),
		zap.String("checkpoint", cfg.StateName),
		zap.Duration("interval", cfg.Interval),
		zap.Bool("force", cfg.Force),
		zap.Bool("once", cfg.Once),
	)

	if cfg.Once {
		_, err := agg.RunOnce(ctx)
		return err
	}
	return agg.Run(ctx)
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
