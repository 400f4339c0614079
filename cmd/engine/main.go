package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"liquidityEngine/internal/config"
	"liquidityEngine/internal/model"
	"liquidityEngine/internal/snapshot"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "engine",
		Short:        "Liquidity pool pricing and valuation engine",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file path")
	flags.String("env-file", ".env", "dotenv file loaded before reading the environment")
	flags.String("snapshot", "./data/snapshot.json", "snapshot JSON path")
	flags.StringSlice("pool", nil, "pool keys to include (comma-separated, default all)")
	flags.Duration("cache-ttl", 30*time.Second, "snapshot cache TTL (0 keeps entries for the session)")
	flags.Int("max-retries", 3, "snapshot read retry attempts")
	flags.Duration("retry-backoff", 200*time.Millisecond, "initial retry backoff")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newPriceCmd(),
		newQuoteCmd(),
		newWithdrawCmd(),
		newTVLCmd(),
		newFarmsCmd(),
		newRunCmd(),
	)
	return root
}

// session is the state shared by the one-shot query commands.
type session struct {
	cfg    config.Config
	logger *zap.Logger
	snap   *snapshot.Snapshot
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	snap, err := newSource(cfg, logger).Load(cmd.Context(), cfg.Snapshot)
	if err != nil {
		logger.Sync()
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, snap: snap}, nil
}

func (s *session) Close() {
	s.logger.Sync()
}

// pools returns the configured pools filtered by --pool, in flag order.
func (s *session) pools() ([]model.PoolConfig, error) {
	view, err := s.snap.Select(s.cfg.Pools)
	if err != nil {
		return nil, err
	}
	return view.Pools, nil
}

// pool returns the single pool named by --pool.
func (s *session) pool() (model.PoolConfig, error) {
	if len(s.cfg.Pools) != 1 {
		return model.PoolConfig{}, fmt.Errorf("exactly one --pool is required")
	}
	pools, err := s.pools()
	if err != nil {
		return model.PoolConfig{}, err
	}
	return pools[0], nil
}

func newSource(cfg config.Config, logger *zap.Logger) *snapshot.Source {
	return snapshot.NewSource(snapshot.SourceConfig{
		CacheTTL:     cfg.CacheTTL,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger.Named("snapshot"))
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
