package snapshot

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// SourceConfig controls snapshot loading.
type SourceConfig struct {
	CacheTTL     time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Source loads snapshot files through a session cache. Read failures are
// retried with exponential backoff; decode failures are not.
type Source struct {
	cfg      SourceConfig
	cache    *Cache
	logger   *zap.Logger
	readFile func(string) ([]byte, error)
}

func NewSource(cfg SourceConfig, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}
	return &Source{
		cfg:      cfg,
		cache:    NewCache(cfg.CacheTTL),
		logger:   logger,
		readFile: os.ReadFile,
	}
}

// Cache exposes the session cache for manual invalidation.
func (s *Source) Cache() *Cache {
	return s.cache
}

// Load returns the snapshot at path, from cache when fresh.
func (s *Source) Load(ctx context.Context, path string) (*Snapshot, error) {
	if snap, ok := s.cache.Get(path); ok {
		return snap, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.cfg.RetryBackoff
	policy.MaxInterval = s.cfg.RetryBackoff * 10

	notify := func(err error, wait time.Duration) {
		s.logger.Warn("snapshot load failed", zap.String("path", path), zap.Error(err), zap.Duration("backoff", wait))
	}

	operation := func() (*Snapshot, error) {
		data, err := s.readFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, backoff.Permanent(fmt.Errorf("read snapshot: %w", err))
			}
			return nil, fmt.Errorf("read snapshot: %w", err)
		}
		snap, err := Decode(data)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("decode snapshot %s: %w", path, err))
		}
		return snap, nil
	}

	snap, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(s.cfg.MaxRetries)+1),
		backoff.WithNotify(notify))
	if err != nil {
		return nil, err
	}

	s.cache.Set(path, snap)
	s.logger.Debug("snapshot loaded", zap.String("path", path), zap.Uint64("slot", snap.Slot), zap.Int("pools", len(snap.Pools)))
	return snap, nil
}
