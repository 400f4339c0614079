package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	flags.String("snapshot", "./data/snapshot.json", "")
	flags.StringSlice("pool", nil, "")
	flags.String("out", "./data/valuations.jsonl", "")
	flags.String("pg-dsn", "", "")
	flags.Duration("interval", time.Minute, "")
	flags.Bool("once", false, "")
	flags.String("env-file", "", "")
	return flags
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "./data/snapshot.json", cfg.Snapshot)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Pools)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("ENGINE_LOG_LEVEL", "debug")
	t.Setenv("ENGINE_CACHE_TTL", "5s")
	t.Setenv("ENGINE_POOL", "sol-usdc, usdt-usdc,")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.CacheTTL)
	assert.Equal(t, []string{"sol-usdc", "usdt-usdc"}, cfg.Pools)
}

func TestLoadRunFromFlagsAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pg-dsn: postgres://localhost/engine\nwrite-retries: 7\n"), 0o644))

	flags := runFlags()
	require.NoError(t, flags.Parse([]string{"--snapshot", "/tmp/snap.json", "--interval", "15s", "--pool", "sol-usdc"}))

	cfg, err := LoadRun(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/snap.json", cfg.Snapshot)
	assert.Equal(t, 15*time.Second, cfg.Interval)
	assert.Equal(t, "postgres://localhost/engine", cfg.PGDSN)
	assert.Equal(t, 7, cfg.WriteRetries)
	assert.Equal(t, "valuation", cfg.StateName)
	assert.Equal(t, []string{"sol-usdc"}, cfg.Pools)
}

func TestLoadRunValidates(t *testing.T) {
	flags := runFlags()
	require.NoError(t, flags.Parse([]string{"--interval", "0s"}))
	_, err := LoadRun("", flags)
	require.Error(t, err)

	flags = runFlags()
	require.NoError(t, flags.Parse([]string{"--interval", "0s", "--once"}))
	_, err = LoadRun("", flags)
	require.NoError(t, err)

	flags = runFlags()
	require.NoError(t, flags.Parse([]string{"--out", ""}))
	_, err = LoadRun("", flags)
	require.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ENGINE_STATE_NAME=from-env-file\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("ENGINE_STATE_NAME") })

	flags := runFlags()
	require.NoError(t, flags.Parse([]string{"--env-file", path}))
	cfg, err := LoadRun("", flags)
	require.NoError(t, err)
	assert.Equal(t, "from-env-file", cfg.StateName)
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	flags := runFlags()
	require.NoError(t, flags.Parse([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}))
	_, err := LoadRun("", flags)
	require.NoError(t, err)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
}
