package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cinebun/registry/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	EnvConfigFile, "LISTEN_ADDR", "REGISTRY_CAPACITY", "RATE_ENABLED", "RATE_RPS", "RATE_BURST",
	"RATE_KEY_HEADER", "TRUST_XFF", "RETRY_AFTER", "ADD_RATELIMIT_HEADERS", "CONCURRENCY_MAX",
	"CONCURRENCY_TIMEOUT", "EVENTS_REDIS_ENABLED", "EVENTS_REDIS_ADDR", "EVENTS_REDIS_PASSWORD",
	"EVENTS_REDIS_DB", "EVENTS_PREFIX", "EVENTS_TTL", "EVENTS_BUCKET", "EVENTS_TRACK_SLOTS",
	"LOG_LEVEL", "LOG_FORMAT",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnv {
		t.Setenv(k, "")
	}
}

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cinebun.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestReadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := readConfig()
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
	assert.Equal(t, domain.MaxActiveSlots, cfg.Capacity)
}

func TestReadConfig_LowRPSDefaultsBurstToOne(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("RATE_RPS", "0.02")

	cfg, err := readConfig()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.RateBurst)

	t.Setenv("RATE_BURST", "3")
	cfg, err = readConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.RateBurst)
}

func TestReadConfig_FileThenEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv(EnvConfigFile, writeConfigFile(t, `
listen_addr = ":9000"
registry_capacity = 512
rate_rps = 0.5
rate_burst = 4
retry_after = "3s"
events_bucket = "none"
log_format = "json"
`))
	t.Setenv("LISTEN_ADDR", ":9100")
	t.Setenv("RATE_RPS", "0.25")

	cfg, err := readConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.ListenAddr)
	assert.Equal(t, 512, cfg.Capacity)
	assert.Equal(t, 0.25, cfg.RateRPS)
	// burst vem do arquivo, não do ajuste de RPS baixo
	assert.Equal(t, 4, cfg.RateBurst)
	assert.Equal(t, 3*time.Second, cfg.RetryAfter)
	assert.Equal(t, "none", cfg.EventsBucket)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestReadConfig_FileErrors(t *testing.T) {
	clearConfigEnv(t)

	t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "missing.toml"))
	_, err := readConfig()
	assert.Error(t, err)

	t.Setenv(EnvConfigFile, writeConfigFile(t, `frosting = "pink"`))
	_, err = readConfig()
	assert.ErrorContains(t, err, "unknown keys")
}

func TestReadConfig_Validation(t *testing.T) {
	cases := map[string]map[string]string{
		"capacity too large":    {"REGISTRY_CAPACITY": "131073"},
		"capacity zero":         {"REGISTRY_CAPACITY": "0"},
		"negative concurrency":  {"CONCURRENCY_MAX": "-1"},
		"redis without addr":    {"EVENTS_REDIS_ENABLED": "true"},
		"unknown bucket":        {"EVENTS_BUCKET": "hour"},
		"unknown log format":    {"LOG_FORMAT": "xml"},
		"rate enabled zero rps": {"RATE_RPS": "-1"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := readConfig()
			assert.Error(t, err)
		})
	}
}

func TestReadConfig_RateDisabledSkipsRateValidation(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("RATE_ENABLED", "false")
	t.Setenv("RATE_RPS", "-1")

	cfg, err := readConfig()
	require.NoError(t, err)
	assert.False(t, cfg.RateEnabled)
}
