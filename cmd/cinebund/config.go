package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"cinebun/registry/domain"

	"github.com/BurntSushi/toml"
)

// EnvConfigFile aponta para um arquivo TOML opcional. Variáveis de ambiente
// sobrescrevem os valores do arquivo.
const EnvConfigFile = "CINEBUN_CONFIG"

type config struct {
	ListenAddr string `toml:"listen_addr"`
	Capacity   int    `toml:"registry_capacity"`

	RateEnabled bool          `toml:"rate_enabled"`
	RateRPS     float64       `toml:"rate_rps"`
	RateBurst   int           `toml:"rate_burst"`
	KeyHeader   string        `toml:"rate_key_header"`
	TrustXFF    bool          `toml:"trust_xff"`
	RetryAfter  time.Duration `toml:"retry_after"`
	AddHeaders  bool          `toml:"add_ratelimit_headers"`

	ConcurrencyMax     int           `toml:"concurrency_max"`
	ConcurrencyTimeout time.Duration `toml:"concurrency_timeout"`

	EventsRedisEnabled  bool          `toml:"events_redis_enabled"`
	EventsRedisAddr     string        `toml:"events_redis_addr"`
	EventsRedisPassword string        `toml:"events_redis_password"`
	EventsRedisDB       int           `toml:"events_redis_db"`
	EventsPrefix        string        `toml:"events_prefix"`
	EventsTTL           time.Duration `toml:"events_ttl"`
	EventsBucket        string        `toml:"events_bucket"`
	EventsTrackSlots    bool          `toml:"events_track_slots"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

func defaultConfig() config {
	return config{
		ListenAddr:     ":8080",
		Capacity:       domain.MaxActiveSlots,
		RateEnabled:    true,
		RateRPS:        10,
		RateBurst:      20,
		RetryAfter:     1 * time.Second,
		ConcurrencyMax: 100,
		EventsPrefix:   "cinebun:registry",
		EventsTTL:      24 * time.Hour,
		EventsBucket:   "minute",
		LogLevel:       "info",
		LogFormat:      "console",
	}
}

func readConfig() (config, error) {
	cfg := defaultConfig()

	burstSet := false
	if path := os.Getenv(EnvConfigFile); path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return config{}, fmt.Errorf("config %s: unknown keys %v", path, undecoded)
		}
		burstSet = md.IsDefined("rate_burst")
	}

	cfg.ListenAddr = getenvDefault("LISTEN_ADDR", cfg.ListenAddr)
	cfg.Capacity = getenvIntDefault("REGISTRY_CAPACITY", cfg.Capacity)
	cfg.RateEnabled = getenvBoolDefault("RATE_ENABLED", cfg.RateEnabled)
	cfg.RateRPS = getenvFloatDefault("RATE_RPS", cfg.RateRPS)
	// IMPORTANTE: o "burst" permite uma rajada inicial de requisições.
	// Com RPS muito baixo (ex: 0.02), o padrão 20 deixaria passar ~20
	// registros antes do limite aparecer.
	if burst, ok := getenvInt("RATE_BURST"); ok {
		cfg.RateBurst = burst
	} else if !burstSet && getenvIsSet("RATE_RPS") && cfg.RateRPS > 0 && cfg.RateRPS < 1 {
		cfg.RateBurst = 1
	}
	cfg.KeyHeader = getenvDefault("RATE_KEY_HEADER", cfg.KeyHeader)
	cfg.TrustXFF = getenvBoolDefault("TRUST_XFF", cfg.TrustXFF)
	cfg.RetryAfter = getenvDurationDefault("RETRY_AFTER", cfg.RetryAfter)
	cfg.AddHeaders = getenvBoolDefault("ADD_RATELIMIT_HEADERS", cfg.AddHeaders)
	cfg.ConcurrencyMax = getenvIntDefault("CONCURRENCY_MAX", cfg.ConcurrencyMax)
	cfg.ConcurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", cfg.ConcurrencyTimeout)

	cfg.EventsRedisEnabled = getenvBoolDefault("EVENTS_REDIS_ENABLED", cfg.EventsRedisEnabled)
	cfg.EventsRedisAddr = getenvDefault("EVENTS_REDIS_ADDR", cfg.EventsRedisAddr)
	cfg.EventsRedisPassword = getenvDefault("EVENTS_REDIS_PASSWORD", cfg.EventsRedisPassword)
	cfg.EventsRedisDB = getenvIntDefault("EVENTS_REDIS_DB", cfg.EventsRedisDB)
	cfg.EventsPrefix = getenvDefault("EVENTS_PREFIX", cfg.EventsPrefix)
	cfg.EventsTTL = getenvDurationDefault("EVENTS_TTL", cfg.EventsTTL)
	cfg.EventsBucket = getenvDefault("EVENTS_BUCKET", cfg.EventsBucket)
	cfg.EventsTrackSlots = getenvBoolDefault("EVENTS_TRACK_SLOTS", cfg.EventsTrackSlots)

	cfg.LogLevel = getenvDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getenvDefault("LOG_FORMAT", cfg.LogFormat)

	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func (c config) validate() error {
	if c.Capacity <= 0 || c.Capacity > domain.MaxActiveSlots {
		return fmt.Errorf("REGISTRY_CAPACITY must be in 1..%d", domain.MaxActiveSlots)
	}
	if c.RateEnabled && c.RateRPS <= 0 {
		return errors.New("RATE_RPS must be > 0")
	}
	if c.RateEnabled && c.RateBurst <= 0 {
		return errors.New("RATE_BURST must be > 0")
	}
	if c.ConcurrencyMax < 0 {
		return errors.New("CONCURRENCY_MAX must be >= 0")
	}
	if c.EventsRedisEnabled && strings.TrimSpace(c.EventsRedisAddr) == "" {
		return errors.New("EVENTS_REDIS_ADDR is required when EVENTS_REDIS_ENABLED=true")
	}
	switch strings.ToLower(c.EventsBucket) {
	case "minute", "none":
	default:
		return errors.New(`EVENTS_BUCKET must be "minute" or "none"`)
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return errors.New(`LOG_FORMAT must be "console" or "json"`)
	}
	return nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	if i, ok := getenvInt(k); ok {
		return i
	}
	return def
}

func getenvInt(k string) (int, bool) {
	v, ok := os.LookupEnv(k)
	if !ok || v == "" {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return i, true
}

func getenvIsSet(k string) bool {
	v, ok := os.LookupEnv(k)
	return ok && v != ""
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
