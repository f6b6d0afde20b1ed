package models

import "time"

// Config holds the server settings. It is decoded from config.json and
// then overridden by environment variables and flags.
type Config struct {
	Host           string   `json:"host"`
	Port           int      `json:"port"`
	LogLevel       string   `json:"log_level"`
	AllowedOrigins []string `json:"allowed_origins"`
	// TrustedProxies may set X-Forwarded-For; empty means the peer address
	// is the client IP.
	TrustedProxies []string `json:"trusted_proxies"`

	IdleTimeout  Duration `json:"idle_timeout"`
	PingPeriod   Duration `json:"ping_period"`
	WriteTimeout Duration `json:"write_timeout"`
	OutboxSize   int      `json:"outbox_size"`

	UpgradeRatePerSecond float64 `json:"upgrade_rate_per_second"`
	UpgradeBurst         int     `json:"upgrade_burst"`

	EngineDepth      int `json:"engine_depth"`
	EngineCandidates int `json:"engine_candidates"`

	Redis         RedisConfig `json:"redis"`
	StatsSchedule string      `json:"stats_schedule"`
}

// RedisConfig is optional; an empty Addr disables the stats mirror.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// Duration decodes from a JSON string such as "60s".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func DefaultConfig() Config {
	return Config{
		Host:                 "0.0.0.0",
		Port:                 8080,
		LogLevel:             "info",
		AllowedOrigins:       []string{"*"},
		IdleTimeout:          Duration{60 * time.Second},
		PingPeriod:           Duration{25 * time.Second},
		WriteTimeout:         Duration{10 * time.Second},
		OutboxSize:           32,
		UpgradeRatePerSecond: 5,
		UpgradeBurst:         10,
		EngineDepth:          4,
		EngineCandidates:     10,
		StatsSchedule:        "@every 1m",
	}
}
