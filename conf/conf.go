package conf

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config enumerates every named constant of the scoring engine. Defaults
// match production values; any of them can be overridden at process start
// via an optional TOML file and then via environment variables.
type Config struct {
	RateLimit   RateLimitConfig   `toml:"rate_limit"`
	Submissions SubmissionsConfig `toml:"submissions"`
	Rating      RatingConfig      `toml:"rating"`
	Leaderboard LeaderboardConfig `toml:"leaderboard"`
}

type RateLimitConfig struct {
	MaxSubmissionsPerMinute int    `toml:"max_submissions_per_minute"`
	WindowSeconds           int    `toml:"window_seconds"`
	Backend                 string `toml:"backend"` // "memory" or "redis"
	RedisAddr               string `toml:"redis_addr"`
}

type SubmissionsConfig struct {
	MaxRetries          int `toml:"max_retries"`
	StalledTimeoutMin   int `toml:"stalled_timeout_minutes"`
	SweepIntervalSec    int `toml:"sweep_interval_seconds"`
	MaxSubmCodeLengthKB int `toml:"max_code_length_kb"`
}

type RatingConfig struct {
	InitialRating   int     `toml:"initial_rating"`
	KFactorNew      float64 `toml:"k_factor_new"`         // < NewContestCount prior contests
	KFactorMid      float64 `toml:"k_factor_mid"`         // < MidContestCount prior contests
	KFactorSettled  float64 `toml:"k_factor_settled"`     // everyone else
	NewContestCount int     `toml:"new_contest_count"`    // boundary for KFactorNew
	MidContestCount int     `toml:"mid_contest_count"`    // boundary for KFactorMid
	Top10Bonus      float64 `toml:"top_10_percent_bonus"` // multiplier add-on for top 10%
	Top25Bonus      float64 `toml:"top_25_percent_bonus"` // multiplier add-on for top 25%
	MaxRatingChange float64 `toml:"max_rating_change"`
}

type LeaderboardConfig struct {
	CacheTTLHours    int `toml:"cache_ttl_hours"`
	UpdateIntervalMs int `toml:"update_interval_ms"`
	MaxPageSize      int `toml:"max_page_size"`
	DefaultPageSize  int `toml:"default_page_size"`
}

func Default() Config {
	return Config{
		RateLimit: RateLimitConfig{
			MaxSubmissionsPerMinute: 10,
			WindowSeconds:           60,
			Backend:                 "memory",
		},
		Submissions: SubmissionsConfig{
			MaxRetries:          3,
			StalledTimeoutMin:   5,
			SweepIntervalSec:    30,
			MaxSubmCodeLengthKB: 64,
		},
		Rating: RatingConfig{
			InitialRating:   1500,
			KFactorNew:      40,
			KFactorMid:      30,
			KFactorSettled:  20,
			NewContestCount: 10,
			MidContestCount: 30,
			Top10Bonus:      0.2,
			Top25Bonus:      0.1,
			MaxRatingChange: 150,
		},
		Leaderboard: LeaderboardConfig{
			CacheTTLHours:    24,
			UpdateIntervalMs: 5000,
			MaxPageSize:      100,
			DefaultPageSize:  50,
		},
	}
}

// Load builds the effective configuration: defaults, overlaid with the TOML
// file at CONFIG_PATH (if any), overlaid with environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(content, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	overrideInt(&cfg.RateLimit.MaxSubmissionsPerMinute, "MAX_SUBMISSIONS_PER_MINUTE")
	overrideInt(&cfg.RateLimit.WindowSeconds, "RATE_LIMIT_WINDOW_SECONDS")
	overrideStr(&cfg.RateLimit.Backend, "RATE_LIMIT_BACKEND")
	overrideStr(&cfg.RateLimit.RedisAddr, "REDIS_ADDR")
	overrideInt(&cfg.Submissions.MaxRetries, "MAX_SUBMISSION_RETRIES")
	overrideInt(&cfg.Submissions.StalledTimeoutMin, "STALLED_SUBMISSION_TIMEOUT_MINUTES")
	overrideInt(&cfg.Leaderboard.CacheTTLHours, "LEADERBOARD_CACHE_TTL_HOURS")
	overrideInt(&cfg.Leaderboard.UpdateIntervalMs, "LEADERBOARD_UPDATE_INTERVAL_MS")
	overrideInt(&cfg.Leaderboard.MaxPageSize, "LEADERBOARD_MAX_PAGE_SIZE")

	return cfg, nil
}

func (c SubmissionsConfig) StalledTimeout() time.Duration {
	return time.Duration(c.StalledTimeoutMin) * time.Minute
}

func (c SubmissionsConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSec) * time.Second
}

func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

func (c LeaderboardConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

func (c LeaderboardConfig) UpdateInterval() time.Duration {
	return time.Duration(c.UpdateIntervalMs) * time.Millisecond
}

func overrideInt(dst *int, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func overrideStr(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}
