package domtimeline

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type (
	Config struct {
		// MaxPast caps the number of committed entries; the oldest are
		// evicted first. Zero means unbounded
		MaxPast int `env:"MAX_PAST"`

		// MaxLostFuture caps the number of canceled events kept for audit
		MaxLostFuture int `env:"MAX_LOST_FUTURE"`

		// TrackCallstacks captures a stack trace for every claimed batch
		TrackCallstacks bool `env:"TRACK_CALLSTACKS"`

		Journal JournalConfig `envPrefix:"JOURNAL_"`
	}

	JournalConfig struct {
		Addr         string        `env:"REDIS_ADDR"`
		Password     string        `env:"REDIS_PASSWORD"`
		DB           int           `env:"REDIS_DB"`
		Stream       string        `env:"REDIS_STREAM"`
		MaxLen       int64         `env:"REDIS_MAXLEN"`
		Path         string        `env:"BOLT_PATH"`
		Bucket       string        `env:"BOLT_BUCKET"`
		Table        string        `env:"PG_TABLE"`
		WriteTimeout time.Duration `env:"WRITE_TIMEOUT"`
	}
)

const (
	DefaultMaxPast         = 0
	DefaultMaxLostFuture   = 0
	DefaultTrackCallstacks = true

	DefaultRedisEndpoint       = "localhost:6379"
	DefaultRedisDB             = 0
	DefaultJournalStream       = "domtimeline:journal"
	DefaultJournalMaxLen       = 10000
	DefaultJournalBucket       = "journal"
	DefaultJournalTable        = "domtimeline_journal"
	DefaultJournalWriteTimeout = 5 * time.Second

	// EnvPrefix is prepended to every variable read by ConfigFromEnv
	EnvPrefix = "DOMTIMELINE_"
)

func DefaultConfig() Config {
	return Config{
		MaxPast:         DefaultMaxPast,
		MaxLostFuture:   DefaultMaxLostFuture,
		TrackCallstacks: DefaultTrackCallstacks,
		Journal:         DefaultJournalConfig(),
	}
}

func DefaultJournalConfig() JournalConfig {
	return JournalConfig{
		Addr:         DefaultRedisEndpoint,
		DB:           DefaultRedisDB,
		Stream:       DefaultJournalStream,
		MaxLen:       DefaultJournalMaxLen,
		Bucket:       DefaultJournalBucket,
		Table:        DefaultJournalTable,
		WriteTimeout: DefaultJournalWriteTimeout,
	}
}

// ConfigFromEnv returns DefaultConfig overlaid with any DOMTIMELINE_*
// environment variables that are set
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix: EnvPrefix,
	}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
