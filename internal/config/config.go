package config

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"octane-arena/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	DBPath     string
	ServerPort string
	LogLevel   string

	// WebhookURL receives match-found and reminder payloads; empty means
	// log-only dispatch.
	WebhookURL string

	FormationInterval time.Duration
	ReminderInterval  time.Duration
	ReminderGrace     time.Duration
	SnapshotInterval  time.Duration

	// RandomSeed pins map/room selection for reproducible runs; 0 seeds
	// from the clock.
	RandomSeed int64
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:            getEnv("DB_PATH", "arena.db"),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		WebhookURL:        getEnv("NOTIFY_WEBHOOK_URL", ""),
		FormationInterval: getDurationEnv("FORMATION_INTERVAL", constants.DefaultFormationInterval),
		ReminderInterval:  getDurationEnv("REMINDER_INTERVAL", constants.DefaultReminderInterval),
		ReminderGrace:     getDurationEnv("REMINDER_GRACE", constants.DefaultReminderGrace),
		SnapshotInterval:  getDurationEnv("SNAPSHOT_INTERVAL", constants.DefaultSnapshotInterval),
		RandomSeed:        getInt64Env("RANDOM_SEED", 0),
	}

	if cfg.FormationInterval <= 0 || cfg.ReminderInterval <= 0 || cfg.SnapshotInterval <= 0 {
		return nil, fmt.Errorf("scheduler intervals must be positive")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Bool("webhook", cfg.WebhookURL != "").
		Dur("formation_interval", cfg.FormationInterval).
		Dur("reminder_interval", cfg.ReminderInterval).
		Dur("reminder_grace", cfg.ReminderGrace).
		Dur("snapshot_interval", cfg.SnapshotInterval).
		Msg("configuration loaded")

	return cfg, nil
}

// Rand builds the seedable random source used for map and room selection.
func (c *Config) Rand() *rand.Rand {
	seed := c.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getInt64Env(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
