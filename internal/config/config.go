package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envFileName = ".env"

type Config struct {
	ListenAddr    string
	DatabaseURL   string
	PerPage       int
	AuthUser      string
	AuthPass      string
	AuthFile      string
	SessionTTL    time.Duration
	DBBusyTimeout time.Duration
	DBLockTimeout time.Duration
}

// Load reads the configuration from the environment after applying the
// optional .env file in the working directory. Variables already set in the
// environment win over the file.
func Load() Config {
	LoadEnvFile()
	return FromEnv()
}

// LoadEnvFile applies .env from the working directory without overriding
// variables that are already set. Entry points call it before configuring
// logging so the log keys may come from the file too.
func LoadEnvFile() {
	_ = godotenv.Load(envFileName)
}

func FromEnv() Config {
	cfg := Config{
		ListenAddr:  envOr("JOURNAL_LISTEN_ADDR", "127.0.0.1:8080"),
		DatabaseURL: envOr("JOURNAL_DATABASE_URL", "journal.sqlite"),
		AuthUser:    strings.TrimSpace(os.Getenv("JOURNAL_AUTH_USER")),
		AuthPass:    os.Getenv("JOURNAL_AUTH_PASS"),
		AuthFile:    strings.TrimSpace(os.Getenv("JOURNAL_AUTH_FILE")),
	}
	cfg.PerPage = parseIntOr("JOURNAL_PER_PAGE", 10)
	cfg.SessionTTL = parseDurationOr("JOURNAL_SESSION_TTL", 30*24*time.Hour)
	cfg.DBBusyTimeout = parseDurationOr("JOURNAL_DB_BUSY_TIMEOUT", 5*time.Second)
	cfg.DBLockTimeout = parseDurationOr("JOURNAL_DB_LOCK_TIMEOUT", 2*time.Second)
	return cfg
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func parseIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}
