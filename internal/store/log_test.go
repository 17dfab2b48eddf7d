package store

import (
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestMain(m *testing.M) {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	if strings.EqualFold(strings.TrimSpace(os.Getenv("JOURNAL_LOG_LEVEL")), "debug") {
		level.Set(slog.LevelDebug)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
	os.Exit(m.Run())
}
