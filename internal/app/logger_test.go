package app

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/clinic-booking/core/internal/config"
)

func TestNewLogger_EnvDefaults(t *testing.T) {
	dev, err := NewLogger(&config.Config{Env: "development"})
	if err != nil {
		t.Fatalf("NewLogger(development): %v", err)
	}
	if !dev.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("development logger should emit debug")
	}

	prod, err := NewLogger(&config.Config{Env: "production"})
	if err != nil {
		t.Fatalf("NewLogger(production): %v", err)
	}
	if prod.Core().Enabled(zapcore.DebugLevel) || !prod.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("production logger should start at info")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	log, err := NewLogger(&config.Config{Env: "development", LogLevel: "warn"})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if log.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info enabled under LOG_LEVEL=warn")
	}
	if !log.Core().Enabled(zapcore.WarnLevel) {
		t.Fatalf("warn disabled under LOG_LEVEL=warn")
	}

	if _, err := NewLogger(&config.Config{LogLevel: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
