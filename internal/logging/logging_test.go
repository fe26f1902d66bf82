package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	logger, err := New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger == nil {
		t.Fatalf("expected logger instance")
	}
	_ = logger.Sync()
}

func TestNewAppliesLevel(t *testing.T) {
	logger, err := New("warn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected info to be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Fatalf("expected error to be enabled at warn level")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("chatty"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
