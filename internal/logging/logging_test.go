package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewHonorsLevel(t *testing.T) {
	l, err := New("debug")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug enabled")
	}
}

func TestNewFallsBackToInfo(t *testing.T) {
	l, err := New("chatty")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if l.Core().Enabled(zapcore.DebugLevel) || !l.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected info level")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatalf("expected nop logger")
	}
}
