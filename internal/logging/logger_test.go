package logging

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	prev := logger
	SetLogger(zap.New(core))
	t.Cleanup(func() { logger = prev })
	return logs
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
		{"INFO", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitializeSilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")
	prev := logger
	t.Cleanup(func() { logger = prev })

	if err := InitializeFromEnv(); err != nil {
		t.Fatalf("InitializeFromEnv() error = %v", err)
	}
	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger should be silent without a level")
	}
}

func TestInitializeRejectsUnknownLevel(t *testing.T) {
	prev := logger
	t.Cleanup(func() { logger = prev })

	if err := Initialize("loud"); err == nil {
		t.Error("Initialize(\"loud\") should fail")
	}
}

func TestGetLoggerNeverNil(t *testing.T) {
	prev := logger
	logger = nil
	t.Cleanup(func() { logger = prev })

	if GetLogger() == nil {
		t.Fatal("GetLogger() returned nil")
	}
	Info("ignored")
}

func TestRecordHelpers(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)
	l := GetLogger()

	LogSet(l, "app/x", "1")
	LogSave(l, "app/x", "1")
	LogLoadRecord(l, "app/y", "z", errors.New("bad value"))
	LogStoreRecord(l, "nvram", 128, "checksum mismatch")

	entries := logs.AllUntimed()
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}

	want := []struct {
		msg   string
		level zapcore.Level
	}{
		{"Parameter set", zapcore.DebugLevel},
		{"Parameter saved", zapcore.InfoLevel},
		{"Skipping stored parameter", zapcore.WarnLevel},
		{"Skipping unreadable record", zapcore.WarnLevel},
	}
	for i, w := range want {
		if entries[i].Message != w.msg || entries[i].Level != w.level {
			t.Errorf("entry %d = %s %q, want %s %q", i, entries[i].Level, entries[i].Message, w.level, w.msg)
		}
	}

	fields := entries[3].ContextMap()
	if fields["store"] != "nvram" || fields["position"] != int64(128) {
		t.Errorf("unexpected store record fields %v", fields)
	}
	if entries[2].ContextMap()["error"] != "bad value" {
		t.Errorf("load record error field = %v", entries[2].ContextMap()["error"])
	}
}
