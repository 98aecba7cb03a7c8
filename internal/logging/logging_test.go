package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want zerolog.Level
		ok   bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, true},
		{" WARN ", zerolog.WarnLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{"trace", zerolog.TraceLevel, true},
		{"off", zerolog.Disabled, true},
		{"loud", zerolog.InfoLevel, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvLogLevel:     "error",
		EnvLogTimestamp: "false",
		EnvLogNoColor:   "1",
	}
	cfg := DefaultConfig()
	ApplyEnv(&cfg, func(k string) string { return env[k] })
	if cfg.Level != zerolog.ErrorLevel || cfg.Timestamp || !cfg.NoColor {
		t.Fatalf("ApplyEnv() = %+v", cfg)
	}

	cfg = DefaultConfig()
	ApplyEnv(&cfg, func(string) string { return "nonsense" })
	if cfg != DefaultConfig() {
		t.Fatalf("bad values changed config: %+v", cfg)
	}
}

func TestNewWithConfigFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithConfig("dhttest", &buf, Config{Level: zerolog.WarnLevel, NoColor: true})
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info message logged at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "dhttest") {
		t.Fatalf("missing warn message or app field: %s", out)
	}
}
