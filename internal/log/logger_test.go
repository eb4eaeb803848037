package log

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Fatalf("ParseLevel(%q) = %v, expected %v", tc.in, got, tc.want)
		}
	}
}

func TestWithComponent(t *testing.T) {
	l := New(DefaultConfig())
	h := l.WithComponent(ComponentHTTP)
	if h.Component() != ComponentHTTP {
		t.Fatalf("Component = %q, expected %q", h.Component(), ComponentHTTP)
	}
	if l.Component() != ComponentApp {
		t.Fatalf("original logger mutated: %q", l.Component())
	}
}
