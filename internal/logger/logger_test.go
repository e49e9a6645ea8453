package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestFromFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   string
	}{
		{"json", `"msg":"texture decoded"`},
		{"text", `msg="texture decoded"`},
		{"pretty", "texture decoded"},
		// A buffer is never a terminal, so auto falls back to text.
		{"auto", `msg="texture decoded"`},
		{"", `msg="texture decoded"`},
	}
	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			log, err := FromFlags(&buf, tc.format, "info")
			if err != nil {
				t.Fatalf("FromFlags: %v", err)
			}
			log.Info("texture decoded", "name", "albedo")
			if !strings.Contains(buf.String(), tc.want) {
				t.Fatalf("output: got %q want substring %q", buf.String(), tc.want)
			}
		})
	}
}

func TestFromFlagsRejectsUnknownFormat(t *testing.T) {
	t.Parallel()
	if _, err := FromFlags(&bytes.Buffer{}, "xml", "info"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestFromFlagsLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log, err := FromFlags(&buf, "text", "warn")
	if err != nil {
		t.Fatalf("FromFlags: %v", err)
	}
	log.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info at warn level: got %q want empty", buf.String())
	}
	log.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("warn output: got %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	log := Discard()
	log.Error("dropped", "err", errors.New("boom"))
	log.With("k", "v").WithGroup("g").Warn("dropped")
}

func TestJSONLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelWarn)
	log.Info("should not appear")
	if buf.Len() > 0 {
		t.Fatalf("info at warn level: got %s", buf.String())
	}
	log.Warn("should appear")
	if !strings.Contains(buf.String(), `"level":"WARN"`) {
		t.Fatalf("warn output: got %s", buf.String())
	}
}

func TestWith(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo).With("container", "quad_pack")
	log.WithGroup("texture").Info("decoded", "name", "albedo")

	output := buf.String()
	if !strings.Contains(output, `"container":"quad_pack"`) {
		t.Fatalf("missing handler attr: %s", output)
	}
	if !strings.Contains(output, `"texture":{"name":"albedo"}`) {
		t.Fatalf("missing grouped attr: %s", output)
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), Text(&buf, slog.LevelInfo))
	FromContext(ctx).Info("roundtrip")
	if !strings.Contains(buf.String(), "roundtrip") {
		t.Fatalf("context logger output: got %s", buf.String())
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext without logger returned nil")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := ParseLevel(tc.input); got != tc.want {
			t.Errorf("ParseLevel(%q): got %v want %v", tc.input, got, tc.want)
		}
	}
}

func TestPrettyHandlerEnabled(t *testing.T) {
	t.Parallel()
	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info enabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error disabled at warn level")
	}
}

func TestPrettyHandlerGroups(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)
	if h.WithGroup("") != h {
		t.Fatal("WithGroup(\"\") should return the same handler")
	}
	slog.New(h.WithAttrs([]slog.Attr{slog.String("file", "a.bfres")}).WithGroup("a").WithGroup("b")).
		Info("nested", "key", "val")

	output := buf.String()
	if !strings.Contains(output, "file=a.bfres") {
		t.Fatalf("missing handler attr: %s", output)
	}
	if !strings.Contains(output, "a.b.key=val") {
		t.Fatalf("missing nested group: %s", output)
	}
}

func TestPrettyErrorsInRed(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, nil)).Warn("texture skipped", "name", "albedo", "err", errors.New("bad format"))

	output := buf.String()
	if !strings.Contains(output, colorRed+`err="bad format"`) {
		t.Fatalf("error attr not highlighted: %q", output)
	}
	if !strings.Contains(output, colorCyan+"name=albedo") {
		t.Fatalf("plain attr: %q", output)
	}
}

func TestPrettyDurations(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, nil)).Info("textures decoded",
		"elapsed", 2345678901*time.Nanosecond,
		"lap", 1500*time.Microsecond)

	output := buf.String()
	if !strings.Contains(output, "elapsed=2.346s") {
		t.Fatalf("long duration not rounded: %q", output)
	}
	if !strings.Contains(output, "lap=1.5ms") {
		t.Fatalf("short duration: %q", output)
	}
}

func TestPrettyLevelPadding(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct{ in, want string }{
		{"INFO", "INFO "},
		{"WARN", "WARN "},
		{"ERROR", "ERROR"},
		{"DEBUG+2", "DEBUG+2"},
	} {
		if got := padLevel(tc.in); got != tc.want {
			t.Errorf("padLevel(%q): got %q want %q", tc.in, got, tc.want)
		}
	}
}

func TestNeedsQuoting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"simple", false},
		{"has space", true},
		{"has\ttab", true},
		{`has"quote`, true},
		{"", false},
	}
	for _, tc := range tests {
		if got := needsQuoting(tc.input); got != tc.want {
			t.Errorf("needsQuoting(%q): got %v want %v", tc.input, got, tc.want)
		}
	}
}
