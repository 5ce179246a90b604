package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
)

func TestOptionsLevel(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want hclog.Level
	}{
		{name: "default", opts: Options{}, want: hclog.Info},
		{name: "verbose", opts: Options{Verbose: true}, want: hclog.Debug},
		{name: "quiet", opts: Options{Quiet: true}, want: hclog.Error},
		{name: "quiet wins", opts: Options{Quiet: true, Verbose: true}, want: hclog.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.Level(); got != tt.want {
				t.Errorf("Level() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewWritesNamedLines(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Output: &buf})
	logger.Info("hello", "rows", 3)
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "postersort: hello") {
		t.Errorf("expected named info line, got %q", out)
	}
	if !strings.Contains(out, "rows=3") {
		t.Errorf("expected structured field, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line should be filtered at info level, got %q", out)
	}
}

func TestNewQuietKeepsErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Output: &buf, Quiet: true})
	logger.Warn("skipped")
	logger.Error("kept")

	out := buf.String()
	if strings.Contains(out, "skipped") || !strings.Contains(out, "kept") {
		t.Errorf("quiet logger should only write errors, got %q", out)
	}
}
