package cli

import (
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"Strategy", "Count"},
		[][]string{{"median_cut", "3"}, {"average"}},
		[]columnAlignment{alignLeft, alignRight},
	)

	lines := strings.Split(out, "\n")
	if len(lines) != 6 {
		t.Fatalf("Expected 6 lines (border, header, rule, 2 rows, border), got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "╭") || !strings.HasPrefix(lines[5], "╰") {
		t.Errorf("Expected rounded borders, got:\n%s", out)
	}
	for _, want := range []string{"Strategy", "Count", "median_cut", "average"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
	if !strings.Contains(lines[3], "│     3 │") {
		t.Errorf("Expected right-aligned count, got %q", lines[3])
	}
}

func TestRenderTableNoHeaders(t *testing.T) {
	if got := renderTable(nil, [][]string{{"x"}}, nil); got != "" {
		t.Errorf("Expected empty output, got %q", got)
	}
}
