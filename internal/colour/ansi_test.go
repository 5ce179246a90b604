package colour

import (
	"strings"
	"testing"
)

func TestColourPreview(t *testing.T) {
	got := ColourPreview(NewColor(1, 0.5, 0), 4)
	want := "\033[48;2;255;128;0m    \033[0m"
	if got != want {
		t.Errorf("ColourPreview() = %q, want %q", got, want)
	}

	if got := ColourPreview(Absent, 3); got != "···" {
		t.Errorf("ColourPreview(Absent) = %q", got)
	}

	if got := ColourPreview(NewColor(0, 0, 0), 0); strings.Count(got, " ") != defaultWidth {
		t.Errorf("zero width should fall back to %d cells, got %q", defaultWidth, got)
	}
}

func TestFormatColourWithPreview(t *testing.T) {
	got := FormatColourWithPreview(NewColor(0, 0, 1), 2)
	if !strings.HasSuffix(got, " #0000ff") {
		t.Errorf("FormatColourWithPreview() = %q, want hex suffix", got)
	}
}
