package catalog

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "spaces", in: "The Big Lebowski", want: "The_Big_Lebowski"},
		{name: "unsafe characters", in: `Mission: Impossible / "Fallout"?`, want: "Mission_Impossible__Fallout"},
		{name: "trimmed", in: "  Heat  ", want: "Heat"},
		{name: "decomposed accents", in: "Ame\u0301lie", want: "Am\u00e9lie"},
		{name: "empty", in: "", want: ""},
		{name: "only unsafe", in: `<>|`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDirLookupFind(t *testing.T) {
	dir := t.TempDir()
	writePoster(t, dir, "Heat_1995.png", red)
	writePoster(t, dir, "Heat.jpg", red)
	writePoster(t, dir, "Am\u00e9lie.png", red)
	writePoster(t, dir, "Alien.txt", red)

	lookup, err := NewDirLookup(dir)
	if err != nil {
		t.Fatalf("NewDirLookup() error: %v", err)
	}

	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "Heat", want: "Heat.jpg"},
		{name: "Heat 1995", want: "Heat_1995.png"},
		{name: "Am\u00e9lie", want: "Am\u00e9lie.png"},
		{name: "Ame\u0301lie", want: "Am\u00e9lie.png"},
		{name: "Alien", wantErr: true},
		{name: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lookup.Find(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrLookupMiss) {
					t.Errorf("Expected ErrLookupMiss, got %q, %v", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Find(%q) error: %v", tt.name, err)
			}
			if want := filepath.Join(dir, tt.want); got != want {
				t.Errorf("Find(%q) = %q, want %q", tt.name, got, want)
			}
		})
	}
}
