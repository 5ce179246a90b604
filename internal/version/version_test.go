package version

import (
	"strings"
	"testing"
)

func TestStringWithoutBuildInfo(t *testing.T) {
	got := String()
	if !strings.HasPrefix(got, "postersort version dev") {
		t.Errorf("String() = %q, want prefix %q", got, "postersort version dev")
	}
}

func TestShortCommit(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "0123456789abcdef", want: "01234567"},
		{in: "abc", want: "abc"},
	}
	for _, tt := range tests {
		if got := shortCommit(tt.in); got != tt.want {
			t.Errorf("shortCommit(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
