package image

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// writePNG writes a solid w x h PNG to path.
func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode %s: %v", path, err)
	}
}

// TestFileLoaderLoad tests decoding a PNG from disk.
func TestFileLoaderLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poster.png")
	writePNG(t, path, 4, 6, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	img, err := NewFileLoader().Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 6 {
		t.Errorf("Expected 4x6 image, got %dx%d", b.Dx(), b.Dy())
	}
}

// TestFileLoaderErrors tests that every load failure wraps ErrImageUnreadable.
func TestFileLoaderErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "broken.jpg")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "empty path", path: ""},
		{name: "missing file", path: filepath.Join(dir, "missing.png")},
		{name: "directory", path: dir},
		{name: "undecodable", path: garbage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFileLoader().Load(tt.path)
			if !errors.Is(err, ErrImageUnreadable) {
				t.Errorf("Expected ErrImageUnreadable, got %v", err)
			}
		})
	}
}

// TestValidateImagePath tests header-only validation.
func TestValidateImagePath(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "ok.png")
	writePNG(t, good, 2, 2, color.White)
	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("nope"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := ValidateImagePath(good); err != nil {
		t.Errorf("Expected valid image, got %v", err)
	}
	for _, p := range []string{"", bad, dir, filepath.Join(dir, "missing.png")} {
		if err := ValidateImagePath(p); err == nil {
			t.Errorf("Expected error for %q", p)
		}
	}
}

func TestIsImageFile(t *testing.T) {
	tests := map[string]bool{
		"a.jpg":     true,
		"B.JPEG":    true,
		"c.png":     true,
		"d.webp":    true,
		"e.gif":     true,
		"notes.txt": false,
		"noext":     false,
		"movie.mkv": false,
	}
	for name, want := range tests {
		if got := IsImageFile(name); got != want {
			t.Errorf("IsImageFile(%q) = %v, want %v", name, got, want)
		}
	}
}

// TestScanDirectoryForImages tests that only image files are listed, by name.
func TestScanDirectoryForImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.jpg", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o750); err != nil {
		t.Fatal(err)
	}

	got, err := ScanDirectoryForImages(dir)
	if err != nil {
		t.Fatalf("ScanDirectoryForImages() error: %v", err)
	}
	if want := []string{"a.jpg", "b.png"}; !slices.Equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if _, err := ScanDirectoryForImages(filepath.Join(dir, "missing")); err == nil {
		t.Error("Expected error for a missing directory")
	}
}
