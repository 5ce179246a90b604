package seed

import (
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// TestCalculate tests seed derivation for every mode.
func TestCalculate(t *testing.T) {
	value := int64(1234)
	img := solid(8, 8, color.RGBA{R: 200, A: 255})

	t.Run("manual", func(t *testing.T) {
		got, err := Calculate(nil, "", Config{Mode: ModeManual, Value: &value})
		if err != nil || got != value {
			t.Errorf("Expected %d, got %d (err %v)", value, got, err)
		}
	})

	t.Run("manual without value", func(t *testing.T) {
		if _, err := Calculate(nil, "", Config{Mode: ModeManual}); err == nil {
			t.Error("Expected error when manual seed has no value")
		}
	})

	t.Run("content is stable", func(t *testing.T) {
		a, err := Calculate(img, "", Config{Mode: ModeContent})
		if err != nil {
			t.Fatal(err)
		}
		b, _ := Calculate(solid(8, 8, color.RGBA{R: 200, A: 255}), "", Config{Mode: ModeContent})
		if a != b {
			t.Errorf("Expected identical images to share a seed, got %d and %d", a, b)
		}
		c, _ := Calculate(solid(8, 8, color.RGBA{G: 200, A: 255}), "", Config{Mode: ModeContent})
		if a == c {
			t.Error("Expected different images to produce different seeds")
		}
	})

	t.Run("content requires image", func(t *testing.T) {
		if _, err := Calculate(nil, "x.png", Config{Mode: ModeContent}); err == nil {
			t.Error("Expected error without an image")
		}
	})

	t.Run("filepath is stable", func(t *testing.T) {
		a, err := Calculate(nil, "covers/a.png", Config{Mode: ModeFilepath})
		if err != nil {
			t.Fatal(err)
		}
		b, _ := Calculate(nil, "covers/a.png", Config{Mode: ModeFilepath})
		c, _ := Calculate(nil, "covers/b.png", Config{Mode: ModeFilepath})
		if a != b || a == c {
			t.Errorf("Unexpected filepath seeds: %d %d %d", a, b, c)
		}
	})

	t.Run("unknown mode", func(t *testing.T) {
		if _, err := Calculate(img, "x.png", Config{Mode: "lunar"}); err == nil {
			t.Error("Expected error for unknown mode")
		}
	})
}

func TestNewRandReproducible(t *testing.T) {
	value := int64(7)
	cfg := Config{Mode: ModeManual, Value: &value}
	a, err := NewRand(nil, "", cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewRand(nil, "", cfg)
	for i := 0; i < 10; i++ {
		if x, y := a.Int63(), b.Int63(); x != y {
			t.Fatalf("draw %d differs: %d vs %d", i, x, y)
		}
	}
}

func TestConfigKey(t *testing.T) {
	value := int64(5)
	tests := []struct {
		cfg          Config
		key          string
		reproducible bool
	}{
		{cfg: Config{}, key: "random", reproducible: false},
		{cfg: Config{Mode: ModeRandom}, key: "random", reproducible: false},
		{cfg: Config{Mode: ModeManual, Value: &value}, key: "manual:5", reproducible: true},
		{cfg: Config{Mode: ModeContent}, key: "content", reproducible: true},
		{cfg: Config{Mode: ModeFilepath}, key: "filepath", reproducible: true},
	}
	for _, tt := range tests {
		if got := tt.cfg.Key(); got != tt.key {
			t.Errorf("Key() = %q, want %q", got, tt.key)
		}
		if got := tt.cfg.Reproducible(); got != tt.reproducible {
			t.Errorf("%q Reproducible() = %v, want %v", tt.key, got, tt.reproducible)
		}
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range ValidModes() {
		got, err := ParseMode(string(m))
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %q, %v", m, got, err)
		}
	}
	if _, err := ParseMode("sometimes"); err == nil {
		t.Error("Expected error for invalid mode")
	}
}
