package catalog

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmylchreest/postersort/internal/colour"
	imgutil "github.com/jmylchreest/postersort/internal/image"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// writePoster writes a solid 20x30 PNG named file into dir.
func writePoster(t *testing.T, dir, file string, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(dir, file)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create poster: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode poster: %v", err)
	}
	return path
}

// newTable builds a catalog with Name and Year columns.
func newTable(names ...string) *Table {
	t := &Table{Header: []string{"Year", DefaultNameColumn}}
	for i, n := range names {
		t.Rows = append(t.Rows, []string{string(rune('0' + i)), n})
	}
	return t
}

func testRegistry() *colour.Registry {
	return colour.NewRegistry(colour.DefaultStrategyConfig(), imgutil.DefaultSamplerConfig(), colour.DefaultThresholds())
}

// newTestSorter builds a sorter over the images in dir.
func newTestSorter(t *testing.T, dir string, mutate func(*Options)) *Sorter {
	t.Helper()
	lookup, err := NewDirLookup(dir)
	if err != nil {
		t.Fatalf("NewDirLookup() error: %v", err)
	}
	opts := Options{
		Registry:   testRegistry(),
		Classifier: colour.NewClassifier(colour.DefaultThresholds()),
		Lookup:     lookup,
		Workers:    1,
	}
	if mutate != nil {
		mutate(&opts)
	}
	s, err := NewSorter(opts)
	if err != nil {
		t.Fatalf("NewSorter() error: %v", err)
	}
	return s
}

// names returns the Name column of a table, in order.
func names(t *Table) []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[1]
	}
	return out
}
