package colour

import (
	"fmt"
	"image"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	imgutil "github.com/jmylchreest/postersort/internal/image"
)

// AverageExtractor resizes the image to a fixed size and returns the mean
// RGB of every pixel. The rng is unused.
type AverageExtractor struct {
	width  int
	height int
}

// NewAverageExtractor creates an AverageExtractor resizing to width x height.
func NewAverageExtractor(width, height int) *AverageExtractor {
	return &AverageExtractor{width: width, height: height}
}

// Extract returns the mean colour.
func (e *AverageExtractor) Extract(img image.Image, _ *rand.Rand) (Color, error) {
	if img == nil {
		return Absent, fmt.Errorf("%w: image cannot be nil", ErrExtractionFailure)
	}
	if img.Bounds().Empty() {
		return Absent, fmt.Errorf("%w: image has no pixels", ErrExtractionFailure)
	}

	pixels := imgutil.Pixels(imgutil.Resize(img, e.width, e.height))
	r := make([]float64, len(pixels))
	g := make([]float64, len(pixels))
	b := make([]float64, len(pixels))
	for i, p := range pixels {
		r[i], g[i], b[i] = p.R, p.G, p.B
	}
	return NewColor(stat.Mean(r, nil), stat.Mean(g, nil), stat.Mean(b, nil)), nil
}
