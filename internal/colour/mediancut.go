package colour

import (
	"fmt"
	"image"
	"image/color"
	"math/rand"

	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/draw"

	imgutil "github.com/jmylchreest/postersort/internal/image"
)

// MedianCutExtractor quantises the full image to a small adaptive palette
// and returns the entry covering the most pixels. The rng is unused.
type MedianCutExtractor struct {
	paletteSize int
	quantizer   draw.Quantizer
}

// NewMedianCutExtractor creates a MedianCutExtractor with the given palette size.
func NewMedianCutExtractor(paletteSize int) *MedianCutExtractor {
	return &MedianCutExtractor{
		paletteSize: paletteSize,
		quantizer:   quantize.MedianCutQuantizer{Aggregation: quantize.Mean},
	}
}

// Extract returns the dominant palette entry.
func (e *MedianCutExtractor) Extract(img image.Image, _ *rand.Rand) (Color, error) {
	if img == nil {
		return Absent, fmt.Errorf("%w: image cannot be nil", ErrExtractionFailure)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return Absent, fmt.Errorf("%w: image has no pixels", ErrExtractionFailure)
	}

	palette := color.Palette(e.quantizer.Quantize(make(color.Palette, 0, e.paletteSize), img))
	if len(palette) == 0 {
		return Absent, fmt.Errorf("%w: quantiser produced an empty palette", ErrExtractionFailure)
	}

	counts := make([]int, len(palette))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			counts[palette.Index(opaque(img.At(x, y)))]++
		}
	}

	best := 0
	for i, n := range counts {
		if n > counts[best] {
			best = i
		}
	}
	return FromColorful(imgutil.ToColorful(palette[best])), nil
}

// opaque drops alpha so palette matching works on the visible RGB.
func opaque(c color.Color) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 255
	return n
}
