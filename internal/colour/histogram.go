package colour

import (
	"fmt"
	"image"
	"math/rand"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	imgutil "github.com/jmylchreest/postersort/internal/image"
)

// HistogramPeakExtractor buckets the hues of sampled chromatic pixels and
// returns the fully saturated colour at the centre of the busiest bucket.
type HistogramPeakExtractor struct {
	sampler    *imgutil.Sampler
	thresholds Thresholds
	bins       int
}

// NewHistogramPeakExtractor creates a HistogramPeakExtractor. Pixels darker
// than the black threshold or in the white band are ignored.
func NewHistogramPeakExtractor(sampler *imgutil.Sampler, thresholds Thresholds, bins int) *HistogramPeakExtractor {
	return &HistogramPeakExtractor{
		sampler:    sampler,
		thresholds: thresholds,
		bins:       bins,
	}
}

// Extract returns the peak hue colour, or Absent when every sampled pixel
// was filtered out.
func (e *HistogramPeakExtractor) Extract(img image.Image, rng *rand.Rand) (Color, error) {
	if img == nil {
		return Absent, fmt.Errorf("%w: image cannot be nil", ErrExtractionFailure)
	}
	hues := e.chromaticHues(e.sampler.Sample(img, rng))
	if len(hues) == 0 {
		return Absent, nil
	}

	hue := e.peak(hues)
	return FromColorful(colorful.Hsv(hue, 1, 1)), nil
}

// chromaticHues returns the hues of pixels outside the black and white bands.
func (e *HistogramPeakExtractor) chromaticHues(pixels imgutil.PixelSample) []float64 {
	t := e.thresholds
	hues := make([]float64, 0, len(pixels))
	for _, p := range pixels {
		h, s, v := p.Hsv()
		if v < t.BlackValue {
			continue
		}
		if v > t.WhiteValue && s < t.WhiteSaturation {
			continue
		}
		if h >= 360 {
			h -= 360
		}
		hues = append(hues, h)
	}
	return hues
}

// peak returns the midpoint hue of the most populated bin. hues is sorted in place.
func (e *HistogramPeakExtractor) peak(hues []float64) float64 {
	slices.Sort(hues)
	dividers := make([]float64, e.bins+1)
	floats.Span(dividers, 0, 360)

	counts := stat.Histogram(nil, dividers, hues, nil)
	idx := floats.MaxIdx(counts)
	return (dividers[idx] + dividers[idx+1]) / 2
}
