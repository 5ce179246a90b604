package colour

import (
	"fmt"
	"image"
	"math/rand"

	"github.com/muesli/clusters"

	imgutil "github.com/jmylchreest/postersort/internal/image"
)

// TwoStageKMeansExtractor isolates the foreground before clustering: a
// coarse Lab clustering drops the cluster with the lightest centroid as
// background, then the remaining pixels are clustered again.
type TwoStageKMeansExtractor struct {
	sampler *imgutil.Sampler
	coarseK int
	fineK   int
	cfg     kmeansConfig
}

// NewTwoStageKMeansExtractor creates a TwoStageKMeansExtractor.
func NewTwoStageKMeansExtractor(sampler *imgutil.Sampler, coarseK, fineK int, cfg kmeansConfig) *TwoStageKMeansExtractor {
	return &TwoStageKMeansExtractor{
		sampler: sampler,
		coarseK: coarseK,
		fineK:   fineK,
		cfg:     cfg,
	}
}

// Extract returns the centroid of the largest foreground cluster. When the
// background cluster swallows every pixel, all pixels are clustered instead.
func (e *TwoStageKMeansExtractor) Extract(img image.Image, rng *rand.Rand) (Color, error) {
	if img == nil {
		return Absent, fmt.Errorf("%w: image cannot be nil", ErrExtractionFailure)
	}
	points := toLab(e.sampler.Sample(img, rng))

	fg, err := e.foreground(points)
	if err != nil {
		return Absent, err
	}
	if len(fg) == 0 {
		fg = points
	}

	result, err := e.cfg.fit(fg, e.fineK)
	if err != nil {
		return Absent, err
	}
	return fromLab(result.centroids[result.largest()]), nil
}

// foreground returns the points not assigned to the lightest coarse cluster.
func (e *TwoStageKMeansExtractor) foreground(points []clusters.Coordinates) ([]clusters.Coordinates, error) {
	coarse, err := e.cfg.fit(points, e.coarseK)
	if err != nil {
		return nil, err
	}

	// Lightest populated centroid by L, first on ties.
	background := -1
	for i, c := range coarse.centroids {
		if coarse.counts[i] == 0 {
			continue
		}
		if background < 0 || c[0] > coarse.centroids[background][0] {
			background = i
		}
	}

	fg := make([]clusters.Coordinates, 0, len(points))
	for i, p := range points {
		if coarse.labels[i] != background {
			fg = append(fg, p)
		}
	}
	return fg, nil
}
