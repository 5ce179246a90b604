package colour

import (
	"fmt"
	"image"
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"gonum.org/v1/gonum/floats"

	imgutil "github.com/jmylchreest/postersort/internal/image"
)

// kmeansConfig controls the Lab clustering shared by the k-means strategies.
type kmeansConfig struct {
	inits         int
	maxIterations int
	seed          int64
}

// convergence is the total squared centroid movement below which a run stops.
const convergence = 1e-8

// clustering is the outcome of one k-means fit.
type clustering struct {
	centroids []clusters.Coordinates
	labels    []int
	counts    []int
	inertia   float64
}

// largest returns the index of the most populated cluster (first on ties).
func (c clustering) largest() int {
	best := 0
	for i, n := range c.counts {
		if n > c.counts[best] {
			best = i
		}
	}
	return best
}

// toLab converts sampled pixels to CIE Lab coordinates.
func toLab(pixels imgutil.PixelSample) []clusters.Coordinates {
	points := make([]clusters.Coordinates, len(pixels))
	for i, p := range pixels {
		l, a, b := p.Lab()
		points[i] = clusters.Coordinates{l, a, b}
	}
	return points
}

// fromLab converts a Lab centroid back to a clamped RGB colour.
func fromLab(c clusters.Coordinates) Color {
	return FromColorful(colorful.Lab(c[0], c[1], c[2]))
}

// fit partitions points into k clusters. The best of cfg.inits k-means++
// initialisations (lowest inertia) wins. A fixed seed makes the result
// reproducible for the same points.
func (cfg kmeansConfig) fit(points []clusters.Coordinates, k int) (clustering, error) {
	if len(points) == 0 {
		return clustering{}, fmt.Errorf("%w: no pixels to cluster", ErrExtractionFailure)
	}
	if k < 1 {
		return clustering{}, fmt.Errorf("%w: cluster count must be at least 1, got %d", ErrExtractionFailure, k)
	}

	rng := rand.New(rand.NewSource(cfg.seed)) // #nosec G404 - clustering, not security
	var best clustering
	for run := 0; run < cfg.inits; run++ {
		c := cfg.run(points, k, rng)
		if run == 0 || c.inertia < best.inertia {
			best = c
		}
	}
	if math.IsNaN(best.inertia) {
		return clustering{}, fmt.Errorf("%w: clustering diverged", ErrExtractionFailure)
	}
	return best, nil
}

// run performs a single k-means fit from one k-means++ initialisation.
func (cfg kmeansConfig) run(points []clusters.Coordinates, k int, rng *rand.Rand) clustering {
	centroids := initializeCentroidsKMeansPlusPlus(points, k, rng)
	labels := make([]int, len(points))

	for iter := 0; iter < cfg.maxIterations; iter++ {
		for i, p := range points {
			labels[i] = nearest(p, centroids)
		}

		next := recalculateCentroids(points, labels, centroids)
		movement := 0.0
		for i := range centroids {
			movement += centroids[i].Distance(next[i])
		}
		centroids = next
		if movement < convergence {
			break
		}
	}

	counts := make([]int, len(centroids))
	dists := make([]float64, len(points))
	for i, p := range points {
		labels[i] = nearest(p, centroids)
		counts[labels[i]]++
		dists[i] = p.Distance(centroids[labels[i]])
	}

	return clustering{
		centroids: centroids,
		labels:    labels,
		counts:    counts,
		inertia:   floats.Sum(dists),
	}
}

// initializeCentroidsKMeansPlusPlus picks k starting centroids, each chosen
// with probability proportional to its squared distance from those already
// chosen. When every point coincides with a chosen centroid the last one is
// repeated, so degenerate inputs leave duplicate (and later empty) clusters.
func initializeCentroidsKMeansPlusPlus(points []clusters.Coordinates, k int, rng *rand.Rand) []clusters.Coordinates {
	centroids := make([]clusters.Coordinates, 0, k)
	centroids = append(centroids, clone(points[rng.Intn(len(points))]))

	distances := make([]float64, len(points))
	for len(centroids) < k {
		total := 0.0
		for i, p := range points {
			minDist := math.MaxFloat64
			for _, c := range centroids {
				minDist = math.Min(minDist, p.Distance(c))
			}
			distances[i] = minDist
			total += minDist
		}

		if total == 0 {
			centroids = append(centroids, clone(centroids[len(centroids)-1]))
			continue
		}

		target := rng.Float64() * total
		cumulative := 0.0
		chosen := len(points) - 1
		for i, d := range distances {
			cumulative += d
			if cumulative >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, clone(points[chosen]))
	}
	return centroids
}

// nearest returns the index of the closest centroid (first on ties).
func nearest(p clusters.Coordinates, centroids []clusters.Coordinates) int {
	best := 0
	minDist := math.MaxFloat64
	for i, c := range centroids {
		if d := p.Distance(c); d < minDist {
			minDist = d
			best = i
		}
	}
	return best
}

// recalculateCentroids moves each centroid to the mean of its members.
// Empty clusters keep their previous position.
func recalculateCentroids(points []clusters.Coordinates, labels []int, prev []clusters.Coordinates) []clusters.Coordinates {
	sums := make([]clusters.Coordinates, len(prev))
	counts := make([]int, len(prev))
	for i := range sums {
		sums[i] = make(clusters.Coordinates, len(prev[i]))
	}
	for i, p := range points {
		floats.Add(sums[labels[i]], p)
		counts[labels[i]]++
	}

	next := make([]clusters.Coordinates, len(prev))
	for i := range prev {
		if counts[i] == 0 {
			next[i] = clone(prev[i])
			continue
		}
		floats.Scale(1/float64(counts[i]), sums[i])
		next[i] = sums[i]
	}
	return next
}

func clone(c clusters.Coordinates) clusters.Coordinates {
	return append(clusters.Coordinates(nil), c...)
}

// LabKMeansExtractor clusters sampled pixels in CIE Lab and returns the
// centroid of the largest cluster.
type LabKMeansExtractor struct {
	sampler *imgutil.Sampler
	k       int
	cfg     kmeansConfig
}

// NewLabKMeansExtractor creates a LabKMeansExtractor with k clusters.
func NewLabKMeansExtractor(sampler *imgutil.Sampler, k int, cfg kmeansConfig) *LabKMeansExtractor {
	return &LabKMeansExtractor{sampler: sampler, k: k, cfg: cfg}
}

// Extract returns the centroid of the most populated Lab cluster.
func (e *LabKMeansExtractor) Extract(img image.Image, rng *rand.Rand) (Color, error) {
	if img == nil {
		return Absent, fmt.Errorf("%w: image cannot be nil", ErrExtractionFailure)
	}
	points := toLab(e.sampler.Sample(img, rng))
	result, err := e.cfg.fit(points, e.k)
	if err != nil {
		return Absent, err
	}
	return fromLab(result.centroids[result.largest()]), nil
}
