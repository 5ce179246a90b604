package colour

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"math/rand"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"

	imgutil "github.com/jmylchreest/postersort/internal/image"
)

var (
	// ErrExtractionFailure is returned when a strategy cannot produce a colour.
	ErrExtractionFailure = errors.New("extraction failure")

	// ErrUnknownStrategy is returned when a strategy name is not registered.
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// Extractor maps an image to one representative colour.
// rng drives any pixel subsampling; a nil rng means unseeded sampling.
// Implementations hold no mutable state and are safe for concurrent use.
type Extractor interface {
	Extract(img image.Image, rng *rand.Rand) (Color, error)
}

// SafeExtract runs e, converting a panic into ErrExtractionFailure.
func SafeExtract(e Extractor, img image.Image, rng *rand.Rand) (col Color, err error) {
	defer func() {
		if r := recover(); r != nil {
			col = Absent
			err = fmt.Errorf("%w: panic: %v", ErrExtractionFailure, r)
		}
	}()
	return e.Extract(img, rng)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(img image.Image, rng *rand.Rand) (Color, error)

// Extract calls f(img, rng).
func (f ExtractorFunc) Extract(img image.Image, rng *rand.Rand) (Color, error) {
	return f(img, rng)
}

// Strategy is the registered name of an extractor.
type Strategy string

const (
	// StrategyMedianCut picks the most populated entry of a median-cut palette.
	StrategyMedianCut Strategy = "median_cut"
	// StrategyHistogramPeak picks the most common hue among chromatic pixels.
	StrategyHistogramPeak Strategy = "histogram_peak"
	// StrategyLabKMeans clusters pixels in CIE Lab and takes the largest cluster.
	StrategyLabKMeans Strategy = "lab_kmeans"
	// StrategyColorNaming is the hue-histogram result under its own name.
	StrategyColorNaming Strategy = "color_naming"
	// StrategyTwoStageKMeans drops the lightest coarse cluster before clustering.
	StrategyTwoStageKMeans Strategy = "two_stage_kmeans"
	// StrategyAverage averages every pixel of a fixed-size resize.
	StrategyAverage Strategy = "average"

	// StrategyAll expands to every registered strategy.
	StrategyAll = "all"
)

// StrategyConfig holds the tunables of every registered strategy.
type StrategyConfig struct {
	PaletteSize         int   `toml:"palette_size"`
	HistogramBins       int   `toml:"histogram_bins"`
	KMeansK             int   `toml:"kmeans_k"`
	CoarseK             int   `toml:"two_stage_coarse_k"`
	FineK               int   `toml:"two_stage_fine_k"`
	KMeansSeed          int64 `toml:"kmeans_seed"`
	KMeansInits         int   `toml:"kmeans_inits"`
	KMeansMaxIterations int   `toml:"kmeans_max_iterations"`
	AverageWidth        int   `toml:"average_width"`
	AverageHeight       int   `toml:"average_height"`
}

// DefaultStrategyConfig returns the default strategy tunables.
func DefaultStrategyConfig() StrategyConfig {
	return StrategyConfig{
		PaletteSize:         5,
		HistogramBins:       36,
		KMeansK:             3,
		CoarseK:             2,
		FineK:               3,
		KMeansSeed:          0,
		KMeansInits:         10,
		KMeansMaxIterations: 300,
		AverageWidth:        230,
		AverageHeight:       345,
	}
}

// Validate validates the strategy configuration.
func (c StrategyConfig) Validate() error {
	if c.PaletteSize < 1 || c.PaletteSize > 256 {
		return fmt.Errorf("palette size must be in [1,256], got %d", c.PaletteSize)
	}
	if c.HistogramBins < 1 || c.HistogramBins > 360 {
		return fmt.Errorf("histogram bins must be in [1,360], got %d", c.HistogramBins)
	}
	if c.KMeansK < 1 || c.CoarseK < 1 || c.FineK < 1 {
		return fmt.Errorf("cluster counts must be at least 1 (k=%d, coarse=%d, fine=%d)", c.KMeansK, c.CoarseK, c.FineK)
	}
	if c.KMeansInits < 1 {
		return fmt.Errorf("kmeans inits must be at least 1, got %d", c.KMeansInits)
	}
	if c.KMeansMaxIterations < 1 {
		return fmt.Errorf("kmeans max iterations must be at least 1, got %d", c.KMeansMaxIterations)
	}
	if c.AverageWidth < 1 || c.AverageHeight < 1 {
		return fmt.Errorf("average resize must be at least 1x1, got %dx%d", c.AverageWidth, c.AverageHeight)
	}
	return nil
}

// Entry is one named strategy in a Registry.
type Entry struct {
	Name        Strategy
	Description string
	// Deterministic is true when the result does not depend on the rng.
	Deterministic bool
	Extractor     Extractor
}

// Registry is the closed, ordered set of strategies selectable by name.
type Registry struct {
	entries     []Entry
	fingerprint string
}

// NewRegistry builds the standard strategy registry.
func NewRegistry(cfg StrategyConfig, sampler imgutil.SamplerConfig, thresholds Thresholds) *Registry {
	s := imgutil.NewSampler(sampler)
	hist := NewHistogramPeakExtractor(s, thresholds, cfg.HistogramBins)
	fit := kmeansConfig{
		inits:         cfg.KMeansInits,
		maxIterations: cfg.KMeansMaxIterations,
		seed:          cfg.KMeansSeed,
	}

	r := &Registry{fingerprint: fingerprint(cfg, sampler, thresholds)}
	r.mustRegister(Entry{
		Name:          StrategyMedianCut,
		Description:   "most populated entry of a median-cut palette",
		Deterministic: true,
		Extractor:     NewMedianCutExtractor(cfg.PaletteSize),
	})
	r.mustRegister(Entry{
		Name:        StrategyHistogramPeak,
		Description: "peak of the hue histogram of chromatic pixels",
		Extractor:   hist,
	})
	r.mustRegister(Entry{
		Name:        StrategyLabKMeans,
		Description: "largest k-means cluster in CIE Lab",
		Extractor:   NewLabKMeansExtractor(s, cfg.KMeansK, fit),
	})
	r.mustRegister(Entry{
		Name:        StrategyColorNaming,
		Description: "named hue from the hue histogram",
		Extractor:   hist,
	})
	r.mustRegister(Entry{
		Name:        StrategyTwoStageKMeans,
		Description: "largest Lab cluster after dropping the lightest coarse cluster",
		Extractor:   NewTwoStageKMeansExtractor(s, cfg.CoarseK, cfg.FineK, fit),
	})
	r.mustRegister(Entry{
		Name:          StrategyAverage,
		Description:   "mean colour of a fixed-size resize",
		Deterministic: true,
		Extractor:     NewAverageExtractor(cfg.AverageWidth, cfg.AverageHeight),
	})
	return r
}

// fingerprint hashes every setting that can change an extracted colour.
func fingerprint(cfg StrategyConfig, sampler imgutil.SamplerConfig, thresholds Thresholds) string {
	settings := struct {
		Strategies StrategyConfig
		Sampler    imgutil.SamplerConfig
		Thresholds Thresholds
	}{cfg, sampler, thresholds}

	data, err := toml.Marshal(settings)
	if err != nil {
		data = fmt.Appendf(nil, "%+v", settings)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// Fingerprint identifies the settings the registry's extractors were built
// with. Results computed under different fingerprints are not interchangeable.
func (r *Registry) Fingerprint() string {
	return r.fingerprint
}

// Register adds a strategy. Names must be unique.
func (r *Registry) Register(e Entry) error {
	if e.Name == "" || e.Name == StrategyAll {
		return fmt.Errorf("invalid strategy name: %q", e.Name)
	}
	if e.Extractor == nil {
		return fmt.Errorf("strategy %s has no extractor", e.Name)
	}
	if slices.ContainsFunc(r.entries, func(x Entry) bool { return x.Name == e.Name }) {
		return fmt.Errorf("strategy %s already registered", e.Name)
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *Registry) mustRegister(e Entry) {
	if err := r.Register(e); err != nil {
		panic(err)
	}
}

// Entries returns all strategies in registration order.
func (r *Registry) Entries() []Entry {
	return slices.Clone(r.entries)
}

// Names returns all strategy names in registration order.
func (r *Registry) Names() []Strategy {
	names := make([]Strategy, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Get returns the strategy registered under name.
func (r *Registry) Get(name Strategy) (Entry, error) {
	for _, e := range r.entries {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s (valid strategies: %v)", ErrUnknownStrategy, name, r.Names())
}

// Resolve turns user-supplied names into strategies, expanding "all" and
// dropping duplicates while keeping first-seen order.
func (r *Registry) Resolve(names []string) ([]Strategy, error) {
	var out []Strategy
	add := func(s Strategy) {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == StrategyAll {
			for _, s := range r.Names() {
				add(s)
			}
			continue
		}
		if _, err := r.Get(Strategy(name)); err != nil {
			return nil, err
		}
		add(Strategy(name))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no strategies selected")
	}
	return out, nil
}
