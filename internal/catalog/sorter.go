package catalog

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/postersort/internal/colour"
	imgutil "github.com/jmylchreest/postersort/internal/image"
	"github.com/jmylchreest/postersort/internal/seed"
)

// Failure names the reason a row ended up absent.
type Failure string

// Failure kinds.
const (
	FailureNone       Failure = ""
	FailureLookupMiss Failure = "lookup_miss"
	FailureUnreadable Failure = "image_unreadable"
	FailureExtraction Failure = "extraction_failure"
)

// ClassifyFailure maps a row error onto its Failure kind.
func ClassifyFailure(err error) Failure {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrLookupMiss):
		return FailureLookupMiss
	case errors.Is(err, imgutil.ErrImageUnreadable):
		return FailureUnreadable
	default:
		return FailureExtraction
	}
}

// RowOutcome is the extraction result for one input row.
type RowOutcome struct {
	Index  int
	Name   string
	Path   string
	Color  colour.Color
	Key    colour.SortKey
	Err    error
	Cached bool
}

// Failure returns the failure kind of the row.
func (o RowOutcome) Failure() Failure {
	return ClassifyFailure(o.Err)
}

// Result is one strategy's ordering of a catalog.
type Result struct {
	Strategy colour.Strategy
	// Outcomes are in original row order.
	Outcomes []RowOutcome
	// Order lists original row indices in sorted order.
	Order []int
	// Table is the input table reordered by Order.
	Table *Table
}

// GroupCounts returns how many rows landed in each group.
func (r *Result) GroupCounts() map[colour.Group]int {
	counts := make(map[colour.Group]int)
	for _, o := range r.Outcomes {
		counts[o.Key.Group]++
	}
	return counts
}

// FailureCounts returns how many rows failed for each reason.
func (r *Result) FailureCounts() map[Failure]int {
	counts := make(map[Failure]int)
	for _, o := range r.Outcomes {
		if f := o.Failure(); f != FailureNone {
			counts[f]++
		}
	}
	return counts
}

// Options configures a Sorter.
type Options struct {
	Registry   *colour.Registry
	Classifier *colour.Classifier
	Lookup     Lookup
	Loader     imgutil.Loader
	Seed       seed.Config
	NameColumn string
	// Workers bounds concurrent row extractions. Zero uses GOMAXPROCS.
	Workers int
	// Cache is optional.
	Cache  *Cache
	Logger hclog.Logger
}

// Sorter orders catalog rows by the colour of their posters.
type Sorter struct {
	opts Options
}

// NewSorter validates opts and creates a Sorter.
func NewSorter(opts Options) (*Sorter, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if opts.Classifier == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	if opts.Lookup == nil {
		return nil, fmt.Errorf("image lookup is required")
	}
	if opts.Loader == nil {
		opts.Loader = imgutil.NewFileLoader()
	}
	if opts.NameColumn == "" {
		opts.NameColumn = DefaultNameColumn
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	return &Sorter{opts: opts}, nil
}

// SortAll runs Sort once per strategy. Runs share nothing but the input
// table; a failing row in one run never affects another. If any run fails
// or ctx is cancelled, no results are returned.
func (s *Sorter) SortAll(ctx context.Context, t *Table, strategies []colour.Strategy) ([]*Result, error) {
	results := make([]*Result, 0, len(strategies))
	for _, name := range strategies {
		res, err := s.Sort(ctx, t, name)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Sort extracts a colour for every row with the named strategy and returns
// the rows stable-sorted by sort key. Row failures become Absent; only a
// bad table, an unknown strategy or cancellation return an error, in which
// case no result is produced.
func (s *Sorter) Sort(ctx context.Context, t *Table, strategy colour.Strategy) (*Result, error) {
	entry, err := s.opts.Registry.Get(strategy)
	if err != nil {
		return nil, err
	}
	nameIdx, err := t.ColumnIndex(s.opts.NameColumn)
	if err != nil {
		return nil, err
	}

	logger := s.opts.Logger.With("strategy", string(strategy))
	logger.Debug("sorting catalog", "rows", t.Len(), "workers", s.opts.Workers)

	outcomes := make([]RowOutcome, t.Len())
	jobs := make(chan int)
	var wg sync.WaitGroup
	for n := min(s.opts.Workers, max(t.Len(), 1)); n > 0; n-- {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				name := ""
				if nameIdx < len(t.Rows[i]) {
					name = t.Rows[i][nameIdx]
				}
				outcomes[i] = s.processRow(ctx, entry, i, name, logger)
			}
		}()
	}

feed:
	for i := range t.Rows {
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		logger.Warn("sort cancelled, discarding partial results", "error", err)
		return nil, fmt.Errorf("sort %s: %w", strategy, err)
	}

	order := make([]int, len(outcomes))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return outcomes[a].Key.Compare(outcomes[b].Key)
	})

	sorted, err := t.Reorder(order)
	if err != nil {
		return nil, err
	}
	return &Result{
		Strategy: strategy,
		Outcomes: outcomes,
		Order:    order,
		Table:    sorted,
	}, nil
}

// processRow resolves, loads and extracts one row, classifying the result.
func (s *Sorter) processRow(ctx context.Context, entry colour.Entry, index int, name string, logger hclog.Logger) RowOutcome {
	out := RowOutcome{Index: index, Name: name}
	out.Color, out.Path, out.Cached, out.Err = s.extract(ctx, entry, name)
	if out.Err != nil {
		out.Color = colour.Absent
		logger.Debug("row has no colour", "row", index, "name", name, "reason", string(out.Failure()), "error", out.Err)
	}
	out.Key = s.opts.Classifier.Classify(out.Color)
	return out
}

func (s *Sorter) extract(ctx context.Context, entry colour.Entry, name string) (col colour.Color, path string, cached bool, err error) {
	path, err = s.opts.Lookup.Find(name)
	if err != nil {
		return colour.Absent, "", false, err
	}

	var key CacheKey
	useCache := s.opts.Cache != nil && (entry.Deterministic || s.opts.Seed.Reproducible())
	if useCache {
		seedKey := s.opts.Seed.Key()
		if entry.Deterministic {
			seedKey = "-"
		}
		if key, err = NewCacheKey(entry.Name, s.opts.Registry.Fingerprint(), path, seedKey); err != nil {
			useCache = false
		} else if c, ok, getErr := s.opts.Cache.Get(ctx, key); getErr == nil && ok {
			return c, path, true, nil
		}
	}

	img, err := s.opts.Loader.Load(path)
	if err != nil {
		return colour.Absent, path, false, err
	}
	rng, err := seed.NewRand(img, path, s.opts.Seed)
	if err != nil {
		return colour.Absent, path, false, fmt.Errorf("%w: %w", colour.ErrExtractionFailure, err)
	}

	col, err = colour.SafeExtract(entry.Extractor, img, rng)
	if err != nil {
		return colour.Absent, path, false, err
	}

	if useCache {
		if putErr := s.opts.Cache.Put(ctx, key, col); putErr != nil {
			s.opts.Logger.Warn("failed to cache colour", "path", path, "error", putErr)
		}
	}
	return col, path, false, nil
}
