package cli

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/postersort/internal/catalog"
	"github.com/jmylchreest/postersort/internal/colour"
	"github.com/jmylchreest/postersort/internal/compression"
	"github.com/jmylchreest/postersort/internal/config"
	imgutil "github.com/jmylchreest/postersort/internal/image"
	"github.com/jmylchreest/postersort/internal/seed"
)

type sortOptions struct {
	catalogPath string
	coversDir   string
	outputDir   string
	prefix      string
	nameColumn  string
	strategies  []string
	seedMode    string
	seed        int64
	workers     int
	cachePath   string
	bundle      formatValue
	noSummary   bool
}

func newSortCmd(a *app) *cobra.Command {
	opts := &sortOptions{}

	cmd := &cobra.Command{
		Use:   "sort <catalog.csv>",
		Short: "Sort a catalog by poster colour",
		Long: `Sort reads a CSV catalog, finds each row's poster in the covers directory,
extracts a representative colour with one or more strategies and writes one
sorted CSV per strategy.

Rows keep their original columns. Rows whose poster is missing or unreadable
are placed last, in their original order.

Examples:
  # Sort with every strategy
  postersort sort watched.csv

  # Sort with one strategy into ./out, reproducibly
  postersort sort -s lab_kmeans -o out --seed 42 watched.csv

  # Sort and bundle all tables into a zip
  postersort sort --bundle zip watched.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.catalogPath = args[0]
			return runSort(cmd, a, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.coversDir, "covers", "d", "", "directory holding poster images (default from config: covers)")
	f.StringVarP(&opts.outputDir, "output", "o", "", "directory for sorted tables (default from config: sorted)")
	f.StringVar(&opts.prefix, "prefix", "", "output file prefix (default from config: watched)")
	f.StringVar(&opts.nameColumn, "name-column", "", "catalog column holding the display name (default from config: Name)")
	f.StringSliceVarP(&opts.strategies, "strategy", "s", []string{colour.StrategyAll}, "strategies to run (repeatable, or 'all')")
	f.StringVar(&opts.seedMode, "seed-mode", "", "sampling seed mode (random, manual, content, filepath)")
	f.Int64Var(&opts.seed, "seed", 0, "sampling seed (implies --seed-mode manual)")
	f.IntVarP(&opts.workers, "workers", "w", 0, "concurrent row extractions (0: one per CPU)")
	f.StringVar(&opts.cachePath, "cache", "", "SQLite colour cache path ('auto' for the user cache directory)")
	f.Var(&opts.bundle, "bundle", "also bundle the tables into an archive (zip, tar.gz, tar.xz)")
	f.BoolVar(&opts.noSummary, "no-summary", false, "do not print the summary table")

	return cmd
}

// applyFlags overlays explicitly set flags on the loaded configuration.
func (o *sortOptions) applyFlags(cmd *cobra.Command, cfg config.Config) (config.Config, error) {
	f := cmd.Flags()
	if f.Changed("covers") {
		cfg.Catalog.CoversDir = o.coversDir
	}
	if f.Changed("output") {
		cfg.Catalog.OutputDir = o.outputDir
	}
	if f.Changed("prefix") {
		cfg.Catalog.OutputPrefix = o.prefix
	}
	if f.Changed("name-column") {
		cfg.Catalog.NameColumn = o.nameColumn
	}
	if f.Changed("seed-mode") {
		cfg.Sampling.SeedMode = o.seedMode
	}
	if f.Changed("seed") {
		s := o.seed
		cfg.Sampling.Seed = &s
		if !f.Changed("seed-mode") {
			cfg.Sampling.SeedMode = string(seed.ModeManual)
		}
	}
	if f.Changed("workers") {
		cfg.Catalog.Workers = o.workers
	}
	if f.Changed("cache") {
		cfg.Catalog.CachePath = o.cachePath
	}
	if f.Changed("bundle") {
		cfg.Catalog.Bundle = o.bundle.String()
	}
	return cfg, cfg.Validate()
}

func runSort(cmd *cobra.Command, a *app, opts *sortOptions) error {
	cfg, err := opts.applyFlags(cmd, a.cfg)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	seedCfg, err := cfg.SeedConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var bundleFormat compression.Format
	if cfg.Catalog.Bundle != "" {
		if bundleFormat, err = compression.ParseFormat(cfg.Catalog.Bundle); err != nil {
			return err
		}
	}

	registry := cfg.Registry()
	strategies, err := registry.Resolve(opts.strategies)
	if err != nil {
		return err
	}

	logger := a.logger.With("run_id", uuid.NewString())

	table, err := catalog.ReadFile(opts.catalogPath)
	if err != nil {
		return err
	}
	lookup, err := catalog.NewDirLookup(cfg.Catalog.CoversDir)
	if err != nil {
		return err
	}

	var cache *catalog.Cache
	if cachePath := cfg.Catalog.CachePath; cachePath != "" {
		if cachePath == catalog.AutoCachePath {
			if cachePath, err = catalog.DefaultCachePath(); err != nil {
				return err
			}
		}
		if cache, err = catalog.OpenCache(cachePath); err != nil {
			return err
		}
		defer cache.Close()
		logger.Debug("using colour cache", "path", cachePath)
	}

	sorter, err := catalog.NewSorter(catalog.Options{
		Registry:   registry,
		Classifier: colour.NewClassifier(cfg.Thresholds),
		Lookup:     lookup,
		Loader:     imgutil.NewFileLoader(),
		Seed:       seedCfg,
		NameColumn: cfg.Catalog.NameColumn,
		Workers:    cfg.Catalog.Workers,
		Cache:      cache,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	sink := catalog.NewDirSink(cfg.Catalog.OutputDir, cfg.Catalog.OutputPrefix)
	unlock, err := sink.Lock()
	if err != nil {
		return err
	}
	defer func() {
		if err := unlock(); err != nil {
			logger.Warn("failed to release output lock", "error", err)
		}
	}()

	logger.Info("sorting catalog", "catalog", opts.catalogPath, "rows", table.Len(), "strategies", len(strategies))

	results, err := sorter.SortAll(cmd.Context(), table, strategies)
	if err != nil {
		return err
	}

	written := make([]string, 0, len(results))
	for _, res := range results {
		path, err := sink.Write(res.Strategy, res.Table)
		if err != nil {
			return err
		}
		logger.Info("wrote sorted table", "strategy", string(res.Strategy), "path", path)
		written = append(written, path)
	}

	if bundleFormat != "" {
		dest := filepath.Join(sink.Dir(), cfg.Catalog.OutputPrefix+"_sorted"+bundleFormat.Extension())
		if err := compression.Bundle(bundleFormat, dest, written); err != nil {
			return fmt.Errorf("failed to bundle tables: %w", err)
		}
		logger.Info("wrote bundle", "path", dest)
	}

	if !opts.noSummary && !a.quiet {
		fmt.Fprintln(cmd.OutOrStdout(), renderSummary(results, written))
	}
	return nil
}

// renderSummary tabulates group and failure counts per strategy.
func renderSummary(results []*catalog.Result, paths []string) string {
	headers := []string{"Strategy"}
	aligns := []columnAlignment{alignLeft}
	for _, g := range colour.AllGroups() {
		headers = append(headers, g.String())
		aligns = append(aligns, alignRight)
	}
	failures := []catalog.Failure{catalog.FailureLookupMiss, catalog.FailureUnreadable, catalog.FailureExtraction}
	for _, f := range failures {
		headers = append(headers, string(f))
		aligns = append(aligns, alignRight)
	}
	headers = append(headers, "Output")

	rows := make([][]string, 0, len(results))
	for i, res := range results {
		groups := res.GroupCounts()
		fails := res.FailureCounts()
		row := []string{string(res.Strategy)}
		for _, g := range colour.AllGroups() {
			row = append(row, strconv.Itoa(groups[g]))
		}
		for _, f := range failures {
			row = append(row, strconv.Itoa(fails[f]))
		}
		if i < len(paths) {
			row = append(row, paths[i])
		}
		rows = append(rows, row)
	}
	return renderTable(headers, rows, aligns)
}
