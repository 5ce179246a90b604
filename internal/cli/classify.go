package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/postersort/internal/colour"
	imgutil "github.com/jmylchreest/postersort/internal/image"
	"github.com/jmylchreest/postersort/internal/seed"
)

type classifyOptions struct {
	strategies []string
	seed       int64
	preview    string
}

func newClassifyCmd(a *app) *cobra.Command {
	opts := &classifyOptions{}

	cmd := &cobra.Command{
		Use:   "classify <image>",
		Short: "Show the colour and sort key of one poster",
		Long: `Classify runs extraction strategies on a single image and prints the
extracted colour, its group and the hue used for ordering.

Examples:
  # Every strategy
  postersort classify covers/Heat_1995.jpg

  # One strategy, reproducible sampling, no swatches
  postersort classify -s histogram_peak --seed 7 --preview never poster.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, a, opts, args[0])
		},
	}

	cmd.Flags().StringSliceVarP(&opts.strategies, "strategy", "s", []string{colour.StrategyAll}, "strategies to run (repeatable, or 'all')")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "sampling seed (default: sampling seed mode from config)")
	cmd.Flags().StringVar(&opts.preview, "preview", "auto", "colour swatches (auto, always, never)")

	return cmd
}

func runClassify(cmd *cobra.Command, a *app, opts *classifyOptions, imagePath string) error {
	if err := imgutil.ValidateImagePath(imagePath); err != nil {
		return fmt.Errorf("invalid image path: %w", err)
	}

	showPreview, err := previewEnabled(opts.preview)
	if err != nil {
		return err
	}

	seedCfg, err := a.cfg.SeedConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		s := opts.seed
		seedCfg = seed.Config{Mode: seed.ModeManual, Value: &s}
	}

	registry := a.cfg.Registry()
	strategies, err := registry.Resolve(opts.strategies)
	if err != nil {
		return err
	}

	a.logger.Debug("loading image", "path", imagePath)
	img, err := imgutil.NewFileLoader().Load(imagePath)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	bounds := img.Bounds()
	a.logger.Debug("image loaded", "width", bounds.Dx(), "height", bounds.Dy())

	classifier := colour.NewClassifier(a.cfg.Thresholds)
	rows := make([][]string, 0, len(strategies))
	for _, name := range strategies {
		entry, err := registry.Get(name)
		if err != nil {
			return err
		}
		rng, err := seed.NewRand(img, imagePath, seedCfg)
		if err != nil {
			return err
		}

		col, err := colour.SafeExtract(entry.Extractor, img, rng)
		if err != nil {
			a.logger.Warn("extraction failed", "strategy", string(name), "error", err)
			col = colour.Absent
		}
		key := classifier.Classify(col)

		swatch := col.Hex()
		if showPreview {
			swatch = colour.FormatColourWithPreview(col, 6)
		}
		hue := "-"
		if key.Group == colour.GroupColoured {
			hue = strconv.FormatFloat(key.Hue, 'f', 1, 64)
		}
		rows = append(rows, []string{string(name), swatch, col.String(), key.Group.String(), hue})
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Strategy", "Colour", "RGB", "Group", "Hue"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	))
	return nil
}

// previewEnabled resolves the --preview mode against the terminal.
func previewEnabled(mode string) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		return colour.SupportsANSIColours(os.Stdout), nil
	default:
		return false, fmt.Errorf("invalid preview mode: %s (valid: auto, always, never)", mode)
	}
}
