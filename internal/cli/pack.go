package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cratestack/pkg/catalog"
	"github.com/matzehuels/cratestack/pkg/errors"
	"github.com/matzehuels/cratestack/pkg/observability"
	"github.com/matzehuels/cratestack/pkg/pipeline"
	"github.com/matzehuels/cratestack/pkg/store"
)

// packOpts holds the command-line flags for the pack command.
type packOpts struct {
	container   string   // container extents as "LxWxH"
	support     float64  // minimum supported footprint fraction
	eps         float64  // geometric tolerance
	order       string   // item ordering policy
	maxAttempts int      // per-item candidate evaluation cap
	formats     []string // artifact formats to render
	outputDir   string   // directory for rendered artifacts
	output      string   // record output path (stdout if empty)
	label       string   // label for the stored run
	save        bool     // persist the run to the store
	refresh     bool     // bypass the record cache
}

// packCommand creates the pack command, the main entry point: load a
// catalog, place every item, write the record and artifacts, and
// persist the run.
func (c *CLI) packCommand() *cobra.Command {
	opts := packOpts{save: true}

	cmd := &cobra.Command{
		Use:   "pack <catalog.(json|toml)>",
		Short: "Pack a catalog of items into the container",
		Long: `Pack a catalog of items into the container.

The catalog lists items with dimensions, quantities, and optionally
allowed orientations. Items are placed deterministically: identical
catalogs and options always produce identical placements, so results
are cached locally for faster repeat runs.

Examples:
  cratestack pack boxes.json
  cratestack pack boxes.json --container 120x80x100 -f svg -f html
  cratestack pack boxes.toml --support 0.8 --order catalog -o record.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeOpts, err := c.pipelineOptions(cmd, &opts)
			if err != nil {
				return err
			}
			return c.runPack(cmd.Context(), args[0], pipeOpts, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.container, "container", "", "container extents as LxWxH (default 100x100x100)")
	cmd.Flags().Float64Var(&opts.support, "support", 0, "minimum supported footprint fraction in (0,1] (default 1.0)")
	cmd.Flags().Float64Var(&opts.eps, "eps", 0, "geometric tolerance (default 1e-6)")
	cmd.Flags().StringVar(&opts.order, "order", "", "item order: volume-desc (default), catalog")
	cmd.Flags().IntVar(&opts.maxAttempts, "max-attempts", 0, "max candidate evaluations per item (0 = unbounded)")
	cmd.Flags().StringSliceVarP(&opts.formats, "format", "f", nil, "artifact format(s): json, svg, png, pdf, html, charts, dot")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "directory for rendered artifacts (default: catalog directory)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "record output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.label, "label", "", "label for the stored run")
	cmd.Flags().BoolVar(&opts.save, "save", opts.save, "persist the run to the store")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the record cache")

	return cmd
}

// pipelineOptions merges config file values and flags into pipeline
// options. Flags win over the config file, which wins over defaults.
func (c *CLI) pipelineOptions(cmd *cobra.Command, opts *packOpts) (pipeline.Options, error) {
	cfg, err := c.Config.PackConfig()
	if err != nil {
		return pipeline.Options{}, err
	}

	out := pipeline.Options{
		Container:        [3]float64{cfg.Container.X, cfg.Container.Y, cfg.Container.Z},
		SupportThreshold: cfg.SupportThreshold,
		Epsilon:          cfg.Epsilon,
		Order:            string(cfg.Order),
		MaxAttempts:      cfg.MaxAttempts,
		Formats:          opts.formats,
		Label:            opts.label,
		Refresh:          opts.refresh,
	}

	if cmd.Flags().Changed("container") {
		dims, err := parseDims(opts.container)
		if err != nil {
			return pipeline.Options{}, err
		}
		out.Container = dims
	}
	if cmd.Flags().Changed("support") {
		out.SupportThreshold = opts.support
	}
	if cmd.Flags().Changed("eps") {
		out.Epsilon = opts.eps
	}
	if cmd.Flags().Changed("order") {
		out.Order = opts.order
	}
	if cmd.Flags().Changed("max-attempts") {
		out.MaxAttempts = opts.maxAttempts
	}

	if err := out.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return out, nil
}

// runPack loads the catalog, runs the pipeline, and writes outputs.
func (c *CLI) runPack(ctx context.Context, input string, pipeOpts pipeline.Options, opts *packOpts) error {
	cat, err := catalog.Load(input)
	if err != nil {
		return err
	}
	c.Logger.Info("loaded catalog", "file", input, "items", cat.Len())

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	// Hooks fire deep inside the engine; the context carries the
	// logger down to them.
	ctx = withLogger(ctx, c.Logger)
	observability.SetPackHooks(packProgressHooks{})
	defer observability.Reset()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Packing...")
	spinner.Start()
	result, err := runner.Run(ctx, cat, pipeOpts)
	if err != nil {
		spinner.StopWithError("Packing failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Placed %d of %d items", result.Stats.PlacedCount, cat.Len()))

	if err := c.writePackOutputs(input, result, pipeOpts, opts); err != nil {
		return err
	}

	if opts.save {
		if err := c.saveRun(ctx, result, opts.label); err != nil {
			printWarning("Run not saved: %s", errors.UserMessage(err))
		}
	}

	printSuccess("Packing complete")
	printStats(result.Stats.PlacedCount, result.Stats.UnplacedCount,
		result.Record.Stats.Utilization, result.CacheInfo.RecordHit)
	printDetail("max height %g of %g", result.Record.Stats.MaxHeight, result.Record.Container.Z)
	for _, u := range result.Record.Unplaced {
		printDetail("unplaced %s (%s)", u.ID, u.Reason)
	}
	printNewline()
	printNextStep("Replay", fmt.Sprintf("%s replay %s", appName, result.RunID))
	return nil
}

// writePackOutputs writes the record and any extra artifacts. The
// JSON record goes to --output (or stdout); other formats land next
// to the catalog unless --output-dir is set.
func (c *CLI) writePackOutputs(input string, result *pipeline.Result, pipeOpts pipeline.Options, opts *packOpts) error {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	dir := opts.outputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}

	for _, format := range pipeOpts.Formats {
		data := result.Artifacts[format]
		if format == pipeline.FormatJSON {
			if opts.output == "" {
				_, err := os.Stdout.Write(data)
				if err == nil && len(data) > 0 && data[len(data)-1] != '\n' {
					fmt.Println()
				}
				if err != nil {
					return errors.Wrap(errors.ErrCodeIOFailed, err, "write record")
				}
				continue
			}
			if err := writeArtifact(opts.output, data); err != nil {
				return err
			}
			printFile(opts.output)
			continue
		}

		path := filepath.Join(dir, base+"."+artifactExt(format))
		if err := writeArtifact(path, data); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

// saveRun persists the run under the pipeline's run ID.
func (c *CLI) saveRun(ctx context.Context, result *pipeline.Result, label string) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	run := store.NewRun(result.Record, label)
	run.ID = result.RunID
	return st.Save(ctx, run)
}

// packProgressHooks logs per-item placement progress through the
// logger carried in the context.
type packProgressHooks struct {
	observability.NoopPackHooks
}

func (packProgressHooks) OnPackStart(ctx context.Context, items int) {
	loggerFromContext(ctx).Debug("packing", "items", items)
}

func (packProgressHooks) OnItemPlaced(ctx context.Context, id string, index, attempts int) {
	loggerFromContext(ctx).Debug("placed", "item", id, "commit", index+1, "attempts", attempts)
}

func (packProgressHooks) OnItemUnplaced(ctx context.Context, id, reason string) {
	loggerFromContext(ctx).Warn("could not place item", "item", id, "reason", reason)
}

func (packProgressHooks) OnPackComplete(ctx context.Context, placed, unplaced int, elapsed time.Duration, err error) {
	if err == nil {
		loggerFromContext(ctx).Debug("pack complete", "placed", placed,
			"unplaced", unplaced, "elapsed", elapsed.Round(time.Millisecond))
	}
}

// writeArtifact writes one artifact, creating parent directories.
func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeIOFailed, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIOFailed, err, "write %s", path)
	}
	return nil
}

// artifactExt maps a format to its file extension.
func artifactExt(format string) string {
	if format == pipeline.FormatCharts {
		return "charts.html"
	}
	return format
}

// parseDims parses container extents written as "LxWxH".
func parseDims(s string) ([3]float64, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 3 {
		return [3]float64{}, errors.New(errors.ErrCodeInvalidConfig,
			"container must be LxWxH, got %q", s)
	}
	var dims [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || v <= 0 {
			return [3]float64{}, errors.New(errors.ErrCodeInvalidConfig,
				"container dimension %q must be a positive number", p)
		}
		dims[i] = v
	}
	return dims, nil
}
