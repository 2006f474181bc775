package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cratestack/pkg/cache"
	"github.com/matzehuels/cratestack/pkg/errors"
	pkgio "github.com/matzehuels/cratestack/pkg/io"
	"github.com/matzehuels/cratestack/pkg/pack"
	"github.com/matzehuels/cratestack/pkg/pipeline"
)

// renderCommand creates the render command, which re-renders artifacts
// from a previously written record without repacking.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formats   []string
		outputDir string
		title     string
		labels    bool
	)

	cmd := &cobra.Command{
		Use:   "render <record.json>",
		Short: "Render artifacts from an existing record",
		Long: `Render artifacts from an existing record.

The record is verified before rendering; a tampered or corrupt record
is rejected rather than drawn.

Examples:
  cratestack render record.json -f svg -f html
  cratestack render record.json -f png --labels --output-dir out/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := loadRecord(args[0])
			if err != nil {
				return err
			}

			opts := pipeline.Options{Formats: formats, Title: title, Labels: labels}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			data, err := json.Marshal(rec)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "encode record")
			}
			artifacts, err := runner.Render(cmd.Context(), rec, cache.Hash(data), opts)
			if err != nil {
				return err
			}

			base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			dir := outputDir
			if dir == "" {
				dir = filepath.Dir(args[0])
			}
			printSuccess("Rendered %d artifact(s)", len(artifacts))
			for _, format := range opts.Formats {
				path := filepath.Join(dir, base+"."+artifactExt(format))
				if err := writeArtifact(path, artifacts[format]); err != nil {
					return err
				}
				printFile(path)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&formats, "format", "f", []string{pipeline.FormatSVG}, "artifact format(s): json, svg, png, pdf, html, charts, dot")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory (default: record directory)")
	cmd.Flags().StringVar(&title, "title", "", "title for rendered artifacts")
	cmd.Flags().BoolVar(&labels, "labels", false, "draw item labels")
	return cmd
}

// loadRecord reads and verifies a record file. Verification catches
// hand-edited records before they reach a renderer.
func loadRecord(path string) (*pack.Record, error) {
	var rec pack.Record
	if err := pkgio.ImportJSON(path, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "record %s", path)
	}
	if err := pack.Verify(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
