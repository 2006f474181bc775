package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cratestack/pkg/errors"
	pkgio "github.com/matzehuels/cratestack/pkg/io"
	"github.com/matzehuels/cratestack/pkg/obb"
)

// obbCommand creates the obb command, which fits oriented bounding
// boxes to mesh files and emits a catalog ready for packing.
func (c *CLI) obbCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "obb <mesh.obj> [mesh.obj...]",
		Short: "Fit bounding boxes to meshes and emit a catalog",
		Long: `Fit oriented bounding boxes to meshes and emit a catalog.

Each OBJ file becomes one catalog item: its dimensions are the extents
of a PCA-fitted bounding box around the mesh vertices, and its ID is
the file name without extension.

Examples:
  cratestack obb chair.obj lamp.obj -o furniture.json
  cratestack obb parts/*.obj | cratestack pack /dev/stdin`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := obb.FromFiles(args)
			if err != nil {
				return err
			}
			for _, it := range cat.Items {
				c.Logger.Info("fitted box", "id", it.ID,
					"dims", fmt.Sprintf("%.3gx%.3gx%.3g", it.Dims.X, it.Dims.Y, it.Dims.Z))
			}

			if output == "" {
				if err := pkgio.WriteJSON(cat, os.Stdout); err != nil {
					return errors.Wrap(errors.ErrCodeIOFailed, err, "write catalog")
				}
				return nil
			}
			if err := pkgio.ExportJSON(cat, output); err != nil {
				return errors.Wrap(errors.ErrCodeIOFailed, err, "write catalog")
			}
			printSuccess("Extracted %d bounding box(es)", len(cat.Items))
			printFile(output)
			printNewline()
			printNextStep("Pack the catalog", fmt.Sprintf("%s pack %s", appName, output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "catalog output file (stdout if empty)")
	return cmd
}
