package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cratestack/pkg/errors"
	pkgio "github.com/matzehuels/cratestack/pkg/io"
	"github.com/matzehuels/cratestack/pkg/pack"
)

// verifyCommand creates the verify command, which checks a record
// against the placement invariants without rendering anything.
func (c *CLI) verifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <record.json>",
		Short: "Check a record against the placement invariants",
		Long: `Check a record against the placement invariants.

Every placement is re-checked for container bounds, pairwise overlap,
and support. Use this on records received from elsewhere before
trusting their geometry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rec pack.Record
			if err := pkgio.ImportJSON(args[0], &rec); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidFormat, err, "record %s", args[0])
			}

			if err := pack.Verify(&rec); err != nil {
				printError("Record is invalid")
				printDetail("%s", errors.UserMessage(err))
				return err
			}

			printSuccess("Record is valid")
			printStats(len(rec.Placements), len(rec.Unplaced), rec.Stats.Utilization, false)
			printKeyValue("container", fmt.Sprintf("%gx%gx%g",
				rec.Container.X, rec.Container.Y, rec.Container.Z))
			printKeyValue("support threshold", fmt.Sprintf("%g", rec.Params.SupportThreshold))
			printKeyValue("max height", fmt.Sprintf("%g", rec.Stats.MaxHeight))
			return nil
		},
	}
}
