package cli

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cratestack/pkg/pack"
)

// replayCommand creates the replay command, an interactive
// step-through of a run's placements in the terminal.
func (c *CLI) replayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <run-id | record.json>",
		Short: "Step through a run's placements interactively",
		Long: `Step through a run's placements interactively.

The argument is a stored run ID (see "history list") or a path to a
record file. Placements appear one per step in commit order, drawn as
a top-down plan of the container.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := c.resolveRecord(cmd, args[0])
			if err != nil {
				return err
			}

			model := NewReplayModel(rec)
			prog := tea.NewProgram(model, tea.WithContext(cmd.Context()))
			_, err = prog.Run()
			return err
		},
	}
}

// resolveRecord treats the argument as a record file if one exists at
// that path, and as a stored run ID otherwise.
func (c *CLI) resolveRecord(cmd *cobra.Command, arg string) (*pack.Record, error) {
	if _, err := os.Stat(arg); err == nil {
		return loadRecord(arg)
	}

	st, err := c.openStore(cmd.Context())
	if err != nil {
		return nil, err
	}
	defer st.Close()

	run, err := st.Get(cmd.Context(), arg)
	if err != nil {
		return nil, err
	}
	return run.Record, nil
}
