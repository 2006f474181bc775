package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cratestack/pkg/render"
)

// historyCommand creates the history command group for browsing
// stored runs.
func (c *CLI) historyCommand() *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse stored packing runs",
		Long: `Browse stored packing runs.

Runs are saved automatically by pack (unless --save=false) and by the
HTTP API. The store backend and location come from the config file;
--store switches the backend for one invocation.`,
	}

	cmd.PersistentFlags().StringVar(&backend, "store", "", "store backend: file, sqlite, mongo (default from config)")

	// Applied by subcommands after the root pre-run has loaded config.
	override := func() {
		if backend != "" {
			c.Config.Store.Backend = backend
		}
	}

	cmd.AddCommand(c.historyListCommand(override))
	cmd.AddCommand(c.historyShowCommand(override))
	cmd.AddCommand(c.historyDeleteCommand(override))
	return cmd
}

func (c *CLI) historyListCommand(override func()) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			override()
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				printInfo("No stored runs")
				return nil
			}

			for _, r := range runs {
				label := r.Label
				if label == "" {
					label = "-"
				}
				fmt.Printf("%s  %s  %3d placed  %3d unplaced  %5.1f%%  %s\n",
					r.ID,
					r.CreatedAt.Local().Format("2006-01-02 15:04"),
					r.PlacedCount, r.UnplacedCount, r.Utilization*100, label)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list (0 = all)")
	return cmd
}

func (c *CLI) historyShowCommand(override func()) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the full record of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			override()
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			run, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			data, err := render.RenderJSON(run.Record)
			if err != nil {
				return err
			}
			if _, err := os.Stdout.Write(data); err != nil {
				return err
			}
			return nil
		},
	}
}

func (c *CLI) historyDeleteCommand(override func()) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			override()
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted run %s", args[0])
			return nil
		},
	}
}
