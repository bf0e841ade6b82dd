package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var resetYes bool

// resetCmd clears generated outputs: marked sheets, summaries, tracker and
// the review ledger. Inputs and the database are left alone.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all generated outputs",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if !resetYes {
			return fmt.Errorf("refusing to delete %s without --yes", a.cfg.Paths.OutputDir)
		}

		targets := []string{
			a.cfg.Paths.MarkedDir(),
			a.cfg.Paths.SummaryDir(),
			a.cfg.Paths.TrackerDir(),
			a.cfg.Paths.ReviewPath(),
		}
		for _, t := range targets {
			if err := os.RemoveAll(t); err != nil {
				return err
			}
		}
		return a.cfg.Paths.EnsureDirs()
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm deletion")
	rootCmd.AddCommand(resetCmd)
}
