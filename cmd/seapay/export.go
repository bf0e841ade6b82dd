package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// exportCmd regenerates the tracker workbook from the current ledger.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the sea pay tracker workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		l, err := a.ledgers.Load()
		if err != nil {
			return err
		}
		path, err := a.exporter.WriteTracker(l, a.cfg.Paths.TrackerDir())
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild MEMBER_KEY",
	Short: "Re-apply overrides and regenerate one member's outputs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.proc.RebuildMember(ctx, args[0])
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, rebuildCmd)
}
