package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/night-owl-018/seapay-certifier/internal/common"
)

// statusCmd reports the most recent batch run.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the latest batch run",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		run, err := a.runs.Latest(ctx)
		if errors.Is(err, common.ErrNotFound) {
			fmt.Println("no runs recorded")
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("run:       %s\n", run.ID)
		fmt.Printf("status:    %s\n", run.Status)
		fmt.Printf("started:   %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
		if run.FinishedAt.Valid {
			fmt.Printf("finished:  %s\n", run.FinishedAt.Time.Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("files:     %d (processed %d, failed %d)\n", run.TotalFiles, run.Processed, run.Failed)
		if run.Message != "" {
			fmt.Printf("message:   %s\n", run.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
