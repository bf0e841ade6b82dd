package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var strikeColorFlag string

// processCmd runs a full batch over the inbox.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process every certification sheet in the data directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if strikeColorFlag != "" {
			viper.Set("processing.strike_color", strikeColorFlag)
		}
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		return a.proc.ProcessBatch(ctx)
	},
}

func init() {
	processCmd.Flags().StringVar(&strikeColorFlag, "color", "", "strike line color: black or red")
	rootCmd.AddCommand(processCmd)
}
