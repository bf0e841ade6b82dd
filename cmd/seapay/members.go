package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/night-owl-018/seapay-certifier/internal/classify"
	"github.com/night-owl-018/seapay-certifier/internal/ledger"
)

// membersCmd lists the members currently in the review ledger.
var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "List members in the review ledger",
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

		keys := make([]string, 0, len(l.Members))
		for k := range l.Members {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MEMBER\tSHEETS\tVALID\tINVALID\tTOTAL DAYS")
		for _, k := range keys {
			m := l.Members[k]
			var rows, invalid []ledger.Event
			for _, s := range m.Sheets {
				rows = append(rows, s.Rows...)
				invalid = append(invalid, s.InvalidEvents...)
			}
			days := classify.TotalDays(classify.GroupByShip(rows))
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", k, len(m.Sheets), len(rows), len(invalid), days)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(membersCmd)
}
