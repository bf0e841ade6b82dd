package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/night-owl-018/seapay-certifier/internal/repository"
)

var (
	ovMember string
	ovSheet  string
	ovIndex  int
	ovStatus string
	ovReason string
)

// overrideCmd groups the reviewer correction commands.
var overrideCmd = &cobra.Command{
	Use:   "override",
	Short: "Manage reviewer corrections",
}

var overrideSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save a correction and rebuild the member's outputs",
	Long: `Save a correction for one extracted event. Positive --index addresses the
accepted rows; a negative index -(i+1) addresses entry i of the invalid
events. The member's ledger, marked sheets and summaries are rebuilt
immediately.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		// capture the target's signature so the correction survives
		// re-extraction moving the event
		signature := ""
		if l, err := a.ledgers.Load(); err == nil {
			if m, ok := l.Members[ovMember]; ok {
				if sheet := m.SheetByFile(ovSheet); sheet != nil {
					idx, invalid := ovIndex, false
					if idx < 0 {
						idx, invalid = -idx-1, true
					}
					if invalid && idx < len(sheet.InvalidEvents) {
						signature = sheet.InvalidEvents[idx].Signature()
					} else if !invalid && idx < len(sheet.Rows) {
						signature = sheet.Rows[idx].Signature()
					}
				}
			}
		}

		rec := repository.OverrideRecord{
			MemberKey:  ovMember,
			SheetFile:  ovSheet,
			EventIndex: ovIndex,
			Reason:     ovReason,
			Signature:  signature,
		}
		if err := a.overrides.Save(ctx, rec, ovStatus); err != nil {
			return err
		}
		return a.proc.RebuildMember(ctx, ovMember)
	},
}

var overrideClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all corrections for a member and rebuild",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.overrides.Clear(ctx, ovMember)
		if err != nil {
			return err
		}
		fmt.Printf("removed %d overrides for %s\n", n, ovMember)
		if n == 0 {
			return nil
		}
		return a.proc.RebuildMember(ctx, ovMember)
	},
}

var overrideListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored corrections for a member",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		recs, err := a.overrides.List(ctx, ovMember)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SHEET\tINDEX\tSTATUS\tREASON\tUPDATED")
		for _, r := range recs {
			status := "invalid"
			if r.MakeValid {
				status = "valid"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
				r.SheetFile, r.EventIndex, status, r.Reason,
				r.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	overrideCmd.PersistentFlags().StringVar(&ovMember, "member", "", "member key, e.g. \"STG1 SMITH,JOHN\"")
	_ = overrideCmd.MarkPersistentFlagRequired("member")

	overrideSetCmd.Flags().StringVar(&ovSheet, "sheet", "", "source sheet file name")
	overrideSetCmd.Flags().IntVar(&ovIndex, "index", 0, "event index (negative addresses invalid events)")
	overrideSetCmd.Flags().StringVar(&ovStatus, "status", "", "target status: valid or invalid")
	overrideSetCmd.Flags().StringVar(&ovReason, "reason", "", "reviewer note")
	_ = overrideSetCmd.MarkFlagRequired("sheet")
	_ = overrideSetCmd.MarkFlagRequired("status")

	overrideCmd.AddCommand(overrideSetCmd, overrideClearCmd, overrideListCmd)
	rootCmd.AddCommand(overrideCmd)
}
