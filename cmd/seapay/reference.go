package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/night-owl-018/seapay-certifier/internal/reference"
)

// seedCmd loads the reference files into the database so later runs do not
// need the files on disk.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the ship list and roster files into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		ships, err := reference.LoadShipIndex(a.cfg.Paths.ShipFile, a.cfg.Processing.ShipMatchMin)
		if err != nil {
			return err
		}
		roster, err := reference.LoadRoster(a.cfg.Paths.RosterFile, a.cfg.Processing.IdentityMatchMin)
		if err != nil {
			return err
		}
		if err := a.refRepo.ReplaceShips(ctx, ships.Names()); err != nil {
			return err
		}
		if err := a.refRepo.ReplaceRoster(ctx, roster.Entries()); err != nil {
			return err
		}
		fmt.Printf("seeded %d ships, %d roster entries\n", len(ships.Names()), len(roster.Entries()))
		return nil
	},
}

// reloadCmd re-reads the reference files, replacing whatever is loaded.
var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload reference data from the seed files",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return a.refs.Reload()
	},
}

func init() {
	rootCmd.AddCommand(seedCmd, reloadCmd)
}
