package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var towerCmd = &cobra.Command{
	Use:   "tower <id>",
	Short: "Show one tower in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "fetch")
		if err != nil {
			return err
		}
		defer env.Close()

		tower, res := env.Pipeline.FindTower(ctx, env.Session, args[0])
		if tower == nil {
			return eris.Errorf("tower %q not found in %s batch", args[0], res.Source)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, tower)
		}

		fmt.Fprintf(os.Stdout, "Source: %s (%s)\n\n", res.Source, res.Tier)
		formatTowerDetail(os.Stdout, *tower)
		return nil
	},
}

func init() {
	towerCmd.Flags().Bool("json", false, "print the tower as JSON")
	rootCmd.AddCommand(towerCmd)
}
