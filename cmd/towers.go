package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/towerdash/internal/pipeline"
)

var towersCmd = &cobra.Command{
	Use:   "towers",
	Short: "List tower investment opportunities",
	Long:  "Fetches the tower batch (persisted cache, live sheet, then demonstration data) and prints it with its provenance.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "fetch")
		if err != nil {
			return err
		}
		defer env.Close()

		skip, _ := cmd.Flags().GetBool("skip-cache")
		asJSON, _ := cmd.Flags().GetBool("json")

		res := env.Pipeline.Fetch(ctx, env.Session, pipeline.Options{SkipCache: skip})
		if asJSON {
			return writeJSON(os.Stdout, res)
		}

		formatResultHeader(os.Stdout, res)
		formatTowersList(os.Stdout, res.Towers)
		return nil
	},
}

func init() {
	towersCmd.Flags().Bool("skip-cache", false, "bypass the persisted cache and fetch from the sheet")
	towersCmd.Flags().Bool("json", false, "print the batch as JSON")
	rootCmd.AddCommand(towersCmd)
}
