package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch the sheet now, bypassing caches",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "fetch")
		if err != nil {
			return err
		}
		defer env.Close()

		res := env.Pipeline.Refresh(ctx, env.Session)
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, res)
		}

		formatResultHeader(os.Stdout, res)
		formatAttempts(os.Stdout, res.Attempts)
		fmt.Fprintf(os.Stdout, "\n%d tower(s)\n", len(res.Towers))
		return nil
	},
}

func init() {
	refreshCmd.Flags().Bool("json", false, "print the batch as JSON")
	rootCmd.AddCommand(refreshCmd)
}
