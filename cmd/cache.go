package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the persisted tower cache",
}

// -- cache clear --

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the cached batch and fetch diagnostics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "fetch")
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Pipeline.ClearCache(ctx, env.Session); err != nil {
			return eris.Wrap(err, "cache clear")
		}
		fmt.Fprintln(os.Stderr, "Cache cleared.")
		return nil
	},
}

// -- cache show --

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cache contents and fetch diagnostics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "fetch")
		if err != nil {
			return err
		}
		defer env.Close()

		d, err := env.Pipeline.Diagnostics(ctx, env.Session)
		if err != nil {
			return eris.Wrap(err, "cache show")
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, d)
		}
		formatDiagnostics(os.Stdout, d)
		return nil
	},
}

func init() {
	cacheShowCmd.Flags().Bool("json", false, "print diagnostics as JSON")
	cacheCmd.AddCommand(cacheClearCmd, cacheShowCmd)
	rootCmd.AddCommand(cacheCmd)
}
