package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/towerdash/internal/parse"
	"github.com/sells-group/towerdash/internal/sheetfile"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Map a local spreadsheet export into towers",
	Long:  "Reads an .xlsx, .csv or saved values API .json file and reports the towers it maps to, the rows it skips, and the fields filled with defaults. Nothing is fetched or cached.",
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		if f, _ := cmd.Flags().GetString("file"); f == "" {
			return eris.New("--file is required")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("file")
		sheet, _ := cmd.Flags().GetString("sheet")
		asJSON, _ := cmd.Flags().GetBool("json")

		grid, err := sheetfile.Read(path, sheetfile.Options{Sheet: sheet})
		if err != nil {
			return eris.Wrap(err, "parse")
		}

		res := parse.MapGrid(grid)
		if asJSON {
			return writeJSON(os.Stdout, res)
		}

		layout := "header"
		if res.Legacy {
			layout = "legacy positional"
		}
		fmt.Fprintf(os.Stdout, "%s: %d data row(s), %s layout\n\n", path, max(len(grid)-1, 0), layout)
		formatTowersList(os.Stdout, res.Towers)
		formatSkipped(os.Stdout, res.Skipped)
		return nil
	},
}

func init() {
	parseCmd.Flags().String("file", "", "spreadsheet export to read (.xlsx, .csv, .json)")
	parseCmd.Flags().String("sheet", "", "worksheet name for .xlsx files (default first sheet)")
	parseCmd.Flags().Bool("json", false, "print the mapping result as JSON")
	rootCmd.AddCommand(parseCmd)
}
