// ABOUTME: Query command for running SoQL against a dataset
// ABOUTME: Prints rows as a table, JSON, or the raw CSV/GeoJSON body
package cli

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Thomas-TyTech/Socrata-MCP/internal/config"
	"github.com/Thomas-TyTech/Socrata-MCP/internal/socrata"
)

var (
	queryLimit      int
	queryFormat     string
	queryJSONOutput bool
)

var queryCmd = &cobra.Command{
	Use:     "query <domain> <dataset_id> [soql]",
	Aliases: []string{"q"},
	Short:   "Run a SoQL query against a dataset",
	Example: `  socrata-mcp query data.cityofchicago.org ijzp-q8t2 "SELECT primary_type, count(*) GROUP BY primary_type"`,
	Args:    cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		soql := ""
		if len(args) == 3 {
			soql = args[2]
		}

		return withClient(func(client *socrata.Client, _ *config.Config, _ *log.Logger) error {
			result, err := client.Query(cmd.Context(), args[0], args[1], soql, queryLimit, queryFormat)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case result.IsRaw():
				_, err = fmt.Fprint(out, result.Raw)
				return err
			case queryJSONOutput:
				return printJSON(out, result)
			}

			if err := printTable(out, rowColumns(result.Data), rowCells(result.Data)); err != nil {
				return err
			}
			noteColor.Fprintf(cmd.ErrOrStderr(), "%s rows in %.1fms: %s\n",
				humanize.Comma(int64(result.TotalRows)), result.ExecutionTimeMS, result.Query)
			return nil
		})
	},
}

// rowColumns is the sorted union of keys across rows.
func rowColumns(rows []map[string]any) []string {
	seen := map[string]bool{}
	var cols []string
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)
	return cols
}

func rowCells(rows []map[string]any) [][]string {
	cols := rowColumns(rows)
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			if v, ok := row[c]; ok && v != nil {
				cells[i] = clip(fmt.Sprint(v), 40)
			}
		}
		out = append(out, cells)
	}
	return out
}

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", socrata.DefaultQueryLimit, "Row limit appended when the query has none")
	queryCmd.Flags().StringVarP(&queryFormat, "format", "f", socrata.FormatJSON, "Output format: json, csv, geojson")
	queryCmd.Flags().BoolVar(&queryJSONOutput, "json", false, "Output as JSON")
	rootCmd.AddCommand(queryCmd)
}
