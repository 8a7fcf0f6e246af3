// ABOUTME: Search command for discovering datasets on a domain
// ABOUTME: Supports table and JSON output formats
package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Thomas-TyTech/Socrata-MCP/internal/config"
	"github.com/Thomas-TyTech/Socrata-MCP/internal/socrata"
)

var (
	searchLimit      int
	searchJSONOutput bool
)

var searchCmd = &cobra.Command{
	Use:     "search <domain> <keywords>",
	Aliases: []string{"s"},
	Short:   "Search datasets on a domain",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(client *socrata.Client, _ *config.Config, _ *log.Logger) error {
			datasets, err := client.SearchDatasets(cmd.Context(), args[0], args[1], searchLimit)
			if err != nil {
				return fmt.Errorf("failed to search datasets: %w", err)
			}

			out := cmd.OutOrStdout()
			if searchJSONOutput {
				return printJSON(out, datasets)
			}
			if len(datasets) == 0 {
				noteColor.Fprintf(out, "No datasets on %s match %q\n", args[0], args[1])
				return nil
			}

			rows := make([][]string, 0, len(datasets))
			for _, d := range datasets {
				rows = append(rows, []string{d.ID, clip(d.Name, 50), strconv.Itoa(d.Columns), updated(d.UpdatedAt)})
			}
			return printTable(out, []string{"ID", "NAME", "COLUMNS", "UPDATED"}, rows)
		})
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", socrata.DefaultSearchLimit, "Maximum results")
	searchCmd.Flags().BoolVar(&searchJSONOutput, "json", false, "Output as JSON")
	rootCmd.AddCommand(searchCmd)
}
