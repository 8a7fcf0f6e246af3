// ABOUTME: Ask command for natural-language questions about a dataset
// ABOUTME: Shows the generated SoQL and, unless --dry-run, its results
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Thomas-TyTech/Socrata-MCP/internal/config"
	"github.com/Thomas-TyTech/Socrata-MCP/internal/socrata"
)

var (
	askDryRun     bool
	askJSONOutput bool
)

var askCmd = &cobra.Command{
	Use:     "ask <domain> <dataset_id> <question...>",
	Short:   "Turn a question into SoQL and run it",
	Example: `  socrata-mcp ask data.cityofchicago.org ijzp-q8t2 how many crimes were reported`,
	Args:    cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args[2:], " ")

		return withClient(func(client *socrata.Client, _ *config.Config, _ *log.Logger) error {
			result, err := client.NaturalLanguageQuery(cmd.Context(), args[0], args[1], question, !askDryRun)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if askJSONOutput {
				return printJSON(out, result)
			}

			labelColor.Fprint(out, "Query: ")
			queryColor.Fprintln(out, result.GeneratedQuery)
			if result.Results == nil {
				return nil
			}

			fmt.Fprintln(out)
			if err := printTable(out, rowColumns(result.Results.Data), rowCells(result.Results.Data)); err != nil {
				return err
			}
			noteColor.Fprintf(cmd.ErrOrStderr(), "%s rows\n", humanize.Comma(int64(result.Results.TotalRows)))
			return nil
		})
	},
}

func init() {
	askCmd.Flags().BoolVar(&askDryRun, "dry-run", false, "Only print the generated query")
	askCmd.Flags().BoolVar(&askJSONOutput, "json", false, "Output as JSON")
	rootCmd.AddCommand(askCmd)
}
