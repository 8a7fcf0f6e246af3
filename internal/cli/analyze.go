// ABOUTME: Analyze command for descriptive statistics over query results
// ABOUTME: Prints the insights of a summary, trends, correlations, or anomalies pass
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Thomas-TyTech/Socrata-MCP/internal/analysis"
	"github.com/Thomas-TyTech/Socrata-MCP/internal/config"
	"github.com/Thomas-TyTech/Socrata-MCP/internal/socrata"
)

var (
	analyzeType       string
	analyzeJSONOutput bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <domain> <dataset_id> [soql]",
	Short: "Analyze query results statistically",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := analysis.ParseKind(analyzeType)
		if err != nil {
			return err
		}
		soql := ""
		if len(args) == 3 {
			soql = args[2]
		}

		return withClient(func(client *socrata.Client, _ *config.Config, _ *log.Logger) error {
			report, err := client.AnalyzeData(cmd.Context(), args[0], args[1], soql, kind)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if analyzeJSONOutput {
				return printJSON(out, report)
			}

			headerColor.Fprintf(out, "%s analysis\n", report.AnalysisType)
			if report.Message != "" {
				noteColor.Fprintln(out, report.Message)
			}
			if report.DataShape != nil {
				printField(out, "Shape", fmt.Sprintf("%d rows x %d columns", report.DataShape.Rows, report.DataShape.Columns))
			}
			for _, insight := range report.Insights {
				fmt.Fprintf(out, "  - %s\n", insight)
			}
			return nil
		})
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeType, "type", "t", string(analysis.Summary),
		"Analysis type: "+strings.Join(analysis.Kinds(), ", "))
	analyzeCmd.Flags().BoolVar(&analyzeJSONOutput, "json", false, "Output as JSON")
	rootCmd.AddCommand(analyzeCmd)
}
