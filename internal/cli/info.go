// ABOUTME: Info command for showing dataset metadata
// ABOUTME: Prints name, counts, timestamps, and the column schema
package cli

import (
	"fmt"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Thomas-TyTech/Socrata-MCP/internal/config"
	"github.com/Thomas-TyTech/Socrata-MCP/internal/socrata"
)

var infoJSONOutput bool

var infoCmd = &cobra.Command{
	Use:   "info <domain> <dataset_id>",
	Short: "Show dataset metadata and columns",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(client *socrata.Client, _ *config.Config, _ *log.Logger) error {
			info, err := client.GetDatasetInfo(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if infoJSONOutput {
				return printJSON(out, info)
			}

			headerColor.Fprintln(out, info.Name)
			printField(out, "ID", info.ID)
			printField(out, "Description", clip(info.Description, 200))
			printField(out, "Category", info.Category)
			printField(out, "Tags", strings.Join(info.Tags, ", "))
			printField(out, "Owner", info.Owner)
			printField(out, "Attribution", info.Attribution)
			if info.Rows > 0 {
				printField(out, "Rows", humanize.Comma(info.Rows))
			}
			printField(out, "Created", updated(info.CreatedAt))
			printField(out, "Updated", updated(info.UpdatedAt))
			fmt.Fprintln(out)

			rows := make([][]string, 0, len(info.Columns))
			for _, c := range info.Columns {
				rows = append(rows, []string{c.FieldName, c.DataType, clip(c.Name, 40)})
			}
			return printTable(out, []string{"FIELD", "TYPE", "NAME"}, rows)
		})
	},
}

// updated renders a timestamp as "2024-01-02 (3 months ago)".
func updated(ts string) string {
	if ts == "" {
		return ""
	}
	t, err := dateparse.ParseAny(ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02") + " (" + humanize.Time(t) + ")"
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSONOutput, "json", false, "Output as JSON")
	rootCmd.AddCommand(infoCmd)
}
