// ABOUTME: MCP subcommand for running the socrata MCP server
// ABOUTME: Serves stdio by default or streamable HTTP with --http
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Thomas-TyTech/Socrata-MCP/internal/config"
	"github.com/Thomas-TyTech/Socrata-MCP/internal/mcp"
	"github.com/Thomas-TyTech/Socrata-MCP/internal/socrata"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the socrata MCP server",
	Long:  `Start the Model Context Protocol server for AI assistants over stdio, or over streamable HTTP with --http.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withClient(func(client *socrata.Client, cfg *config.Config, logger *log.Logger) error {
			logger.Info("starting socrata MCP server", "version", config.Version, "app_token", client.HasToken())

			server := mcp.NewServer(client, mcp.Options{
				MaxResponseBytes: cfg.MaxResponseBytes,
				TruncateItems:    cfg.TruncateItems,
				SearchTimeout:    cfg.SearchTimeout,
				Logger:           logger,
			})

			if mcpHTTPAddr != "" {
				return server.RunHTTP(ctx, mcpHTTPAddr)
			}
			return server.Run(ctx)
		})
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "Serve streamable HTTP on this address instead of stdio (e.g. 127.0.0.1:8080)")
	rootCmd.AddCommand(mcpCmd)
}
