// ABOUTME: Root command definition and CLI setup
// ABOUTME: Handles global flags, config loading, and default subcommand injection
package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Thomas-TyTech/Socrata-MCP/internal/config"
	"github.com/Thomas-TyTech/Socrata-MCP/internal/logging"
	"github.com/Thomas-TyTech/Socrata-MCP/internal/socrata"
)

// defaultCommand runs when the binary is started without arguments, which is
// how MCP hosts launch it.
const defaultCommand = "mcp"

var (
	configPath string
	logLevel   string
	appToken   string
)

// clientOptions are appended to every client the CLI builds.
var clientOptions []socrata.Option

var rootCmd = &cobra.Command{
	Use:   "socrata-mcp",
	Short: "Socrata Open Data MCP server",
	Long: `socrata-mcp exposes Socrata open data portals (data.cityofchicago.org, data.seattle.gov, ...)
to AI assistants over the Model Context Protocol, and queries them from the terminal.`,
	SilenceUsage: true,
}

func Execute() error {
	os.Args = withDefaultCommand(os.Args)
	return rootCmd.Execute()
}

// withDefaultCommand injects the mcp subcommand when no arguments are given.
func withDefaultCommand(args []string) []string {
	if len(args) == 1 {
		return append(args, defaultCommand)
	}
	return args
}

// setup loads the effective configuration and builds the logger.
func setup() (*config.Config, *log.Logger, error) {
	if err := config.LoadEnvFile(".env"); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if appToken != "" {
		cfg.AppToken = appToken
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newClient(cfg *config.Config, logger *log.Logger) *socrata.Client {
	opts := []socrata.Option{
		socrata.WithAppToken(cfg.AppToken),
		socrata.WithTimeout(cfg.Timeout),
		socrata.WithUserAgent(cfg.UserAgent),
		socrata.WithRateLimit(cfg.RateLimit),
		socrata.WithLogger(logger),
	}
	return socrata.NewClient(append(opts, clientOptions...)...)
}

// withClient runs fn with a configured client and closes it afterwards.
func withClient(fn func(c *socrata.Client, cfg *config.Config, logger *log.Logger) error) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	client := newClient(cfg, logger)
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close client: %v\n", closeErr)
		}
	}()
	return fn(client, cfg, logger)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/socrata-mcp/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&appToken, "app-token", "", "Socrata application token (overrides "+config.EnvAppToken+")")
}
