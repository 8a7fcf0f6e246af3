// ABOUTME: socrata-mcp CLI - Entry point for the Socrata Open Data MCP server
// ABOUTME: Initializes CLI and routes commands
package main

import (
	"fmt"
	"os"

	"github.com/Thomas-TyTech/Socrata-MCP/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
