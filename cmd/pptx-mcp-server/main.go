// Package main provides the entry point for the PPTX MCP server and
// its companion CLI commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pptx-mcp-server",
	Short: "PowerPoint authoring and inspection tools over MCP",
	Long:  "pptx-mcp-server builds, inspects and edits PPTX decks. Run it with no arguments (or with serve) to speak MCP over stdio, or use the subcommands to invoke each tool directly.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
