package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shjanjua/pptx-mcp-server/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP over stdio",
	Long:  "Reads newline-delimited JSON-RPC 2.0 requests on stdin and writes responses on stdout. Logs go to stderr so they never corrupt the protocol stream.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	// Serving is the default when invoked without a subcommand, which
	// is how MCP clients launch the binary.
	rootCmd.RunE = runServe
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.New(os.Stderr, "pptx-mcp-server: ", log.LstdFlags)
	return server.New(os.Stdin, os.Stdout, logger).Run(ctx)
}
