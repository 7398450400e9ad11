package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shjanjua/pptx-mcp-server/compose"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a PPTX file from a JSON slide specification",
	RunE:  runCreate,
}

var (
	createSpecPath   string
	createOutputPath string
)

func init() {
	createCmd.Flags().StringVarP(&createSpecPath, "spec", "s", "", "Path to the JSON specification (required)")
	createCmd.Flags().StringVarP(&createOutputPath, "output", "o", "", "Output .pptx path (required)")

	if err := createCmd.MarkFlagRequired("spec"); err != nil {
		panic(fmt.Sprintf("failed to mark spec flag as required: %v", err))
	}
	if err := createCmd.MarkFlagRequired("output"); err != nil {
		panic(fmt.Sprintf("failed to mark output flag as required: %v", err))
	}

	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, _ []string) error {
	raw, err := os.ReadFile(createSpecPath)
	if err != nil {
		return fmt.Errorf("read specification: %w", err)
	}
	pres, err := compose.CreateFile(raw, createOutputPath)
	if err != nil {
		return err
	}
	cmd.Printf("created %s with %d slides\n", createOutputPath, pres.SlideCount())
	return nil
}
