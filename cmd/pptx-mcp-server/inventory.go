package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shjanjua/pptx-mcp-server/inventory"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Print the text inventory of a deck as JSON",
	RunE:  runInventory,
}

var (
	inventoryFilePath   string
	inventoryIssuesOnly bool
)

func init() {
	inventoryCmd.Flags().StringVarP(&inventoryFilePath, "file", "f", "", "Path to the .pptx file (required)")
	inventoryCmd.Flags().BoolVar(&inventoryIssuesOnly, "issues-only", false, "Only report shapes with overflow, overlap or warnings")

	if err := inventoryCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}

	rootCmd.AddCommand(inventoryCmd)
}

func runInventory(cmd *cobra.Command, _ []string) error {
	inv, err := inventory.ExtractFile(inventoryFilePath, inventory.Options{IssuesOnly: inventoryIssuesOnly})
	if err != nil {
		return err
	}
	data, err := inv.MarshalIndent()
	if err != nil {
		return err
	}
	cmd.Println(string(data))
	return nil
}
