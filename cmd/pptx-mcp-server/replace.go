package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shjanjua/pptx-mcp-server/replace"
)

var replaceCmd = &cobra.Command{
	Use:   "replace",
	Short: "Apply text replacements addressed by inventory IDs",
	RunE:  runReplace,
}

var (
	replaceFilePath   string
	replaceSpecPath   string
	replaceOutputPath string
	replaceKeepOthers bool
)

func init() {
	replaceCmd.Flags().StringVarP(&replaceFilePath, "file", "f", "", "Path to the source .pptx file (required)")
	replaceCmd.Flags().StringVarP(&replaceSpecPath, "spec", "s", "", "Path to the JSON replacement mapping (required)")
	replaceCmd.Flags().StringVarP(&replaceOutputPath, "output", "o", "", "Output .pptx path (required)")
	replaceCmd.Flags().BoolVar(&replaceKeepOthers, "keep-unspecified", false, "Keep text in shapes the mapping does not mention")

	for _, flag := range []string{"file", "spec", "output"} {
		if err := replaceCmd.MarkFlagRequired(flag); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", flag, err))
		}
	}

	rootCmd.AddCommand(replaceCmd)
}

func runReplace(cmd *cobra.Command, _ []string) error {
	raw, err := os.ReadFile(replaceSpecPath)
	if err != nil {
		return fmt.Errorf("read replacement mapping: %w", err)
	}
	if err := replace.ApplyFile(replaceFilePath, raw, replaceOutputPath, !replaceKeepOthers); err != nil {
		return err
	}
	cmd.Printf("wrote %s\n", replaceOutputPath)
	return nil
}
