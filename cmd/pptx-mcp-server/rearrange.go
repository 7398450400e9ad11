package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shjanjua/pptx-mcp-server/rearrange"
)

var rearrangeCmd = &cobra.Command{
	Use:   "rearrange",
	Short: "Reorder, duplicate or drop slides by index sequence",
	Long:  "The sequence lists zero-based source slide indices for the new deck in order. Indices may repeat to duplicate a slide and may be omitted to drop one, e.g. \"2,0,2\".",
	RunE:  runRearrange,
}

var (
	rearrangeFilePath   string
	rearrangeSequence   string
	rearrangeOutputPath string
)

func init() {
	rearrangeCmd.Flags().StringVarP(&rearrangeFilePath, "file", "f", "", "Path to the source .pptx file (required)")
	rearrangeCmd.Flags().StringVar(&rearrangeSequence, "sequence", "", "Comma-separated zero-based slide indices (required)")
	rearrangeCmd.Flags().StringVarP(&rearrangeOutputPath, "output", "o", "", "Output .pptx path (required)")

	for _, flag := range []string{"file", "sequence", "output"} {
		if err := rearrangeCmd.MarkFlagRequired(flag); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", flag, err))
		}
	}

	rootCmd.AddCommand(rearrangeCmd)
}

func runRearrange(cmd *cobra.Command, _ []string) error {
	if err := rearrange.ApplyFile(rearrangeFilePath, rearrangeSequence, rearrangeOutputPath); err != nil {
		return err
	}
	cmd.Printf("wrote %s\n", rearrangeOutputPath)
	return nil
}
