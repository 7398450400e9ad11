package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shjanjua/pptx-mcp-server/thumbnail"
)

var thumbnailsCmd = &cobra.Command{
	Use:   "thumbnails",
	Short: "Render a deck to labeled thumbnail grid images",
	Long:  "Renders every slide through LibreOffice and a PDF rasterizer, then composes grid images of up to 60 thumbnails with slide number captions.",
	RunE:  runThumbnails,
}

var (
	thumbnailsFilePath  string
	thumbnailsOutputDir string
	thumbnailsOutline   bool
)

func init() {
	thumbnailsCmd.Flags().StringVarP(&thumbnailsFilePath, "file", "f", "", "Path to the .pptx file (required)")
	thumbnailsCmd.Flags().StringVarP(&thumbnailsOutputDir, "output-dir", "o", "", "Directory for the grid images (required)")
	thumbnailsCmd.Flags().BoolVar(&thumbnailsOutline, "outline-text", false, "Outline non-empty text shapes in red")

	for _, flag := range []string{"file", "output-dir"} {
		if err := thumbnailsCmd.MarkFlagRequired(flag); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", flag, err))
		}
	}

	rootCmd.AddCommand(thumbnailsCmd)
}

func runThumbnails(cmd *cobra.Command, _ []string) error {
	grids, err := thumbnail.CreateGrids(cmd.Context(), thumbnailsFilePath, thumbnailsOutputDir, thumbnail.Options{
		OutlineTextShapes: thumbnailsOutline,
	})
	if err != nil {
		return err
	}
	cmd.Printf("wrote %d grid image(s): %s\n", len(grids), strings.Join(grids, ", "))
	return nil
}
