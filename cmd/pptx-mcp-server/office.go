package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shjanjua/pptx-mcp-server/ooxml"
)

var unpackCmd = &cobra.Command{
	Use:   "unpack",
	Short: "Extract an Office document with pretty-printed XML",
	RunE:  runUnpack,
}

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Rebuild an Office document from an unpacked directory",
	RunE:  runPack,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run structural checks over an unpacked document tree",
	RunE:  runValidate,
}

var (
	unpackFilePath  string
	unpackOutputDir string

	packInputDir   string
	packOutputPath string
	packProbe      bool
	packForce      bool

	validateDir     string
	validateDocType string
)

func init() {
	unpackCmd.Flags().StringVarP(&unpackFilePath, "file", "f", "", "Path to the .docx, .pptx or .xlsx file (required)")
	unpackCmd.Flags().StringVarP(&unpackOutputDir, "output-dir", "o", "", "Directory to extract into (required)")
	for _, flag := range []string{"file", "output-dir"} {
		if err := unpackCmd.MarkFlagRequired(flag); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", flag, err))
		}
	}

	packCmd.Flags().StringVarP(&packInputDir, "input-dir", "i", "", "Unpacked document directory (required)")
	packCmd.Flags().StringVarP(&packOutputPath, "output", "o", "", "Output document path (required)")
	packCmd.Flags().BoolVar(&packProbe, "probe", false, "Verify the result converts with LibreOffice")
	packCmd.Flags().BoolVar(&packForce, "force", false, "Keep the output even if the probe fails")
	for _, flag := range []string{"input-dir", "output"} {
		if err := packCmd.MarkFlagRequired(flag); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", flag, err))
		}
	}

	validateCmd.Flags().StringVarP(&validateDir, "dir", "d", "", "Unpacked document directory (required)")
	validateCmd.Flags().StringVarP(&validateDocType, "type", "t", "", "Original document type: .docx, .pptx or .xlsx (required)")
	for _, flag := range []string{"dir", "type"} {
		if err := validateCmd.MarkFlagRequired(flag); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", flag, err))
		}
	}

	rootCmd.AddCommand(unpackCmd, packCmd, validateCmd)
}

func runUnpack(cmd *cobra.Command, _ []string) error {
	res, err := ooxml.Unpack(unpackFilePath, unpackOutputDir)
	if err != nil {
		return err
	}
	cmd.Printf("unpacked %d files (%d XML parts formatted) into %s\n", res.FileCount, res.FormattedXML, res.OutputDir)
	if res.RSIDSuggested != "" {
		cmd.Printf("suggested rsid for this editing session: %s\n", res.RSIDSuggested)
	}
	return nil
}

func runPack(cmd *cobra.Command, _ []string) error {
	if err := ooxml.Pack(packInputDir, packOutputPath, ooxml.PackOptions{Probe: packProbe, Force: packForce}); err != nil {
		return err
	}
	cmd.Printf("wrote %s\n", packOutputPath)
	return nil
}

func runValidate(cmd *cobra.Command, _ []string) error {
	checks, err := ooxml.Validate(validateDir, validateDocType)
	if err != nil {
		return err
	}
	report := struct {
		AllPassed bool                `json:"all_passed"`
		Checks    []ooxml.CheckResult `json:"checks"`
	}{ooxml.AllPassed(checks), checks}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(data))
	if !report.AllPassed {
		return fmt.Errorf("validation failed")
	}
	return nil
}
