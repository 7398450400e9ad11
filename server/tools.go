package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/shjanjua/pptx-mcp-server/compose"
	"github.com/shjanjua/pptx-mcp-server/inventory"
	"github.com/shjanjua/pptx-mcp-server/ooxml"
	"github.com/shjanjua/pptx-mcp-server/rearrange"
	"github.com/shjanjua/pptx-mcp-server/replace"
	"github.com/shjanjua/pptx-mcp-server/thumbnail"
)

// Tool is one callable MCP tool. Arguments are validated against
// InputSchema before the handler runs.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`

	Handler func(ctx context.Context, args json.RawMessage) (*toolResult, error) `json:"-"`

	compileOnce sync.Once
	schema      *gojsonschema.Schema
	compileErr  error
}

func (t *Tool) checkArguments(args json.RawMessage) error {
	t.compileOnce.Do(func() {
		t.schema, t.compileErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(t.InputSchema))
	})
	if t.compileErr != nil {
		return fmt.Errorf("tool %s schema: %w", t.Name, t.compileErr)
	}
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	result, err := t.schema.Validate(gojsonschema.NewBytesLoader(args))
	if err != nil {
		return fmt.Errorf("tool %s arguments: %w", t.Name, err)
	}
	if !result.Valid() {
		var problems []string
		for _, e := range result.Errors() {
			problems = append(problems, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
		}
		return fmt.Errorf("invalid arguments for %s: %s", t.Name, strings.Join(problems, "; "))
	}
	return nil
}

// Registry holds the tool set in registration order.
type Registry struct {
	order  []*Tool
	byName map[string]*Tool
}

func NewRegistry(tools ...*Tool) *Registry {
	r := &Registry{byName: make(map[string]*Tool, len(tools))}
	for _, t := range tools {
		r.order = append(r.order, t)
		r.byName[t.Name] = t
	}
	return r
}

func (r *Registry) List() []*Tool { return r.order }

func (r *Registry) Get(name string) *Tool { return r.byName[name] }

// DefaultRegistry wires up the full tool set.
func DefaultRegistry() *Registry {
	return NewRegistry(
		createPresentationTool(),
		extractInventoryTool(),
		applyReplacementsTool(),
		rearrangeSlidesTool(),
		thumbnailGridTool(),
		unpackTool(),
		packTool(),
		validateTool(),
	)
}

func createPresentationTool() *Tool {
	return &Tool{
		Name:        "create_presentation",
		Description: "Create a PPTX file from a declarative JSON slide specification.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"spec": {"type": "object", "description": "Presentation specification with layout and slides"},
				"output_path": {"type": "string", "description": "Where to write the .pptx file"}
			},
			"required": ["spec", "output_path"],
			"additionalProperties": false
		}`),
		Handler: func(ctx context.Context, args json.RawMessage) (*toolResult, error) {
			var p struct {
				Spec       json.RawMessage `json:"spec"`
				OutputPath string          `json:"output_path"`
			}
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, err
			}
			pres, err := compose.CreateFile(p.Spec, p.OutputPath)
			if err != nil {
				return nil, err
			}
			return textResult(fmt.Sprintf("created %s with %d slides", p.OutputPath, pres.SlideCount())), nil
		},
	}
}

func extractInventoryTool() *Tool {
	return &Tool{
		Name:        "extract_text_inventory",
		Description: "Extract text shapes from a deck in reading order, with overflow and overlap diagnostics, as JSON keyed by slide and shape IDs.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"file_path": {"type": "string", "description": "Path to the .pptx file"},
				"issues_only": {"type": "boolean", "description": "Only report shapes with overflow, overlap or warnings"}
			},
			"required": ["file_path"],
			"additionalProperties": false
		}`),
		Handler: func(ctx context.Context, args json.RawMessage) (*toolResult, error) {
			var p struct {
				FilePath   string `json:"file_path"`
				IssuesOnly bool   `json:"issues_only"`
			}
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, err
			}
			inv, err := inventory.ExtractFile(p.FilePath, inventory.Options{IssuesOnly: p.IssuesOnly})
			if err != nil {
				return nil, err
			}
			data, err := inv.MarshalIndent()
			if err != nil {
				return nil, err
			}
			return textResult(string(data)), nil
		},
	}
}

func applyReplacementsTool() *Tool {
	return &Tool{
		Name:        "apply_text_replacements",
		Description: "Replace paragraph text in shapes addressed by the slide and shape IDs reported by extract_text_inventory.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"file_path": {"type": "string", "description": "Path to the source .pptx file"},
				"replacements": {"type": "object", "description": "slide-N to shape-N to paragraph list mapping"},
				"output_path": {"type": "string", "description": "Where to write the modified deck"},
				"clear_unspecified": {"type": "boolean", "description": "Clear text shapes not mentioned in replacements (default true)"}
			},
			"required": ["file_path", "replacements", "output_path"],
			"additionalProperties": false
		}`),
		Handler: func(ctx context.Context, args json.RawMessage) (*toolResult, error) {
			var p struct {
				FilePath         string          `json:"file_path"`
				Replacements     json.RawMessage `json:"replacements"`
				OutputPath       string          `json:"output_path"`
				ClearUnspecified *bool           `json:"clear_unspecified"`
			}
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, err
			}
			clearUnspecified := true
			if p.ClearUnspecified != nil {
				clearUnspecified = *p.ClearUnspecified
			}
			if err := replace.ApplyFile(p.FilePath, p.Replacements, p.OutputPath, clearUnspecified); err != nil {
				return nil, err
			}
			return textResult(fmt.Sprintf("wrote %s", p.OutputPath)), nil
		},
	}
}

func rearrangeSlidesTool() *Tool {
	return &Tool{
		Name:        "rearrange_slides",
		Description: "Reorder, duplicate or drop slides. The sequence lists zero-based source indices for the new deck, e.g. \"2,0,2\".",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"file_path": {"type": "string", "description": "Path to the source .pptx file"},
				"sequence": {"type": "string", "description": "Comma-separated zero-based slide indices"},
				"output_path": {"type": "string", "description": "Where to write the rearranged deck"}
			},
			"required": ["file_path", "sequence", "output_path"],
			"additionalProperties": false
		}`),
		Handler: func(ctx context.Context, args json.RawMessage) (*toolResult, error) {
			var p struct {
				FilePath   string `json:"file_path"`
				Sequence   string `json:"sequence"`
				OutputPath string `json:"output_path"`
			}
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, err
			}
			if err := rearrange.ApplyFile(p.FilePath, p.Sequence, p.OutputPath); err != nil {
				return nil, err
			}
			return textResult(fmt.Sprintf("wrote %s", p.OutputPath)), nil
		},
	}
}

func thumbnailGridTool() *Tool {
	return &Tool{
		Name:        "create_thumbnail_grid",
		Description: "Render a deck to labeled thumbnail grid images, up to 60 slides per grid. Requires LibreOffice and a PDF rasterizer.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"file_path": {"type": "string", "description": "Path to the .pptx file"},
				"output_dir": {"type": "string", "description": "Directory for the grid images"},
				"outline_text_shapes": {"type": "boolean", "description": "Outline text shapes in red"}
			},
			"required": ["file_path", "output_dir"],
			"additionalProperties": false
		}`),
		Handler: func(ctx context.Context, args json.RawMessage) (*toolResult, error) {
			var p struct {
				FilePath          string `json:"file_path"`
				OutputDir         string `json:"output_dir"`
				OutlineTextShapes bool   `json:"outline_text_shapes"`
			}
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, err
			}
			grids, err := thumbnail.CreateGrids(ctx, p.FilePath, p.OutputDir, thumbnail.Options{
				OutlineTextShapes: p.OutlineTextShapes,
			})
			if err != nil {
				return nil, err
			}
			return textResult(fmt.Sprintf("wrote %d grid image(s): %s", len(grids), strings.Join(grids, ", "))), nil
		},
	}
}

func unpackTool() *Tool {
	return &Tool{
		Name:        "unpack_office_document",
		Description: "Extract a .docx, .pptx or .xlsx archive into a directory with pretty-printed XML for inspection and editing.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"file_path": {"type": "string", "description": "Path to the Office document"},
				"output_dir": {"type": "string", "description": "Directory to extract into"}
			},
			"required": ["file_path", "output_dir"],
			"additionalProperties": false
		}`),
		Handler: func(ctx context.Context, args json.RawMessage) (*toolResult, error) {
			var p struct {
				FilePath  string `json:"file_path"`
				OutputDir string `json:"output_dir"`
			}
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, err
			}
			res, err := ooxml.Unpack(p.FilePath, p.OutputDir)
			if err != nil {
				return nil, err
			}
			msg := fmt.Sprintf("unpacked %d files (%d XML parts formatted) into %s", res.FileCount, res.FormattedXML, res.OutputDir)
			if res.RSIDSuggested != "" {
				msg += fmt.Sprintf("; suggested rsid for this editing session: %s", res.RSIDSuggested)
			}
			return textResult(msg), nil
		},
	}
}

func packTool() *Tool {
	return &Tool{
		Name:        "pack_office_document",
		Description: "Rebuild an Office document from an unpacked directory, condensing XML, with an optional LibreOffice corruption probe.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"input_dir": {"type": "string", "description": "Unpacked document directory"},
				"output_path": {"type": "string", "description": "Where to write the packed document"},
				"probe": {"type": "boolean", "description": "Verify the result converts with LibreOffice"},
				"force": {"type": "boolean", "description": "Keep the output even if the probe fails"}
			},
			"required": ["input_dir", "output_path"],
			"additionalProperties": false
		}`),
		Handler: func(ctx context.Context, args json.RawMessage) (*toolResult, error) {
			var p struct {
				InputDir   string `json:"input_dir"`
				OutputPath string `json:"output_path"`
				Probe      bool   `json:"probe"`
				Force      bool   `json:"force"`
			}
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, err
			}
			if err := ooxml.Pack(p.InputDir, p.OutputPath, ooxml.PackOptions{Probe: p.Probe, Force: p.Force}); err != nil {
				return nil, err
			}
			return textResult(fmt.Sprintf("wrote %s", p.OutputPath)), nil
		},
	}
}

func validateTool() *Tool {
	return &Tool{
		Name:        "validate_office_document",
		Description: "Run structural checks over an unpacked Office document tree and report each check with pass/fail details.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"unpacked_dir": {"type": "string", "description": "Unpacked document directory"},
				"doc_type": {"type": "string", "enum": [".docx", ".pptx", ".xlsx"], "description": "Original document type"}
			},
			"required": ["unpacked_dir", "doc_type"],
			"additionalProperties": false
		}`),
		Handler: func(ctx context.Context, args json.RawMessage) (*toolResult, error) {
			var p struct {
				UnpackedDir string `json:"unpacked_dir"`
				DocType     string `json:"doc_type"`
			}
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, err
			}
			checks, err := ooxml.Validate(p.UnpackedDir, p.DocType)
			if err != nil {
				return nil, err
			}
			report := struct {
				AllPassed bool                `json:"all_passed"`
				Checks    []ooxml.CheckResult `json:"checks"`
			}{ooxml.AllPassed(checks), checks}
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return nil, err
			}
			return textResult(string(data)), nil
		},
	}
}
