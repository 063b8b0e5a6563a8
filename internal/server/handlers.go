package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ironsheep/ui-inventory-mcp/internal/detection"
	"github.com/ironsheep/ui-inventory-mcp/internal/imaging"
	"github.com/ironsheep/ui-inventory-mcp/internal/inventory"
	"github.com/ironsheep/ui-inventory-mcp/internal/logger"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "ui_detect_components").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// The error data is prefixed "invalid input" when the caller is at fault.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		logger.L().Info("tool failed",
			zap.String("tool", params.Name),
			zap.Bool("input_error", inventory.IsInputError(err)),
			zap.Error(err))
		return errorResponse(req.ID, -32000, "Tool execution failed", errorData(err))
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// errorData renders err for the error response. Caller errors always read
// "invalid input: ...", whichever package produced them.
func errorData(err error) string {
	msg := err.Error()
	prefix := inventory.ErrInvalidInput.Error()
	if inventory.IsInputError(err) && !strings.HasPrefix(msg, prefix) {
		return prefix + ": " + msg
	}
	return msg
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Calls the matching inventory.Service operation
//  4. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_crop":
		return s.handleImageCrop(args)

	// Component Inventory
	case "ui_detect_components":
		return s.handleDetectComponents(ctx, args)
	case "ui_annotate":
		return s.handleAnnotate(ctx, args)
	case "ui_extract_style":
		return s.handleExtractStyle(ctx, args)

	// Validation
	case "ui_list_test_cases":
		return s.svc.TestCases(), nil
	case "ui_validate":
		return s.handleValidate(ctx, args)
	case "ui_validate_components":
		return s.handleValidateComponents(args)
	case "ui_validate_all":
		return s.handleValidateAll(ctx, args)
	case "ui_ocr_status":
		return s.svc.OCRInfo(), nil

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %w", inventory.ErrInvalidInput, err)
	}
	return nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.svc.ImageInfo(a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if _, err := s.svc.ImageInfo(a.Path); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.svc.Cache(), a.Path)
}

type imageCropArgs struct {
	Path   string  `json:"path"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	return s.svc.Crop(a.Path, a.X, a.Y, a.Width, a.Height, a.Scale)
}

// === Component Inventory Handlers ===

type detectArgs struct {
	Path     string `json:"path"`
	Strategy string `json:"strategy"`
}

func (s *Server) handleDetectComponents(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a detectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.svc.Detect(ctx, a.Path, a.Strategy)
}

type annotateArgs struct {
	Path     string `json:"path"`
	Strategy string `json:"strategy"`
	Color    string `json:"color"`
}

func (s *Server) handleAnnotate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a annotateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = "#FF0000"
	}
	return s.svc.Annotate(ctx, a.Path, a.Strategy, a.Color)
}

func (s *Server) handleExtractStyle(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.svc.Style(ctx, a.Path)
}

// === Validation Handlers ===

type validateArgs struct {
	Path       string `json:"path"`
	TestCaseID string `json:"test_case_id"`
	Strategy   string `json:"strategy"`
}

func (s *Server) handleValidate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a validateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.svc.Validate(ctx, a.Path, a.TestCaseID, a.Strategy)
}

type validateComponentsArgs struct {
	TestCaseID string                `json:"test_case_id"`
	Components []detection.Component `json:"components"`
}

func (s *Server) handleValidateComponents(args json.RawMessage) (interface{}, error) {
	var a validateComponentsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.svc.ValidateComponents(a.TestCaseID, a.Components)
}

type validateAllArgs struct {
	Images   map[string]string `json:"images"`
	Strategy string            `json:"strategy"`
}

func (s *Server) handleValidateAll(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a validateAllArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.svc.ValidateAll(ctx, a.Images, a.Strategy)
}
