package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the screenshot file (PNG, JPEG or GIF)",
	}
}

func strategyProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"edge", "similarity"},
		"description": "Region extraction strategy. Defaults to the configured strategy (edge).",
	}
}

func testCaseProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Fixture test case id, see ui_list_test_cases",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load a screenshot and return its dimensions, format and transparency. The decoded image is cached for later calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of a screenshot.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_crop",
			Description: "Crop a rectangle from a screenshot, for example a detected component's bounds, and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge X coordinate (0-based)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge Y coordinate (0-based)",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Height in pixels",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "x", "y", "width", "height"},
			},
		},

		// Component Inventory
		{
			Name:        "ui_detect_components",
			Description: "Detect UI components (button, card, input, nav-item, container) in a screenshot. Returns bounds, measured properties, colors, interaction states and a summary analysis.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty(),
					"strategy": strategyProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "ui_annotate",
			Description: "Detect components and return the screenshot with numbered component outlines as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty(),
					"strategy": strategyProperty(),
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Outline color as hex. Default #FF0000",
						"default":     "#FF0000",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "ui_extract_style",
			Description: "Extract the design tokens of a screenshot: primary, secondary and accent colors, text and border colors, the palette and a typography scale.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Validation
		{
			Name:        "ui_list_test_cases",
			Description: "List the fixture test cases available for validation, with their expected components and tolerances.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "ui_validate",
			Description: "Detect components in a screenshot and score them against a fixture test case. Returns per-component verdicts, per-property deviations and accuracy.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":         pathProperty(),
					"test_case_id": testCaseProperty(),
					"strategy":     strategyProperty(),
				},
				"required": []string{"path", "test_case_id"},
			},
		},
		{
			Name:        "ui_validate_components",
			Description: "Score already detected components (as returned by ui_detect_components) against a fixture test case.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"test_case_id": testCaseProperty(),
					"components": map[string]interface{}{
						"type":        "array",
						"description": "Detected components",
						"items":       map[string]interface{}{"type": "object"},
					},
				},
				"required": []string{"test_case_id", "components"},
			},
		},
		{
			Name:        "ui_validate_all",
			Description: "Validate every fixture test case. Cases without a screenshot count as having no detected components. Returns per-case results and overall accuracy.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"images": map[string]interface{}{
						"type":                 "object",
						"description":          "Map of test case id to screenshot path",
						"additionalProperties": map[string]interface{}{"type": "string"},
					},
					"strategy": strategyProperty(),
				},
				"required": []string{"images"},
			},
		},
		{
			Name:        "ui_ocr_status",
			Description: "Report whether the OCR text oracle is enabled and available.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
