// Package server implements the MCP (Model Context Protocol) server for UI
// component inventory tools.
//
// The server speaks JSON-RPC 2.0 and lets MCP clients detect UI components in
// screenshots, extract their style and score detections against fixture test
// cases.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load a screenshot and get metadata
//   - image_dimensions: Get width and height
//   - image_crop: Extract a rectangular area
//
// Component Inventory:
//   - ui_detect_components: Detect and classify components
//   - ui_annotate: Draw numbered component outlines
//   - ui_extract_style: Extract colors and a typography scale
//
// Validation:
//   - ui_list_test_cases: List fixture test cases
//   - ui_validate: Detect and validate against a test case
//   - ui_validate_components: Validate already detected components
//   - ui_validate_all: Validate the whole catalog
//   - ui_ocr_status: Report OCR availability
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string, prefixed "invalid input" for caller errors
//
// # Usage
//
//	svc, err := inventory.New(cfg, nil)
//	if err != nil {
//	    return err
//	}
//	return server.New(svc, version).Run(ctx)
package server
