package server

import (
	"context"
	"testing"
)

func toolMap() map[string]Tool {
	m := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		m[tool.Name] = tool
	}
	return m
}

func TestGetToolDefinitions(t *testing.T) {
	tools := toolMap()

	expectedTools := []string{
		"image_load",
		"image_dimensions",
		"image_crop",
		"ui_detect_components",
		"ui_annotate",
		"ui_extract_style",
		"ui_list_test_cases",
		"ui_validate",
		"ui_validate_components",
		"ui_validate_all",
		"ui_ocr_status",
	}

	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("tool count: got %d, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}

			// Every required parameter must be declared.
			required, _ := tool.InputSchema["required"].([]string)
			for _, r := range required {
				if _, ok := props[r]; !ok {
					t.Errorf("required parameter %q not in properties", r)
				}
			}
		})
	}
}

func TestToolDefinitions_RequiredPath(t *testing.T) {
	toolsRequiringPath := []string{
		"image_load",
		"image_dimensions",
		"image_crop",
		"ui_detect_components",
		"ui_annotate",
		"ui_extract_style",
		"ui_validate",
	}

	tools := toolMap()
	for _, name := range toolsRequiringPath {
		t.Run(name, func(t *testing.T) {
			required, ok := tools[name].InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}
			hasPath := false
			for _, r := range required {
				if r == "path" {
					hasPath = true
					break
				}
			}
			if !hasPath {
				t.Error("Tool should require 'path' parameter")
			}
		})
	}
}

func TestToolDefinitions_StrategyEnum(t *testing.T) {
	for _, name := range []string{"ui_detect_components", "ui_annotate", "ui_validate", "ui_validate_all"} {
		props := toolMap()[name].InputSchema["properties"].(map[string]interface{})
		strategy, ok := props["strategy"].(map[string]interface{})
		if !ok {
			t.Errorf("%s: missing strategy property", name)
			continue
		}
		enum, _ := strategy["enum"].([]string)
		if len(enum) != 2 || enum[0] != "edge" || enum[1] != "similarity" {
			t.Errorf("%s: strategy enum = %v", name, enum)
		}
	}
}

func TestToolDefinitions_OptionalDefaults(t *testing.T) {
	toolDefaults := map[string]map[string]interface{}{
		"image_crop":  {"scale": 1.0},
		"ui_annotate": {"color": "#FF0000"},
	}

	tools := toolMap()
	for toolName, expectedDefaults := range toolDefaults {
		props := tools[toolName].InputSchema["properties"].(map[string]interface{})
		for paramName, want := range expectedDefaults {
			param, ok := props[paramName].(map[string]interface{})
			if !ok {
				t.Errorf("%s.%s: parameter not found", toolName, paramName)
				continue
			}
			if param["default"] != want {
				t.Errorf("%s.%s: default got %v, want %v", toolName, paramName, param["default"], want)
			}
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(toolsList) != len(GetToolDefinitions()) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(GetToolDefinitions()))
	}
}
