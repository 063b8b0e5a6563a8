package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/ui-inventory-mcp/internal/detection"
	"github.com/ironsheep/ui-inventory-mcp/internal/imaging"
	"github.com/ironsheep/ui-inventory-mcp/internal/inventory"
	"github.com/ironsheep/ui-inventory-mcp/internal/validation"
)

// createButtonImage writes a 300x200 transparent PNG with a blue 100x40
// rectangle at (50,50) and returns its path.
func createButtonImage(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 300, 200))
	blue := color.RGBA{59, 130, 246, 255}
	for y := 50; y < 90; y++ {
		for x := 50; x < 150; x++ {
			img.Set(x, y, blue)
		}
	}

	path := filepath.Join(t.TempDir(), "button.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// callTool runs a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()
	paramsJSON, err := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeContent unmarshals the text content of a successful tool response into v.
func decodeContent(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("unexpected content: %#v", result["content"])
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("content is not JSON: %v\n%s", err, text)
	}
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "image_load", map[string]interface{}{"path": createButtonImage(t)})

	var info struct {
		Width           int    `json:"width"`
		Height          int    `json:"height"`
		Format          string `json:"format"`
		HasTransparency bool   `json:"has_transparency"`
	}
	decodeContent(t, resp, &info)
	if info.Width != 300 || info.Height != 200 {
		t.Errorf("dimensions = %dx%d, want 300x200", info.Width, info.Height)
	}
	if info.Format != "png" || !info.HasTransparency {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestHandleToolsCall_ImageDimensions(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "image_dimensions", map[string]interface{}{"path": createButtonImage(t)})

	var dims struct{ Width, Height int }
	decodeContent(t, resp, &dims)
	if dims.Width != 300 || dims.Height != 200 {
		t.Errorf("dimensions = %+v", dims)
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "ui_detect_components", map[string]interface{}{"path": "/nonexistent/image.png"})

	if resp.Error == nil {
		t.Fatal("expected an error for a missing file")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("code = %d, want -32000", resp.Error.Code)
	}
	if data, _ := resp.Error.Data.(string); !strings.HasPrefix(data, "invalid input") {
		t.Errorf("error data = %q", data)
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "nonexistent_tool", map[string]interface{}{})
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Fatalf("expected -32000 for unknown tool, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleToolsCall(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Params: json.RawMessage(`[1,2]`)})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("expected -32602, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_BadArgumentTypes(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "image_crop", map[string]interface{}{"path": createButtonImage(t), "x": "left"})
	if resp.Error == nil {
		t.Fatal("expected an error for a string coordinate")
	}
}

func TestHandleToolsCall_Crop(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "image_crop", map[string]interface{}{
		"path": createButtonImage(t), "x": 50, "y": 50, "width": 100, "height": 40, "scale": 0.5,
	})

	var crop struct {
		Width       int    `json:"width"`
		ImageBase64 string `json:"image_base64"`
		MimeType    string `json:"mime_type"`
	}
	decodeContent(t, resp, &crop)
	if crop.MimeType != "image/png" || crop.ImageBase64 == "" {
		t.Errorf("unexpected crop %+v", crop)
	}
}

func TestHandleToolsCall_DetectComponents(t *testing.T) {
	s := newTestServer(t)
	path := createButtonImage(t)

	for _, strategy := range []string{"", "edge", "similarity"} {
		t.Run("strategy="+strategy, func(t *testing.T) {
			resp := callTool(t, s, "ui_detect_components", map[string]interface{}{"path": path, "strategy": strategy})

			var res detection.Result
			decodeContent(t, resp, &res)
			if len(res.Components) == 0 {
				t.Fatal("expected at least one component")
			}
			if res.Analysis.TotalComponents != len(res.Components) {
				t.Errorf("analysis total %d != %d", res.Analysis.TotalComponents, len(res.Components))
			}
			want := detection.Strategy(strategy)
			if strategy == "" {
				want = detection.StrategyEdge
			}
			if res.Strategy != want {
				t.Errorf("strategy = %q, want %q", res.Strategy, want)
			}
		})
	}
}

func TestHandleToolsCall_DetectUnknownStrategy(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "ui_detect_components", map[string]interface{}{"path": createButtonImage(t), "strategy": "hough"})
	if resp.Error == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestHandleToolsCall_Annotate(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "ui_annotate", map[string]interface{}{"path": createButtonImage(t)})

	var overlay struct {
		BoxCount    int    `json:"box_count"`
		ImageBase64 string `json:"image_base64"`
	}
	decodeContent(t, resp, &overlay)
	if overlay.BoxCount != 1 || overlay.ImageBase64 == "" {
		t.Errorf("unexpected overlay %+v", overlay)
	}
}

func TestHandleToolsCall_ExtractStyle(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "ui_extract_style", map[string]interface{}{"path": createButtonImage(t)})

	var report struct {
		Colors struct {
			Primary string   `json:"primary"`
			Palette []string `json:"palette"`
		} `json:"colors"`
		Typography struct {
			FontSize map[string]string `json:"fontSize"`
		} `json:"typography"`
	}
	decodeContent(t, resp, &report)
	if report.Colors.Primary != "#3b82f6" {
		t.Errorf("primary = %q", report.Colors.Primary)
	}
	if report.Typography.FontSize["base"] != "16px" {
		t.Errorf("base font size = %q", report.Typography.FontSize["base"])
	}
}

func TestHandleToolsCall_ListTestCases(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "ui_list_test_cases", map[string]interface{}{})

	var cases []validation.TestCase
	decodeContent(t, resp, &cases)
	if len(cases) != 3 {
		t.Fatalf("expected 3 test cases, got %d", len(cases))
	}
	if cases[0].ID != "desktop_components" {
		t.Errorf("first case = %q", cases[0].ID)
	}
}

func TestHandleToolsCall_Validate(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "ui_validate", map[string]interface{}{
		"path":         createButtonImage(t),
		"test_case_id": "button_states",
	})

	var res validation.Result
	decodeContent(t, resp, &res)
	if res.TestCaseID != "button_states" {
		t.Errorf("testCaseId = %q", res.TestCaseID)
	}
	if len(res.Details) != 3 {
		t.Errorf("expected 3 details, got %d", len(res.Details))
	}
}

func TestHandleToolsCall_ValidateUnknownCase(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "ui_validate", map[string]interface{}{
		"path":         createButtonImage(t),
		"test_case_id": "nope",
	})
	if resp.Error == nil {
		t.Fatal("expected error for unknown test case")
	}
	data, _ := resp.Error.Data.(string)
	if !strings.HasPrefix(data, "invalid input: ") || !strings.Contains(data, "unknown test case") {
		t.Errorf("error data = %q", data)
	}
}

func TestHandleToolsCall_ValidateComponentsUnknownCase(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "ui_validate_components", map[string]interface{}{
		"test_case_id": "nope",
		"components":   []interface{}{},
	})
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Fatalf("expected -32000, got %+v", resp.Error)
	}
	if data, _ := resp.Error.Data.(string); data != "invalid input: unknown test case: nope" {
		t.Errorf("error data = %q", data)
	}
}

func TestErrorData(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"already prefixed", fmt.Errorf("%w: path is required", inventory.ErrInvalidInput), "invalid input: path is required"},
		{"empty buffer", imaging.ErrEmptyBuffer, "invalid input: " + imaging.ErrEmptyBuffer.Error()},
		{"internal", errors.New("disk on fire"), "disk on fire"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorData(tt.err); got != tt.want {
				t.Errorf("errorData() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandleToolsCall_ValidateComponents(t *testing.T) {
	s := newTestServer(t)
	components := []map[string]interface{}{
		{
			"id":   "c1",
			"type": "card",
			"bounds": map[string]interface{}{
				"x": 0, "y": 0, "width": 300, "height": 200,
			},
			"properties": map[string]interface{}{
				"width": 300, "height": 200, "borderRadius": 12,
				"padding": map[string]interface{}{"top": 24, "right": 24, "bottom": 24, "left": 24},
			},
			"colors": map[string]interface{}{"dominant": "#FFFFFF", "palette": []string{"#FFFFFF"}},
		},
	}
	resp := callTool(t, s, "ui_validate_components", map[string]interface{}{
		"test_case_id": "desktop_components",
		"components":   components,
	})

	var res validation.Result
	decodeContent(t, resp, &res)
	if len(res.Details) != 2 {
		t.Fatalf("expected 2 details, got %d", len(res.Details))
	}
	if res.Details[0].Reason != validation.ReasonNotDetected {
		t.Errorf("button detail reason = %q", res.Details[0].Reason)
	}
	card := res.Details[1]
	for _, key := range []string{"backgroundColor", "borderRadius", "padding"} {
		if pv := card.PropertyValidations[key]; !pv.Valid {
			t.Errorf("%s should pass: %+v", key, pv)
		}
	}
	if res.Accuracy != 0 {
		t.Errorf("accuracy = %v, want 0 (card fails shadow and border)", res.Accuracy)
	}
}

func TestHandleToolsCall_ValidateAll(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "ui_validate_all", map[string]interface{}{
		"images": map[string]string{"mobile_layout": createButtonImage(t)},
	})

	var sum validation.Summary
	decodeContent(t, resp, &sum)
	if sum.TotalTests != 3 || len(sum.Results) != 3 {
		t.Errorf("unexpected summary %+v", sum)
	}
}

func TestHandleToolsCall_OCRStatus(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "ui_ocr_status", nil)

	var info struct {
		Available bool   `json:"available"`
		Backend   string `json:"backend"`
	}
	decodeContent(t, resp, &info)
	if info.Backend == "" {
		t.Error("backend should be reported")
	}
}
