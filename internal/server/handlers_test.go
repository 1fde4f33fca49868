package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/target-analyzer-mcp/internal/analysis"
	"github.com/ironsheep/target-analyzer-mcp/internal/detection"
	"github.com/ironsheep/target-analyzer-mcp/internal/imaging"
)

// createTargetImageFile writes a 600x840 target photo with a black aiming
// disc at (300,600) and a red 3x17 hole marker at each centre.
func createTargetImageFile(t *testing.T, holes ...image.Point) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 600, 840))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for y := 570; y <= 630; y++ {
		for x := 270; x <= 330; x++ {
			if (x-300)*(x-300)+(y-600)*(y-600) <= 900 {
				img.Set(x, y, color.Black)
			}
		}
	}
	for _, h := range holes {
		for y := h.Y - 8; y <= h.Y+8; y++ {
			for x := h.X - 1; x <= h.X+1; x++ {
				img.Set(x, y, color.RGBA{220, 20, 20, 255})
			}
		}
	}

	path := filepath.Join(t.TempDir(), "target.png")
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

var fourShots = []image.Point{{200, 400}, {260, 400}, {200, 460}, {260, 460}}

// callTool runs a tools/call request and decodes the text content into out.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}, out interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, _ := json.Marshal(params)

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil || out == nil {
		return resp
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %#v", result["content"])
	}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), out); err != nil {
		t.Fatalf("failed to decode tool result: %v", err)
	}
	return resp
}

func TestHandleToolsCall_TargetLoad(t *testing.T) {
	s := New(nil, nil)
	path := createTargetImageFile(t)

	var got struct {
		Width       int     `json:"width"`
		Height      int     `json:"height"`
		Format      string  `json:"format"`
		PixelsPerCM float64 `json:"pixels_per_cm"`
	}
	resp := callTool(t, s, "target_load", map[string]interface{}{"path": path}, &got)

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if got.Width != 600 || got.Height != 840 || got.Format != "png" {
		t.Errorf("got %+v", got)
	}
	if got.PixelsPerCM != 20 {
		t.Errorf("PixelsPerCM: got %v, want 20", got.PixelsPerCM)
	}
}

func TestHandleToolsCall_SheetOverride(t *testing.T) {
	s := New(nil, nil)
	path := createTargetImageFile(t)

	var got struct {
		PixelsPerCM float64 `json:"pixels_per_cm"`
	}
	callTool(t, s, "target_load", map[string]interface{}{
		"path":            path,
		"sheet_width_mm":  600,
		"sheet_height_mm": 840,
	}, &got)

	if got.PixelsPerCM != 10 {
		t.Errorf("PixelsPerCM: got %v, want 10", got.PixelsPerCM)
	}
	// overrides never leak into the server config
	if s.cfg.SheetWidthMM != 300 {
		t.Errorf("server config changed: %v", s.cfg.SheetWidthMM)
	}
}

func TestHandleToolsCall_DetectHoles(t *testing.T) {
	s := New(nil, nil)
	path := createTargetImageFile(t, fourShots...)

	var got struct {
		Profile     string           `json:"profile"`
		PixelsPerCM float64          `json:"pixels_per_cm"`
		Raw         []detection.Hole `json:"raw"`
		Final       []detection.Hole `json:"final"`
		Counted     []detection.Hole `json:"counted"`
	}
	resp := callTool(t, s, "target_detect_holes", map[string]interface{}{"path": path}, &got)

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if got.Profile != "generic" || got.PixelsPerCM != 20 {
		t.Errorf("got profile %q at %v px/cm", got.Profile, got.PixelsPerCM)
	}
	if len(got.Raw) != 4 || len(got.Final) != 4 || len(got.Counted) != 4 {
		t.Errorf("got %d raw, %d final, %d counted", len(got.Raw), len(got.Final), len(got.Counted))
	}
}

func TestHandleToolsCall_DetectHoles_Empty(t *testing.T) {
	s := New(nil, nil)
	path := createTargetImageFile(t)

	var got struct {
		Counted []detection.Hole `json:"counted"`
	}
	resp := callTool(t, s, "target_detect_holes", map[string]interface{}{"path": path}, &got)

	if resp.Error != nil {
		t.Fatalf("no holes is not an error for detection: %v", resp.Error)
	}
	if got.Counted == nil || len(got.Counted) != 0 {
		t.Errorf("Counted: got %#v, want empty list", got.Counted)
	}
}

func TestHandleToolsCall_FindCenter(t *testing.T) {
	s := New(nil, nil)
	path := createTargetImageFile(t)

	var got detection.CenterResult
	callTool(t, s, "target_find_center", map[string]interface{}{"path": path}, &got)

	if got.Fallback {
		t.Fatal("expected the aiming disc to be found")
	}
	if got.Center.X < 299.9 || got.Center.X > 300.1 || got.Center.Y < 599.9 || got.Center.Y > 600.1 {
		t.Errorf("Center: got %+v, want (300,600)", got.Center)
	}
}

func TestHandleToolsCall_Analyze(t *testing.T) {
	s := New(nil, nil)
	path := createTargetImageFile(t, fourShots...)
	overlay := filepath.Join(t.TempDir(), "overlay.png")

	var got analysis.Report
	resp := callTool(t, s, "target_analyze", map[string]interface{}{
		"path":         path,
		"overlay_path": overlay,
	}, &got)

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if got.Source != path || got.Profile != "generic" {
		t.Errorf("Source/Profile: got %q/%q", got.Source, got.Profile)
	}
	if got.Metrics == nil || got.Metrics.Shots != 4 {
		t.Fatalf("Metrics: got %+v", got.Metrics)
	}
	if got.Metrics.PrecisionCM != 2.12 || got.Metrics.GroupRadiusCM != 2.12 {
		t.Errorf("cm values: got %v/%v", got.Metrics.PrecisionCM, got.Metrics.GroupRadiusCM)
	}
	if got.Construction == nil {
		t.Error("four shots should include the STP construction")
	}
	if _, err := os.Stat(overlay); err != nil {
		t.Errorf("overlay not saved: %v", err)
	}
}

func TestHandleToolsCall_Analyze_PMProfile(t *testing.T) {
	s := New(nil, nil)
	holes := []image.Point{}
	for i := 0; i < 6; i++ {
		holes = append(holes, image.Point{X: 50 + 80*i, Y: 300})
	}
	path := createTargetImageFile(t, holes...)

	var got analysis.Report
	resp := callTool(t, s, "target_analyze", map[string]interface{}{"path": path, "profile": "pm"}, &got)

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if got.Profile != "pm" || len(got.Holes) != 4 {
		t.Errorf("pm profile should count 4 of 6 holes, got %q with %d", got.Profile, len(got.Holes))
	}
}

func TestHandleToolsCall_Analyze_NoHoles(t *testing.T) {
	s := New(nil, nil)
	path := createTargetImageFile(t)

	resp := callTool(t, s, "target_analyze", map[string]interface{}{"path": path}, nil)

	if resp.Error == nil {
		t.Fatal("expected an error when no holes are found")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
	if data, _ := resp.Error.Data.(string); !strings.Contains(data, "no holes detected") {
		t.Errorf("Error data: got %v", resp.Error.Data)
	}
}

func TestHandleToolsCall_Overlay(t *testing.T) {
	s := New(nil, nil)
	path := createTargetImageFile(t, fourShots...)
	output := filepath.Join(t.TempDir(), "out.png")

	var got struct {
		imaging.EncodedImage
		Summary    string `json:"summary"`
		OutputPath string `json:"output_path"`
	}
	resp := callTool(t, s, "target_overlay", map[string]interface{}{
		"path":        path,
		"output_path": output,
	}, &got)

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if got.Width != 600 || got.Height != 840 || got.MimeType != "image/png" || got.ImageBase64 == "" {
		t.Errorf("encoded image: %dx%d %s (%d bytes)", got.Width, got.Height, got.MimeType, len(got.ImageBase64))
	}
	if !strings.Contains(got.Summary, "Shots:") {
		t.Errorf("Summary: %q", got.Summary)
	}
	if got.OutputPath != output {
		t.Errorf("OutputPath: got %q", got.OutputPath)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("overlay not saved: %v", err)
	}
}

func TestHandleToolsCall_Profiles(t *testing.T) {
	s := New(nil, nil)

	var got struct {
		Default  string                 `json:"default"`
		Profiles []analysis.ProfileInfo `json:"profiles"`
	}
	resp := callTool(t, s, "target_profiles", map[string]interface{}{}, &got)

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if got.Default != "generic" || len(got.Profiles) != 2 {
		t.Errorf("got %+v", got)
	}
}

func TestHandleToolsCall_Errors(t *testing.T) {
	s := New(nil, nil)
	path := createTargetImageFile(t, fourShots...)

	tests := []struct {
		name string
		tool string
		args map[string]interface{}
	}{
		{"missing path", "target_analyze", map[string]interface{}{}},
		{"nonexistent file", "target_load", map[string]interface{}{"path": "/nonexistent/image.png"}},
		{"unknown profile", "target_analyze", map[string]interface{}{"path": path, "profile": "rifle"}},
		{"bad merge strategy", "target_detect_holes", map[string]interface{}{"path": path, "merge_strategy": "dbscan"}},
		{"bad sheet size", "target_load", map[string]interface{}{"path": path, "sheet_width_mm": -5}},
		{"unknown tool", "image_crop", map[string]interface{}{"path": path}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, tt.tool, tt.args, nil)
			if resp.Error == nil {
				t.Fatal("expected an error response")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
			}
		})
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New(nil, nil)

	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`{invalid`),
	})

	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("expected -32602, got %+v", resp.Error)
	}
}

func TestExecuteTool_AllTools(t *testing.T) {
	s := New(nil, nil)
	path := createTargetImageFile(t, fourShots...)

	toolTests := []struct {
		name string
		args map[string]interface{}
	}{
		{"target_load", map[string]interface{}{"path": path}},
		{"target_detect_holes", map[string]interface{}{"path": path, "merge_strategy": "transitive"}},
		{"target_find_center", map[string]interface{}{"path": path}},
		{"target_analyze", map[string]interface{}{"path": path, "rerank_before_truncate": true}},
		{"target_overlay", map[string]interface{}{"path": path}},
		{"target_profiles", map[string]interface{}{}},
	}

	for _, tt := range toolTests {
		t.Run(tt.name, func(t *testing.T) {
			argsJSON, _ := json.Marshal(tt.args)
			result, err := s.executeTool(tt.name, argsJSON)
			if err != nil {
				t.Fatalf("executeTool(%s) failed: %v", tt.name, err)
			}
			if result == nil {
				t.Errorf("executeTool(%s) returned nil result", tt.name)
			}
		})
	}
}

func TestExecuteTool_NoArguments(t *testing.T) {
	s := New(nil, nil)

	if _, err := s.executeTool("target_profiles", nil); err != nil {
		t.Errorf("target_profiles without arguments: %v", err)
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := New(nil, nil)

	_, err := s.executeTool("unknown_tool", json.RawMessage(`{}`))
	if err == nil {
		t.Error("executeTool should fail for unknown tool")
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := New(nil, nil)

	_, err := s.executeTool("target_load", json.RawMessage(`{invalid`))
	if err == nil {
		t.Error("executeTool should fail for invalid JSON")
	}
}
