package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/target-analyzer-mcp/internal/analysis"
	"github.com/ironsheep/target-analyzer-mcp/internal/config"
	"github.com/ironsheep/target-analyzer-mcp/internal/detection"
	"github.com/ironsheep/target-analyzer-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "target_analyze").
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
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Printf("%s: %v", params.Name, err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
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

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each image tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies per-call overrides to a copy of the server config
//  3. Loads the image from cache
//  4. Runs detection or analysis
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	switch name {
	case "target_load":
		return s.handleTargetLoad(args)
	case "target_detect_holes":
		return s.handleTargetDetectHoles(args)
	case "target_find_center":
		return s.handleTargetFindCenter(args)
	case "target_analyze":
		return s.handleTargetAnalyze(args)
	case "target_overlay":
		return s.handleTargetOverlay(args)
	case "target_profiles":
		return s.handleTargetProfiles(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// targetArgs are shared by every image tool.
type targetArgs struct {
	Path          string  `json:"path"`
	Profile       string  `json:"profile"`
	SheetWidthMM  float64 `json:"sheet_width_mm"`
	SheetHeightMM float64 `json:"sheet_height_mm"`
	MergeStrategy string  `json:"merge_strategy"`
	Rerank        *bool   `json:"rerank_before_truncate"`
}

// config returns a validated copy of the server config with overrides applied.
func (a *targetArgs) config(base *config.Config) (*config.Config, error) {
	cfg := base.Clone()
	if a.SheetWidthMM != 0 {
		cfg.SheetWidthMM = a.SheetWidthMM
	}
	if a.SheetHeightMM != 0 {
		cfg.SheetHeightMM = a.SheetHeightMM
	}
	if a.MergeStrategy != "" {
		cfg.MergeStrategy = a.MergeStrategy
	}
	if a.Rerank != nil {
		cfg.RerankBeforeTruncate = *a.Rerank
	}
	if a.Profile != "" {
		cfg.Profile = a.Profile
	}
	// the debug mask is a startup option, not something a client may redirect
	cfg.DebugMaskPath = ""
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// prepare decodes args, builds the effective config and loads the image.
func (s *Server) prepare(raw json.RawMessage, a argHolder) (*config.Config, image.Image, error) {
	if err := json.Unmarshal(raw, a); err != nil {
		return nil, nil, err
	}
	t := a.base()
	if t.Path == "" {
		return nil, nil, errors.New("path is required")
	}
	cfg, err := t.config(s.cfg)
	if err != nil {
		return nil, nil, err
	}
	img, err := s.cache.Load(t.Path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, img, nil
}

// argHolder is any tool argument struct embedding targetArgs.
type argHolder interface{ base() *targetArgs }

func (a *targetArgs) base() *targetArgs { return a }

func (s *Server) profile(cfg *config.Config) (analysis.Profile, error) {
	return analysis.Lookup(cfg.Profile, detection.NewDetector(cfg, s.logger))
}

// === Handlers ===

type targetLoadResult struct {
	*imaging.ImageInfo
	PixelsPerCM float64 `json:"pixels_per_cm"`
}

func (s *Server) handleTargetLoad(args json.RawMessage) (interface{}, error) {
	var a targetArgs
	cfg, img, err := s.prepare(args, &a)
	if err != nil {
		return nil, err
	}
	info, err := imaging.LoadImageInfo(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	return &targetLoadResult{
		ImageInfo:   info,
		PixelsPerCM: imaging.ImagePixelsPerCM(img, cfg.SheetWidthMM, cfg.SheetHeightMM),
	}, nil
}

type detectHolesResult struct {
	Profile string `json:"profile"`
	*detection.Result
	Counted []detection.Hole `json:"counted"`
}

func (s *Server) handleTargetDetectHoles(args json.RawMessage) (interface{}, error) {
	var a targetArgs
	cfg, img, err := s.prepare(args, &a)
	if err != nil {
		return nil, err
	}
	p, err := s.profile(cfg)
	if err != nil {
		return nil, err
	}
	res, counted, err := p.DetectHoles(img)
	if err != nil && !errors.Is(err, detection.ErrNoHoles) {
		return nil, err
	}
	if counted == nil {
		counted = []detection.Hole{}
	}
	return &detectHolesResult{Profile: p.Name(), Result: res, Counted: counted}, nil
}

func (s *Server) handleTargetFindCenter(args json.RawMessage) (interface{}, error) {
	var a targetArgs
	cfg, img, err := s.prepare(args, &a)
	if err != nil {
		return nil, err
	}
	center := detection.FindTargetCenter(img, cfg)
	return &center, nil
}

type analyzeArgs struct {
	targetArgs
	OverlayPath string `json:"overlay_path"`
}

// analyzed is one successful analysis with the inputs that produced it.
type analyzed struct {
	cfg    *config.Config
	img    image.Image
	report *analysis.Report
}

func (a *analyzed) overlay() *imaging.Canvas {
	return analysis.RenderOverlay(a.img, a.report, a.cfg.Overlay)
}

func (s *Server) analyze(raw json.RawMessage, a argHolder) (*analyzed, error) {
	cfg, img, err := s.prepare(raw, a)
	if err != nil {
		return nil, err
	}
	p, err := s.profile(cfg)
	if err != nil {
		return nil, err
	}
	report, err := analysis.Analyze(img, p)
	if err != nil {
		return nil, err
	}
	report.Source = a.base().Path
	return &analyzed{cfg: cfg, img: img, report: report}, nil
}

func (s *Server) handleTargetAnalyze(args json.RawMessage) (interface{}, error) {
	var a analyzeArgs
	res, err := s.analyze(args, &a)
	if err != nil {
		return nil, err
	}
	if a.OverlayPath != "" {
		if err := res.overlay().Save(a.OverlayPath); err != nil {
			return nil, err
		}
	}
	return res.report, nil
}

type overlayArgs struct {
	targetArgs
	OutputPath string `json:"output_path"`
}

type overlayResult struct {
	*imaging.EncodedImage
	Summary    string `json:"summary"`
	OutputPath string `json:"output_path,omitempty"`
}

func (s *Server) handleTargetOverlay(args json.RawMessage) (interface{}, error) {
	var a overlayArgs
	res, err := s.analyze(args, &a)
	if err != nil {
		return nil, err
	}
	canvas := res.overlay()
	if a.OutputPath != "" {
		if err := canvas.Save(a.OutputPath); err != nil {
			return nil, err
		}
	}
	enc, err := canvas.Encode()
	if err != nil {
		return nil, err
	}
	return &overlayResult{EncodedImage: enc, Summary: res.report.Summary(), OutputPath: a.OutputPath}, nil
}

type profilesResult struct {
	Default  string                 `json:"default"`
	Profiles []analysis.ProfileInfo `json:"profiles"`
}

func (s *Server) handleTargetProfiles(args json.RawMessage) (interface{}, error) {
	var a struct{}
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return &profilesResult{Default: s.cfg.Profile, Profiles: analysis.List()}, nil
}
