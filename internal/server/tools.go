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
		"description": "Absolute path to the target photo",
	}
}

// overrideProperties are the optional per-call configuration overrides
// accepted by every image tool.
func overrideProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty(),
		"sheet_width_mm": map[string]interface{}{
			"type":        "number",
			"description": "Physical width of the target sheet in mm. Default from server config (300)",
		},
		"sheet_height_mm": map[string]interface{}{
			"type":        "number",
			"description": "Physical height of the target sheet in mm. Default from server config (420)",
		},
		"merge_strategy": map[string]interface{}{
			"type":        "string",
			"description": "How fragments of one hole are merged: 'seed' (distance to the first fragment) or 'transitive' (chains of nearby fragments)",
			"enum":        []string{"seed", "transitive"},
		},
		"rerank_before_truncate": map[string]interface{}{
			"type":        "boolean",
			"description": "Sort candidates by size before cutting to max_shots instead of keeping lower-zone holes first",
		},
	}
}

func withProperties(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

func profileProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Shooting profile deciding which holes are counted ('generic' or 'pm'). Default from server config",
		"enum":        []string{"generic", "pm"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "target_load",
			Description: "Load a target photo and return its dimensions, format and pixels-per-cm scale. The image is cached for later calls.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": overrideProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "target_detect_holes",
			Description: "Detect bullet holes (red markers) on a target photo. Returns every pipeline stage: raw clusters, merged holes, upper/lower hook zones, the final selection and the holes the profile counts.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(overrideProperties(), map[string]interface{}{
					"profile": profileProperty(),
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "target_find_center",
			Description: "Locate the printed centre of the target (largest dark region). Falls back to an estimated position when none is found.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": overrideProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "target_analyze",
			Description: "Full analysis of a target photo: detected holes, statistical point of impact (STP), precision and group radius in cm, and distance from STP to the target centre.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(overrideProperties(), map[string]interface{}{
					"profile": profileProperty(),
					"overlay_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to also save the annotated image (format from extension)",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "target_overlay",
			Description: "Analyze a target photo and return it annotated: all detections, numbered counted holes, group circle, STP construction, target centre and offset line. Returns base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(overrideProperties(), map[string]interface{}{
					"profile": profileProperty(),
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to also save the annotated image",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "target_profiles",
			Description: "List the available shooting profiles and the default used by this server.",
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
