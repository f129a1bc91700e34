package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is shared by every tool that reads an image file.
var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file (PNG, JPEG, GIF or WebP)",
}

// samplingProperties returns the grid parameters common to the dense tools.
func samplingProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty,
		"scale": map[string]interface{}{
			"type":        "number",
			"description": "Descriptor scale. The support window radius grows linearly with scale (8 pixels at scale 1 with the default descriptor layout). Must be > 0. Defaults to the server configuration (1.0)",
		},
		"period_x": map[string]interface{}{
			"type":        "number",
			"description": "Horizontal distance between sample centers in pixels. Must be > 0. Defaults to the server configuration (8)",
		},
		"period_y": map[string]interface{}{
			"type":        "number",
			"description": "Vertical distance between sample centers in pixels. Must be > 0. Defaults to the server configuration (8)",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	describeProps := samplingProperties()
	describeProps["pixel_type"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"u8", "f32"},
		"description": "Plane storage: u8 (8-bit luma) or f32 (floating point CIE lightness)",
	}
	describeProps["blur_radius"] = map[string]interface{}{
		"type":        "number",
		"description": "Gaussian pre-blur radius in pixels, 0 to disable",
	}
	describeProps["include_descriptors"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Return the 128-element descriptor for each sample. Default false (locations only)",
		"default":     false,
	}
	describeProps["max_samples"] = map[string]interface{}{
		"type":        "integer",
		"description": "Maximum number of samples listed in the response (0 = all). The count is always the full grid",
	}

	overlayProps := samplingProperties()
	overlayProps["show_windows"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Outline each sample's support window",
		"default":     false,
	}
	overlayProps["color"] = map[string]interface{}{
		"type":        "string",
		"description": "Marker color as hex (e.g., '#FF0000'). Default red",
		"default":     "#FF0000",
	}

	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},

		// Dense Sampling
		{
			Name:        "image_dense_layout",
			Description: "Preview the dense sampling grid (columns, rows, sample count, support window) for an image without computing descriptors.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": samplingProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "image_dense_describe",
			Description: "Compute SIFT-style descriptors on a regular grid. Samples never cross the image border; results are listed row-major.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": describeProps,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "image_dense_overlay",
			Description: "Draw the dense sampling grid on the image and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": overlayProps,
				"required":   []string{"path"},
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
