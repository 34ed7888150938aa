package server

import "github.com/ironsheep/white-spot-mcp/internal/imaging"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and file size. The decoded image is cached for subsequent spot_detect calls on the same path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Path to the image file (~ is expanded)",
					},
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
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Path to the image file (~ is expanded)",
					},
				},
				"required": []string{"path"},
			},
		},

		// Spot Detection
		{
			Name: "spot_detect",
			Description: "Find white spots in an image by classifying every pixel in CIELAB space. " +
				"The box strategy accepts pixels with L >= lightness_min and |a|, |b| within tolerance. " +
				"The delta strategy accepts pixels closer than max_distance to a reference color and reports the mean distance of the matches. " +
				"Returns the coverage percentage; optionally writes the annotated overlay and binary mask as PNG files or returns them inline.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Path to the image file. Either path or image_base64 is required",
					},
					"image_base64": map[string]interface{}{
						"type":        "string",
						"description": "Base64-encoded image (PNG, JPEG, GIF, BMP, TIFF), optionally as a data URL",
					},
					"region": map[string]interface{}{
						"type":        "object",
						"description": "Restrict detection to a rectangle; x2/y2 are exclusive. Coverage is then relative to the region",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer"},
							"y1": map[string]interface{}{"type": "integer"},
							"x2": map[string]interface{}{"type": "integer"},
							"y2": map[string]interface{}{"type": "integer"},
						},
						"required": []string{"x1", "y1", "x2", "y2"},
					},
					"quadrant": map[string]interface{}{
						"type":        "string",
						"enum":        imaging.Quadrants,
						"description": "Restrict detection to a named part of the image. Mutually exclusive with region",
					},
					"strategy": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"box", "delta"},
						"description": "Classification strategy. Defaults to the server's configured strategy",
					},
					"lightness_min": map[string]interface{}{
						"type":        "number",
						"description": "Box: minimum L (0-100). Default 90",
					},
					"a_tolerance": map[string]interface{}{
						"type":        "number",
						"description": "Box: maximum |a|. Default 15",
					},
					"b_tolerance": map[string]interface{}{
						"type":        "number",
						"description": "Box: maximum |b|. Default 15",
					},
					"reference": map[string]interface{}{
						"type":        "object",
						"description": "Delta: reference color in Lab. Default {l:100, a:0, b:0}",
						"properties": map[string]interface{}{
							"l": map[string]interface{}{"type": "number"},
							"a": map[string]interface{}{"type": "number"},
							"b": map[string]interface{}{"type": "number"},
						},
					},
					"max_distance": map[string]interface{}{
						"type":        "number",
						"description": "Delta: pixels strictly closer than this match. Default 25",
					},
					"metric": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"euclidean", "ciede2000"},
						"description": "Delta: distance metric. Euclidean is CIE76",
						"default":     "euclidean",
					},
					"marker_color": map[string]interface{}{
						"type":        "string",
						"description": "Hex color painted over matched pixels. Default #FF0000",
					},
					"export": map[string]interface{}{
						"type":        "boolean",
						"description": "Write the annotated and binary PNG files",
						"default":     false,
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory for exported files. Created if missing",
					},
					"annotated_name": map[string]interface{}{
						"type":        "string",
						"description": "File name of the annotated overlay",
						"default":     "annotated_image.png",
					},
					"binary_name": map[string]interface{}{
						"type":        "string",
						"description": "File name of the binary mask",
						"default":     "binary_image.png",
					},
					"include_images": map[string]interface{}{
						"type":        "boolean",
						"description": "Return downscaled overlay and mask previews as base64 PNG",
						"default":     false,
					},
					"preview_max_size": map[string]interface{}{
						"type":        "integer",
						"description": "Longest preview side in pixels; 0 keeps full size",
					},
				},
			},
		},
		{
			Name:        "spot_strategies",
			Description: "List the available spot detection strategies with the server's default thresholds.",
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
