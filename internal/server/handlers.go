package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/ironsheep/white-spot-mcp/internal/analysis"
	"github.com/ironsheep/white-spot-mcp/internal/imaging"
	"github.com/ironsheep/white-spot-mcp/internal/spots"
	"github.com/mitchellh/go-homedir"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "spot_detect").
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
// Threshold validation failures return -32602 (invalid params); every other
// tool error returns -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	if s.debug {
		log.Printf("tool %s: %s", params.Name, truncate(params.Arguments, 200))
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		if s.debug {
			log.Printf("tool %s failed: %v", params.Name, err)
		}
		if errors.Is(err, spots.ErrInvalidConfig) {
			return s.errorResponse(req.ID, -32602, "Invalid thresholds", err.Error())
		}
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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Spot Detection
	case "spot_detect":
		return s.handleSpotDetect(args)
	case "spot_strategies":
		return s.handleSpotStrategies(args)

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

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (a imageLoadArgs) expandedPath() (string, error) {
	if a.Path == "" {
		return "", fmt.Errorf("path is required")
	}
	return homedir.Expand(a.Path)
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	path, err := a.expandedPath()
	if err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.analyzer.Cache(), path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	path, err := a.expandedPath()
	if err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.analyzer.Cache(), path)
}

// === Spot Detection Handlers ===

func (s *Server) handleSpotDetect(args json.RawMessage) (interface{}, error) {
	var req analysis.Request
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, err
	}
	return s.analyzer.Run(&req)
}

// StrategyInfo describes one strategy for spot_strategies.
type StrategyInfo struct {
	Name             spots.Kind  `json:"name"`
	Description      string      `json:"description"`
	MeasuresDistance bool        `json:"measures_distance"`
	Defaults         interface{} `json:"defaults"`
}

// StrategiesResult is the spot_strategies response.
type StrategiesResult struct {
	Default     spots.Kind     `json:"default"`
	MarkerColor string         `json:"marker_color"`
	Metrics     []spots.Metric `json:"metrics"`
	Strategies  []StrategyInfo `json:"strategies"`
}

func (s *Server) handleSpotStrategies(_ json.RawMessage) (interface{}, error) {
	d := s.analyzer.Defaults()
	return &StrategiesResult{
		Default:     d.Strategy,
		MarkerColor: d.Marker,
		Metrics:     []spots.Metric{spots.MetricEuclidean, spots.MetricCIEDE2000},
		Strategies: []StrategyInfo{
			{
				Name:        spots.KindBox,
				Description: "Accept pixels with L >= lightness_min, |a| <= a_tolerance and |b| <= b_tolerance",
				Defaults:    d.Box,
			},
			{
				Name:             spots.KindDelta,
				Description:      "Accept pixels whose distance to the reference color is strictly below max_distance",
				MeasuresDistance: true,
				Defaults:         d.Delta,
			},
		},
	}, nil
}
