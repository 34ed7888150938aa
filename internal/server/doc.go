// Package server implements the MCP (Model Context Protocol) server for white
// spot detection.
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
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - spot_detect: Classify pixels with the box or delta strategy, report
//     coverage and optionally export the annotated overlay and binary mask
//   - spot_strategies: List strategies with their configured defaults
//
// # Image Caching
//
// Images loaded by path are decoded once and cached for the lifetime of the
// process. Inline base64 images are never cached.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses. Threshold validation
// failures use -32602; everything else uses -32000. The data field carries the
// Go error string. Unparseable request lines get a -32700 response with a null
// id.
//
// # Usage
//
//	srv := server.New(analyzer, server.Options{Version: version})
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
