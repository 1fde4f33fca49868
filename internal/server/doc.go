// Package server implements the MCP (Model Context Protocol) server for
// paper target analysis.
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
//   - target_load: Load a photo and report its size and scale
//   - target_detect_holes: Run hole detection and return every stage
//   - target_find_center: Locate the printed centre of the target
//   - target_analyze: Detect holes and compute group metrics
//   - target_overlay: Draw the analysis on the photo as base64 PNG
//   - target_profiles: List the shooting profiles
//
// Every image tool accepts optional per-call overrides (sheet size, merge
// strategy, re-ranking) on top of the configuration the server was
// started with.
//
// # Image Caching
//
// Loaded images are cached by path for the lifetime of the process, so an
// analyze followed by an overlay decodes the photo once.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with
// code -32000 and the Go error string as data. A photo with no detectable
// holes is a tool error ("analysis failed: no holes detected").
//
// # Usage
//
//	srv := server.New(cfg, logger)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
