// Package server implements the MCP (Model Context Protocol) server for dense
// image feature sampling.
//
// This package provides a JSON-RPC 2.0 server that exposes the dense sampler
// through the MCP protocol, so that MCP-compatible clients can lay out a
// sampling grid on an image and retrieve a descriptor for every grid point.
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
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Dense Sampling:
//   - image_dense_layout: Grid geometry (columns, rows, count, window) only
//   - image_dense_describe: Sample locations and 128-element descriptors
//   - image_dense_overlay: Grid drawn over the image as base64 PNG
//
// Every dense tool accepts scale, period_x and period_y. Omitted values fall
// back to the server configuration (see package config); explicit values that
// are zero, negative or not finite are rejected.
//
// # Image Caching
//
// Decoded images are cached by path, and so are the grayscale planes derived
// from them (one per pixel type and blur radius). The cache persists for the
// lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	cfg, err := config.Load(os.LookupEnv)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := server.New(cfg).Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
