// Package mcp contains protocol data types and constants shared between the
// dispatcher, the handler registry and domain packages. It mirrors the wire
// representation of the Model Context Protocol subset this server speaks
// (lifecycle, tools, prompts, logging) while keeping the surface Go-friendly.
//
// The package is free of transport logic. The stdio transport frames and
// writes these types; domain packages construct them as handler output.
//
// # Method Names
//
// JSON-RPC method names are enumerated as Method constants. Besides the MCP
// names (tools/call, prompts/get, ...) the compact forms "tool" and "prompt"
// are accepted, where the handler name is carried at the top level of the
// envelope and params hold the arguments directly.
//
// Example (tool result construction):
//
//	res := &mcp.CallToolResult{
//	    Content: []mcp.ContentBlock{mcp.TextBlock("hello")},
//	}
//
// # Logging Levels
//
// LoggingLevel values mirror syslog severities. Use IsValidLoggingLevel to
// validate user-provided values.
package mcp
