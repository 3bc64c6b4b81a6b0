package mcp

import (
	"encoding/json"

	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice/definitions"
)

const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "mobile-device-mcp-server"
	ServerVersion   = "1.0.0"
)

// JSON-RPC 2.0 protocol error codes. Tool failures map through
// definitions.Error.Code instead.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
)

// Message is one JSON-RPC 2.0 envelope, request or response. Params
// stays raw until the method is known; ID is any because clients send
// numbers or strings and the response must echo the exact value.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

type Capabilities struct {
	Tools map[string]any `json:"tools"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Tool is one catalog entry as returned by tools/list.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// InputSchema is the JSON Schema fragment describing a tool's
// arguments. Only the subset the catalog needs is modeled.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Default     any      `json:"default,omitempty"`
}

type ToolsListResult struct {
	Tools []Tool `json:"tools"`
}

type ToolsCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type ToolsCallResult struct {
	Content []definitions.ContentBlock `json:"content"`
}
