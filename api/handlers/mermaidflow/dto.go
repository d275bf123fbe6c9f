package mermaidflow

import (
	"encoding/json"

	"gateway/internal/mermaidflow"
)

// ExecuteRequest 执行工具请求
type ExecuteRequest struct {
	Tool       string             `json:"tool"`
	Parameters mermaidflow.Params `json:"parameters"`
}

// ToolsResponse 工具列表响应
type ToolsResponse struct {
	Success bool                         `json:"success"`
	Tools   []mermaidflow.ToolDescriptor `json:"tools"`
}

// ExecuteResponse 工具执行响应，result 为远端结果原样透传
type ExecuteResponse struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
}

// StatusResponse 远端可用性响应
type StatusResponse struct {
	Success   bool   `json:"success"`
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

const (
	msgAvailable   = "MermaidFlow service is available"
	msgUnavailable = "MermaidFlow service is not available"
	msgInvalidBody = "Invalid request body"
)
