package mermaidflow

import (
	"fmt"
)

// ErrToolNameRequired 缺少工具名
const ErrToolNameRequired = "Tool name is required"

// ValidationError 入站请求不合法，映射为 400
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RemoteServiceError 远端不可达或返回非 2xx，映射为 500
type RemoteServiceError struct {
	Operation string
	Tool      string
	Err       error
}

func (e *RemoteServiceError) Error() string {
	if e.Tool != "" {
		return fmt.Sprintf("Failed to %s MermaidFlow tool %s: %v", e.Operation, e.Tool, e.Err)
	}
	return fmt.Sprintf("Failed to %s MermaidFlow tools: %v", e.Operation, e.Err)
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}

// ToolExecutionError 远端可达但报告工具执行失败，映射为 500
type ToolExecutionError struct {
	Tool    string
	Message string
}

func (e *ToolExecutionError) Error() string {
	return e.Message
}
