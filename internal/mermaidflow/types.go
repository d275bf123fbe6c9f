package mermaidflow

import (
	"bytes"
	"encoding/json"
)

// Params 工具参数，值域与 JSON 数据模型一致：
// string, json.Number, bool, nil, map[string]any, []any
type Params map[string]any

// ToolDescriptor 远端返回的单个工具描述，原样保留字节
type ToolDescriptor struct {
	Name string
	raw  json.RawMessage
}

// UnmarshalJSON 保留原始字节并尽量读取 name 字段
func (d *ToolDescriptor) UnmarshalJSON(data []byte) error {
	d.raw = append(d.raw[:0], data...)
	var head struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &head); err == nil {
		d.Name = head.Name
	} else {
		d.Name = ""
	}
	return nil
}

// MarshalJSON 原样输出远端描述
func (d ToolDescriptor) MarshalJSON() ([]byte, error) {
	if len(d.raw) == 0 {
		return json.Marshal(map[string]string{"name": d.Name})
	}
	return d.raw, nil
}

// Availability 远端服务可用性探测结果
type Availability int

const (
	Unavailable Availability = iota
	Available
)

func (a Availability) Bool() bool {
	return a == Available
}

func (a Availability) String() string {
	if a == Available {
		return "available"
	}
	return "unavailable"
}

// Falsy 判断 JSON 值是否为假值：缺失、null、false、0 或空字符串
func Falsy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "false", `""`:
		return true
	}
	if raw[0] == '"' {
		return false
	}
	var n float64
	return json.Unmarshal(raw, &n) == nil && n == 0
}

// 远端协议
type executeRequest struct {
	Tool   string `json:"tool"`
	Params Params `json:"params"`
}

// envelope 远端响应体的顶层字段，非 JSON 对象的响应体按空对象处理
type envelope map[string]json.RawMessage

func parseEnvelope(body []byte) envelope {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || env == nil {
		return envelope{}
	}
	return env
}

// tools 只接受数组，其它形态一律视为空列表
func (e envelope) tools() []ToolDescriptor {
	tools := []ToolDescriptor{}
	raw := bytes.TrimSpace(e["tools"])
	if len(raw) == 0 || raw[0] != '[' {
		return tools
	}
	if err := json.Unmarshal(raw, &tools); err != nil {
		return []ToolDescriptor{}
	}
	return tools
}

// failed 仅当 status 为字符串 "error" 时成立
func (e envelope) failed() bool {
	var status string
	return json.Unmarshal(e["status"], &status) == nil && status == "error"
}

// message 远端错误原因，假值时为 Unknown error
func (e envelope) message() string {
	raw := e["message"]
	if Falsy(raw) {
		return "Unknown error"
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return msg
	}
	return string(bytes.TrimSpace(raw))
}

// result 原样透传的结果字段
func (e envelope) result() json.RawMessage {
	return e["result"]
}
