package mermaidflow

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gateway/internal/logger"
	"gateway/internal/metrics"
	"gateway/pkg/httputil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultBaseURL 未配置 MERMAIDFLOW_URL 时的远端地址
const DefaultBaseURL = "http://localhost:5000"

// Client MermaidFlow 远端工具服务适配器
// 只持有只读配置，可在多个请求间并发使用
type Client struct {
	baseURL string
	http    *httputil.Client
	tracer  trace.Tracer
}

// Option 适配器配置选项
type Option func(*clientOptions)

type clientOptions struct {
	timeout time.Duration
}

// WithTimeout 设置出站请求超时
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// NewClient 创建适配器，baseURL 为空时使用 DefaultBaseURL
func NewClient(baseURL string, opts ...Option) *Client {
	o := &clientOptions{timeout: httputil.DefaultTimeout}
	for _, opt := range opts {
		opt(o)
	}

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		http:    httputil.NewClient(httputil.WithTimeout(o.timeout)),
		tracer:  otel.Tracer("gateway/internal/mermaidflow"),
	}
}

// BaseURL 远端服务地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListTools 获取远端工具列表，tools 字段缺失或不是数组时返回空切片
func (c *Client) ListTools(ctx context.Context) ([]ToolDescriptor, error) {
	ctx, span := c.startSpan(ctx, "MermaidFlow.ListTools")
	defer span.End()

	var (
		body []byte
		err  error
	)
	metrics.RecordRemoteCall("list_tools", func() string {
		body, err = c.http.Get(ctx, c.baseURL+"/tools")
		if err != nil {
			return metrics.OutcomeRemoteError
		}
		return metrics.OutcomeSuccess
	})

	if err != nil {
		logger.WithContext(ctx).Error("获取 MermaidFlow 工具列表失败",
			zap.String("base_url", c.baseURL),
			zap.Error(err),
		)
		remoteErr := &RemoteServiceError{Operation: "fetch", Err: err}
		failSpan(span, remoteErr)
		return nil, remoteErr
	}

	tools := parseEnvelope(body).tools()
	span.SetAttributes(attribute.Int("mermaidflow.tools_count", len(tools)))
	return tools, nil
}

// RunTool 执行远端工具，成功时原样返回 result 字段
// 工具名由调用方校验，这里只负责转发
func (c *Client) RunTool(ctx context.Context, toolName string, params Params) (json.RawMessage, error) {
	ctx, span := c.startSpan(ctx, "MermaidFlow.RunTool")
	defer span.End()
	span.SetAttributes(attribute.String("mermaidflow.tool", toolName))

	if params == nil {
		params = Params{}
	}

	var (
		env envelope
		err error
	)
	metrics.RecordRemoteCall("run_tool", func() string {
		body, postErr := c.http.PostJSON(ctx, c.baseURL+"/execute", executeRequest{Tool: toolName, Params: params})
		if postErr != nil {
			err = &RemoteServiceError{Operation: "execute", Tool: toolName, Err: postErr}
			return metrics.OutcomeRemoteError
		}
		env = parseEnvelope(body)
		if env.failed() {
			err = &ToolExecutionError{Tool: toolName, Message: env.message()}
			return metrics.OutcomeToolError
		}
		return metrics.OutcomeSuccess
	})

	if err != nil {
		logger.WithContext(ctx).Error("执行 MermaidFlow 工具失败",
			zap.String("tool", toolName),
			zap.Error(err),
		)
		failSpan(span, err)
		return nil, err
	}
	return env.result(), nil
}

// CheckAvailability 探测远端服务是否可用，任何失败都返回 Unavailable
func (c *Client) CheckAvailability(ctx context.Context) Availability {
	ctx, span := c.startSpan(ctx, "MermaidFlow.CheckAvailability")
	defer span.End()

	var err error
	metrics.RecordRemoteCall("check_availability", func() string {
		_, err = c.http.Get(ctx, c.baseURL+"/tools")
		if err != nil {
			return metrics.OutcomeRemoteError
		}
		return metrics.OutcomeSuccess
	})

	if err != nil {
		logger.WithContext(ctx).Warn("MermaidFlow 服务不可用", zap.Error(err))
		span.SetAttributes(attribute.Bool("mermaidflow.available", false))
		return Unavailable
	}
	span.SetAttributes(attribute.Bool("mermaidflow.available", true))
	return Available
}

func (c *Client) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("mermaidflow.base_url", c.baseURL)),
	)
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	var toolErr *ToolExecutionError
	if errors.As(err, &toolErr) {
		span.SetStatus(codes.Error, "tool execution failed")
		return
	}
	span.SetStatus(codes.Error, "remote service error")
}
