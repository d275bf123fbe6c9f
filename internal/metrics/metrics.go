package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API 指标
var (
	// APIRequestsTotal API 请求总数
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_api_requests_total",
			Help: "API 请求总数",
		},
		[]string{"method", "path", "status"},
	)

	// APIRequestDuration API 请求延迟（秒）
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_api_request_duration_seconds",
			Help:    "API 请求延迟分布",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// APIResponseSize API 响应体大小（字节）
	APIResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_api_response_size_bytes",
			Help:    "API 响应体大小分布",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)
)

// MermaidFlow 远端调用指标
var (
	// RemoteRequestsTotal 远端调用总数
	RemoteRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_mermaidflow_requests_total",
			Help: "MermaidFlow 远端调用总数",
		},
		[]string{"operation", "outcome"},
	)

	// RemoteRequestDuration 远端调用耗时（秒）
	RemoteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_mermaidflow_request_duration_seconds",
			Help:    "MermaidFlow 远端调用耗时分布",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	// RemoteRequestsInFlight 正在进行的远端调用
	RemoteRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gateway_mermaidflow_requests_in_flight",
			Help: "正在进行的 MermaidFlow 远端调用数量",
		},
		[]string{"operation"},
	)
)

// 远端调用结果
const (
	OutcomeSuccess     = "success"
	OutcomeRemoteError = "remote_error"
	OutcomeToolError   = "tool_error"
)
