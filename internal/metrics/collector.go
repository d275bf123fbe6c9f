package metrics

import (
	"time"
)

// RecordRemoteCall 记录一次远端调用的耗时与结果
// fn 返回结果分类（OutcomeSuccess / OutcomeRemoteError / OutcomeToolError）
func RecordRemoteCall(operation string, fn func() string) {
	RemoteRequestsInFlight.WithLabelValues(operation).Inc()
	defer RemoteRequestsInFlight.WithLabelValues(operation).Dec()

	start := time.Now()
	outcome := fn()

	RemoteRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	RemoteRequestsTotal.WithLabelValues(operation, outcome).Inc()
}
