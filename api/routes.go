package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps Dependencies, handlers *Handlers) {
	registerSystemRoutes(router, deps)

	apiGroup := router.Group("/api")
	apiGroup.GET("/customer", CustomerInfo(deps.Config, deps.Now))

	// MermaidFlow 工具代理
	handlers.MermaidFlow.RegisterRoutes(apiGroup.Group("/mermaidflow"))
}

// registerSystemRoutes 注册健康检查、指标等公开端点
func registerSystemRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/", RootInfo(deps.Config))
	router.GET("/health", HealthCheck())
	router.GET("/ready", ReadinessCheck(deps.Database, deps.Cache))

	// Prometheus 指标端点
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
