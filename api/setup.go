package api

import (
	"time"

	mermaidflowHandlers "gateway/api/handlers/mermaidflow"
	"gateway/internal/config"
	"gateway/internal/metrics"
	middlewarepkg "gateway/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Dependencies 路由所需的外部依赖
// Database 与 Cache 为 nil 时，就绪检查将其记为 disabled
type Dependencies struct {
	Config   *config.Config
	Tools    mermaidflowHandlers.ToolService
	Database Pinger
	Cache    Pinger
	Now      func() time.Time
}

// Handlers 各业务 Handler 集合
type Handlers struct {
	MermaidFlow *mermaidflowHandlers.Handler
}

// SetupRouter 设置并返回 Gin 路由
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()

	// 全局中间件
	router.Use(Recovery())
	router.Use(middlewarepkg.RequestIDMiddleware())
	router.Use(RequestLogger())
	router.Use(CORS())

	// Prometheus 指标收集中间件
	router.Use(metrics.PrometheusMiddleware())

	handlers := &Handlers{
		MermaidFlow: mermaidflowHandlers.NewHandler(deps.Tools),
	}

	RegisterRoutes(router, deps, handlers)
	return router
}
