package api

import (
	"context"
	"net/http"
	"time"

	"gateway/internal/config"

	"github.com/gin-gonic/gin"
)

// Pinger 可做连通性检查的依赖（数据库、Redis）
type Pinger interface {
	Ping(ctx context.Context) error
}

// RootResponse 根路径响应
type RootResponse struct {
	Message     string `json:"message"`
	Customer    string `json:"customer"`
	Environment string `json:"environment"`
}

// CustomerResponse 客户信息响应
type CustomerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Created string `json:"created"`
}

// ReadinessResponse 就绪检查响应
type ReadinessResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

const (
	depDisabled    = "disabled"
	depConnected   = "connected"
	depUnreachable = "unreachable"
)

// HealthCheck 健康检查
// @Summary 服务健康检查
// @Tags System
// @Produce plain
// @Success 200 {string} string "ok"
// @Router /health [get]
func HealthCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	}
}

// RootInfo 返回服务与客户标识
// @Summary API 根信息
// @Tags System
// @Produce json
// @Success 200 {object} RootResponse
// @Router / [get]
func RootInfo(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, RootResponse{
			Message:     "Docker SaaS Pipeline API",
			Customer:    cfg.Customer.ID,
			Environment: cfg.Server.Env,
		})
	}
}

// CustomerInfo 返回当前部署的客户信息
// @Summary 客户信息
// @Tags System
// @Produce json
// @Success 200 {object} CustomerResponse
// @Router /api/customer [get]
func CustomerInfo(cfg *config.Config, now func() time.Time) gin.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, CustomerResponse{
			ID:      cfg.Customer.ID,
			Name:    cfg.Customer.Name,
			Created: now().UTC().Format(time.RFC3339Nano),
		})
	}
}

// ReadinessCheck 就绪检查，未配置的依赖记为 disabled
// @Summary 服务就绪检查
// @Tags System
// @Produce json
// @Success 200 {object} ReadinessResponse
// @Failure 503 {object} ReadinessResponse
// @Router /ready [get]
func ReadinessCheck(db, cache Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		resp := ReadinessResponse{
			Status:   "ready",
			Database: probe(ctx, db),
			Redis:    probe(ctx, cache),
		}
		if resp.Database == depUnreachable || resp.Redis == depUnreachable {
			resp.Status = "not_ready"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return depDisabled
	}
	if err := p.Ping(ctx); err != nil {
		return depUnreachable
	}
	return depConnected
}
