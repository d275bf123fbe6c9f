package mermaidflow

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	response "gateway/api/handlers/common"
	"gateway/internal/logger"
	"gateway/internal/mermaidflow"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ToolService 远端工具服务适配器
type ToolService interface {
	ListTools(ctx context.Context) ([]mermaidflow.ToolDescriptor, error)
	RunTool(ctx context.Context, toolName string, params mermaidflow.Params) (json.RawMessage, error)
	CheckAvailability(ctx context.Context) mermaidflow.Availability
}

// Handler MermaidFlow 代理 Handler
type Handler struct {
	tools ToolService
}

// NewHandler 创建 Handler
func NewHandler(tools ToolService) *Handler {
	return &Handler{tools: tools}
}

// RegisterRoutes 挂载 /tools /execute /status
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/tools", h.ListTools)
	group.POST("/execute", h.Execute)
	group.GET("/status", h.Status)
}

// ListTools 查询远端工具列表
// @Summary 查询 MermaidFlow 工具列表
// @Tags MermaidFlow
// @Produce json
// @Success 200 {object} ToolsResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/mermaidflow/tools [get]
func (h *Handler) ListTools(c *gin.Context) {
	tools, err := h.tools.ListTools(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Fail(err.Error()))
		return
	}
	c.JSON(http.StatusOK, ToolsResponse{Success: true, Tools: tools})
}

// Execute 执行远端工具
// @Summary 执行 MermaidFlow 工具
// @Tags MermaidFlow
// @Accept json
// @Produce json
// @Param request body ExecuteRequest true "工具名与参数"
// @Success 200 {object} ExecuteResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/mermaidflow/execute [post]
func (h *Handler) Execute(c *gin.Context) {
	req, vErr := bindExecuteRequest(c)
	if vErr != nil {
		logger.Debug("工具执行请求校验失败", zap.String("reason", vErr.Message))
		c.JSON(http.StatusBadRequest, response.Fail(vErr.Message))
		return
	}

	result, err := h.tools.RunTool(c.Request.Context(), req.Tool, req.Parameters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Fail(err.Error()))
		return
	}
	c.JSON(http.StatusOK, ExecuteResponse{Success: true, Result: result})
}

// Status 查询远端服务可用性
// @Summary MermaidFlow 服务状态
// @Tags MermaidFlow
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /api/mermaidflow/status [get]
func (h *Handler) Status(c *gin.Context) {
	available := h.tools.CheckAvailability(c.Request.Context()).Bool()
	msg := msgUnavailable
	if available {
		msg = msgAvailable
	}
	c.JSON(http.StatusOK, StatusResponse{Success: true, Available: available, Message: msg})
}

// executeBody 原始请求体，tool 与 parameters 的假值按缺省处理
type executeBody struct {
	Tool       json.RawMessage `json:"tool"`
	Parameters json.RawMessage `json:"parameters"`
}

// bindExecuteRequest 解析请求体；空请求体按 {} 处理，数字保留原始精度
func bindExecuteRequest(c *gin.Context) (*ExecuteRequest, *mermaidflow.ValidationError) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, &mermaidflow.ValidationError{Message: msgInvalidBody}
	}

	var body executeBody
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, &mermaidflow.ValidationError{Message: msgInvalidBody}
		}
	}

	if mermaidflow.Falsy(body.Tool) {
		return nil, &mermaidflow.ValidationError{Message: mermaidflow.ErrToolNameRequired}
	}

	req := &ExecuteRequest{Parameters: mermaidflow.Params{}}
	if err := json.Unmarshal(body.Tool, &req.Tool); err != nil {
		return nil, &mermaidflow.ValidationError{Message: msgInvalidBody}
	}
	if !mermaidflow.Falsy(body.Parameters) {
		dec := json.NewDecoder(bytes.NewReader(body.Parameters))
		dec.UseNumber()
		if err := dec.Decode(&req.Parameters); err != nil {
			return nil, &mermaidflow.ValidationError{Message: msgInvalidBody}
		}
	}
	return req, nil
}
