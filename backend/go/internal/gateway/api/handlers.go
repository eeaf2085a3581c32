package api

import (
	"WebShop_AI/backend/go/internal/agent"
	"WebShop_AI/backend/go/internal/config"
	"WebShop_AI/backend/go/internal/gateway/service"
	"WebShop_AI/backend/go/internal/models"
	"WebShop_AI/backend/go/pkg/httpmiddleware"
	"WebShop_AI/backend/go/pkg/logger"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Forwarder 是 Handler 依赖的转发能力，由 service.Forwarder 实现。
type Forwarder interface {
	ForwardChat(ctx context.Context, req models.ChatRequest) service.Outcome
	ForwardInvoke(ctx context.Context, agentID string, body []byte) service.Outcome
}

// Handler 封装了所有 API endpoint 的处理函数。
type Handler struct {
	forwarder Forwarder
	registry  *agent.Registry
	app       config.AppInfo
	log       *logger.Logger
	now       func() time.Time
}

// NewHandler 创建一个新的 Handler 实例。
func NewHandler(f Forwarder, registry *agent.Registry, app config.AppInfo, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{forwarder: f, registry: registry, app: app, log: log, now: time.Now}
}

// --- Service descriptor and health ---

// Root 返回服务描述与 Agent 概要。
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    h.app.Name,
		"version": h.app.Version,
		"status":  "running",
		"runtime": "Go (Gin)",
		"endpoints": gin.H{
			"health": "/api/health",
			"chat":   "/api/chat",
			"agents": "/api/agents",
		},
		"agents": h.registry.Summaries(),
	})
}

// Health 返回存活状态。上游状态是固定占位值，不做实时探测。
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": service.Timestamp(h.now()),
		"services": gin.H{
			"gateway":      "up",
			"orchestrator": "pending",
		},
	})
}

// --- Chat handlers ---

// SendMessage 处理 POST /api/chat。
func (h *Handler) SendMessage(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	out := h.forwarder.ForwardChat(c.Request.Context(), req)
	c.JSON(out.Status, out.Body)
}

// GetHistory 返回空的历史记录。网关不保存会话。
func (h *Handler) GetHistory(c *gin.Context) {
	sessionID := c.Param("session_id")
	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"messages":   []interface{}{},
		"count":      0,
	})
}

// ClearHistory 是空操作，总是返回成功。
func (h *Handler) ClearHistory(c *gin.Context) {
	sessionID := c.Param("session_id")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Session %s cleared", sessionID),
	})
}

// --- Agent handlers ---

// ListAgents 返回注册表中的全部 Agent。
func (h *Handler) ListAgents(c *gin.Context) {
	agents := h.registry.List()
	c.JSON(http.StatusOK, gin.H{
		"agents": agents,
		"total":  len(agents),
	})
}

// InvokeAgent 处理 POST /api/agents/:agent_id/invoke。
// 请求体先校验再按原始字节转发。
func (h *Handler) InvokeAgent(c *gin.Context) {
	agentID := c.Param("agent_id")

	body, err := c.GetRawData()
	if err != nil {
		h.badRequest(c, err)
		return
	}
	var req models.InvokeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.badRequest(c, err)
		return
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	out := h.forwarder.ForwardInvoke(c.Request.Context(), agentID, body)
	if raw, ok := out.Body.(json.RawMessage); ok {
		c.Data(out.Status, "application/json; charset=utf-8", raw)
		return
	}
	c.JSON(out.Status, out.Body)
}

// AgentStatus 返回固定的占位状态，不反映真实运行情况。
func (h *Handler) AgentStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"agent_id":                 c.Param("agent_id"),
		"status":                   "active",
		"uptime":                   "0d 0h 0m",
		"requests_handled":         0,
		"average_response_time_ms": 0,
	})
}

// badRequest 以 400 返回客户端输入错误，错误信息指出缺失的字段。
func (h *Handler) badRequest(c *gin.Context, err error) {
	fe := &service.ForwardError{Kind: service.KindClientInput, Err: describeInputError(err)}
	h.log.WithTraceID(httpmiddleware.GetRequestID(c)).
		WithError(models.ErrorInfo{Message: fe.Error(), Type: fe.Kind.String(), StatusCode: fe.StatusCode()}).
		Debug("rejected client input")
	c.JSON(fe.StatusCode(), service.BuildInputFailure(fe))
}

func describeInputError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return fmt.Errorf("missing required field: %s", strings.Join(fields, ", "))
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("invalid JSON body: %v", err)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Errorf("invalid type for field %s", typeErr.Field)
	}
	return fmt.Errorf("invalid request: %v", err)
}
