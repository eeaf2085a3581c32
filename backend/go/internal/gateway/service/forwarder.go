package service

import (
	"WebShop_AI/backend/go/internal/config"
	"WebShop_AI/backend/go/internal/models"
	gwhttp "WebShop_AI/backend/go/pkg/http"
	"WebShop_AI/backend/go/pkg/logger"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Upstream 是转发所需的出站调用能力，由 pkg/http.Client 实现。
type Upstream interface {
	PostJSON(ctx context.Context, url string, body []byte) (*gwhttp.Reply, error)
}

// Outcome 是一次转发的结果：HTTP 状态码和要返回给客户端的响应体。
// Body 为 *models.Envelope，或 invoke 成功时上游原样的 json.RawMessage。
type Outcome struct {
	Status int
	Body   any
}

// Forwarder 把入站请求转发到上游编排服务，并规范化响应。
// 它只持有启动时确定的只读配置，不在请求之间共享可变状态。
type Forwarder struct {
	upstream        Upstream
	base            string
	defaultAgent    string
	defaultLanguage string
	log             *logger.Logger
	now             func() time.Time
}

// ForwarderOption 用于配置 Forwarder。
type ForwarderOption func(*Forwarder)

// WithClock 替换时间来源，测试中用来固定时间戳。
func WithClock(now func() time.Time) ForwarderOption {
	return func(f *Forwarder) {
		f.now = now
	}
}

// NewForwarder 创建一个新的 Forwarder。
func NewForwarder(upstream Upstream, cfg *config.AppConfig, log *logger.Logger, opts ...ForwarderOption) *Forwarder {
	if log == nil {
		log = logger.Discard()
	}
	f := &Forwarder{
		upstream:        upstream,
		base:            cfg.UpstreamBase(),
		defaultAgent:    cfg.Gateway.DefaultAgent,
		defaultLanguage: cfg.Gateway.DefaultLanguage,
		log:             log,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ResolveAgent 返回实际使用的 Agent ID。
func (f *Forwarder) ResolveAgent(requested string) string {
	if requested != "" {
		return requested
	}
	return f.defaultAgent
}

// ResolveLanguage 返回实际使用的语言代码。
func (f *Forwarder) ResolveLanguage(requested string) string {
	if requested != "" {
		return requested
	}
	return f.defaultLanguage
}

func (f *Forwarder) agentURL(agentID, operation string) string {
	return fmt.Sprintf("%s/agents/%s/%s", f.base, url.PathEscape(agentID), operation)
}

// ForwardChat 把聊天消息转发给上游。
// 上游不可达时返回兜底回复 (200)，而不是错误；响应无法解析时返回 500。
func (f *Forwarder) ForwardChat(ctx context.Context, req models.ChatRequest) Outcome {
	agentID := f.ResolveAgent(req.Agent)
	payload, err := json.Marshal(models.UpstreamChatPayload{
		Message:   req.Message,
		SessionID: req.SessionID,
		Language:  f.ResolveLanguage(req.Language),
	})
	if err != nil {
		return f.failure(&ForwardError{Kind: KindClientInput, AgentID: agentID, Err: err})
	}

	log := f.log.WithFields(map[string]interface{}{
		"agent_id":   agentID,
		"session_id": req.SessionID,
		"operation":  "chat",
	})

	reply, err := f.upstream.PostJSON(ctx, f.agentURL(agentID, "chat"), payload)
	if err != nil && !errors.Is(err, gwhttp.ErrResponseTooLarge) {
		if errors.Is(ctx.Err(), context.Canceled) {
			log.Info("client disconnected before upstream replied")
		} else {
			log.WithError(models.ErrorInfo{Message: err.Error(), Type: KindTransport.String()}).
				Warn("upstream agents unavailable, serving fallback reply")
		}
		return Outcome{Status: http.StatusOK, Body: BuildChatFallback(req.SessionID, f.now())}
	}
	if err != nil {
		return f.malformed(log, err)
	}

	parsed, err := decodeChatReply(reply.Body)
	if err != nil {
		return f.malformed(log, err)
	}
	log.WithField("upstream_status", reply.StatusCode).Debug("chat forwarded")
	return Outcome{Status: http.StatusOK, Body: BuildChatSuccess(parsed, agentID, req.SessionID, f.now())}
}

// ForwardInvoke 把原始请求体原样转发给上游的 invoke 接口。
// Agent ID 不经注册表校验，由上游判断其是否有效。
// 上游不可达时返回 503，不做兜底：调用方需要知道操作没有执行。
func (f *Forwarder) ForwardInvoke(ctx context.Context, agentID string, body []byte) Outcome {
	log := f.log.WithFields(map[string]interface{}{
		"agent_id":  agentID,
		"operation": "invoke",
	})

	reply, err := f.upstream.PostJSON(ctx, f.agentURL(agentID, "invoke"), body)
	if err != nil && !errors.Is(err, gwhttp.ErrResponseTooLarge) {
		fe := &ForwardError{Kind: KindTransport, AgentID: agentID, Err: err}
		log.WithError(models.ErrorInfo{Message: err.Error(), Type: fe.Kind.String(), StatusCode: fe.StatusCode()}).
			Warn("agent invoke failed")
		return Outcome{Status: fe.StatusCode(), Body: BuildInvokeFailure(agentID, err)}
	}
	if err != nil {
		return f.malformed(log, err)
	}

	if !json.Valid(reply.Body) {
		return f.malformed(log, errors.New("upstream body is not valid JSON"))
	}
	log.WithField("upstream_status", reply.StatusCode).Debug("invoke forwarded")
	return Outcome{Status: http.StatusOK, Body: json.RawMessage(reply.Body)}
}

func (f *Forwarder) malformed(log *logger.Logger, err error) Outcome {
	log.WithError(models.ErrorInfo{
		Message:    err.Error(),
		Type:       KindMalformedResponse.String(),
		StatusCode: http.StatusInternalServerError,
	}).Error("failed to parse upstream response")
	return Outcome{Status: http.StatusInternalServerError, Body: BuildParseFailure(err)}
}

func (f *Forwarder) failure(err *ForwardError) Outcome {
	return Outcome{Status: err.StatusCode(), Body: models.Failed(err.Error())}
}
