package service

import (
	"WebShop_AI/backend/go/internal/models"
	"encoding/json"
	"strings"
	"time"
)

// FallbackMessage 是上游不可用时以 MARIE 名义返回的固定回复。
const FallbackMessage = "Je suis MARIE, l'assistante de Web Shop. Les services Python sont en cours de démarrage. En attendant, comment puis-je vous aider ?"

// FallbackAgent 是兜底回复署名的 Agent，与请求的 Agent 无关。
const FallbackAgent = "MARIE"

// TextField 是可选的字符串字段：缺失、null 或非字符串时解码为空串，而不是报错。
type TextField string

// UnmarshalJSON 实现 json.Unmarshaler。
func (t *TextField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = ""
		return nil
	}
	*t = TextField(s)
	return nil
}

// ChatReply 是上游 /agents/:id/chat 响应中网关关心的字段。
type ChatReply struct {
	Message TextField `json:"message"`
}

// decodeChatReply 解析上游聊天响应。响应必须是 JSON 对象。
func decodeChatReply(body []byte) (ChatReply, error) {
	var reply ChatReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return ChatReply{}, err
	}
	return reply, nil
}

// Timestamp 以带时区的 RFC 3339 格式输出调用时间。
func Timestamp(now time.Time) string {
	return now.UTC().Format(time.RFC3339Nano)
}

// BuildChatSuccess 由上游回复构造成功的聊天 Envelope。
func BuildChatSuccess(reply ChatReply, agentID, sessionID string, now time.Time) *models.Envelope {
	return models.Succeeded(models.ChatData{
		Message:   string(reply.Message),
		Agent:     strings.ToUpper(agentID),
		SessionID: sessionID,
		Timestamp: Timestamp(now),
	})
}

// BuildChatFallback 构造上游不可用时的兜底 Envelope。
func BuildChatFallback(sessionID string, now time.Time) *models.Envelope {
	return models.Succeeded(models.ChatData{
		Message:   FallbackMessage,
		Agent:     FallbackAgent,
		SessionID: sessionID,
		Timestamp: Timestamp(now),
	})
}

// BuildInvokeFailure 构造 invoke 传输失败的 Envelope，文本包含 Agent ID。
func BuildInvokeFailure(agentID string, err error) *models.Envelope {
	return models.Failed((&ForwardError{Kind: KindTransport, AgentID: agentID, Err: err}).Error())
}

// BuildParseFailure 构造上游响应无法解析时的 Envelope。
func BuildParseFailure(err error) *models.Envelope {
	return models.Failed((&ForwardError{Kind: KindMalformedResponse, Err: err}).Error())
}

// BuildInputFailure 构造客户端输入错误的 Envelope。
func BuildInputFailure(err error) *models.Envelope {
	return models.Failed(err.Error())
}
