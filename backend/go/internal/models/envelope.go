package models

import "encoding/json"

// ChatRequest 是客户端发送到 /api/chat 的请求体。
// session_id 只做透传，网关不创建、不保存也不校验它。
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id" binding:"required"`
	Language  string `json:"language,omitempty"`
	Agent     string `json:"agent,omitempty"`
}

// InvokeRequest 是客户端发送到 /api/agents/:id/invoke 的请求体。
// Params 对网关不透明，转发时使用原始请求字节。
type InvokeRequest struct {
	Action string          `json:"action" binding:"required"`
	Params json.RawMessage `json:"params,omitempty"`
}

// UpstreamChatPayload 是转发给上游 /agents/:id/chat 的请求体。
type UpstreamChatPayload struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	Language  string `json:"language"`
}

// ChatData 是聊天成功时返回给客户端的数据。
type ChatData struct {
	Message   string `json:"message"`
	Agent     string `json:"agent"`
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`
}

// Envelope 是返回给客户端的统一响应结构。
// Data 与 Error 有且只有一个非空。
type Envelope struct {
	Success bool      `json:"success"`
	Data    *ChatData `json:"data"`
	Error   *string   `json:"error"`
}

// Succeeded 构造成功的 Envelope。
func Succeeded(data ChatData) *Envelope {
	return &Envelope{Success: true, Data: &data}
}

// Failed 构造失败的 Envelope。
func Failed(message string) *Envelope {
	return &Envelope{Success: false, Error: &message}
}
