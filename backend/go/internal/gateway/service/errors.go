package service

import (
	"fmt"
	"net/http"
)

// ErrorKind 对网关可能遇到的失败进行分类。
type ErrorKind int

const (
	// KindTransport 上游不可达：连接被拒、超时、DNS 或 TLS 失败、熔断打开。
	KindTransport ErrorKind = iota
	// KindMalformedResponse 上游有响应，但响应体无法按预期结构解析。
	KindMalformedResponse
	// KindClientInput 客户端请求缺少必填字段或 JSON 非法。
	KindClientInput
)

// String 返回用于日志的类型名。
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "upstream_transport"
	case KindMalformedResponse:
		return "upstream_malformed"
	case KindClientInput:
		return "client_input"
	default:
		return "unknown"
	}
}

// ForwardError 是转发过程中产生的结构化错误。
type ForwardError struct {
	Kind    ErrorKind
	AgentID string
	Err     error
}

func (e *ForwardError) Error() string {
	switch e.Kind {
	case KindTransport:
		return fmt.Sprintf("Agent %s unavailable: %v", e.AgentID, e.Err)
	case KindMalformedResponse:
		return fmt.Sprintf("Failed to parse response: %v", e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *ForwardError) Unwrap() error {
	return e.Err
}

// StatusCode 返回该错误对应的 HTTP 状态码。
func (e *ForwardError) StatusCode() int {
	switch e.Kind {
	case KindTransport:
		return http.StatusServiceUnavailable
	case KindClientInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
