package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	gwhttp "WebShop_AI/backend/go/pkg/http"
)

// chatRequest is the body of POST /api/chat.
type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	Language  string `json:"language,omitempty"`
	Agent     string `json:"agent,omitempty"`
}

// invokeRequest is the body of POST /api/agents/:id/invoke.
type invokeRequest struct {
	Action string          `json:"action"`
	Params json.RawMessage `json:"params,omitempty"`
}

// printReply writes the reply body, indented when it is JSON.
// A non-2xx status is reported as an error after the body is printed.
func printReply(w io.Writer, reply *gwhttp.Reply) error {
	var out bytes.Buffer
	if err := json.Indent(&out, reply.Body, "", "  "); err != nil {
		out.Reset()
		out.Write(reply.Body)
	}
	fmt.Fprintln(w, out.String())
	if reply.StatusCode < 200 || reply.StatusCode > 299 {
		return fmt.Errorf("gateway returned status %d", reply.StatusCode)
	}
	return nil
}
