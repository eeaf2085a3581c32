package service

import (
	"WebShop_AI/backend/go/internal/config"
	"WebShop_AI/backend/go/internal/models"
	gwhttp "WebShop_AI/backend/go/pkg/http"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	Path string
	Body string
}

// fakeOrchestrator 模拟上游编排服务并记录收到的请求。
type fakeOrchestrator struct {
	mu      sync.Mutex
	calls   []recordedCall
	handler func(w http.ResponseWriter, r *http.Request, body []byte)
}

func (o *fakeOrchestrator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	o.mu.Lock()
	o.calls = append(o.calls, recordedCall{Path: r.URL.EscapedPath(), Body: string(body)})
	o.mu.Unlock()
	o.handler(w, r, body)
}

func (o *fakeOrchestrator) recorded() []recordedCall {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]recordedCall(nil), o.calls...)
}

func newForwarder(t *testing.T, baseURL string, mutate ...func(*config.AppConfig)) *Forwarder {
	t.Helper()
	cfg := config.Default()
	cfg.Upstream.AgentURL = baseURL
	cfg.Upstream.Timeout = 2 * time.Second
	for _, m := range mutate {
		m(cfg)
	}
	client := gwhttp.NewClient(gwhttp.ClientOptions{
		Timeout:          cfg.Upstream.Timeout,
		MaxResponseBytes: cfg.Upstream.MaxResponseBytes,
	})
	return NewForwarder(client, cfg, nil, WithClock(func() time.Time { return fixedNow }))
}

// stoppedUpstreamURL 返回一个已经关闭的服务器地址，连接会被拒绝。
func stoppedUpstreamURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.URL
	srv.Close()
	return u
}

func envelope(t *testing.T, o Outcome) *models.Envelope {
	t.Helper()
	env, ok := o.Body.(*models.Envelope)
	require.True(t, ok, "body is %T", o.Body)
	require.True(t, (env.Data == nil) != (env.Error == nil), "exactly one of data/error must be set")
	return env
}

func TestForwardChat_Success(t *testing.T) {
	orch := &fakeOrchestrator{handler: func(w http.ResponseWriter, r *http.Request, _ []byte) {
		_, _ = io.WriteString(w, `{"message":"Bonjour, je suis Hugo","agent":"hugo","extra":1}`)
	}}
	upstream := httptest.NewServer(orch)
	defer upstream.Close()

	f := newForwarder(t, upstream.URL)
	out := f.ForwardChat(context.Background(), models.ChatRequest{
		Message: "bonjour", SessionID: "s1", Agent: "hugo", Language: "en",
	})

	assert.Equal(t, http.StatusOK, out.Status)
	env := envelope(t, out)
	assert.Equal(t, "Bonjour, je suis Hugo", env.Data.Message)
	assert.Equal(t, "HUGO", env.Data.Agent)
	assert.Equal(t, "s1", env.Data.SessionID)
	assert.Equal(t, "2024-05-17T07:30:00Z", env.Data.Timestamp)

	require.Len(t, orch.recorded(), 1)
	assert.Equal(t, "/agents/hugo/chat", orch.recorded()[0].Path)
	assert.JSONEq(t, `{"message":"bonjour","session_id":"s1","language":"en"}`, orch.recorded()[0].Body)
}

func TestForwardChat_Defaults(t *testing.T) {
	orch := &fakeOrchestrator{handler: func(w http.ResponseWriter, r *http.Request, _ []byte) {
		_, _ = io.WriteString(w, `{"message":"ok"}`)
	}}
	upstream := httptest.NewServer(orch)
	defer upstream.Close()

	f := newForwarder(t, upstream.URL+"/")
	env := envelope(t, f.ForwardChat(context.Background(), models.ChatRequest{Message: "hi", SessionID: "s2"}))

	assert.Equal(t, "MARIE", env.Data.Agent)
	require.Len(t, orch.recorded(), 1)
	assert.Equal(t, "/agents/marie/chat", orch.recorded()[0].Path)
	assert.JSONEq(t, `{"message":"hi","session_id":"s2","language":"fr"}`, orch.recorded()[0].Body)
}

func TestForwardChat_MissingMessageFieldIsEmpty(t *testing.T) {
	upstream := httptest.NewServer(&fakeOrchestrator{handler: func(w http.ResponseWriter, r *http.Request, _ []byte) {
		_, _ = io.WriteString(w, `{"message":null,"status":"thinking"}`)
	}})
	defer upstream.Close()

	out := newForwarder(t, upstream.URL).ForwardChat(context.Background(), models.ChatRequest{Message: "m", SessionID: "s"})
	assert.Equal(t, http.StatusOK, out.Status)
	assert.Equal(t, "", envelope(t, out).Data.Message)
}

func TestForwardChat_UnreachableUpstreamFallsBack(t *testing.T) {
	f := newForwarder(t, stoppedUpstreamURL())

	for _, requested := range []string{"", "marie", "hugo", "unknown-agent"} {
		out := f.ForwardChat(context.Background(), models.ChatRequest{
			Message: "bonjour", SessionID: "s1", Agent: requested,
		})
		assert.Equal(t, http.StatusOK, out.Status)
		env := envelope(t, out)
		assert.True(t, env.Success)
		assert.Equal(t, "MARIE", env.Data.Agent)
		assert.Equal(t, "s1", env.Data.SessionID)
		assert.NotEmpty(t, env.Data.Message)
	}
}

func TestForwardChat_TimeoutFallsBack(t *testing.T) {
	release := make(chan struct{})
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer upstream.Close()
	defer close(release)

	f := newForwarder(t, upstream.URL, func(c *config.AppConfig) { c.Upstream.Timeout = 50 * time.Millisecond })
	out := f.ForwardChat(context.Background(), models.ChatRequest{Message: "m", SessionID: "s"})

	assert.Equal(t, http.StatusOK, out.Status)
	assert.Equal(t, FallbackMessage, envelope(t, out).Data.Message)
}

func TestForwardChat_MalformedUpstreamBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "Internal Server Error")
	}))
	defer upstream.Close()

	out := newForwarder(t, upstream.URL).ForwardChat(context.Background(), models.ChatRequest{Message: "m", SessionID: "s"})

	assert.Equal(t, http.StatusInternalServerError, out.Status)
	env := envelope(t, out)
	assert.False(t, env.Success)
	assert.True(t, strings.HasPrefix(*env.Error, "Failed to parse response:"))
}

func TestForwardChat_OversizedUpstreamBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"message":"`+strings.Repeat("a", 256)+`"}`)
	}))
	defer upstream.Close()

	f := newForwarder(t, upstream.URL, func(c *config.AppConfig) { c.Upstream.MaxResponseBytes = 64 })
	out := f.ForwardChat(context.Background(), models.ChatRequest{Message: "m", SessionID: "s"})
	assert.Equal(t, http.StatusInternalServerError, out.Status)
}

func TestForwardInvoke_EchoRoundTrip(t *testing.T) {
	orch := &fakeOrchestrator{handler: func(w http.ResponseWriter, r *http.Request, body []byte) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}}
	upstream := httptest.NewServer(orch)
	defer upstream.Close()

	sent := `{"action":"draft","params":{"topic":"soldes","tags":["été",2],"nested":{"n":null}}}`
	out := newForwarder(t, upstream.URL).ForwardInvoke(context.Background(), "hugo", []byte(sent))

	assert.Equal(t, http.StatusOK, out.Status)
	raw, ok := out.Body.(json.RawMessage)
	require.True(t, ok, "body is %T", out.Body)
	assert.JSONEq(t, sent, string(raw))

	require.Len(t, orch.recorded(), 1)
	assert.Equal(t, "/agents/hugo/invoke", orch.recorded()[0].Path)
	assert.Equal(t, sent, orch.recorded()[0].Body)
}

func TestForwardInvoke_AgentIDNotValidated(t *testing.T) {
	orch := &fakeOrchestrator{handler: func(w http.ResponseWriter, r *http.Request, _ []byte) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Agent not found"}`)
	}}
	upstream := httptest.NewServer(orch)
	defer upstream.Close()

	out := newForwarder(t, upstream.URL).ForwardInvoke(context.Background(), "ghost agent", []byte(`{"action":"x"}`))

	assert.Equal(t, http.StatusOK, out.Status)
	assert.JSONEq(t, `{"detail":"Agent not found"}`, string(out.Body.(json.RawMessage)))
	require.Len(t, orch.recorded(), 1)
	assert.Equal(t, "/agents/ghost%20agent/invoke", orch.recorded()[0].Path)
}

func TestForwardInvoke_UnreachableUpstream(t *testing.T) {
	out := newForwarder(t, stoppedUpstreamURL()).ForwardInvoke(context.Background(), "hugo", []byte(`{"action":"draft","params":{}}`))

	assert.Equal(t, http.StatusServiceUnavailable, out.Status)
	env := envelope(t, out)
	assert.False(t, env.Success)
	assert.Contains(t, *env.Error, "hugo")
	assert.True(t, strings.HasPrefix(*env.Error, "Agent hugo unavailable: "))
}

func TestForwardInvoke_MalformedUpstreamBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "{not json")
	}))
	defer upstream.Close()

	out := newForwarder(t, upstream.URL).ForwardInvoke(context.Background(), "lucas", []byte(`{"action":"quote"}`))
	assert.Equal(t, http.StatusInternalServerError, out.Status)
	assert.Contains(t, *envelope(t, out).Error, "Failed to parse response")
}

func TestForwardInvoke_CancelledContext(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer upstream.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := newForwarder(t, upstream.URL).ForwardInvoke(ctx, "emma", []byte(`{"action":"reply"}`))
	assert.Equal(t, http.StatusServiceUnavailable, out.Status)
}

func TestForwarder_ConcurrentRequestsAreIndependent(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p models.UpstreamChatPayload
		_ = json.NewDecoder(r.Body).Decode(&p)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "echo:" + p.SessionID})
	}))
	defer upstream.Close()

	f := newForwarder(t, upstream.URL)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sid := "s" + string(rune('a'+i))
			env := f.ForwardChat(context.Background(), models.ChatRequest{Message: "m", SessionID: sid}).Body.(*models.Envelope)
			assert.Equal(t, "echo:"+sid, env.Data.Message)
			assert.Equal(t, sid, env.Data.SessionID)
		}(i)
	}
	wg.Wait()
}
