package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"WebShop_AI/backend/go/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCapture() (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetFormatter(newFormatter())
	base.SetLevel(logrus.DebugLevel)
	return base, &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m))
	return m
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("info,gateway=debug"))
	assert.Equal(t, logrus.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("loud"))
}

func TestLogger_FieldsAndDerivation(t *testing.T) {
	base, buf := newCapture()
	l := NewWithBase(base, "gateway", "", "")

	derived := l.WithTraceID("req-1").WithRequest(models.RequestInfo{Method: "POST", Path: "/api/chat"})
	derived.Warn("upstream unavailable")

	line := decodeLine(t, buf)
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, "upstream unavailable", line["message"])
	assert.Equal(t, "gateway", line["service_name"])
	assert.Equal(t, "req-1", line["trace_id"])
	assert.Contains(t, line, "timestamp")

	buf.Reset()
	l.Info("plain")
	line = decodeLine(t, buf)
	assert.NotContains(t, line, "trace_id")
	assert.NotContains(t, line, "request_info")
}

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaHook_ShipsEntriesAtOrAboveLevel(t *testing.T) {
	base, _ := newCapture()
	w := &fakeWriter{}
	hook := newKafkaHook(w, logrus.WarnLevel)
	base.AddHook(hook)

	l := NewWithBase(base, "gateway", "", "")
	l.Info("not shipped")
	l.Warn("shipped")
	l.Error("also shipped")

	require.Len(t, w.msgs, 2)
	assert.Equal(t, []byte("gateway"), w.msgs[0].Key)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &m))
	assert.Equal(t, "shipped", m["message"])

	require.NoError(t, hook.Close())
	assert.True(t, w.closed)
}

func TestKafkaHook_WriteError(t *testing.T) {
	hook := newKafkaHook(&fakeWriter{err: errors.New("broker down")}, logrus.InfoLevel)
	entry := logrus.NewEntry(logrus.New())
	entry.Message = "x"
	assert.ErrorContains(t, hook.Fire(entry), "broker down")
}

func TestNewKafkaHook_Validation(t *testing.T) {
	_, err := NewKafkaHook(nil, "logs", logrus.WarnLevel)
	assert.Error(t, err)
	_, err = NewKafkaHook([]string{"localhost:9092"}, "", logrus.WarnLevel)
	assert.Error(t, err)
}
