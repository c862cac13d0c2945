package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladiossato/k2-inventory/pkg/logger"
	"github.com/ladiossato/k2-inventory/pkg/retry"
)

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, InitialInterval: time.Millisecond, Multiplier: 1}
}

type recordingServer struct {
	mu       sync.Mutex
	requests []map[string]any
	respond  func(n int) (int, string)
}

func (r *recordingServer) handler(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	var payload map[string]any
	_ = json.Unmarshal(body, &payload)

	r.mu.Lock()
	r.requests = append(r.requests, payload)
	n := len(r.requests)
	r.mu.Unlock()

	status, resp := r.respond(n)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(resp))
}

func newTestClient(t *testing.T, rs *recordingServer) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(rs.handler))
	t.Cleanup(srv.Close)
	return NewClient("test-token", time.Second, logger.NewNop(),
		WithBaseURL(srv.URL),
		WithRetryPolicy(fastPolicy()),
	)
}

func TestSendMessageSuccess(t *testing.T) {
	rs := &recordingServer{respond: func(int) (int, string) { return 200, `{"ok":true}` }}
	c := newTestClient(t, rs)

	err := c.SendMessage(context.Background(), 42, "<b>hello</b>", nil)
	require.NoError(t, err)
	require.Len(t, rs.requests, 1)
	assert.Equal(t, "HTML", rs.requests[0]["parse_mode"])
	assert.Equal(t, "<b>hello</b>", rs.requests[0]["text"])
}

func TestSendMessageRetriesTransientErrors(t *testing.T) {
	rs := &recordingServer{respond: func(n int) (int, string) {
		if n < 3 {
			return 200, `{"ok":false,"error_code":500,"description":"Internal Server Error"}`
		}
		return 200, `{"ok":true}`
	}}
	c := newTestClient(t, rs)

	err := c.SendMessage(context.Background(), 42, "hi", nil)
	require.NoError(t, err)
	assert.Len(t, rs.requests, 3)
}

func TestSendMessageGivesUpAfterThreeAttempts(t *testing.T) {
	rs := &recordingServer{respond: func(int) (int, string) {
		return 200, `{"ok":false,"error_code":500,"description":"Internal Server Error"}`
	}}
	c := newTestClient(t, rs)

	err := c.SendMessage(context.Background(), 42, "hi", nil)
	require.Error(t, err)
	assert.Len(t, rs.requests, 3)
}

func TestSendMessagePlainTextFallbackOnFormattingError(t *testing.T) {
	rs := &recordingServer{respond: func(n int) (int, string) {
		if n == 1 {
			return 200, `{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities"}`
		}
		return 200, `{"ok":true}`
	}}
	c := newTestClient(t, rs)

	err := c.SendMessage(context.Background(), 42, "<b>hello</b>", nil)
	require.NoError(t, err)

	// no blind retries of the bad payload, exactly one fallback
	require.Len(t, rs.requests, 2)
	_, hasParseMode := rs.requests[1]["parse_mode"]
	assert.False(t, hasParseMode)
	assert.Equal(t, "hello", rs.requests[1]["text"])
}

func TestSendMessageEscapesUserMarkup(t *testing.T) {
	rs := &recordingServer{respond: func(int) (int, string) { return 200, `{"ok":true}` }}
	c := newTestClient(t, rs)

	err := c.SendMessage(context.Background(), 42, "<script>x</script>", nil)
	require.NoError(t, err)
	assert.Equal(t, "&lt;script&gt;x&lt;/script&gt;", rs.requests[0]["text"])
}

func TestGetUpdates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("offset"))
		_, _ = w.Write([]byte(`{"ok":true,"result":[{"update_id":6,"message":{"message_id":1,"chat":{"id":42,"type":"private"},"text":"/status","from":{"id":7,"first_name":"Ana"}}}]}`))
	}))
	defer srv.Close()

	c := NewClient("test-token", time.Second, logger.NewNop(), WithBaseURL(srv.URL))
	updates, err := c.GetUpdates(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, int64(6), updates[0].UpdateID)
	require.NotNil(t, updates[0].Message)
	assert.Equal(t, "/status", updates[0].Message.Text)
	assert.Equal(t, int64(7), updates[0].Message.From.ID)
}

func TestGetUpdatesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
	}))
	defer srv.Close()

	c := NewClient("bad-token", time.Second, logger.NewNop(), WithBaseURL(srv.URL))
	_, err := c.GetUpdates(context.Background(), 0)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Unauthorized")
}
