package session

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/listgate/internal/dependencies/mocks"
	"github.com/mcoot/listgate/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "kick",
			data:      `{"status":"kicked"}`,
			expected:  "event: kick\ndata: {\"status\":\"kicked\"}\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "notice",
			data:      "line1\nline2",
			expected:  "event: notice\ndata: line1\ndata: line2\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(formatSSEMessage(tt.eventName, tt.data)))
		})
	}
}

func newTestRegistry() *Registry {
	return New(mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)), testutil.NopLogger())
}

func TestServeEventsKick(t *testing.T) {
	registry := newTestRegistry()
	sess := registry.Open("Mallory")
	require.NoError(t, registry.Terminate(sess.ID, "not whitelisted"))

	req := httptest.NewRequest("GET", "/events", nil)
	rec := httptest.NewRecorder()
	serveEvents(rec, req, sess, time.Hour)

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "event: connected\n"))
	assert.Contains(t, body, "event: kick\n")
	assert.Contains(t, body, `"reason":"not whitelisted"`)
}

func TestServeEventsClosed(t *testing.T) {
	registry := newTestRegistry()
	sess := registry.Open("Alice")

	done := make(chan struct{})
	rec := httptest.NewRecorder()
	go func() {
		defer close(done)
		serveEvents(rec, httptest.NewRequest("GET", "/events", nil), sess, time.Hour)
	}()

	require.NoError(t, registry.Close(sess.ID))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not end after close")
	}
	assert.Contains(t, rec.Body.String(), "event: closed\n")
	assert.NotContains(t, rec.Body.String(), "reason")
}

func TestServeEventsClientGone(t *testing.T) {
	registry := newTestRegistry()
	sess := registry.Open("Alice")

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/events", nil).WithContext(ctx)
	cancel()

	serveEvents(httptest.NewRecorder(), req, sess, time.Hour)
	assert.Equal(t, StateActive, sess.State())
}
