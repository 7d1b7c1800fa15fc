package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Time between keepalive comments
const pingPeriod = 30 * time.Second

// streamEvent is the JSON payload of every event on a session stream
type streamEvent struct {
	SessionID string `json:"session_id"`
	Identity  string `json:"identity"`
	Status    State  `json:"status"`
	Reason    string `json:"reason,omitempty"`
}

// ServeEvents streams a session's lifecycle as server-sent events: a
// "connected" event on attach, then "kick" or "closed" when it ends.
// The stream returns when the session ends or the client goes away.
func ServeEvents(w http.ResponseWriter, r *http.Request, sess *Session) {
	serveEvents(w, r, sess, pingPeriod)
}

func serveEvents(w http.ResponseWriter, r *http.Request, sess *Session, keepalive time.Duration) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	if _, err := w.Write(eventMessage("connected", sess, StateActive)); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-sess.Done():
			info := sess.Info()
			name := "closed"
			if info.State == StateKicked {
				name = "kick"
			}
			_, _ = w.Write(eventMessage(name, sess, info.State))
			flusher.Flush()
			return

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func eventMessage(name string, sess *Session, state State) []byte {
	ev := streamEvent{
		SessionID: sess.ID,
		Identity:  sess.Identity(),
		Status:    state,
	}
	if state == StateKicked {
		ev.Reason = sess.Reason()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		data = []byte("{}")
	}
	return formatSSEMessage(name, string(data))
}

// formatSSEMessage formats an SSE message with event name and data.
// Each line of data gets its own "data: " prefix.
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(eventName)
	b.WriteString("\n")
	for _, line := range splitLines(data) {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// splitLines splits on \n and drops \r, so CRLF input yields clean lines
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
