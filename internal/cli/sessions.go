package cli

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Connected player commands",
	}

	cmd.AddCommand(newSessionsListCmd())
	cmd.AddCommand(newSessionsKickCmd())
	cmd.AddCommand(newSessionsWatchCmd())

	return cmd
}

func newSessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List connected players",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SessionsResult
			if err := client.Get("/api/v1/sessions", &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newSessionsKickCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "kick <session-id>",
		Short: "Disconnect a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"reason": reason}
			if err := client.Post("/api/v1/sessions/"+escape(args[0])+"/kick", req, nil); err != nil {
				return err
			}
			output(cmd).Print(MessageResult{Message: "Session " + args[0] + " kicked"})
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Message shown to the player (default: the kick message)")

	return cmd
}

func newSessionsWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <session-id>",
		Short: "Stream a session's events until it ends",
		Long: `Connect to the session's event stream and print events as they arrive.

Events:
  - connected: stream attached
  - kick: the player was removed, with the reason
  - closed: the player disconnected

Press Ctrl+C to detach.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return streamEvents(ctx, cmd, args[0])
		},
	}
}

// SSEEvent is a parsed server-sent event
type SSEEvent struct {
	Time  time.Time       `json:"time"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func streamEvents(ctx context.Context, cmd *cobra.Command, sessionID string) error {
	req, err := client.newRequest(http.MethodGet, "/api/v1/sessions/"+escape(sessionID)+"/events", nil)
	if err != nil {
		return err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// No client timeout: the stream lasts as long as the session
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream request failed: HTTP %d", resp.StatusCode)
	}

	out := output(cmd)
	scanner := bufio.NewScanner(resp.Body)
	var event string
	var data []string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if event != "" {
				out.printEvent(SSEEvent{Time: time.Now(), Event: event, Data: json.RawMessage(strings.Join(data, "\n"))})
			}
			event, data = "", nil
		case strings.HasPrefix(line, ":"):
			// keepalive comment
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}
	return nil
}

func (o *Output) printEvent(ev SSEEvent) {
	if o.format == "json" {
		data, _ := json.Marshal(ev)
		o.line(string(data))
		return
	}
	name := ev.Event
	switch name {
	case "kick":
		name = badStyle.Render(name)
	case "connected":
		name = okStyle.Render(name)
	default:
		name = warnStyle.Render(name)
	}
	o.line(fmt.Sprintf("[%s] %s %s", ev.Time.Format("15:04:05"), name, string(ev.Data)))
}
