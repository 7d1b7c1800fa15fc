package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w, errW io.Writer) *Output {
	return &Output{format: format, w: w, errW: errW}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
		return
	}
	o.printText(data)
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{"message": err.Error()},
		})
		_, _ = fmt.Fprintln(o.errW, string(data))
		return
	}
	_, _ = fmt.Fprintln(o.errW, badStyle.Render("Error: "+err.Error()))
}

func (o *Output) printJSON(data any) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintln(o.errW, err)
		return
	}
	_, _ = fmt.Fprintln(o.w, string(out))
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case WhitelistResult:
		o.printWhitelist(v)
	case ChangeResult:
		o.printChange(v)
	case StatusResult:
		o.printStatus(v)
	case SessionsResult:
		o.printSessions(v)
	case DecisionResult:
		o.printDecision(v)
	case HealthResult:
		o.line(labelStyle.Render("Status: ") + okStyle.Render(v.Status))
	case MessageResult:
		o.line(v.Message)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) line(s string) {
	_, _ = fmt.Fprintln(o.w, s)
}

func (o *Output) field(label string, value string) {
	o.line(labelStyle.Render(label+": ") + value)
}

// WhitelistResult mirrors the whitelist listing
type WhitelistResult struct {
	Identities []string `json:"identities"`
	Count      int      `json:"count"`
}

// ChangeResult mirrors an administrative change
type ChangeResult struct {
	Message string `json:"message"`
	Changed int    `json:"changed"`
	Kicked  int    `json:"kicked"`
}

// StatusResult mirrors the status endpoint
type StatusResult struct {
	Enabled        bool       `json:"enabled"`
	KickMessage    string     `json:"kick_message"`
	AutoCheck      string     `json:"auto_check"`
	IntervalMillis int64      `json:"interval_ms"`
	Interval       string     `json:"interval"`
	WhitelistSize  int        `json:"whitelist_size"`
	Online         int        `json:"online"`
	Running        bool       `json:"running"`
	Location       string     `json:"location"`
	LastSweepAt    *time.Time `json:"last_sweep_at,omitempty"`
	LastKicked     int        `json:"last_kicked"`
}

// SessionResult mirrors one connected player
type SessionResult struct {
	ID          string    `json:"id"`
	Identity    string    `json:"identity"`
	ConnectedAt time.Time `json:"connected_at"`
	State       string    `json:"state"`
	Reason      string    `json:"reason,omitempty"`
}

// SessionsResult mirrors the session listing
type SessionsResult struct {
	Sessions []SessionResult `json:"sessions"`
	Count    int             `json:"count"`
}

// DecisionResult mirrors a gate check
type DecisionResult struct {
	Identity string `json:"identity"`
	Allowed  bool   `json:"allowed"`
	Message  string `json:"message,omitempty"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// MessageResult is a bare confirmation for endpoints without a body
type MessageResult struct {
	Message string `json:"message"`
}

func (o *Output) printWhitelist(w WhitelistResult) {
	if w.Count == 0 {
		o.line(warnStyle.Render("Whitelist is empty"))
		return
	}
	o.line(titleStyle.Render(fmt.Sprintf("Whitelist (%d):", w.Count)))
	o.line(strings.Join(w.Identities, ", "))
}

func (o *Output) printChange(c ChangeResult) {
	noop := strings.HasPrefix(c.Message, "Already") || strings.HasPrefix(c.Message, "Not ")
	if noop && c.Changed == 0 {
		o.line(warnStyle.Render(c.Message))
		return
	}
	o.line(okStyle.Render(c.Message))
}

func (o *Output) printStatus(s StatusResult) {
	o.line(titleStyle.Render("=== listgate status ==="))
	if s.Enabled {
		o.field("Whitelist", okStyle.Render("enabled"))
	} else {
		o.field("Whitelist", badStyle.Render("disabled"))
	}
	o.field("Whitelisted", fmt.Sprintf("%d", s.WhitelistSize))
	o.field("Recheck interval", s.Interval)
	o.field("Online", fmt.Sprintf("%d", s.Online))
	scheduler := okStyle.Render("running")
	if !s.Running {
		scheduler = warnStyle.Render("stopped")
	}
	o.field("Enforcer", scheduler)
	if s.LastSweepAt != nil {
		o.field("Last sweep", fmt.Sprintf("%s (%d kicked)", s.LastSweepAt.Format(time.RFC3339), s.LastKicked))
	}
	o.field("Kick message", s.KickMessage)
	o.field("Settings", s.Location)
}

func (o *Output) printSessions(s SessionsResult) {
	if s.Count == 0 {
		o.line(warnStyle.Render("No players online"))
		return
	}
	o.line(titleStyle.Render(fmt.Sprintf("Online (%d):", s.Count)))
	for _, sess := range s.Sessions {
		o.line(fmt.Sprintf("  %s  %s  since %s", sess.ID, sess.Identity, sess.ConnectedAt.Format(time.RFC3339)))
	}
}

func (o *Output) printDecision(d DecisionResult) {
	if d.Allowed {
		o.line(okStyle.Render(d.Identity + " would be admitted"))
		return
	}
	o.line(badStyle.Render(d.Identity + " would be denied: " + d.Message))
}
