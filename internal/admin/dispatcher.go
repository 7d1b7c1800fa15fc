package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mcoot/listgate/internal/config"
	"github.com/mcoot/listgate/internal/model"
	"github.com/mcoot/listgate/internal/services/enforcer"
	"github.com/mcoot/listgate/internal/services/whitelist"
)

// SettingsStore is the configuration the dispatcher edits
type SettingsStore interface {
	Enabled() bool
	SetEnabled(enabled bool)
	KickMessage() string
	SetKickMessage(message string)
	AutoCheck() string
	SetAutoCheck(interval string)
	Interval() time.Duration
	Location() string
	Save(ctx context.Context) error
	Reload(ctx context.Context) error
}

// Whitelist is the membership set the dispatcher edits
type Whitelist interface {
	AddMany(ctx context.Context, identities []string) (int, error)
	RemoveMany(ctx context.Context, identities []string) (int, error)
	Clear(ctx context.Context) error
	Snapshot() []model.Identity
	Reload(ctx context.Context, r whitelist.Reloader) error
	Size() int
}

// Enforcer runs sweeps and owns the recheck timer
type Enforcer interface {
	Sweep() int
	Restart()
	Stats() enforcer.Stats
}

// Dispatcher executes administrative commands
type Dispatcher struct {
	store     SettingsStore
	whitelist Whitelist
	enforcer  Enforcer
	logger    *slog.Logger
}

func NewDispatcher(store SettingsStore, members Whitelist, enf Enforcer, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Dispatcher{
		store:     store,
		whitelist: members,
		enforcer:  enf,
		logger:    logger.With(slog.String("component", "admin")),
	}
}

// Dispatch runs cmd. It never panics; every failure is reported in the Result.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("admin command panicked",
				slog.String("kind", string(cmd.Kind)),
				slog.Any("panic", r))
			res = failure(fmt.Errorf("internal error: %v", r))
		}
	}()

	d.logger.Debug("admin command", slog.String("kind", string(cmd.Kind)))

	switch cmd.Kind {
	case KindEnable:
		return d.setEnabled(ctx, true)
	case KindDisable:
		return d.setEnabled(ctx, false)
	case KindSetMessage:
		return d.setMessage(ctx, cmd.Text)
	case KindSetInterval:
		return d.setInterval(ctx, cmd.Text)
	case KindAdd:
		return d.add(ctx, cmd.Identities)
	case KindRemove:
		return d.remove(ctx, cmd.Identities)
	case KindList:
		ids := d.whitelist.Snapshot()
		return Result{OK: true, Message: fmt.Sprintf("%d identities whitelisted", len(ids)), Identities: ids}
	case KindClear:
		return d.clear(ctx)
	case KindReload:
		return d.reload(ctx)
	case KindStatus:
		status := d.status()
		return Result{OK: true, Status: &status}
	case KindCheck:
		kicked := d.enforcer.Sweep()
		return Result{OK: true, Message: fmt.Sprintf("Check complete, %d sessions kicked", kicked), Kicked: kicked}
	default:
		return failure(fmt.Errorf("%w: unknown command %q", model.ErrValidation, cmd.Kind))
	}
}

func (d *Dispatcher) setEnabled(ctx context.Context, enabled bool) Result {
	d.store.SetEnabled(enabled)
	msg := "Whitelist disabled"
	if enabled {
		msg = "Whitelist enabled"
	}
	d.logger.Info(msg)
	return d.saved(ctx, Result{OK: true, Message: msg})
}

func (d *Dispatcher) setMessage(ctx context.Context, text string) Result {
	if text == "" {
		return failure(fmt.Errorf("%w: kick message must not be empty", model.ErrValidation))
	}
	d.store.SetKickMessage(text)
	d.logger.Info("kick message updated")
	return d.saved(ctx, Result{OK: true, Message: "Kick message updated"})
}

func (d *Dispatcher) setInterval(ctx context.Context, text string) Result {
	interval, err := config.ParseInterval(text)
	if err != nil {
		return failure(err)
	}
	d.store.SetAutoCheck(strings.TrimSpace(text))
	res := d.saved(ctx, Result{OK: true, Message: "Recheck interval set to " + config.FormatInterval(interval)})
	d.enforcer.Restart()
	return res
}

func (d *Dispatcher) add(ctx context.Context, identities []string) Result {
	if err := requireIdentities(identities); err != nil {
		return failure(err)
	}
	count, err := d.whitelist.AddMany(ctx, identities)
	if err != nil {
		return persistFailure(Result{Changed: count}, err)
	}
	if count == 0 {
		return Result{OK: true, Message: "Already whitelisted"}
	}
	return Result{OK: true, Message: fmt.Sprintf("Added %d to the whitelist", count), Changed: count}
}

func (d *Dispatcher) remove(ctx context.Context, identities []string) Result {
	if err := requireIdentities(identities); err != nil {
		return failure(err)
	}
	count, err := d.whitelist.RemoveMany(ctx, identities)
	res := Result{Changed: count}
	if count > 0 {
		res.Kicked = d.enforcer.Sweep()
	}
	if err != nil {
		return persistFailure(res, err)
	}
	if count == 0 {
		return Result{OK: true, Message: "Not whitelisted"}
	}
	res.OK = true
	res.Message = fmt.Sprintf("Removed %d from the whitelist", count)
	if res.Kicked > 0 {
		res.Message += fmt.Sprintf(", kicked %d sessions", res.Kicked)
	}
	return res
}

func (d *Dispatcher) clear(ctx context.Context) Result {
	removed := d.whitelist.Size()
	err := d.whitelist.Clear(ctx)
	res := Result{Changed: removed, Kicked: d.enforcer.Sweep()}
	if err != nil {
		return persistFailure(res, err)
	}
	res.OK = true
	res.Message = fmt.Sprintf("Whitelist cleared, %d removed", removed)
	return res
}

func (d *Dispatcher) reload(ctx context.Context) Result {
	err := d.whitelist.Reload(ctx, d.store)
	d.enforcer.Restart()
	if err != nil {
		return persistFailure(Result{}, err)
	}
	d.logger.Info("settings reloaded",
		slog.String("location", d.store.Location()),
		slog.Int("whitelist_size", d.whitelist.Size()))
	return Result{OK: true, Message: "Settings reloaded"}
}

func (d *Dispatcher) status() Status {
	stats := d.enforcer.Stats()
	return Status{
		Enabled:       d.store.Enabled(),
		KickMessage:   d.store.KickMessage(),
		AutoCheck:     d.store.AutoCheck(),
		Interval:      stats.Interval,
		WhitelistSize: stats.MembershipSize,
		Online:        stats.SessionCount,
		Running:       stats.Running,
		Location:      d.store.Location(),
		LastSweepAt:   stats.LastSweepAt,
		LastKicked:    stats.LastKicked,
	}
}

// saved persists the store and downgrades res when the write fails
func (d *Dispatcher) saved(ctx context.Context, res Result) Result {
	if err := d.store.Save(ctx); err != nil {
		return persistFailure(res, err)
	}
	return res
}

func persistFailure(res Result, err error) Result {
	res.OK = false
	res.Err = err
	if errors.Is(err, model.ErrPersistence) {
		res.Message = "Change applied but not saved: " + err.Error()
	} else {
		res.Message = err.Error()
	}
	return res
}

func failure(err error) Result {
	return Result{OK: false, Message: err.Error(), Err: err}
}

func requireIdentities(identities []string) error {
	for _, raw := range identities {
		if _, ok := model.NormalizeIdentity(raw); ok {
			return nil
		}
	}
	return fmt.Errorf("%w: at least one identity is required", model.ErrValidation)
}
