package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/listgate/internal/admin"
	"github.com/mcoot/listgate/internal/config"
	"github.com/mcoot/listgate/internal/model"
	"github.com/mcoot/listgate/internal/services/session"
	"github.com/mcoot/listgate/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
	s.app.Start()
}

func (s *IntegrationSuite) TearDownTest() {
	s.app.Enforcer.Stop()
}

// connect runs the gate and opens a session the way the API does
func (s *IntegrationSuite) connect(identity string) *session.Session {
	if !s.app.Gate.Check(identity).Allowed {
		return nil
	}
	return s.app.Sessions.Open(identity)
}

// Test: a player is admitted, removed from the whitelist and kicked
func (s *IntegrationSuite) TestAdmitThenRevoke() {
	res := s.app.Admin.Dispatch(s.ctx, admin.Command{Kind: admin.KindAdd, Identities: []string{"Alice", "Bob"}})
	s.Require().True(res.OK)

	alice := s.connect("Alice")
	bob := s.connect("Bob")
	s.Require().NotNil(alice)
	s.Require().NotNil(bob)
	s.Nil(s.connect("Mallory"))
	s.Equal(2, s.app.Sessions.Count())

	res = s.app.Admin.Dispatch(s.ctx, admin.Command{Kind: admin.KindRemove, Identities: []string{"Bob"}})
	s.Require().True(res.OK)
	s.Equal(1, res.Kicked)

	s.Equal(session.StateKicked, bob.State())
	s.Equal(model.DefaultKickMessage, bob.Reason())
	s.Equal(session.StateActive, alice.State())
	s.Nil(s.connect("Bob"))
}

// Test: players admitted while the gate was off are swept once it comes back on
func (s *IntegrationSuite) TestDisabledThenEnabled() {
	s.app.Admin.Dispatch(s.ctx, admin.Command{Kind: admin.KindDisable})
	guest := s.connect("Guest")
	s.Require().NotNil(guest)

	s.Zero(s.app.Enforcer.Sweep())

	s.app.Admin.Dispatch(s.ctx, admin.Command{Kind: admin.KindEnable})
	s.Equal(1, s.app.Enforcer.Sweep())
	s.Equal(session.StateKicked, guest.State())
}

// Test: an operator edits the stored settings and reloads
func (s *IntegrationSuite) TestReloadFromStorage() {
	s.app.Memory.Replace([]byte("enabled: true\nkick_message: bye\nauto_check: 10m\nwhitelist: [Zed]\n"))

	res := s.app.Admin.Dispatch(s.ctx, admin.Command{Kind: admin.KindReload})
	s.Require().True(res.OK)

	s.True(s.app.Gate.Check("Zed").Allowed)
	d := s.app.Gate.Check("Alice")
	s.False(d.Allowed)
	s.Equal("bye", d.Message)
	s.Equal(10*time.Minute, s.app.Enforcer.Stats().Interval)
}

// Test: shutdown flushes settings and closes sessions
func (s *IntegrationSuite) TestShutdownFlushes() {
	s.app.Admin.Dispatch(s.ctx, admin.Command{Kind: admin.KindAdd, Identities: []string{"Alice"}})
	alice := s.connect("Alice")
	s.app.Config.SetKickMessage("unsaved until shutdown")

	s.Require().NoError(s.app.Shutdown(s.ctx))

	s.Equal(session.StateClosed, alice.State())
	s.False(s.app.Enforcer.Running())

	reloaded := config.New(s.app.Memory, testutil.NopLogger())
	s.Require().NoError(reloaded.Load(s.ctx))
	s.Equal("unsaved until shutdown", reloaded.KickMessage())
	s.Equal([]model.Identity{"Alice"}, reloaded.Whitelist())
}

func TestNewFileStorage(t *testing.T) {
	app, err := New(context.Background(), Config{DataDir: t.TempDir()})
	require.NoError(t, err)
	defer func() { _ = app.Shutdown(context.Background()) }()

	assert.Contains(t, app.Storage.Location(), "config.yml")
	assert.True(t, app.Config.Enabled())
}

func TestNewRejectsUnknownStorage(t *testing.T) {
	_, err := New(context.Background(), Config{StorageType: "floppy"})
	assert.Error(t, err)
}

func TestNewRequiresRedisConfig(t *testing.T) {
	_, err := New(context.Background(), Config{StorageType: StorageTypeRedis})
	assert.Error(t, err)
}
