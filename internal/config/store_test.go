package config

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/listgate/internal/model"
	"github.com/mcoot/listgate/internal/storage/memory"
	"github.com/mcoot/listgate/internal/testutil"
)

type StoreSuite struct {
	suite.Suite
	backend *memory.Storage
	store   *Store
	ctx     context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.backend = memory.New()
	s.store = New(s.backend, testutil.NopLogger())
	s.ctx = context.Background()
}

// Load tests

func (s *StoreSuite) TestLoadCreatesDefaults() {
	s.Require().NoError(s.store.Load(s.ctx))

	s.True(s.store.Enabled())
	s.Equal(model.DefaultKickMessage, s.store.KickMessage())
	s.Equal("1h", s.store.AutoCheck())
	s.Equal(time.Hour, s.store.Interval())
	s.Empty(s.store.Whitelist())
	s.Equal(1, s.backend.Writes())

	want := "enabled: true\n" +
		"kick_message: " + model.DefaultKickMessage + "\n" +
		"auto_check: 1h\n" +
		"whitelist: []\n"
	s.Equal(want, string(s.backend.Data()))
}

func (s *StoreSuite) TestLoadDefaultsUnwritable() {
	s.backend.SetFailWrites(true)

	err := s.store.Load(s.ctx)
	s.ErrorIs(err, model.ErrPersistence)
	s.True(s.store.Enabled())
}

func (s *StoreSuite) TestLoadExisting() {
	s.backend.Replace([]byte(`enabled: false
kick_message: go away
auto_check: 30s
whitelist:
  - bob
  - Alice
`))

	s.Require().NoError(s.store.Load(s.ctx))
	s.False(s.store.Enabled())
	s.Equal("go away", s.store.KickMessage())
	s.Equal(30*time.Second, s.store.Interval())
	s.Equal([]model.Identity{"bob", "Alice"}, s.store.Whitelist())
	s.Equal(0, s.backend.Writes())
}

func (s *StoreSuite) TestLoadIgnoresUnknownAndDefaultsMissingKeys() {
	s.backend.Replace([]byte("whitelist: [carol]\nmotd: hello\n"))

	s.Require().NoError(s.store.Load(s.ctx))
	s.True(s.store.Enabled())
	s.Equal(model.DefaultKickMessage, s.store.KickMessage())
	s.Equal("1h", s.store.AutoCheck())
	s.Equal([]model.Identity{"carol"}, s.store.Whitelist())
}

func (s *StoreSuite) TestLoadCorruptFallsBackToDefaults() {
	s.backend.Replace([]byte("enabled: [not a bool\n"))
	s.store.SetKickMessage("stale")

	s.Require().NoError(s.store.Load(s.ctx))
	s.Equal(model.DefaultSettings(), s.store.Settings())
	s.Equal(0, s.backend.Writes())
}

func (s *StoreSuite) TestLoadReadErrorFallsBackToDefaults() {
	s.backend.SetReadError(errors.New("permission denied"))

	s.Require().NoError(s.store.Load(s.ctx))
	s.Equal(model.DefaultSettings(), s.store.Settings())
}

func (s *StoreSuite) TestInvalidIntervalFallsBack() {
	s.backend.Replace([]byte("auto_check: soon\n"))

	s.Require().NoError(s.store.Load(s.ctx))
	s.Equal("soon", s.store.AutoCheck())
	s.Equal(time.Hour, s.store.Interval())
}

// Save tests

func (s *StoreSuite) TestSaveRoundTrip() {
	s.store.SetEnabled(false)
	s.store.SetKickMessage("members only")
	s.store.SetAutoCheck("5m")
	s.store.SetWhitelist([]model.Identity{"zed", "Amy", "bob"})
	s.Require().NoError(s.store.Save(s.ctx))

	reloaded := New(s.backend, testutil.NopLogger())
	s.Require().NoError(reloaded.Load(s.ctx))

	got := reloaded.Settings()
	s.False(got.Enabled)
	s.Equal("members only", got.KickMessage)
	s.Equal("5m", got.AutoCheck)
	s.Equal([]model.Identity{"Amy", "bob", "zed"}, got.Whitelist)
}

func (s *StoreSuite) TestSaveIsDeterministic() {
	s.store.SetWhitelist([]model.Identity{"b", "a", "c"})
	s.Require().NoError(s.store.Save(s.ctx))
	first := s.backend.Data()

	s.store.SetWhitelist([]model.Identity{"c", "b", "a"})
	s.Require().NoError(s.store.Save(s.ctx))

	s.Equal(first, s.backend.Data())
}

func (s *StoreSuite) TestSaveQuotesNumericIdentities() {
	s.store.SetWhitelist([]model.Identity{"123", "true"})
	s.Require().NoError(s.store.Save(s.ctx))

	reloaded := New(s.backend, testutil.NopLogger())
	s.Require().NoError(reloaded.Load(s.ctx))
	s.Equal([]model.Identity{"123", "true"}, reloaded.Whitelist())
}

func (s *StoreSuite) TestSaveFailureKeepsMemory() {
	s.backend.SetFailWrites(true)
	s.store.SetKickMessage("changed")

	err := s.store.Save(s.ctx)
	s.ErrorIs(err, model.ErrPersistence)
	s.ErrorIs(err, memory.ErrWriteFailed)
	s.Equal("changed", s.store.KickMessage())
}

func (s *StoreSuite) TestSettersDoNotPersist() {
	s.store.SetEnabled(false)
	s.store.SetWhitelist([]model.Identity{"x"})

	s.Equal(0, s.backend.Writes())
}

func (s *StoreSuite) TestReloadDiscardsUnsaved() {
	s.Require().NoError(s.store.Load(s.ctx))
	s.store.SetKickMessage("unsaved")
	s.backend.Replace([]byte("kick_message: edited on disk\nwhitelist: [dave]\n"))

	s.Require().NoError(s.store.Reload(s.ctx))
	s.Equal("edited on disk", s.store.KickMessage())
	s.Equal([]model.Identity{"dave"}, s.store.Whitelist())
}

func (s *StoreSuite) TestWhitelistReturnsCopy() {
	s.store.SetWhitelist([]model.Identity{"a"})
	wl := s.store.Whitelist()
	wl[0] = "mutated"

	s.Equal([]model.Identity{"a"}, s.store.Whitelist())
}

func (s *StoreSuite) TestConcurrentSavesLastStateWins() {
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.store.SetKickMessage("msg")
			s.store.SetEnabled(i%2 == 0)
			_ = s.store.Save(s.ctx)
		}()
	}
	wg.Wait()

	s.Require().NoError(s.store.Save(s.ctx))
	reloaded := New(s.backend, testutil.NopLogger())
	s.Require().NoError(reloaded.Load(s.ctx))
	s.Equal(s.store.Settings(), reloaded.Settings())
}
