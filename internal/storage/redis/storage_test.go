package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/listgate/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestReadMissingKey() {
	_, err := s.storage.Read(s.ctx)
	s.ErrorIs(err, storage.ErrNotExist)
}

func (s *StorageSuite) TestWriteThenRead() {
	doc := []byte("enabled: true\nwhitelist:\n  - Alice\n")

	err := s.storage.Write(s.ctx, doc)
	s.Require().NoError(err)

	got, err := s.storage.Read(s.ctx)
	s.Require().NoError(err)
	s.Equal(doc, got)
}

func (s *StorageSuite) TestWriteUsesSettingsKey() {
	err := s.storage.Write(s.ctx, []byte("enabled: false\n"))
	s.Require().NoError(err)

	stored, err := s.mini.Get("listgate:config")
	s.Require().NoError(err)
	s.Equal("enabled: false\n", stored)
	s.Equal(time.Duration(0), s.mini.TTL("listgate:config"), "settings must not expire")
}

func (s *StorageSuite) TestWriteReplacesDocument() {
	_ = s.storage.Write(s.ctx, []byte("first"))
	_ = s.storage.Write(s.ctx, []byte("second"))

	got, err := s.storage.Read(s.ctx)
	s.Require().NoError(err)
	s.Equal("second", string(got))
}

func (s *StorageSuite) TestCustomKey() {
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	custom := NewWithClient(client, Config{Key: "proxy-eu:whitelist"})
	defer func() { _ = custom.Close() }()

	s.Require().NoError(custom.Write(s.ctx, []byte("doc")))
	s.True(s.mini.Exists("proxy-eu:whitelist"))
	s.Equal("redis key proxy-eu:whitelist", custom.Location())
}

func (s *StorageSuite) TestReadFailsWhenServerDown() {
	s.mini.Close()

	_, err := s.storage.Read(s.ctx)
	s.Error(err)
	s.NotErrorIs(err, storage.ErrNotExist)
}
