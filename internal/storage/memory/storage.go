package memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/mcoot/listgate/internal/storage"
)

// ErrWriteFailed is returned by Write while failure injection is on
var ErrWriteFailed = errors.New("memory storage: injected write failure")

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	data       []byte
	exists     bool
	writes     int
	failWrites bool
	readErr    error
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{}
}

// NewWithData creates a storage instance pre-populated with a document
func NewWithData(data []byte) *Storage {
	return &Storage{data: slices.Clone(data), exists: true}
}

// Ensure Storage implements the interface
var _ storage.Backend = (*Storage)(nil)

func (s *Storage) Read(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	if !s.exists {
		return nil, storage.ErrNotExist
	}
	return slices.Clone(s.data), nil
}

func (s *Storage) Write(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return ErrWriteFailed
	}
	s.data = slices.Clone(data)
	s.exists = true
	s.writes++
	return nil
}

func (s *Storage) Location() string {
	return "memory"
}

// Test helpers

// Writes returns the number of successful writes
func (s *Storage) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Data returns a copy of the current document
func (s *Storage) Data() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data)
}

// SetFailWrites toggles write failure injection
func (s *Storage) SetFailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = fail
}

// SetReadError makes every Read return err until cleared with nil
func (s *Storage) SetReadError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

// Replace swaps the stored document without counting it as a write,
// simulating an operator editing the file by hand
func (s *Storage) Replace(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = slices.Clone(data)
	s.exists = true
}
