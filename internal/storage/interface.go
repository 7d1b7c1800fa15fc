package storage

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Read when nothing has been stored yet
var ErrNotExist = errors.New("settings document does not exist")

// Backend stores the settings document as one opaque blob.
// Write replaces the whole document; a reader never sees a partial write.
type Backend interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	// Location describes where the document lives, for logs
	Location() string
}
