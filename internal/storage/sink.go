package storage

import (
	"context"
	"io"
	"strings"
)

// Staged is an upload held in the staging area.
type Staged struct {
	// ID is the random upload ID.
	ID string
	// Key is the staging key relative to the sink root.
	Key string
	// FileName is the sanitized client file name.
	FileName string
	// Size is the number of bytes staged.
	Size int64
	// Data holds the staged bytes. Uploads are bounded by the size policy,
	// so they are kept in memory for the sanitizer.
	Data []byte
}

// Sink stores uploads.
type Sink interface {
	// Stage stores r under a new ID. A positive limit bounds the number of
	// bytes read; exceeding it fails with ErrTooLarge and leaves nothing
	// behind.
	Stage(ctx context.Context, fileName string, r io.Reader, limit int64) (*Staged, error)
	// Commit replaces the staged upload with clean and returns the object
	// key.
	Commit(ctx context.Context, s *Staged, clean []byte) (string, error)
	// Discard deletes the staged upload.
	Discard(ctx context.Context, s *Staged) error
	// Open opens a committed object.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidName
	}
	s := strings.TrimSpace(name)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, s)
	if s == "" {
		return "", ErrInvalidName
	}
	return s, nil
}
