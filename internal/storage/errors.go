package storage

import "errors"

var (
	// ErrInvalidName is returned when an upload file name is empty or tries
	// to escape the staging directory.
	ErrInvalidName = errors.New("invalid file name")

	// ErrInvalidKey is returned when a storage key is absolute or leaves
	// the base directory.
	ErrInvalidKey = errors.New("invalid storage key")

	// ErrTooLarge is returned by Stage when the reader yields more than the
	// limit.
	ErrTooLarge = errors.New("upload exceeds size limit")

	// ErrNotStaged is returned when Commit or Discard receive a staged
	// upload that is no longer present.
	ErrNotStaged = errors.New("upload is not staged")
)
