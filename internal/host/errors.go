package host

import "errors"

var (
	// ErrUnknownRole is returned for role names outside the known set.
	ErrUnknownRole = errors.New("unknown role")

	// ErrInvalidUploadRole is returned when the required upload role is
	// neither admin nor editor.
	ErrInvalidUploadRole = errors.New("upload role must be admin or editor")
)
