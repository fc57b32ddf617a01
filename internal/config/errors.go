package config

import "errors"

// Configuration validation errors returned by Config.Validate and
// Config.ValidateBatch.
var (
	// ErrNoTarget is returned when a batch command gets no file or directory.
	ErrNoTarget = errors.New("no target specified: provide at least one file or directory")

	// ErrInvalidUploadRole is returned when the upload role is neither
	// admin nor editor.
	ErrInvalidUploadRole = errors.New("invalid upload role: must be admin or editor")

	// ErrInvalidMaxUpload is returned for a negative size limit.
	ErrInvalidMaxUpload = errors.New("invalid max upload size: must be non-negative")

	// ErrInvalidConcurrency is returned when concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidTimeout is returned when the sanitize timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid sanitize timeout: must be positive")

	// ErrInvalidMaxDepth is returned when the depth limit is not positive.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are given.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConflictingOutputs is returned when both --in-place and --output
	// are given.
	ErrConflictingOutputs = errors.New("conflicting outputs: --in-place and --output cannot be used together")

	// ErrUnknownPolicy is returned for a policy name that is not built in.
	ErrUnknownPolicy = errors.New("unknown policy")
)

// Configuration file errors.
var (
	// ErrInvalidPrincipal is returned for a principal without token or id.
	ErrInvalidPrincipal = errors.New("invalid principal: token and id are required")

	// ErrDuplicateToken is returned when two principals share a token.
	ErrDuplicateToken = errors.New("duplicate principal token")
)
