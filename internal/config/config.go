package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/host"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/policy"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/svgdom"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "easysvg"

	// DefaultUploadRole allows administrators only.
	DefaultUploadRole = host.RoleAdmin

	// DefaultMaxUploadKiB is the upload size limit in KiB.
	DefaultMaxUploadKiB = host.DefaultMaxUploadKiB

	// DefaultConcurrency is the number of files sanitized in parallel by
	// batch commands.
	DefaultConcurrency = 4

	// DefaultSanitizeTimeout bounds a single sanitization call. The engine
	// is CPU bound, so this only matters for hostile inputs close to the
	// parser limits.
	DefaultSanitizeTimeout = 10 * time.Second

	// DefaultListenAddr is the address of the upload API.
	DefaultListenAddr = "127.0.0.1:8080"

	// DefaultMaxDepth is the element nesting limit.
	DefaultMaxDepth = 256
)

// Config holds all configuration options for easysvg.
// It is populated from the config file and CLI flags, then passed through
// the application as a value. Nothing reads global state.
type Config struct {
	// Enabled is the SVG feature flag. When false, the upload host rejects
	// every SVG with reason "disabled" and does not advertise the svg
	// media type. Batch commands ignore it.
	Enabled bool

	// UploadRole is the least privileged role allowed to upload SVG files:
	// "admin" or "editor".
	UploadRole host.Role

	// MaxUploadKiB is the upload size limit. It is clamped to
	// [host.MinUploadKiB, host.MaxUploadKiB] when used.
	MaxUploadKiB int

	// Concurrency is the number of files processed in parallel.
	Concurrency int

	// SanitizeTimeout bounds each sanitization call.
	SanitizeTimeout time.Duration

	// MaxDepth is the element nesting limit passed to the parser.
	MaxDepth int

	// PolicyName selects a built-in table ("default" or "strict") when the
	// config file defines no policy.
	PolicyName string

	// Minify enables minification of clean output.
	Minify bool

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .easysvg in the current directory,
	// the home directory and the XDG config directory.
	ConfigFilePath string

	// File holds the loaded configuration file, if any.
	File *File

	// DBDir is the directory of the SQLite audit database.
	DBDir string

	// SaveToDB records every outcome in the audit database.
	SaveToDB bool

	// StorageDir is the root of the upload storage sink.
	StorageDir string

	// ListenAddr is the address the upload API listens on.
	ListenAddr string

	// JSONReport and MarkdownReport select the batch report format.
	// They are mutually exclusive; the default is a plain text report.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// Targets are the files and directories processed by batch commands.
	Targets []string

	// InPlace overwrites accepted files. Rejected files are left untouched.
	InPlace bool

	// OutputDir receives clean copies of accepted files.
	OutputDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		UploadRole:      DefaultUploadRole,
		MaxUploadKiB:    DefaultMaxUploadKiB,
		Concurrency:     DefaultConcurrency,
		SanitizeTimeout: DefaultSanitizeTimeout,
		MaxDepth:        DefaultMaxDepth,
		PolicyName:      policy.BaseDefault,
		DBDir:           XDGDataDir(),
		StorageDir:      filepath.Join(XDGDataDir(), "uploads"),
		ListenAddr:      DefaultListenAddr,
	}
}

// XDGDataDir returns the XDG data directory for easysvg.
// On Linux: ~/.local/share/easysvg
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for easysvg.
// On Linux: ~/.config/easysvg
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for easysvg.
// On Linux: ~/.cache/easysvg
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks the options shared by every command.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.UploadRole != host.RoleAdmin && c.UploadRole != host.RoleEditor {
		return ErrInvalidUploadRole
	}
	if c.MaxUploadKiB < 0 {
		return ErrInvalidMaxUpload
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.SanitizeTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxDepth <= 0 {
		return ErrInvalidMaxDepth
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

// ValidateBatch checks the options of the batch commands.
func (c *Config) ValidateBatch() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.InPlace && c.OutputDir != "" {
		return ErrConflictingOutputs
	}
	return nil
}

// SizePolicy returns the effective upload size policy.
func (c *Config) SizePolicy() host.SizePolicy {
	return host.NewSizePolicy(c.MaxUploadKiB)
}

// Limits returns the parser limits.
func (c *Config) Limits() svgdom.Limits {
	l := svgdom.DefaultLimits()
	if c.MaxDepth > 0 {
		l.MaxDepth = c.MaxDepth
	}
	return l
}

// Policy builds the sanitization table. A policy in the config file wins
// over PolicyName.
func (c *Config) Policy() (*policy.Table, error) {
	if c.File != nil && c.File.Policy != nil {
		t, err := policy.New(*c.File.Policy)
		if err != nil {
			return nil, fmt.Errorf("config file policy: %w", err)
		}
		return t, nil
	}
	switch c.PolicyName {
	case "", policy.BaseDefault:
		if err := policy.DefaultErr(); err != nil {
			return nil, err
		}
		return policy.Default(), nil
	case policy.BaseStrict:
		return policy.Strict(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, c.PolicyName)
	}
}

// Apply copies the values set in f onto c. Flags parsed later override
// them.
func (c *Config) Apply(f *File) error {
	if f == nil {
		return nil
	}
	c.File = f
	if f.Enabled != nil {
		c.Enabled = *f.Enabled
	}
	if f.UploadRole != "" {
		r, err := host.ParseRole(f.UploadRole)
		if err != nil {
			return err
		}
		c.UploadRole = r
	}
	if f.MaxUploadKiB != 0 {
		c.MaxUploadKiB = f.MaxUploadKiB
	}
	if f.Concurrency != 0 {
		c.Concurrency = f.Concurrency
	}
	if f.SanitizeTimeout != "" {
		d, err := time.ParseDuration(f.SanitizeTimeout)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTimeout, err)
		}
		c.SanitizeTimeout = d
	}
	if f.Minify != nil {
		c.Minify = *f.Minify
	}
	if f.StorageDir != "" {
		c.StorageDir = f.StorageDir
	}
	if f.ListenAddr != "" {
		c.ListenAddr = f.ListenAddr
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
	return nil
}
