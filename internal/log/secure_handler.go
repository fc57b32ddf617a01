package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// sensitiveKeys contains attribute keys that should always be masked.
var sensitiveKeys = map[string]bool{
	// HTTP headers
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"proxy-authorization": true,

	// Credentials
	"password":      true,
	"secret":        true,
	"token":         true,
	"api_key":       true,
	"apikey":        true,
	"access_token":  true,
	"refresh_token": true,
	"bearer":        true,
	"credential":    true,
	"credentials":   true,

	// Session
	"session":    true,
	"session_id": true,
	"sid":        true,
}

// untrustedKeys carry values taken from uploaded files or from clients.
var untrustedKeys = map[string]bool{
	"filename":   true,
	"file":       true,
	"path":       true,
	"detail":     true,
	"tag":        true,
	"element":    true,
	"attribute":  true,
	"snippet":    true,
	"error":      true,
	"principal":  true,
	"user_agent": true,
}

// sensitivePatterns contains regex patterns that indicate sensitive values.
// Values matching these patterns are masked regardless of key name.
var sensitivePatterns = []*regexp.Regexp{
	// JWT tokens
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),

	// Bearer tokens
	regexp.MustCompile(`(?i)^bearer\s+.+`),

	// Basic auth
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),

	// AWS access keys
	regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`),

	// Private key markers
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),
}

var (
	// longToken matches API-key shaped strings.
	longToken = regexp.MustCompile(`^[a-zA-Z0-9]{32,}$`)
	// hexDigest matches content digests, which are logged on purpose
	// under digestKeys only.
	hexDigest = regexp.MustCompile(`^[0-9a-f]+$`)
)

// digestKeys carry SHA3-256 content digests.
var digestKeys = map[string]bool{
	"digest":        true,
	"input_digest":  true,
	"output_digest": true,
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// MaxUntrustedRunes is the length untrusted values are truncated to.
const MaxUntrustedRunes = 120

// SecureHandler wraps an slog.Handler and sanitizes attributes before
// passing records on.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler creates a new SecureHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled delegates to the underlying handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's attributes and passes it to the underlying handler.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are sanitized before being added.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = h.sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(sanitizedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr sanitizes a single attribute, recursively handling groups.
func (h *SecureHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = h.sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	}

	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] || containsSensitiveKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if isSensitiveValue(s) && !(digestKeys[keyLower] && hexDigest.MatchString(s)) {
			return slog.String(a.Key, MaskValue)
		}
		if untrustedKeys[keyLower] || needsEscaping(s) {
			return slog.String(a.Key, Neutralize(s))
		}
	case slog.KindAny:
		if untrustedKeys[keyLower] {
			return slog.String(a.Key, Neutralize(fmt.Sprint(a.Value.Any())))
		}
	}
	return a
}

// containsSensitiveKeyword checks if the key contains sensitive keywords.
// "auth" alone is not a keyword: it would catch "author".
func containsSensitiveKeyword(key string) bool {
	sensitiveKeywords := []string{
		"password", "passwd", "secret", "token", "credential", "cookie", "authorization",
	}
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// isSensitiveValue checks if a value matches sensitive patterns.
func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return longToken.MatchString(value)
}

func needsEscaping(s string) bool {
	for _, r := range s {
		if isUnsafeRune(r) {
			return true
		}
	}
	return false
}

func isUnsafeRune(r rune) bool {
	return r == utf8.RuneError || unicode.IsControl(r) || unicode.Is(unicode.Cf, r) ||
		r == '\u2028' || r == '\u2029'
}

// Neutralize escapes control and format characters as \uXXXX and truncates
// s to MaxUntrustedRunes runes.
func Neutralize(s string) string {
	var b strings.Builder
	n := 0
	for _, r := range s {
		if n == MaxUntrustedRunes {
			b.WriteString("…")
			break
		}
		if isUnsafeRune(r) {
			fmt.Fprintf(&b, `\u%04x`, r)
		} else {
			b.WriteRune(r)
		}
		n++
	}
	return b.String()
}

// NewSecureLogger creates a text slog.Logger with secure handling.
// verbose selects Debug level, otherwise Warn.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewSecureJSONLogger creates a JSON slog.Logger with secure handling.
// The upload server uses it for structured request logs.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
