package host

import (
	"maps"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/sanitizer"
)

// Gate is the availability signal for SVG support.
type Gate struct {
	enabled   bool
	available func() error
}

// NewGate creates a gate for the feature flag. SVG is only enabled while
// the sanitizer reports itself available.
func NewGate(enabled bool) Gate {
	return Gate{enabled: enabled, available: sanitizer.Available}
}

// Enabled reports whether SVG uploads are accepted.
func (g Gate) Enabled() bool {
	if !g.enabled {
		return false
	}
	check := g.available
	if check == nil {
		check = sanitizer.Available
	}
	return check() == nil
}

// Status returns the rejection reason for a closed gate, or "" when open.
func (g Gate) Status() sanitizer.Reason {
	switch {
	case !g.enabled:
		return sanitizer.ReasonDisabled
	case !g.Enabled():
		return sanitizer.ReasonSanitizerUnavailable
	}
	return ""
}

// baseMimeTypes are always accepted, whatever the gate says.
var baseMimeTypes = map[string]string{
	"gif":  "image/gif",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
}

// MimeTypes returns the extension → media type table the host advertises.
// The svg entry is present only when the gate is open.
func (g Gate) MimeTypes() map[string]string {
	m := maps.Clone(baseMimeTypes)
	if g.Enabled() {
		m["svg"] = sanitizer.MediaType
	}
	return m
}
