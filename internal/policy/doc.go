// Package policy holds the allow-list tables that decide which SVG elements,
// attributes and URI schemes survive sanitization.
//
// A Table is immutable once built and safe for concurrent use. Default returns
// the secure table the engine ships with; Strict returns a smaller table for
// hosts that only accept plain vector artwork; New derives a custom table
// from a Spec, usually loaded from YAML.
//
// Some constructs can never be allowed by any table: script-capable elements
// (script, foreignObject, iframe, object, embed, audio, video, handler,
// listener), every on* event attribute, and script-executing URI schemes.
// New returns ErrUnsafePolicy when a Spec tries to allow one of them.
package policy
