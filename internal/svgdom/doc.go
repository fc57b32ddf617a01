// Package svgdom parses untrusted SVG bytes into a small mutable tree and
// renders that tree back to canonical XML.
//
// The parser is built on encoding/xml in strict mode and adds the guards an
// upload path needs:
//   - no external entity or external DTD is ever resolved
//   - internal entities are expanded as plain text only, and only when their
//     total expansion stays within a fixed multiple of the input size
//   - element nesting and attribute counts are bounded
//   - the root element must be named svg (case-insensitive, any namespace)
//
// Failures are reported as *ParseError values carrying a Kind, so callers can
// map them onto their own rejection taxonomy with errors.As.
//
// The serializer is deterministic: attributes keep insertion order, empty
// elements self-close, text and attribute values are always escaped, and the
// XML declaration is written only when the input carried one.
package svgdom
