// Package sanitizer turns untrusted SVG bytes into a safe rewritten document
// or rejects them with a specific reason.
//
// The work is split into independent stages:
//
//	bytes -> svgdom.Parse -> Walk -> Serialize -> Verify -> bytes
//
// Walk is the primary defence: an allow-list traversal driven by a
// policy.Table that removes disallowed elements wholesale and filters
// attributes. Verify is a backstop that re-reads the serialized output with
// an unrelated lexer and refuses anything that still looks executable.
//
// Engine ties the stages together. It never touches the filesystem, never
// retries and never returns an unsanitized byte: any failure, including a
// panic inside a stage, becomes a Rejection.
//
// Basic usage:
//
//	res := sanitizer.SanitizeUntrustedSVG(ctx, data, policy.Default())
//	if err := res.Err(); err != nil {
//		// reject the upload; errors.Is(err, sanitizer.ErrForbiddenElement) ...
//	}
//	store(res.Output)
package sanitizer
