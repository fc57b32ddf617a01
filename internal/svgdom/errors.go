package svgdom

import (
	"errors"
	"fmt"
)

// Kind classifies a parse failure.
type Kind int

const (
	// KindNotWellFormed covers malformed XML, unsupported entities and
	// structural errors such as multiple root elements.
	KindNotWellFormed Kind = iota + 1
	// KindNoRootSVG means the document has no root element named svg.
	KindNoRootSVG
	// KindTooDeep means the nesting depth exceeded Limits.MaxDepth.
	KindTooDeep
	// KindTooLarge means a size bound was exceeded.
	KindTooLarge
)

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotWellFormed:
		return "not_well_formed"
	case KindNoRootSVG:
		return "no_root_svg_element"
	case KindTooDeep:
		return "too_deep"
	case KindTooLarge:
		return "too_large"
	default:
		return "unknown"
	}
}

var (
	errNoRoot             = errors.New("document has no root element")
	errRootNotSVG         = errors.New("root element is not svg")
	errMultipleRoots      = errors.New("multiple root elements")
	errContentOutsideRoot = errors.New("character data outside root element")
	errMisplacedDoctype   = errors.New("doctype outside prolog")
	errDuplicateDoctype   = errors.New("duplicate doctype")
	errDuplicateAttr      = errors.New("duplicate attribute")
	errDepthLimit         = errors.New("element depth exceeds limit")
	errAttrLimit          = errors.New("attribute count exceeds limit")
	errInputLimit         = errors.New("input exceeds size limit")
	errExpansionLimit     = errors.New("entity expansion exceeds budget")
	errRecursiveEntity    = errors.New("recursive entity reference")
	errMarkupInEntity     = errors.New("markup in entity replacement text is not supported")
	errMalformedEntity    = errors.New("malformed entity declaration")
)

// ParseError reports why a document could not be turned into a tree.
type ParseError struct {
	Kind Kind
	Line int
	Err  error
}

// Error formats the error with its line when known.
func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("svg parse error (%s) at line %d: %v", e.Kind, e.Line, e.Err)
	}
	return fmt.Sprintf("svg parse error (%s): %v", e.Kind, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newParseError(kind Kind, line int, err error) *ParseError {
	return &ParseError{Kind: kind, Line: line, Err: err}
}

// KindOf returns the Kind of err if it wraps a *ParseError, or zero.
func KindOf(err error) Kind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}
