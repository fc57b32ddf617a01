package svgdom

import "cmp"

const (
	// DefaultMaxDepth is the deepest element nesting accepted.
	DefaultMaxDepth = 256

	// DefaultMaxAttributes is the largest attribute count on one element.
	DefaultMaxAttributes = 256

	// DefaultExpansionFactor bounds decoded content to this multiple of the
	// input size once internal entities are expanded.
	DefaultExpansionFactor = 4

	// DefaultExpansionFloor is the minimum expansion budget in bytes, so
	// tiny documents may still use a handful of short entities.
	DefaultExpansionFloor = 64 << 10
)

// Limits bounds the resources one Parse call may consume.
// Zero fields take the package defaults.
type Limits struct {
	// MaxDepth is the maximum element nesting depth. The root is depth 1.
	MaxDepth int

	// MaxAttributes is the maximum number of attributes on one element,
	// namespace declarations included.
	MaxAttributes int

	// ExpansionFactor multiplies the input length to give the budget for
	// decoded text and attribute values after entity expansion.
	ExpansionFactor int

	// ExpansionFloor is the smallest budget regardless of input length.
	ExpansionFloor int

	// MaxInputBytes rejects larger inputs outright. Zero means no limit at
	// this layer; hosts normally enforce their own upload limit first.
	MaxInputBytes int
}

// DefaultLimits returns the limits used when none are supplied.
func DefaultLimits() Limits {
	return Limits{
		MaxDepth:        DefaultMaxDepth,
		MaxAttributes:   DefaultMaxAttributes,
		ExpansionFactor: DefaultExpansionFactor,
		ExpansionFloor:  DefaultExpansionFloor,
	}
}

func (l Limits) withDefaults() Limits {
	return Limits{
		MaxDepth:        cmp.Or(max(l.MaxDepth, 0), DefaultMaxDepth),
		MaxAttributes:   cmp.Or(max(l.MaxAttributes, 0), DefaultMaxAttributes),
		ExpansionFactor: cmp.Or(max(l.ExpansionFactor, 0), DefaultExpansionFactor),
		ExpansionFloor:  cmp.Or(max(l.ExpansionFloor, 0), DefaultExpansionFloor),
		MaxInputBytes:   max(l.MaxInputBytes, 0),
	}
}

// budget returns the number of decoded bytes allowed for an input of n bytes.
func (l Limits) budget(n int) int64 {
	b := int64(n) * int64(l.ExpansionFactor)
	return max(b, int64(l.ExpansionFloor))
}
