package policy

import (
	"encoding/xml"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/svgdom"
)

// Base names accepted in Spec.Base.
const (
	BaseDefault = "default"
	BaseStrict  = "strict"
)

// DefaultVersion is reported by the built-in tables.
const DefaultVersion = "1"

type set map[string]struct{}

func newSet(items ...[]string) set {
	s := make(set)
	for _, list := range items {
		for _, v := range list {
			s[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
		}
	}
	return s
}

func (s set) has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Table is an immutable allow-list.
type Table struct {
	name    string
	version string

	elements  set
	global    set
	perElem   map[string]set
	uriAttrs  set
	cssAttrs  set
	schemes   set
	dataTypes set
	localRefs set
	animation set
	protected set
	denied    set
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// Default returns the secure table the engine uses when none is given.
func Default() *Table {
	t, err := loadDefault()
	if err != nil {
		panic(err)
	}
	return t
}

// loadDefault builds the default table once and reports any construction
// failure instead of panicking.
func loadDefault() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = New(Spec{Name: BaseDefault, Version: DefaultVersion, Base: BaseDefault})
	})
	return defaultTable, defaultErr
}

// DefaultErr reports whether the default table could be built.
func DefaultErr() error {
	_, err := loadDefault()
	return err
}

// Strict returns a table limited to shapes, paths, text and gradients,
// without raster images, style elements, animation or data: URIs.
func Strict() *Table {
	t, err := New(Spec{Name: BaseStrict, Version: DefaultVersion, Base: BaseStrict})
	if err != nil {
		panic(err)
	}
	return t
}

func base(name string) (*Table, error) {
	t := &Table{
		perElem:   make(map[string]set, len(elementAttributes)),
		uriAttrs:  newSet(uriAttributes),
		cssAttrs:  newSet(cssAttributes),
		localRefs: newSet(localReferenceElements),
		animation: newSet(animationElements),
		protected: newSet(protectedAnimationTargets),
		denied:    newSet(alwaysDeniedElements),
	}
	switch strings.ToLower(name) {
	case "", BaseDefault:
		t.elements = newSet(defaultElements)
		t.global = newSet(globalAttributes)
		t.schemes = newSet(defaultSchemes)
		t.dataTypes = newSet(defaultDataTypes)
	case BaseStrict:
		t.elements = newSet(strictElements)
		t.global = newSet(strictGlobalAttributes)
		t.schemes = newSet(strictSchemes)
		t.dataTypes = newSet()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBase, name)
	}
	for el, attrs := range elementAttributes {
		if t.elements.has(el) {
			t.perElem[el] = newSet(attrs)
		}
	}
	return t, nil
}

// New builds a table from spec. The result never allows an always-denied
// construct; a spec that asks for one fails with ErrUnsafePolicy.
func New(spec Spec) (*Table, error) {
	t, err := base(spec.Base)
	if err != nil {
		return nil, err
	}
	t.name = spec.Name
	if t.name == "" {
		t.name = strings.ToLower(spec.Base)
		if t.name == "" {
			t.name = BaseDefault
		}
	}
	t.version = spec.Version
	if t.version == "" {
		t.version = DefaultVersion
	}

	if err := checkUnsafe(spec); err != nil {
		return nil, err
	}

	for _, el := range spec.AllowElements {
		t.elements[strings.ToLower(el)] = struct{}{}
	}
	for _, el := range spec.DenyElements {
		delete(t.elements, strings.ToLower(el))
	}
	for el, attrs := range spec.AllowAttributes {
		el = strings.ToLower(el)
		if el == "*" {
			for _, a := range attrs {
				t.global[strings.ToLower(a)] = struct{}{}
			}
			continue
		}
		if t.perElem[el] == nil {
			t.perElem[el] = newSet()
		}
		for _, a := range attrs {
			t.perElem[el][strings.ToLower(a)] = struct{}{}
		}
	}
	for _, a := range spec.DenyAttributes {
		a = strings.ToLower(a)
		delete(t.global, a)
		for _, s := range t.perElem {
			delete(s, a)
		}
	}
	for _, s := range spec.AllowSchemes {
		t.schemes[strings.ToLower(s)] = struct{}{}
	}
	for _, s := range spec.DenySchemes {
		delete(t.schemes, strings.ToLower(s))
	}
	for _, d := range spec.AllowDataTypes {
		t.dataTypes[strings.ToLower(d)] = struct{}{}
	}
	for _, d := range spec.DenyDataTypes {
		delete(t.dataTypes, strings.ToLower(d))
	}
	return t, nil
}

func checkUnsafe(spec Spec) error {
	denied := newSet(alwaysDeniedElements)
	for _, el := range spec.AllowElements {
		if denied.has(strings.ToLower(el)) {
			return fmt.Errorf("%w: element %q", ErrUnsafePolicy, el)
		}
	}
	for el, attrs := range spec.AllowAttributes {
		for _, a := range attrs {
			if isEventAttribute(strings.ToLower(a)) {
				return fmt.Errorf("%w: attribute %q on %q", ErrUnsafePolicy, a, el)
			}
		}
	}
	schemes := newSet(alwaysDeniedSchemes)
	for _, s := range spec.AllowSchemes {
		if schemes.has(strings.ToLower(s)) {
			return fmt.Errorf("%w: scheme %q", ErrUnsafePolicy, s)
		}
	}
	types := newSet(alwaysDeniedDataTypes)
	for _, d := range spec.AllowDataTypes {
		if types.has(strings.ToLower(d)) || !strings.HasPrefix(strings.ToLower(d), "image/") {
			return fmt.Errorf("%w: data media type %q", ErrUnsafePolicy, d)
		}
	}
	return nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Version returns the table version.
func (t *Table) Version() string { return t.version }

// IsElementAllowed reports whether an element with this qualified name may
// appear in output. Only unqualified and SVG-namespace elements qualify.
func (t *Table) IsElementAllowed(name xml.Name) bool {
	if name.Space != "" && name.Space != svgdom.SVGNamespace {
		return false
	}
	local := strings.ToLower(name.Local)
	return !t.denied.has(local) && t.elements.has(local)
}

// IsAttributeAllowed reports whether attribute key (as produced by
// svgdom.Attr.Key) may appear on element.
func (t *Table) IsAttributeAllowed(element, key string) bool {
	key = strings.ToLower(key)
	if isEventAttribute(key) {
		return false
	}
	if t.global.has(key) {
		return true
	}
	return t.perElem[strings.ToLower(element)].has(key)
}

// IsURISchemeAllowed reports whether scheme may be used in a URI-bearing
// attribute or CSS url().
func (t *Table) IsURISchemeAllowed(scheme string) bool {
	scheme = strings.ToLower(scheme)
	if slices.Contains(alwaysDeniedSchemes, scheme) {
		return false
	}
	return t.schemes.has(scheme)
}

// IsDataMediaTypeAllowed reports whether a data: URI may carry mediaType.
func (t *Table) IsDataMediaTypeAllowed(mediaType string) bool {
	return t.dataTypes.has(strings.ToLower(strings.TrimSpace(mediaType)))
}

// IsAlwaysStripped reports whether nodes of kind are removed from every
// document regardless of position.
func (t *Table) IsAlwaysStripped(kind svgdom.NodeKind) bool {
	switch kind {
	case svgdom.CommentNode, svgdom.ProcInstNode, svgdom.DirectiveNode:
		return true
	default:
		return false
	}
}

// IsURIAttribute reports whether the attribute value is a URI reference.
func (t *Table) IsURIAttribute(key string) bool {
	return t.uriAttrs.has(strings.ToLower(key))
}

// IsCSSAttribute reports whether the attribute value may contain CSS
// functions such as url().
func (t *Table) IsCSSAttribute(key string) bool {
	return t.cssAttrs.has(strings.ToLower(key))
}

// RequiresLocalReference reports whether element may only reference
// fragments of the same document.
func (t *Table) RequiresLocalReference(element string) bool {
	return t.localRefs.has(strings.ToLower(element))
}

// IsAnimationElement reports whether element can rewrite other attributes.
func (t *Table) IsAnimationElement(element string) bool {
	return t.animation.has(strings.ToLower(element))
}

// IsProtectedAnimationTarget reports whether an animation may not target
// the attribute named by an attributeName value. The prefix is ignored, so
// any prefix bound to the XLink namespace is covered.
func (t *Table) IsProtectedAnimationTarget(attributeName string) bool {
	name := strings.ToLower(strings.TrimSpace(attributeName))
	if i := strings.LastIndexAny(name, ":}"); i >= 0 {
		name = name[i+1:]
	}
	return isEventAttribute(name) || t.protected.has(name)
}

// IsAnimationValueAttribute reports whether key holds values an animation
// writes into its target.
func (t *Table) IsAnimationValueAttribute(key string) bool {
	switch strings.ToLower(key) {
	case "to", "from", "by", "values":
		return true
	}
	return false
}

// isEventAttribute matches on* handlers, with or without a prefix.
func isEventAttribute(key string) bool {
	if i := strings.LastIndexAny(key, ":}"); i >= 0 {
		key = key[i+1:]
	}
	return strings.HasPrefix(key, "on")
}
