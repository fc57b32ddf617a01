package svgdom

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

var predefinedEntities = map[string]string{
	"lt":   "<",
	"gt":   ">",
	"amp":  "&",
	"apos": "'",
	"quot": "\"",
}

// entityDecl is one <!ENTITY> declaration from the internal subset.
type entityDecl struct {
	name     string
	literal  string
	external bool
}

// doctype is what the parser keeps from a DOCTYPE directive. Only general
// entities matter; element and attribute-list declarations are ignored.
type doctype struct {
	entities map[string]*entityDecl
}

// parseDoctype scans the directive body (the bytes between "<!" and ">").
// It never fetches anything: external identifiers are recorded as such and
// simply never receive replacement text.
func parseDoctype(directive []byte) (*doctype, error) {
	dt := &doctype{entities: make(map[string]*entityDecl)}

	open := indexUnquoted(directive, '[')
	if open < 0 {
		return dt, nil
	}
	end := bytes.LastIndexByte(directive, ']')
	if end < open {
		return nil, fmt.Errorf("%w: unterminated internal subset", errMalformedEntity)
	}
	subset := directive[open+1 : end]

	for i := 0; i < len(subset); {
		switch {
		case isSpace(subset[i]):
			i++
		case bytes.HasPrefix(subset[i:], []byte("<!--")):
			j := bytes.Index(subset[i+4:], []byte("-->"))
			if j < 0 {
				return nil, fmt.Errorf("%w: unterminated comment", errMalformedEntity)
			}
			i += 4 + j + 3
		case bytes.HasPrefix(subset[i:], []byte("<?")):
			j := bytes.Index(subset[i+2:], []byte("?>"))
			if j < 0 {
				return nil, fmt.Errorf("%w: unterminated processing instruction", errMalformedEntity)
			}
			i += 2 + j + 2
		case bytes.HasPrefix(subset[i:], []byte("<!ENTITY")):
			n, decl, err := scanEntity(subset[i:])
			if err != nil {
				return nil, err
			}
			// The first declaration of a name is binding.
			if decl != nil {
				if _, seen := dt.entities[decl.name]; !seen {
					dt.entities[decl.name] = decl
				}
			}
			i += n
		case subset[i] == '<':
			j := indexUnquoted(subset[i:], '>')
			if j < 0 {
				return nil, fmt.Errorf("%w: unterminated markup declaration", errMalformedEntity)
			}
			i += j + 1
		case subset[i] == '%':
			j := bytes.IndexByte(subset[i:], ';')
			if j < 0 {
				return nil, fmt.Errorf("%w: unterminated parameter entity reference", errMalformedEntity)
			}
			i += j + 1
		default:
			return nil, fmt.Errorf("%w: unexpected %q in internal subset", errMalformedEntity, subset[i])
		}
	}
	return dt, nil
}

// scanEntity parses one <!ENTITY ...> at the start of b and returns the
// number of bytes consumed. Parameter entities yield a nil decl.
func scanEntity(b []byte) (int, *entityDecl, error) {
	i := len("<!ENTITY")
	i = skipSpace(b, i)
	parameter := false
	if i < len(b) && b[i] == '%' {
		parameter = true
		i = skipSpace(b, i+1)
	}
	start := i
	for i < len(b) && !isSpace(b[i]) && b[i] != '>' {
		i++
	}
	name := string(b[start:i])
	if name == "" {
		return 0, nil, fmt.Errorf("%w: missing entity name", errMalformedEntity)
	}
	i = skipSpace(b, i)
	if i >= len(b) {
		return 0, nil, fmt.Errorf("%w: truncated entity %q", errMalformedEntity, name)
	}

	decl := &entityDecl{name: name}
	if q := b[i]; q == '"' || q == '\'' {
		j := bytes.IndexByte(b[i+1:], q)
		if j < 0 {
			return 0, nil, fmt.Errorf("%w: unterminated value for %q", errMalformedEntity, name)
		}
		decl.literal = string(b[i+1 : i+1+j])
		i += j + 2
	} else {
		decl.external = true
	}

	j := indexUnquoted(b[i:], '>')
	if j < 0 {
		return 0, nil, fmt.Errorf("%w: unterminated entity %q", errMalformedEntity, name)
	}
	if parameter {
		return i + j + 1, nil, nil
	}
	return i + j + 1, decl, nil
}

// entityResolver computes expansion sizes arithmetically before any text
// is materialised, so a declaration like the billion laughs is rejected
// without being expanded.
type entityResolver struct {
	dt       *doctype
	budget   int64
	sizes    map[string]int64
	visiting map[string]bool
	values   map[string]string
}

const unresolvable = -1

func newEntityResolver(dt *doctype, budget int64) *entityResolver {
	return &entityResolver{
		dt:       dt,
		budget:   budget,
		sizes:    make(map[string]int64),
		visiting: make(map[string]bool),
		values:   make(map[string]string),
	}
}

// size returns the expanded length of the named entity, saturated at
// budget+1, or unresolvable when it depends on an external or undeclared
// entity.
func (r *entityResolver) size(name string) (int64, error) {
	if v, ok := predefinedEntities[name]; ok {
		return int64(len(v)), nil
	}
	if n, ok := r.sizes[name]; ok {
		return n, nil
	}
	decl, ok := r.dt.entities[name]
	if !ok || decl.external {
		r.sizes[name] = unresolvable
		return unresolvable, nil
	}
	if r.visiting[name] {
		return 0, fmt.Errorf("%w: &%s;", errRecursiveEntity, name)
	}
	r.visiting[name] = true
	defer delete(r.visiting, name)

	var total int64
	err := forEachRef(decl.literal, func(lit string, ref string, charRef bool) error {
		total = saturatingAdd(total, int64(len(lit)), r.budget)
		if ref == "" {
			return nil
		}
		if charRef {
			ch, err := decodeCharRef(ref)
			if err != nil {
				return err
			}
			total = saturatingAdd(total, int64(utf8.RuneLen(ch)), r.budget)
			return nil
		}
		n, err := r.size(ref)
		if err != nil {
			return err
		}
		if n == unresolvable {
			total = unresolvable
			return errStopRefs
		}
		total = saturatingAdd(total, n, r.budget)
		return nil
	})
	if err != nil && !errors.Is(err, errStopRefs) {
		return 0, err
	}
	r.sizes[name] = total
	return total, nil
}

// value materialises the replacement text of an entity whose size is known
// to be within budget. Literals containing markup are refused since the
// decoder only ever inserts replacement text as character data.
func (r *entityResolver) value(name string) (string, error) {
	if v, ok := predefinedEntities[name]; ok {
		return v, nil
	}
	if v, ok := r.values[name]; ok {
		return v, nil
	}
	decl := r.dt.entities[name]
	if strings.ContainsRune(decl.literal, '<') {
		return "", fmt.Errorf("%w: &%s;", errMarkupInEntity, name)
	}
	var sb strings.Builder
	err := forEachRef(decl.literal, func(lit string, ref string, charRef bool) error {
		sb.WriteString(lit)
		if ref == "" {
			return nil
		}
		if charRef {
			ch, err := decodeCharRef(ref)
			if err != nil {
				return err
			}
			sb.WriteRune(ch)
			return nil
		}
		v, err := r.value(ref)
		if err != nil {
			return err
		}
		sb.WriteString(v)
		return nil
	})
	if err != nil {
		return "", err
	}
	r.values[name] = sb.String()
	return r.values[name], nil
}

// resolve returns the replacement map for the entities referenced in body.
// baseSize is the number of input bytes already accounted for.
func (r *entityResolver) resolve(body []byte, baseSize int64) (map[string]string, error) {
	out := make(map[string]string)
	total := baseSize
	for _, name := range slices.Sorted(maps.Keys(r.dt.entities)) {
		if _, ok := predefinedEntities[name]; ok {
			continue
		}
		n, err := r.size(name)
		if err != nil {
			return nil, err
		}
		if n > r.budget {
			return nil, fmt.Errorf("%w: &%s; expands beyond %d bytes", errExpansionLimit, name, r.budget)
		}
		if n == unresolvable {
			continue
		}
		refs := int64(bytes.Count(body, []byte("&"+name+";")))
		if refs == 0 {
			continue
		}
		if refs > r.budget || n*refs > r.budget {
			return nil, fmt.Errorf("%w: %d references to &%s;", errExpansionLimit, refs, name)
		}
		total = saturatingAdd(total, n*refs, r.budget)
		if total > r.budget {
			return nil, fmt.Errorf("%w: total expansion beyond %d bytes", errExpansionLimit, r.budget)
		}
		v, err := r.value(name)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

var errStopRefs = errors.New("stop")

// forEachRef splits s into literal runs and entity references. ref is the
// entity name, or the text after '#' when charRef is true.
func forEachRef(s string, fn func(lit, ref string, charRef bool) error) error {
	for {
		amp := strings.IndexByte(s, '&')
		if amp < 0 {
			return fn(s, "", false)
		}
		semi := strings.IndexByte(s[amp:], ';')
		if semi < 0 {
			return fmt.Errorf("%w: unterminated reference in entity value", errMalformedEntity)
		}
		ref := s[amp+1 : amp+semi]
		if ref == "" {
			return fmt.Errorf("%w: empty reference in entity value", errMalformedEntity)
		}
		var err error
		if ref[0] == '#' {
			err = fn(s[:amp], ref[1:], true)
		} else {
			err = fn(s[:amp], ref, false)
		}
		if err != nil {
			return err
		}
		s = s[amp+semi+1:]
	}
}

func decodeCharRef(ref string) (rune, error) {
	var (
		n   uint64
		err error
	)
	if strings.HasPrefix(ref, "x") {
		n, err = strconv.ParseUint(ref[1:], 16, 32)
	} else {
		n, err = strconv.ParseUint(ref, 10, 32)
	}
	if err != nil || !isXMLChar(rune(n)) {
		return 0, fmt.Errorf("%w: invalid character reference &#%s;", errMalformedEntity, ref)
	}
	return rune(n), nil
}

// isXMLChar reports whether r is allowed by the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= utf8.MaxRune)
}

func saturatingAdd(a, b, limit int64) int64 {
	if a > limit || b > limit || a+b > limit {
		return limit + 1
	}
	return a + b
}

func indexUnquoted(b []byte, c byte) int {
	var quote byte
	for i, ch := range b {
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == c:
			return i
		}
	}
	return -1
}

func skipSpace(b []byte, i int) int {
	for i < len(b) && isSpace(b[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
