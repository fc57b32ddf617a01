package policy

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeURI folds a URI value into the form browsers use to pick the
// scheme: leading whitespace and control characters are dropped, embedded
// tabs and newlines are removed, compatibility characters are folded with
// NFKC and the result is lower-cased.
func NormalizeURI(v string) string {
	v = strings.TrimLeftFunc(v, func(r rune) bool {
		return r <= 0x20 || unicode.IsSpace(r) || unicode.IsControl(r) || unicode.Is(unicode.Cf, r)
	})
	v = strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' || unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, v)
	return strings.ToLower(norm.NFKC.String(v))
}

// Scheme returns the scheme of a normalized URI. ok is false for relative
// references and fragments. A colon preceded by characters that cannot
// form a scheme yields ErrMalformedURI.
func Scheme(normalized string) (scheme string, ok bool, err error) {
	colon := strings.IndexByte(normalized, ':')
	if colon < 0 {
		return "", false, nil
	}
	if i := strings.IndexAny(normalized, "/?#"); i >= 0 && i < colon {
		return "", false, nil
	}
	scheme = normalized[:colon]
	if scheme == "" {
		return "", false, fmt.Errorf("%w: empty scheme", ErrMalformedURI)
	}
	for i, r := range scheme {
		switch {
		case r >= 'a' && r <= 'z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return "", false, fmt.Errorf("%w: %q", ErrMalformedURI, scheme)
		}
	}
	return scheme, true, nil
}

// CheckURI validates a URI-bearing attribute value on element. Empty
// values, same-document fragments and scheme-less relative references are
// accepted; everything else must use an allowed scheme.
func (t *Table) CheckURI(element, value string) error {
	v := NormalizeURI(value)
	if v == "" || strings.HasPrefix(v, "#") {
		return nil
	}
	if t.RequiresLocalReference(element) {
		return fmt.Errorf("%w: <%s> references %q", ErrNonLocalReference, element, truncate(v))
	}
	scheme, ok, err := Scheme(v)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if slices.Contains(alwaysDeniedSchemes, scheme) {
		return fmt.Errorf("%w: %s", ErrScriptScheme, scheme)
	}
	if !t.IsURISchemeAllowed(scheme) {
		return fmt.Errorf("%w: %s", ErrSchemeNotAllowed, scheme)
	}
	if scheme == "data" {
		mt := dataMediaType(v[len("data:"):])
		if !t.IsDataMediaTypeAllowed(mt) {
			return fmt.Errorf("%w: %q", ErrDataMediaType, mt)
		}
	}
	return nil
}

// dataMediaType returns the media type of a data: URI body, defaulting to
// text/plain as RFC 2397 does.
func dataMediaType(body string) string {
	end := strings.IndexAny(body, ";,")
	if end < 0 {
		end = len(body)
	}
	mt := strings.TrimSpace(body[:end])
	if mt == "" {
		return "text/plain"
	}
	return mt
}

func truncate(s string) string {
	const limit = 64
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// CheckAnimationValue validates the to, from, by or values attribute of an
// animation element. Each ';' separated entry that carries a scheme must
// pass CheckURI; plain values such as colors and lengths are ignored.
func (t *Table) CheckAnimationValue(element, value string) error {
	for _, entry := range strings.Split(value, ";") {
		if _, ok, err := Scheme(NormalizeURI(entry)); err != nil || !ok {
			continue
		}
		if err := t.CheckURI(element, entry); err != nil {
			return err
		}
	}
	return nil
}
