package sanitizer

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/xml"
	"golang.org/x/net/html"
)

// forbiddenOpenTag matches an opening tag of a script-capable element, with
// or without a namespace prefix.
var forbiddenOpenTag = regexp.MustCompile(`(?i)<\s*(?:[a-z_][a-z0-9_.-]*:)?(script|foreignobject|iframe|object|embed)\b`)

// scriptSchemes are the value prefixes that execute script when followed.
var scriptSchemes = []string{"javascript:", "vbscript:", "data:text/html"}

// Attribute sets are matched on the local name, so xlink:href is covered
// by href.
var (
	verifierURIAttrs = map[string]bool{"href": true, "src": true, "action": true, "formaction": true}
	verifierCSSAttrs = map[string]bool{
		"style": true, "fill": true, "stroke": true, "filter": true, "clip-path": true,
		"mask": true, "marker-start": true, "marker-mid": true, "marker-end": true, "cursor": true,
	}
	// verifierAnimationAttrs hold values an animation writes into another
	// attribute.
	verifierAnimationAttrs = map[string]bool{"to": true, "from": true, "by": true, "values": true}
)

// Verify re-reads serialized output without encoding/xml and returns a
// *Rejection when it still contains a forbidden opening tag, an on*
// attribute or a script-executing URI. It returns nil for clean output.
func Verify(data []byte) error {
	if m := forbiddenOpenTag.FindSubmatch(data); m != nil {
		return Reject(ReasonForbiddenElement, strings.ToLower(string(m[1])), nil)
	}

	l := xml.NewLexer(parse.NewInput(bytes.NewReader(data)))
	for {
		tt, _ := l.Next()
		switch tt {
		case xml.ErrorToken:
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return Reject(ReasonNotWellFormed, "verifier", err)
			}
			return nil
		case xml.AttributeToken:
			if err := verifyAttr(string(l.Text()), string(l.AttrVal())); err != nil {
				return err
			}
		}
	}
}

func verifyAttr(name, raw string) error {
	local := strings.ToLower(name)
	if i := strings.LastIndexByte(local, ':'); i >= 0 {
		local = local[i+1:]
	}
	if strings.HasPrefix(local, "on") {
		return Reject(ReasonScriptReference, "attribute "+local, nil)
	}
	uri, css := verifierURIAttrs[local], verifierCSSAttrs[local] || verifierAnimationAttrs[local]
	if !uri && !css {
		return nil
	}
	value := compactValue(unquote(raw))
	for _, scheme := range scriptSchemes {
		if (uri && strings.HasPrefix(value, scheme)) || (css && strings.Contains(value, scheme)) {
			return Reject(ReasonScriptReference, local+" uses "+strings.TrimSuffix(scheme, ":"), nil)
		}
	}
	return nil
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// compactValue decodes character references, drops whitespace and control
// characters, and lower-cases the result.
func compactValue(v string) string {
	v = html.UnescapeString(v)
	v = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, v)
	return strings.ToLower(v)
}
