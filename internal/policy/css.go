package policy

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// cssDenied are substrings that, once whitespace is removed, indicate
// script execution or stylesheet loading.
var cssDenied = []string{
	"expression(",
	"@import",
	"behavior:",
	"behaviour:",
	"-moz-binding",
	"javascript:",
	"vbscript:",
}

var (
	cssComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	cssURL     = regexp.MustCompile(`url\(\s*("[^"]*"|'[^']*'|[^)"']*)\s*\)`)
)

// CheckCSS validates a style attribute, a presentation attribute that may
// hold url(), or the text of a <style> element. Every url() must pass
// CheckURI as a reference from element.
func (t *Table) CheckCSS(element, value string) error {
	css := normalizeCSS(value)

	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, css)
	for _, bad := range cssDenied {
		if strings.Contains(compact, bad) {
			return fmt.Errorf("%w: %s", ErrCSSConstruct, strings.TrimSuffix(bad, "("))
		}
	}

	matches := cssURL.FindAllStringSubmatchIndex(css, -1)
	if strings.Count(compact, "url(") != len(matches) {
		return fmt.Errorf("%w: unterminated url()", ErrMalformedCSS)
	}
	for _, m := range matches {
		ref := strings.Trim(css[m[2]:m[3]], `"'`)
		if err := t.CheckURI(urlOwner(element), ref); err != nil {
			return err
		}
	}
	return nil
}

// urlOwner returns the element whose reference rules apply to url() values.
// CSS references from <style> are not bound to a local-only element.
func urlOwner(element string) string {
	if strings.EqualFold(element, "style") {
		return ""
	}
	return element
}

// normalizeCSS strips comments, resolves CSS escapes, folds with NFKC and
// lower-cases, so that obfuscated keywords match their plain spelling.
func normalizeCSS(s string) string {
	s = cssComment.ReplaceAllString(s, "")
	s = unescapeCSS(s)
	return strings.ToLower(norm.NFKC.String(s))
}

// unescapeCSS resolves backslash escapes: up to six hex digits with one
// optional trailing space, or any other escaped character as itself.
func unescapeCSS(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(s) && j-i <= 6 && isHex(s[j]) {
			j++
		}
		if j == i+1 {
			if s[j] != '\n' {
				b.WriteByte(s[j])
			}
			i = j
			continue
		}
		n, err := strconv.ParseUint(s[i+1:j], 16, 32)
		if err != nil || n == 0 || n > unicode.MaxRune || (n >= 0xD800 && n <= 0xDFFF) {
			b.WriteRune(unicode.ReplacementChar)
		} else {
			b.WriteRune(rune(n))
		}
		if j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n') {
			j++
		}
		i = j - 1
	}
	return b.String()
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
