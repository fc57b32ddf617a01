package svgdom

import (
	"errors"
	"testing"
)

func TestParseDoctype(t *testing.T) {
	t.Parallel()

	directive := []byte(`DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd" [
	<!-- Illustrator exports these -->
	<!ENTITY ns_svg "http://www.w3.org/2000/svg">
	<!ENTITY ns_svg "ignored second declaration">
	<!ENTITY ext SYSTEM "file:///etc/hostname">
	<!ENTITY % param "x">
	<!ELEMENT svg ANY>
	<?pi data?>
	%param;
]`)

	dt, err := parseDoctype(directive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := dt.entities["ns_svg"]; got == nil || got.literal != SVGNamespace {
		t.Errorf("expected first ns_svg declaration to win, got %+v", got)
	}
	if got := dt.entities["ext"]; got == nil || !got.external {
		t.Errorf("expected ext to be recorded as external, got %+v", got)
	}
	if _, ok := dt.entities["param"]; ok {
		t.Error("parameter entities must not become general entities")
	}
}

func TestParseDoctypeMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		directive string
	}{
		{name: "unterminated subset", directive: `DOCTYPE svg [ <!ENTITY a "x">`},
		{name: "unterminated comment", directive: `DOCTYPE svg [ <!-- never closed ]`},
		{name: "missing entity name", directive: `DOCTYPE svg [ <!ENTITY > ]`},
		{name: "unterminated value", directive: `DOCTYPE svg [ <!ENTITY a "x> ]`},
		{name: "stray text", directive: `DOCTYPE svg [ hello ]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := parseDoctype([]byte(tt.directive))
			if !errors.Is(err, errMalformedEntity) {
				t.Errorf("expected errMalformedEntity, got %v", err)
			}
		})
	}
}

func TestEntityResolver(t *testing.T) {
	t.Parallel()

	dt := &doctype{entities: map[string]*entityDecl{
		"a":    {name: "a", literal: "ab"},
		"b":    {name: "b", literal: "&a;&a;&#x41;"},
		"ext":  {name: "ext", external: true},
		"uses": {name: "uses", literal: "&ext;"},
	}}

	t.Run("sizes are computed without expansion", func(t *testing.T) {
		t.Parallel()

		r := newEntityResolver(dt, 1<<20)
		n, err := r.size("b")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 5 {
			t.Errorf("expected size 5, got %d", n)
		}
	})

	t.Run("entities built on external ones are unresolvable", func(t *testing.T) {
		t.Parallel()

		r := newEntityResolver(dt, 1<<20)
		n, err := r.size("uses")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != unresolvable {
			t.Errorf("expected unresolvable, got %d", n)
		}
	})

	t.Run("only referenced entities are materialised", func(t *testing.T) {
		t.Parallel()

		r := newEntityResolver(dt, 1<<20)
		got, err := r.resolve([]byte(`<svg>&b;&uses;</svg>`), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got["b"] != "ababA" {
			t.Errorf("expected b to expand to ababA, got %q", got["b"])
		}
		if _, ok := got["a"]; ok {
			t.Error("a is never referenced directly and should be absent")
		}
		if _, ok := got["uses"]; ok {
			t.Error("uses depends on an external entity and should be absent")
		}
	})

	t.Run("budget is enforced across references", func(t *testing.T) {
		t.Parallel()

		r := newEntityResolver(dt, 8)
		_, err := r.resolve([]byte(`&b;&b;`), 0)
		if !errors.Is(err, errExpansionLimit) {
			t.Errorf("expected errExpansionLimit, got %v", err)
		}
	})

	t.Run("invalid character references are rejected", func(t *testing.T) {
		t.Parallel()

		bad := &doctype{entities: map[string]*entityDecl{
			"nul": {name: "nul", literal: "&#0;"},
		}}
		_, err := newEntityResolver(bad, 1<<20).resolve([]byte(`&nul;`), 0)
		if !errors.Is(err, errMalformedEntity) {
			t.Errorf("expected errMalformedEntity, got %v", err)
		}
	})
}
