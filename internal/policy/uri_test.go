package policy

import (
	"errors"
	"testing"
)

func TestNormalizeURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "leading whitespace and controls", input: " \x01\t JavaScript:alert(1)", want: "javascript:alert(1)"},
		{name: "embedded tab and newline", input: "java\tscr\nipt:x", want: "javascript:x"},
		{name: "fullwidth letters", input: "ｊａｖａｓｃｒｉｐｔ:x", want: "javascript:x"},
		{name: "zero width joiner", input: "java\u200dscript:x", want: "javascript:x"},
		{name: "plain fragment", input: "#Shape", want: "#shape"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NormalizeURI(tt.input); got != tt.want {
				t.Errorf("NormalizeURI(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestScheme(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		scheme  string
		ok      bool
		wantErr bool
	}{
		{input: "https://example.com/a.png", scheme: "https", ok: true},
		{input: "data:image/png;base64,AAAA", scheme: "data", ok: true},
		{input: "images/a.png", ok: false},
		{input: "./a:b.png", ok: false},
		{input: "a.png?x=1:2", ok: false},
		{input: "#frag", ok: false},
		{input: ":nothing", wantErr: true},
		{input: "java script:x", wantErr: true},
		{input: "1http://x", wantErr: true},
	}

	for _, tt := range tests {
		scheme, ok, err := Scheme(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrMalformedURI) {
				t.Errorf("Scheme(%q): expected ErrMalformedURI, got %v", tt.input, err)
			}
			continue
		}
		if err != nil || scheme != tt.scheme || ok != tt.ok {
			t.Errorf("Scheme(%q) = %q, %v, %v; want %q, %v", tt.input, scheme, ok, err, tt.scheme, tt.ok)
		}
	}
}

func TestCheckURI(t *testing.T) {
	t.Parallel()

	tbl := Default()
	tests := []struct {
		name    string
		element string
		value   string
		want    error
	}{
		{name: "empty", element: "a", value: "", want: nil},
		{name: "fragment", element: "use", value: "#icon", want: nil},
		{name: "relative", element: "image", value: "img/logo.png", want: nil},
		{name: "https", element: "a", value: "https://example.com", want: nil},
		{name: "png data", element: "image", value: "data:image/png;base64,iVBORw0KGgo=", want: nil},
		{name: "javascript", element: "a", value: "javascript:alert(1)", want: ErrScriptScheme},
		{name: "obfuscated javascript", element: "a", value: "\n Java\tScript:alert(1)", want: ErrScriptScheme},
		{name: "vbscript", element: "a", value: "vbscript:msgbox", want: ErrScriptScheme},
		{name: "html data", element: "image", value: "data:text/html,<script>alert(1)</script>", want: ErrDataMediaType},
		{name: "svg data", element: "image", value: "data:image/svg+xml;base64,PHN2Zy8+", want: ErrDataMediaType},
		{name: "untyped data", element: "image", value: "data:,hello", want: ErrDataMediaType},
		{name: "file scheme", element: "image", value: "file:///etc/passwd", want: ErrSchemeNotAllowed},
		{name: "external use", element: "use", value: "https://evil.example/sprite.svg#x", want: ErrNonLocalReference},
		{name: "relative use", element: "use", value: "sprite.svg#x", want: ErrNonLocalReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tbl.CheckURI(tt.element, tt.value)
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCheckAnimationValue(t *testing.T) {
	t.Parallel()

	tbl := Default()
	tests := []struct {
		name  string
		value string
		want  error
	}{
		{name: "color", value: "red", want: nil},
		{name: "number list", value: "0;0.5;1", want: nil},
		{name: "transform", value: "0 5 5; 360 5 5", want: nil},
		{name: "fragment", value: "#a;#b", want: nil},
		{name: "png data", value: "data:image/png;base64,iVBORw0KGgo=", want: nil},
		{name: "javascript", value: "javascript:alert(1)", want: ErrScriptScheme},
		{name: "javascript entry", value: "red; JavaScript:alert(1)", want: ErrScriptScheme},
		{name: "html data", value: "data:text/html,x", want: ErrDataMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tbl.CheckAnimationValue("set", tt.value)
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCheckCSS(t *testing.T) {
	t.Parallel()

	tbl := Default()
	tests := []struct {
		name    string
		element string
		value   string
		want    error
	}{
		{name: "plain declarations", element: "rect", value: "fill:#f00;stroke-width:2", want: nil},
		{name: "local url", element: "rect", value: "url(#grad)", want: nil},
		{name: "quoted local url", element: "rect", value: `fill: url( "#grad" )`, want: nil},
		{name: "stylesheet with classes", element: "style", value: ".a{fill:url(#g)} .b{stroke:red}", want: nil},
		{name: "javascript url", element: "rect", value: "background:url(javascript:alert(1))", want: ErrCSSConstruct},
		{name: "escaped javascript url", element: "rect", value: `background:url(\6a avascript:alert(1))`, want: ErrCSSConstruct},
		{name: "expression", element: "rect", value: "width: expression (alert(1))", want: ErrCSSConstruct},
		{name: "commented expression", element: "rect", value: "width: expr/**/ession(alert(1))", want: ErrCSSConstruct},
		{name: "import", element: "style", value: "@import 'https://evil.example/x.css';", want: ErrCSSConstruct},
		{name: "binding", element: "rect", value: "-moz-binding:url(https://evil.example/x.xml#x)", want: ErrCSSConstruct},
		{name: "behavior", element: "rect", value: "behavior: url(x.htc)", want: ErrCSSConstruct},
		{name: "html data url", element: "rect", value: "fill:url(data:text/html,x)", want: ErrDataMediaType},
		{name: "unterminated url", element: "rect", value: "fill:url(#g", want: ErrMalformedCSS},
		{name: "external url on use", element: "use", value: "fill:url(https://x.example/a.svg#g)", want: ErrNonLocalReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tbl.CheckCSS(tt.element, tt.value)
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
