package svgdom

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

const xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>`

// Serialize renders the document as UTF-8 XML. The output of a tree
// produced by Parse re-parses to an equivalent tree.
func (d *Document) Serialize() []byte {
	var buf bytes.Buffer
	_, _ = d.WriteTo(&buf)
	return buf.Bytes()
}

// WriteTo implements io.WriterTo.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	s := newSerializer(d)
	s.document(d)
	return s.buf.WriteTo(w)
}

type serializer struct {
	buf      bytes.Buffer
	prefixes map[string]string
	order    []string
}

// newSerializer assigns a prefix to every attribute namespace in use.
// XLink always gets "xlink"; anything else gets ns1, ns2, ... in document
// order.
func newSerializer(d *Document) *serializer {
	s := &serializer{prefixes: make(map[string]string)}
	d.Walk(func(n *Node, _ int) bool {
		if n.Kind != ElementNode {
			return false
		}
		for _, a := range n.Attr {
			if a.IsNamespaceDecl() {
				continue
			}
			space := a.Name.Space
			switch {
			case space == "" || space == XMLNamespace:
				continue
			case a.IsXLink():
				space = XLinkNamespace
			}
			if _, ok := s.prefixes[space]; ok {
				continue
			}
			if space == XLinkNamespace {
				s.prefixes[space] = "xlink"
			} else {
				s.prefixes[space] = fmt.Sprintf("ns%d", len(s.order)+1)
			}
			s.order = append(s.order, space)
		}
		return true
	})
	return s
}

func (s *serializer) document(d *Document) {
	if d.Declaration != nil {
		s.buf.WriteString(xmlDeclaration)
		s.buf.WriteByte('\n')
	}
	for _, n := range d.Prolog {
		s.node(n, "")
		s.buf.WriteByte('\n')
	}
	if d.Root != nil {
		s.element(d.Root, "", true)
	}
	for _, n := range d.Epilog {
		s.buf.WriteByte('\n')
		s.node(n, "")
	}
}

func (s *serializer) node(n *Node, defaultNS string) {
	switch n.Kind {
	case ElementNode:
		s.element(n, defaultNS, false)
	case TextNode:
		escapeText(&s.buf, n.Data)
	case CommentNode:
		s.buf.WriteString("<!--")
		s.buf.WriteString(n.Data)
		s.buf.WriteString("-->")
	case ProcInstNode:
		s.buf.WriteString("<?")
		s.buf.WriteString(n.Name.Local)
		if n.Data != "" {
			s.buf.WriteByte(' ')
			s.buf.WriteString(n.Data)
		}
		s.buf.WriteString("?>")
	case DirectiveNode:
		s.buf.WriteString("<!")
		s.buf.WriteString(n.Data)
		s.buf.WriteByte('>')
	}
}

func (s *serializer) element(n *Node, defaultNS string, root bool) {
	s.buf.WriteByte('<')
	s.buf.WriteString(n.Name.Local)
	if n.Name.Space != defaultNS {
		s.buf.WriteString(` xmlns="`)
		escapeAttr(&s.buf, n.Name.Space)
		s.buf.WriteByte('"')
	}
	if root {
		for _, space := range s.order {
			s.buf.WriteString(" xmlns:")
			s.buf.WriteString(s.prefixes[space])
			s.buf.WriteString(`="`)
			escapeAttr(&s.buf, space)
			s.buf.WriteByte('"')
		}
	}
	for _, a := range n.Attr {
		if a.IsNamespaceDecl() {
			continue
		}
		s.buf.WriteByte(' ')
		s.buf.WriteString(s.attrName(a))
		s.buf.WriteString(`="`)
		escapeAttr(&s.buf, a.Value)
		s.buf.WriteByte('"')
	}
	if len(n.Children) == 0 {
		s.buf.WriteString("/>")
		return
	}
	s.buf.WriteByte('>')
	for _, c := range n.Children {
		s.node(c, n.Name.Space)
	}
	s.buf.WriteString("</")
	s.buf.WriteString(n.Name.Local)
	s.buf.WriteByte('>')
}

func (s *serializer) attrName(a Attr) string {
	switch {
	case a.Name.Space == "":
		return a.Name.Local
	case a.Name.Space == XMLNamespace:
		return "xml:" + a.Name.Local
	case a.IsXLink():
		return "xlink:" + a.Name.Local
	default:
		return s.prefixes[a.Name.Space] + ":" + a.Name.Local
	}
}

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\r", "&#xD;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\t", "&#x9;",
		"\n", "&#xA;",
		"\r", "&#xD;",
	)
)

func escapeText(buf *bytes.Buffer, s string) {
	_, _ = textEscaper.WriteString(buf, s)
}

func escapeAttr(buf *bytes.Buffer, s string) {
	_, _ = attrEscaper.WriteString(buf, s)
}
