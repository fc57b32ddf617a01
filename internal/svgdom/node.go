package svgdom

import (
	"encoding/xml"
	"strings"
)

// Well-known namespace URIs.
const (
	SVGNamespace   = "http://www.w3.org/2000/svg"
	XLinkNamespace = "http://www.w3.org/1999/xlink"
	XMLNamespace   = "http://www.w3.org/XML/1998/namespace"
)

// NodeKind identifies the type of a Node.
type NodeKind int

const (
	// ElementNode is a tagged element with attributes and children.
	ElementNode NodeKind = iota
	// TextNode is character data. CDATA sections are folded into text.
	TextNode
	// CommentNode is an XML comment.
	CommentNode
	// ProcInstNode is a processing instruction other than the XML declaration.
	ProcInstNode
	// DirectiveNode is a <!...> markup declaration such as DOCTYPE.
	DirectiveNode
)

// String returns the lower-case name of the kind.
func (k NodeKind) String() string {
	switch k {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case ProcInstNode:
		return "procinst"
	case DirectiveNode:
		return "directive"
	default:
		return "unknown"
	}
}

// Attr is a single attribute owned by an element.
type Attr struct {
	Name  xml.Name
	Value string
}

// Key returns the canonical lookup key for the attribute: the bare local
// name for unprefixed attributes, "xlink:" / "xml:" / "xmlns:" for the
// reserved namespaces, and "{uri}local" for anything else.
func (a Attr) Key() string {
	switch a.Name.Space {
	case "":
		return a.Name.Local
	case XLinkNamespace, "xlink":
		return "xlink:" + a.Name.Local
	case XMLNamespace:
		return "xml:" + a.Name.Local
	case "xmlns":
		return "xmlns:" + a.Name.Local
	default:
		return "{" + a.Name.Space + "}" + a.Name.Local
	}
}

// IsNamespaceDecl reports whether the attribute is an xmlns declaration.
func (a Attr) IsNamespaceDecl() bool {
	return (a.Name.Space == "" && a.Name.Local == "xmlns") || a.Name.Space == "xmlns"
}

// IsXLink reports whether the attribute lives in the XLink namespace.
func (a Attr) IsXLink() bool {
	return a.Name.Space == XLinkNamespace || a.Name.Space == "xlink"
}

// Node is one node of the parsed tree.
//
// For elements, Name, Attr and Children are used. For text, comments and
// directives the content is in Data. For processing instructions the target
// is Name.Local and the instruction body is Data.
type Node struct {
	Kind     NodeKind
	Name     xml.Name
	Attr     []Attr
	Children []*Node
	Data     string
}

// NewElement returns an element node with the given namespace and local name.
func NewElement(space, local string) *Node {
	return &Node{Kind: ElementNode, Name: xml.Name{Space: space, Local: local}}
}

// NewText returns a text node.
func NewText(data string) *Node {
	return &Node{Kind: TextNode, Data: data}
}

// AttrValue returns the value of the attribute with the given canonical key.
func (n *Node) AttrValue(key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key() == key {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets or appends an unprefixed attribute.
func (n *Node) SetAttr(local, value string) {
	for i, a := range n.Attr {
		if a.Name.Space == "" && a.Name.Local == local {
			n.Attr[i].Value = value
			return
		}
	}
	n.Attr = append(n.Attr, Attr{Name: xml.Name{Local: local}, Value: value})
}

// AppendChild adds c as the last child of n.
func (n *Node) AppendChild(c *Node) {
	n.Children = append(n.Children, c)
}

// Text returns the concatenated text of the direct text children of n.
func (n *Node) Text() string {
	var sb strings.Builder
	for _, c := range n.Children {
		if c.Kind == TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

// LocalNameIs reports whether the element's local name equals name,
// ignoring case.
func (n *Node) LocalNameIs(name string) bool {
	return n.Kind == ElementNode && strings.EqualFold(n.Name.Local, name)
}

// Document is the parsed representation of one SVG file.
type Document struct {
	// Declaration is the <?xml ...?> declaration when the input had one.
	Declaration *Node

	// Prolog holds comments, processing instructions and the doctype seen
	// before the root element.
	Prolog []*Node

	// Root is the single top-level element.
	Root *Node

	// Epilog holds comments and processing instructions after the root.
	Epilog []*Node
}

// Walk calls fn for every node under the root in depth-first pre-order.
// Returning false from fn skips the node's children.
func (d *Document) Walk(fn func(n *Node, depth int) bool) {
	if d == nil || d.Root == nil {
		return
	}
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		if !fn(n, depth) {
			return
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(d.Root, 1)
}

// CountElements returns the number of elements in the tree.
func (d *Document) CountElements() int {
	count := 0
	d.Walk(func(n *Node, _ int) bool {
		if n.Kind == ElementNode {
			count++
		}
		return true
	})
	return count
}
