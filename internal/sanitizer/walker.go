package sanitizer

import (
	"context"
	"strings"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/policy"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/svgdom"
)

// Stats counts what one sanitization changed.
type Stats struct {
	ElementsKept      int `json:"elementsKept"`
	ElementsRemoved   int `json:"elementsRemoved"`
	AttributesRemoved int `json:"attributesRemoved"`
	NodesStripped     int `json:"nodesStripped"`
}

// Changed reports whether the walker altered the document.
func (s Stats) Changed() bool {
	return s.ElementsRemoved+s.AttributesRemoved+s.NodesStripped > 0
}

// Walk applies table to doc in place.
//
// Elements outside the allow-list are removed together with their whole
// subtree; their children are never promoted. Allowed elements keep only
// allowed attributes, and URI or CSS valued attributes must pass the
// table's checks. Comments, processing instructions and doctypes are
// stripped wherever they occur. Walking a clean document changes nothing.
//
// Policy violations are never errors. The only error is ctx.Err().
// If the root itself is not allowed, doc.Root is set to nil.
func Walk(ctx context.Context, doc *svgdom.Document, table *policy.Table) (Stats, error) {
	w := &walker{ctx: ctx, table: table}

	doc.Prolog = w.stripMisc(doc.Prolog)
	doc.Epilog = w.stripMisc(doc.Epilog)

	if doc.Root == nil {
		return w.stats, nil
	}
	if !w.keepElement(doc.Root) {
		w.stats.ElementsRemoved++
		doc.Root = nil
		return w.stats, nil
	}
	if err := w.element(doc.Root); err != nil {
		return w.stats, err
	}
	return w.stats, nil
}

type walker struct {
	ctx   context.Context
	table *policy.Table
	stats Stats
}

func (w *walker) stripMisc(nodes []*svgdom.Node) []*svgdom.Node {
	kept := nodes[:0]
	for _, n := range nodes {
		if w.table.IsAlwaysStripped(n.Kind) {
			w.stats.NodesStripped++
			continue
		}
		kept = append(kept, n)
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// element filters n's attributes and children. n itself has already been
// accepted.
func (w *walker) element(n *svgdom.Node) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}
	w.stats.ElementsKept++
	w.filterAttrs(n)

	kept := n.Children[:0]
	for _, c := range n.Children {
		switch c.Kind {
		case svgdom.ElementNode:
			if !w.keepElement(c) {
				w.stats.ElementsRemoved++
				continue
			}
			if err := w.element(c); err != nil {
				return err
			}
		case svgdom.TextNode:
			// Merge text left adjacent by a removed sibling.
			if k := len(kept); k > 0 && kept[k-1].Kind == svgdom.TextNode {
				kept[k-1].Data += c.Data
				continue
			}
		default:
			if w.table.IsAlwaysStripped(c.Kind) {
				w.stats.NodesStripped++
				continue
			}
		}
		kept = append(kept, c)
	}
	n.Children = kept
	return nil
}

// keepElement decides whether an element survives as a whole.
func (w *walker) keepElement(n *svgdom.Node) bool {
	if !w.table.IsElementAllowed(n.Name) {
		return false
	}
	local := n.Name.Local
	if w.table.IsAnimationElement(local) {
		if target, ok := attrByLocal(n, "attributename"); ok && w.table.IsProtectedAnimationTarget(target) {
			return false
		}
		for _, a := range n.Attr {
			if a.Name.Space == "" && w.table.IsAnimationValueAttribute(a.Name.Local) &&
				w.table.CheckAnimationValue(local, a.Value) != nil {
				return false
			}
		}
	}
	if strings.EqualFold(local, "style") {
		if err := w.table.CheckCSS(local, n.Text()); err != nil {
			return false
		}
	}
	return true
}

func (w *walker) filterAttrs(n *svgdom.Node) {
	local := n.Name.Local
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		// The serializer declares the namespaces it needs.
		if a.IsNamespaceDecl() {
			continue
		}
		if !w.allowAttr(local, a) {
			w.stats.AttributesRemoved++
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

func (w *walker) allowAttr(element string, a svgdom.Attr) bool {
	key := a.Key()
	if !w.table.IsAttributeAllowed(element, key) {
		return false
	}
	if w.table.IsURIAttribute(key) && w.table.CheckURI(element, a.Value) != nil {
		return false
	}
	if w.table.IsCSSAttribute(key) && w.table.CheckCSS(element, a.Value) != nil {
		return false
	}
	return true
}

// attrByLocal finds an unprefixed attribute by case-insensitive name.
func attrByLocal(n *svgdom.Node, local string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Space == "" && strings.EqualFold(a.Name.Local, local) {
			return a.Value, true
		}
	}
	return "", false
}
