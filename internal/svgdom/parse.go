package svgdom

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ctxCheckInterval is how many tokens are read between context checks.
const ctxCheckInterval = 256

// Parse parses data into a Document using the given limits.
func Parse(data []byte, limits Limits) (*Document, error) {
	return ParseContext(context.Background(), data, limits)
}

// ParseContext is Parse with cancellation. A canceled context is returned
// as ctx.Err(), not as a *ParseError.
func ParseContext(ctx context.Context, data []byte, limits Limits) (*Document, error) {
	limits = limits.withDefaults()
	if limits.MaxInputBytes > 0 && len(data) > limits.MaxInputBytes {
		return nil, newParseError(KindTooLarge, 0,
			fmt.Errorf("%w: %d > %d bytes", errInputLimit, len(data), limits.MaxInputBytes))
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = make(map[string]string)

	p := &parser{
		ctx:    ctx,
		data:   data,
		limits: limits,
		budget: limits.budget(len(data)),
		dec:    dec,
		doc:    &Document{},
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.doc, nil
}

type parser struct {
	ctx    context.Context
	data   []byte
	limits Limits
	budget int64
	dec    *xml.Decoder
	doc    *Document

	stack      []*Node
	decoded    int64
	tokens     int
	sawDoctype bool
	rootClosed bool
}

func (p *parser) run() error {
	for {
		p.tokens++
		if p.tokens%ctxCheckInterval == 0 {
			if err := p.ctx.Err(); err != nil {
				return err
			}
		}
		tok, err := p.dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return p.syntaxError(err)
		}
		if err := p.handle(tok); err != nil {
			return err
		}
	}
	if err := p.ctx.Err(); err != nil {
		return err
	}
	if p.doc.Root == nil {
		return newParseError(KindNoRootSVG, p.line(), errNoRoot)
	}
	return nil
}

func (p *parser) handle(tok xml.Token) error {
	switch t := tok.(type) {
	case xml.StartElement:
		return p.startElement(t)
	case xml.EndElement:
		p.stack = p.stack[:len(p.stack)-1]
		if len(p.stack) == 0 {
			p.rootClosed = true
		}
	case xml.CharData:
		return p.charData(t)
	case xml.Comment:
		p.appendMisc(&Node{Kind: CommentNode, Data: string(t)})
	case xml.ProcInst:
		return p.procInst(t)
	case xml.Directive:
		return p.directive(t)
	}
	return nil
}

func (p *parser) startElement(t xml.StartElement) error {
	if p.rootClosed {
		return newParseError(KindNotWellFormed, p.line(), errMultipleRoots)
	}
	if depth := len(p.stack) + 1; depth > p.limits.MaxDepth {
		return newParseError(KindTooDeep, p.line(),
			fmt.Errorf("%w: %d > %d", errDepthLimit, depth, p.limits.MaxDepth))
	}
	if len(t.Attr) > p.limits.MaxAttributes {
		return newParseError(KindTooLarge, p.line(),
			fmt.Errorf("%w: <%s> has %d attributes", errAttrLimit, t.Name.Local, len(t.Attr)))
	}

	n := &Node{Kind: ElementNode, Name: t.Name, Attr: make([]Attr, 0, len(t.Attr))}
	seen := make(map[xml.Name]struct{}, len(t.Attr))
	for _, a := range t.Attr {
		if _, dup := seen[a.Name]; dup {
			return newParseError(KindNotWellFormed, p.line(),
				fmt.Errorf("%w: %q on <%s>", errDuplicateAttr, a.Name.Local, t.Name.Local))
		}
		seen[a.Name] = struct{}{}
		p.decoded += int64(len(a.Value))
		n.Attr = append(n.Attr, Attr{Name: a.Name, Value: a.Value})
	}
	if err := p.account(); err != nil {
		return err
	}

	if len(p.stack) == 0 {
		if !strings.EqualFold(t.Name.Local, "svg") {
			return newParseError(KindNoRootSVG, p.line(),
				fmt.Errorf("%w: found <%s>", errRootNotSVG, t.Name.Local))
		}
		p.doc.Root = n
	} else {
		p.stack[len(p.stack)-1].AppendChild(n)
	}
	p.stack = append(p.stack, n)
	return nil
}

func (p *parser) charData(t xml.CharData) error {
	if len(p.stack) == 0 {
		if len(bytes.TrimSpace(t)) > 0 {
			return newParseError(KindNotWellFormed, p.line(), errContentOutsideRoot)
		}
		return nil
	}
	p.decoded += int64(len(t))
	if err := p.account(); err != nil {
		return err
	}
	top := p.stack[len(p.stack)-1]
	if k := len(top.Children); k > 0 && top.Children[k-1].Kind == TextNode {
		top.Children[k-1].Data += string(t)
		return nil
	}
	top.AppendChild(NewText(string(t)))
	return nil
}

func (p *parser) procInst(t xml.ProcInst) error {
	if t.Target == "xml" {
		if p.doc.Declaration != nil || p.doc.Root != nil || len(p.doc.Prolog) > 0 {
			return newParseError(KindNotWellFormed, p.line(),
				errors.New("XML declaration must come first"))
		}
		p.doc.Declaration = &Node{Kind: ProcInstNode, Name: xml.Name{Local: t.Target}, Data: string(t.Inst)}
		return nil
	}
	p.appendMisc(&Node{Kind: ProcInstNode, Name: xml.Name{Local: t.Target}, Data: string(t.Inst)})
	return nil
}

// directive handles <!...> tokens. Only a single DOCTYPE in the prolog is
// accepted; its internal subset feeds the entity resolver.
func (p *parser) directive(t xml.Directive) error {
	if len(p.stack) > 0 || p.doc.Root != nil {
		return newParseError(KindNotWellFormed, p.line(), errMisplacedDoctype)
	}
	body := bytes.TrimSpace(t)
	if !bytes.HasPrefix(body, []byte("DOCTYPE")) {
		return newParseError(KindNotWellFormed, p.line(),
			fmt.Errorf("unsupported markup declaration <!%s", firstWord(body)))
	}
	if p.sawDoctype {
		return newParseError(KindNotWellFormed, p.line(), errDuplicateDoctype)
	}
	p.sawDoctype = true

	dt, err := parseDoctype(body)
	if err != nil {
		return newParseError(KindNotWellFormed, p.line(), err)
	}
	// References are counted over the whole input. Counting the DOCTYPE's
	// own literals too only makes the estimate larger.
	ents, err := newEntityResolver(dt, p.budget).resolve(p.data, int64(len(p.data)))
	if err != nil {
		if errors.Is(err, errExpansionLimit) {
			return newParseError(KindTooLarge, p.line(), err)
		}
		return newParseError(KindNotWellFormed, p.line(), err)
	}
	for name, v := range ents {
		p.dec.Entity[name] = v
	}
	p.doc.Prolog = append(p.doc.Prolog, &Node{Kind: DirectiveNode, Data: string(t)})
	return nil
}

func (p *parser) appendMisc(n *Node) {
	switch {
	case len(p.stack) > 0:
		p.stack[len(p.stack)-1].AppendChild(n)
	case p.doc.Root == nil:
		p.doc.Prolog = append(p.doc.Prolog, n)
	default:
		p.doc.Epilog = append(p.doc.Epilog, n)
	}
}

func (p *parser) account() error {
	if p.decoded > p.budget {
		return newParseError(KindTooLarge, p.line(),
			fmt.Errorf("%w: decoded content exceeds %d bytes", errExpansionLimit, p.budget))
	}
	return nil
}

func (p *parser) syntaxError(err error) error {
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		return newParseError(KindNotWellFormed, se.Line, errors.New(se.Msg))
	}
	return newParseError(KindNotWellFormed, p.line(), err)
}

func (p *parser) line() int {
	line, _ := p.dec.InputPos()
	return line
}

func firstWord(b []byte) string {
	if i := bytes.IndexFunc(b, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }); i >= 0 {
		b = b[:i]
	}
	if len(b) > 32 {
		b = b[:32]
	}
	return string(b)
}
