// Package cdp implements the snapshot provider interfaces against a live
// Rod page. The document structure comes from one DOM.getDocument call
// with depth=-1 and pierce=true (shadow roots and same-process iframe
// documents included); geometry, style and hit-testing are answered with
// per-element evaluations in the page.
package cdp

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/domsnap/internal/snapshot"
)

// DOM node types used below.
const (
	nodeTypeElement = 1
	nodeTypeText    = 3
)

// Provider owns the structural tree and the engine capabilities for one
// page at one instant. Build a fresh Provider per snapshot; it does not
// track mutations.
type Provider struct {
	page   *rod.Page
	logger *slog.Logger

	body      *Element
	byBackend map[proto.DOMBackendNodeID]*Element

	scrollX, scrollY  int
	vpWidth, vpHeight int
}

// Element is one live element. It resolves its Rod handle lazily and keeps
// it for the provider's lifetime.
type Element struct {
	snapshot.NodeTag

	p      *Provider
	node   *proto.DOMNode
	tag    string
	attrs  map[string]string
	parent *Element

	children  []snapshot.Node
	shadow    []snapshot.Node
	frameBody *Element
	frameErr  error

	rodEl *rod.Element
}

// Text is one live text node.
type Text struct {
	snapshot.NodeTag

	data   string
	parent *Element
}

var (
	_ snapshot.Element      = (*Element)(nil)
	_ snapshot.Text         = (*Text)(nil)
	_ snapshot.Geometry     = (*Provider)(nil)
	_ snapshot.Capabilities = (*Provider)(nil)
)

// NewProvider captures the page's structural tree and layout state.
func NewProvider(page *rod.Page, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Provider{
		page:      page,
		logger:    logger,
		byBackend: make(map[proto.DOMBackendNodeID]*Element),
	}

	if err := p.sampleViewport(); err != nil {
		return nil, fmt.Errorf("cdp: viewport state: %w", err)
	}

	depth := -1
	doc, err := proto.DOMGetDocument{Depth: &depth, Pierce: true}.Call(page)
	if err != nil {
		return nil, fmt.Errorf("cdp: DOM.getDocument: %w", err)
	}

	bodyNode := findBody(doc.Root)
	if bodyNode == nil {
		return nil, fmt.Errorf("cdp: document has no body")
	}
	p.body = p.build(bodyNode, nil)

	logger.Debug("cdp: document captured", "nodes", len(p.byBackend))
	return p, nil
}

// Body returns the walk root.
func (p *Provider) Body() snapshot.Element { return p.body }

func (p *Provider) sampleViewport() error {
	res, err := p.page.Eval(`() => ({
		x: window.scrollX, y: window.scrollY,
		w: window.innerWidth, h: window.innerHeight,
	})`)
	if err != nil {
		return err
	}
	p.scrollX = res.Value.Get("x").Int()
	p.scrollY = res.Value.Get("y").Int()
	p.vpWidth = res.Value.Get("w").Int()
	p.vpHeight = res.Value.Get("h").Int()
	return nil
}

// build converts a CDP node subtree into provider elements. Shadow-root
// children and iframe bodies start new traversal scopes with nil parents.
func (p *Provider) build(node *proto.DOMNode, parent *Element) *Element {
	el := &Element{
		p:      p,
		node:   node,
		tag:    strings.ToLower(node.NodeName),
		attrs:  attrMap(node.Attributes),
		parent: parent,
	}
	p.byBackend[node.BackendNodeID] = el

	for _, child := range node.Children {
		switch child.NodeType {
		case nodeTypeElement:
			el.children = append(el.children, p.build(child, el))
		case nodeTypeText:
			el.children = append(el.children, &Text{data: child.NodeValue, parent: el})
		}
	}

	for _, sr := range node.ShadowRoots {
		for _, child := range sr.Children {
			switch child.NodeType {
			case nodeTypeElement:
				el.shadow = append(el.shadow, p.build(child, nil))
			case nodeTypeText:
				el.shadow = append(el.shadow, &Text{data: child.NodeValue, parent: el})
			}
		}
		if el.shadow == nil {
			el.shadow = []snapshot.Node{}
		}
	}

	if el.tag == "iframe" {
		if node.ContentDocument != nil {
			if frameBody := findBody(node.ContentDocument); frameBody != nil {
				el.frameBody = p.build(frameBody, nil)
			}
		} else {
			el.frameErr = fmt.Errorf("cdp: frame document unavailable (cross-origin or unready)")
		}
	}

	return el
}

func findBody(root *proto.DOMNode) *proto.DOMNode {
	if root == nil {
		return nil
	}
	if root.NodeType == nodeTypeElement && strings.EqualFold(root.NodeName, "body") {
		return root
	}
	for _, child := range root.Children {
		if found := findBody(child); found != nil {
			return found
		}
	}
	return nil
}

// attrMap converts CDP's flat [name, value, ...] attribute list.
func attrMap(flat []string) map[string]string {
	attrs := make(map[string]string, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		attrs[flat[i]] = flat[i+1]
	}
	return attrs
}

// resolve returns the element's Rod handle, creating it on first use.
func (e *Element) resolve() (*rod.Element, error) {
	if e.rodEl != nil {
		return e.rodEl, nil
	}
	rodEl, err := e.p.page.ElementFromNode(e.node)
	if err != nil {
		return nil, fmt.Errorf("cdp: resolve node %d: %w", e.node.BackendNodeID, err)
	}
	e.rodEl = rodEl
	return rodEl, nil
}

// --- snapshot.Element ---

func (e *Element) Tag() string { return e.tag }

func (e *Element) Attrs() map[string]string { return e.attrs }

func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *Element) Parent() snapshot.Element {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func (e *Element) Children() []snapshot.Node { return e.children }

func (e *Element) ShadowChildren() ([]snapshot.Node, bool) {
	if e.shadow == nil {
		return nil, false
	}
	return e.shadow, true
}

func (e *Element) FrameBody() (snapshot.Element, error) {
	if e.frameErr != nil {
		return nil, e.frameErr
	}
	if e.frameBody == nil {
		return nil, nil
	}
	return e.frameBody, nil
}

// --- snapshot.Text ---

func (t *Text) Data() string { return t.data }

func (t *Text) ParentElement() snapshot.Element {
	if t.parent == nil {
		return nil
	}
	return t.parent
}
