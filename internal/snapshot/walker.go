package snapshot

import (
	"log/slog"
	"strings"

	"github.com/hazyhaar/domsnap/dom"
)

// deniedTags prune an element and its entire subtree from the output.
var deniedTags = map[string]bool{
	"svg":    true,
	"script": true,
	"style":  true,
	"link":   true,
	"meta":   true,
}

// Options controls one snapshot build.
type Options struct {
	// HighlightElements gates the overlay targets. Indices are assigned
	// either way.
	HighlightElements bool
	// FocusHighlightIndex limits the overlay to one index; -1 means all.
	FocusHighlightIndex int
	// ViewportExpansion is the pixel margin added to the viewport when
	// deciding whether off-screen elements still qualify; -1 disables
	// occlusion filtering entirely.
	ViewportExpansion int
}

// OverlayTarget is one qualifying node plus the offset that translates its
// viewport coordinates into main-document space (the sum of the enclosing
// iframe boxes).
type OverlayTarget struct {
	Node    *dom.ElementNode
	Index   int
	OffsetX int
	OffsetY int
}

// Engine builds snapshot trees over injected providers. One Engine is
// reusable; every Snapshot call starts a fresh tree and a fresh index
// counter.
type Engine struct {
	geo    Geometry
	caps   Capabilities
	cls    *Classifier
	logger *slog.Logger
}

// NewEngine creates an Engine.
func NewEngine(geo Geometry, caps Capabilities, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		geo:    geo,
		caps:   caps,
		cls:    &Classifier{Geo: geo, Caps: caps},
		logger: logger,
	}
}

// walkState threads the per-invocation accumulator and the boundary
// context through the recursion. The counter is shared across iframes and
// shadow roots: one index space per snapshot.
type walkState struct {
	counter *int
	scope   Scope
	// frameOffX/frameOffY accumulate enclosing iframe boxes so overlay
	// coordinates can be translated into main-document space.
	frameOffX float64
	frameOffY float64
	targets   *[]OverlayTarget
	opts      Options
}

// Snapshot walks the document from root and returns the tree plus the
// overlay targets (qualifying nodes with main-document offsets). It
// returns a nil tree when the root itself is pruned.
func (e *Engine) Snapshot(root Element, opts Options) (*dom.ElementNode, []OverlayTarget) {
	counter := 0
	var targets []OverlayTarget
	st := walkState{
		counter: &counter,
		targets: &targets,
		opts:    opts,
	}
	node := e.walkElement(root, "", nil, st)
	return node, targets
}

// walkNode dispatches one source node. A nil return means the branch
// disappears from the output.
func (e *Engine) walkNode(n Node, parentPath string, siblings []Node, st walkState) dom.Node {
	switch v := n.(type) {
	case Text:
		text := strings.TrimSpace(v.Data())
		if text == "" || !e.cls.IsTextVisible(v) {
			return nil
		}
		return &dom.TextNode{Text: text, IsVisible: true}
	case Element:
		el := e.walkElement(v, parentPath, siblings, st)
		if el == nil {
			return nil
		}
		return el
	default:
		return nil
	}
}

func (e *Engine) walkElement(el Element, parentPath string, siblings []Node, st walkState) *dom.ElementNode {
	tag := el.Tag()
	if deniedTags[tag] {
		return nil
	}

	// The walk root has no sibling list; its path is a single segment.
	xpath := "/" + tag
	if siblings != nil {
		xpath = childXPath(parentPath, el, siblings)
	}

	scrollX, scrollY := e.geo.Scroll()
	vw, vh := e.geo.Viewport()

	node := &dom.ElementNode{
		TagName:    tag,
		Attributes: copyAttrs(el.Attrs()),
		XPath:      xpath,
		Viewport: dom.Viewport{
			ScrollX: scrollX,
			ScrollY: scrollY,
			Width:   vw,
			Height:  vh,
		},
	}

	box, hasBox := e.geo.BoundingBox(el)
	if hasBox {
		node.ViewportCoordinates, node.PageCoordinates = resolveFrames(box, scrollX, scrollY)
	}

	node.IsVisible = e.cls.IsVisible(el)
	node.IsInteractive = e.cls.IsInteractive(el)
	// interactive ∧ visible ∧ top, short-circuiting: the occlusion test is
	// the expensive leg and runs only when the first two already hold.
	if node.IsInteractive && node.IsVisible {
		node.IsTopElement = e.cls.IsTopElement(el, st.opts.ViewportExpansion, st.scope)
	}

	if node.IsInteractive && node.IsVisible && node.IsTopElement {
		idx := *st.counter
		node.HighlightIndex = &idx
		*st.counter++

		if st.opts.HighlightElements &&
			(st.opts.FocusHighlightIndex < 0 || st.opts.FocusHighlightIndex == idx) {
			*st.targets = append(*st.targets, OverlayTarget{
				Node:    node,
				Index:   idx,
				OffsetX: px(st.frameOffX),
				OffsetY: px(st.frameOffY),
			})
		}
	}

	kids := el.Children()
	for _, child := range kids {
		if cn := e.walkNode(child, xpath, kids, st); cn != nil {
			node.Children = append(node.Children, cn)
		}
	}

	// Shadow children are appended after light children; the path restarts
	// at the shadow boundary.
	if shadowKids, ok := el.ShadowChildren(); ok {
		node.ShadowRoot = true
		shadowState := st
		shadowState.scope.InShadow = true
		for _, child := range shadowKids {
			if cn := e.walkNode(child, "", shadowKids, shadowState); cn != nil {
				node.Children = append(node.Children, cn)
			}
		}
	}

	if tag == "iframe" {
		e.walkFrame(el, box, hasBox, node, st)
	}

	return node
}

// walkFrame descends into an iframe's document. Access failures degrade
// the subtree to empty children and are never fatal.
func (e *Engine) walkFrame(el Element, box Rect, hasBox bool, node *dom.ElementNode, st walkState) {
	body, err := el.FrameBody()
	if err != nil {
		e.logger.Debug("snapshot: iframe document inaccessible",
			"xpath", node.XPath, "error", err)
		return
	}
	if body == nil {
		return
	}

	frameState := st
	frameState.scope.InFrame = true
	frameState.scope.InShadow = false
	if hasBox {
		frameState.frameOffX += box.X
		frameState.frameOffY += box.Y
	}

	kids := body.Children()
	for _, child := range kids {
		if cn := e.walkNode(child, "", kids, frameState); cn != nil {
			node.Children = append(node.Children, cn)
		}
	}
}

func copyAttrs(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
