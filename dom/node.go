// Package dom defines the serialized snapshot tree: the element/text node
// types, coordinate frames, and the helpers consumers use to walk a tree
// and map highlight indices back to elements.
//
// A tree is built fresh per capture and owns its nodes exclusively; there
// are no parent back-pointers and no state shared between captures.
package dom

// Node is either an *ElementNode or a *TextNode.
type Node interface {
	nodeKind() string
}

// Point is a pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Frame describes one rectangle: four corners, center, and size.
// All values are rounded to the nearest pixel.
type Frame struct {
	TopLeft     Point `json:"topLeft"`
	TopRight    Point `json:"topRight"`
	BottomLeft  Point `json:"bottomLeft"`
	BottomRight Point `json:"bottomRight"`
	Center      Point `json:"center"`
	Width       int   `json:"width"`
	Height      int   `json:"height"`
}

// Viewport carries the scroll offsets and viewport dimensions at capture
// time. Stamped on every element so each serialized node is self-describing.
type Viewport struct {
	ScrollX int `json:"scrollX"`
	ScrollY int `json:"scrollY"`
	Width   int `json:"width"`
	Height  int `json:"height"`
}

// ElementNode is one element of the snapshot tree.
//
// ViewportCoordinates are relative to the element's own document viewport
// (negative when scrolled past); PageCoordinates are the same box shifted
// by the scroll offsets: PageCoordinates.TopLeft = ViewportCoordinates.TopLeft
// + (ScrollX, ScrollY).
type ElementNode struct {
	TagName             string            `json:"tagName"`
	Attributes          map[string]string `json:"attributes"`
	XPath               string            `json:"xpath"`
	Children            []Node            `json:"children"`
	ViewportCoordinates Frame             `json:"viewportCoordinates"`
	PageCoordinates     Frame             `json:"pageCoordinates"`
	Viewport            Viewport          `json:"viewport"`
	IsInteractive       bool              `json:"isInteractive"`
	IsVisible           bool              `json:"isVisible"`
	IsTopElement        bool              `json:"isTopElement"`
	HighlightIndex      *int              `json:"highlightIndex,omitempty"`
	ShadowRoot          bool              `json:"shadowRoot,omitempty"`
}

func (*ElementNode) nodeKind() string { return "ELEMENT_NODE" }

// TextNode is a visible, trimmed, non-empty run of text. Invisible or empty
// text never materializes as a node, so IsVisible is true by construction.
type TextNode struct {
	Text      string `json:"text"`
	IsVisible bool   `json:"isVisible"`
}

func (*TextNode) nodeKind() string { return "TEXT_NODE" }

// Walk visits n and every descendant in pre-order.
func Walk(n Node, visit func(Node)) {
	if n == nil {
		return
	}
	visit(n)
	if el, ok := n.(*ElementNode); ok {
		for _, child := range el.Children {
			Walk(child, visit)
		}
	}
}
