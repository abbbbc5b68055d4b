// Package snapshot builds the actionable-element tree for one page: it
// walks the document, classifies every element (visible, interactive,
// top at its own center), resolves viewport- and page-frame coordinates,
// and assigns dense highlight indices in pre-order.
//
// The walker never talks to a rendering engine directly. It consumes three
// injected collaborators — a document accessor, a Geometry provider, and a
// Capabilities provider — so the same engine runs against a live page
// (internal/cdp) or a synthetic document (internal/synthdom).
package snapshot

// Node is one node of the source document: an Element or a Text.
// Implementations embed NodeTag to satisfy it.
type Node interface {
	isNode()
}

// NodeTag marks a type as a document node. Provider packages embed it in
// their Element and Text implementations.
type NodeTag struct{}

func (NodeTag) isNode() {}

// Text is a raw text node.
type Text interface {
	Node
	// Data returns the untrimmed text content.
	Data() string
	// ParentElement returns the nearest element ancestor.
	ParentElement() Element
}

// Element is one element of the source document as the walker sees it.
// Implementations keep parent links so occlusion checks can walk ancestor
// chains; the output tree carries none of them.
type Element interface {
	Node
	// Tag returns the lowercase tag name.
	Tag() string
	// Attrs returns the element's attributes. Callers treat the map as
	// read-only.
	Attrs() map[string]string
	// Attr returns one attribute value.
	Attr(name string) (string, bool)
	// Parent returns the parent element, or nil at a traversal boundary
	// (document root, shadow root, iframe document).
	Parent() Element
	// Children returns the light-DOM child nodes in source order.
	Children() []Node
	// ShadowChildren returns the child nodes of an attached open shadow
	// root, or ok=false when the element hosts none.
	ShadowChildren() ([]Node, bool)
	// FrameBody returns the body element of an iframe's nested document.
	// It returns an error when the document is cross-origin or unready;
	// callers treat that as a degraded subtree, never a fatal condition.
	FrameBody() (Element, error)
}

// Rect is a raw bounding box in the element's own viewport coordinates
// (getBoundingClientRect semantics: negative when scrolled past).
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Style is the computed-style subset the classifier needs.
type Style struct {
	Display    string
	Visibility string
	Opacity    string
}

// Geometry exposes layout state for a document. Implementations answer
// from the element's own document; Scroll and Viewport always describe the
// main document's window.
type Geometry interface {
	// BoundingBox returns the element's rendered box. ok=false means the
	// element has no geometry (detached, unrendered); the classifier
	// treats that as not visible, not as an error.
	BoundingBox(el Element) (Rect, bool)
	// Style returns the computed-style subset. ok=false mirrors BoundingBox.
	Style(el Element) (Style, bool)
	// TextRect returns the bounding box of a text node's range.
	TextRect(t Text) (Rect, bool)
	// Scroll returns the main document's scroll offsets.
	Scroll() (x, y int)
	// Viewport returns the main document's viewport dimensions.
	Viewport() (w, h int)
}

// Capabilities abstracts the engine-native operations the classifier needs
// beyond geometry. Implementations without native listener introspection
// fall back to probing the handful of on<event> properties; that fallback
// is a bounded heuristic, not a completeness guarantee.
type Capabilities interface {
	// HitTest returns the element at (x, y) within scope's root. A nil
	// scope targets the main document; a non-nil scope targets that
	// element's own root (its shadow root when it lives in one). A nil
	// element with nil error means nothing was hit. Errors make the
	// occlusion test fail open.
	HitTest(x, y int, scope Element) (Element, error)
	// HasClickListener reports whether a click-family listener
	// (click, mousedown, mouseup, touchstart, touchend) is attached.
	HasClickListener(el Element) bool
}
