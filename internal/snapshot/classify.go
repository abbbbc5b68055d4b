package snapshot

import (
	"strings"
)

// interactiveTags always count as interactive regardless of attributes.
var interactiveTags = map[string]bool{
	"a":        true,
	"button":   true,
	"details":  true,
	"embed":    true,
	"input":    true,
	"label":    true,
	"menu":     true,
	"menuitem": true,
	"object":   true,
	"select":   true,
	"textarea": true,
	"summary":  true,
}

// interactiveRoles are ARIA (and known vendor alias) roles that mark an
// element actionable.
var interactiveRoles = map[string]bool{
	"button":           true,
	"menuitem":         true,
	"menuitemcheckbox": true,
	"menuitemradio":    true,
	"link":             true,
	"checkbox":         true,
	"radio":            true,
	"slider":           true,
	"tab":              true,
	"tabpanel":         true,
	"textbox":          true,
	"combobox":         true,
	"grid":             true,
	"listbox":          true,
	"option":           true,
	"progressbar":      true,
	"scrollbar":        true,
	"searchbox":        true,
	"switch":           true,
	"tree":             true,
	"treeitem":         true,
	"spinbutton":       true,
	"tooltip":          true,
	// Vendor dropdown-button aliases seen in the wild.
	"a-button-inner":    true,
	"a-dropdown-button": true,
	"a-button-text":     true,
	"button-text":       true,
	"button-icon":       true,
	"dropdown":          true,
}

// dropdownActionMarkers are data-action values that mark custom dropdown
// widgets as actionable.
var dropdownActionMarkers = map[string]bool{
	"a-dropdown-select": true,
	"a-dropdown-button": true,
}

// interactiveClasses is a narrow, site-specific class allowlist. Kept
// deliberately small; widening it changes downstream agent behavior.
var interactiveClasses = map[string]bool{
	"button":          true,
	"dropdown-toggle": true,
}

// clickBindingAttrs are framework click-binding attributes checked by the
// handler fallback.
var clickBindingAttrs = []string{"onclick", "ng-click", "@click", "v-on:click"}

// ariaStateAttrs mark stateful widgets in the handler fallback.
var ariaStateAttrs = []string{"aria-expanded", "aria-pressed", "aria-selected", "aria-checked"}

// Scope carries the traversal-boundary state of the walker branch an
// element was reached through.
type Scope struct {
	// InFrame is true when the element's owning document was reached
	// through an iframe.
	InFrame bool
	// InShadow is true when the element's DOM root is a shadow root.
	InShadow bool
}

// Classifier decides visibility, interactivity and occlusion status for
// one document, against injected Geometry and Capabilities providers.
type Classifier struct {
	Geo  Geometry
	Caps Capabilities
}

// IsVisible reports whether the element renders at all: positive box,
// visibility not hidden, display not none.
func (c *Classifier) IsVisible(el Element) bool {
	box, ok := c.Geo.BoundingBox(el)
	if !ok || box.Width <= 0 || box.Height <= 0 {
		return false
	}
	style, ok := c.Geo.Style(el)
	if !ok {
		return false
	}
	return style.Visibility != "hidden" && style.Display != "none"
}

// IsInteractive reports whether the element is something an agent can act
// on. The final listener probe is a bounded heuristic: it observes directly
// attached handlers and engine-visible listeners, not every binding
// mechanism a framework may use.
func (c *Classifier) IsInteractive(el Element) bool {
	tag := el.Tag()
	if tag == "body" {
		return false
	}

	if interactiveTags[tag] {
		return true
	}

	if role, ok := el.Attr("role"); ok && interactiveRoles[strings.ToLower(role)] {
		return true
	}
	if role, ok := el.Attr("aria-role"); ok && interactiveRoles[strings.ToLower(role)] {
		return true
	}

	parentIsBody := el.Parent() != nil && el.Parent().Tag() == "body"

	if ti, ok := el.Attr("tabindex"); ok && ti != "-1" && !parentIsBody {
		return true
	}

	if action, ok := el.Attr("data-action"); ok && dropdownActionMarkers[action] {
		return true
	}

	if class, ok := el.Attr("class"); ok {
		for _, name := range strings.Fields(class) {
			if interactiveClasses[name] {
				return true
			}
		}
	}

	// Direct children of body with none of the explicit signals above are
	// never promoted by the heuristics below.
	if parentIsBody {
		return false
	}

	for _, attr := range clickBindingAttrs {
		if _, ok := el.Attr(attr); ok {
			return true
		}
	}
	for _, attr := range ariaStateAttrs {
		if _, ok := el.Attr(attr); ok {
			return true
		}
	}
	if d, ok := el.Attr("draggable"); ok && d != "false" {
		return true
	}

	return c.Caps.HasClickListener(el)
}

// IsTopElement reports whether a pointer event at the element's visual
// center would land on the element (or a descendant). Failures bias toward
// inclusion: a broken hit-test must not silently drop actionable elements.
func (c *Classifier) IsTopElement(el Element, expansion int, scope Scope) bool {
	// Iframe content is trusted without cross-document hit-testing.
	if scope.InFrame {
		return true
	}

	if scope.InShadow {
		return c.topInShadow(el)
	}

	if expansion == -1 {
		return true
	}

	box, ok := c.Geo.BoundingBox(el)
	if !ok {
		return false
	}

	vw, vh := c.Geo.Viewport()
	exp := float64(expansion)
	// The expanded window and the box live in the same (viewport-relative)
	// coordinate space, so the scroll adjustment cancels out.
	if !intersects(box, -exp, -exp, float64(vw)+exp, float64(vh)+exp) {
		return false
	}

	cx, cy := center(box)
	// Centers outside the real viewport cannot be hit-tested reliably.
	if cx < 0 || cy < 0 || cx > float64(vw) || cy > float64(vh) {
		return true
	}

	hit, err := c.Caps.HitTest(px(cx), px(cy), nil)
	if err != nil {
		return true
	}
	if hit == nil {
		return false
	}
	for cur := hit; cur != nil; cur = cur.Parent() {
		if cur == el {
			return true
		}
	}
	return false
}

// topInShadow hit-tests within the element's own shadow root scope.
func (c *Classifier) topInShadow(el Element) bool {
	box, ok := c.Geo.BoundingBox(el)
	if !ok {
		return false
	}
	cx, cy := center(box)

	hit, err := c.Caps.HitTest(px(cx), px(cy), el)
	if err != nil {
		return true
	}
	if hit == nil {
		return false
	}
	// Walk up to (excluding) the shadow root; Parent() is nil there.
	for cur := hit; cur != nil; cur = cur.Parent() {
		if cur == el {
			return true
		}
	}
	return false
}

// IsTextVisible reports whether a text node renders inside the viewport
// with a visible element ancestor.
func (c *Classifier) IsTextVisible(t Text) bool {
	rect, ok := c.Geo.TextRect(t)
	if !ok || rect.Width <= 0 || rect.Height <= 0 {
		return false
	}
	_, vh := c.Geo.Viewport()
	if rect.Y < 0 || rect.Y > float64(vh) {
		return false
	}
	parent := t.ParentElement()
	if parent == nil {
		return false
	}
	style, ok := c.Geo.Style(parent)
	if !ok {
		return false
	}
	return style.Visibility != "hidden" && style.Opacity != "0"
}
