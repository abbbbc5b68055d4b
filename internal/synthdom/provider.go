package synthdom

import (
	"strings"

	"github.com/hazyhaar/domsnap/internal/snapshot"
)

// --- snapshot.Element ---

func (e *Elem) Tag() string { return e.tag }

func (e *Elem) Attrs() map[string]string { return e.attrs }

func (e *Elem) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *Elem) Parent() snapshot.Element {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func (e *Elem) Children() []snapshot.Node { return e.children }

func (e *Elem) ShadowChildren() ([]snapshot.Node, bool) {
	if e.shadow == nil {
		return nil, false
	}
	return e.shadow, true
}

func (e *Elem) FrameBody() (snapshot.Element, error) {
	if e.frameErr != nil {
		return nil, e.frameErr
	}
	if e.frameDoc == nil {
		return nil, nil
	}
	return e.frameDoc, nil
}

// --- snapshot.Text ---

func (t *Txt) Data() string { return t.data }

func (t *Txt) ParentElement() snapshot.Element {
	if t.parent == nil {
		return nil
	}
	return t.parent
}

// --- snapshot.Geometry ---

func (d *Doc) BoundingBox(el snapshot.Element) (snapshot.Rect, bool) {
	e, ok := el.(*Elem)
	if !ok || !e.hasRect {
		return snapshot.Rect{}, false
	}
	return e.rect, true
}

func (d *Doc) Style(el snapshot.Element) (snapshot.Style, bool) {
	e, ok := el.(*Elem)
	if !ok {
		return snapshot.Style{}, false
	}
	return e.style, true
}

func (d *Doc) TextRect(t snapshot.Text) (snapshot.Rect, bool) {
	txt, ok := t.(*Txt)
	if !ok || txt.parent == nil || !txt.parent.hasRect {
		return snapshot.Rect{}, false
	}
	return txt.parent.rect, true
}

func (d *Doc) Scroll() (int, int) { return d.scrollX, d.scrollY }

func (d *Doc) Viewport() (int, int) { return d.vpWidth, d.vpHeight }

// --- snapshot.Capabilities ---

// HitTest walks document order backwards (painter's order) within the
// probed scope and returns the first rendered element containing the point.
func (d *Doc) HitTest(x, y int, scope snapshot.Element) (snapshot.Element, error) {
	scopeID := 0
	if scope != nil {
		e, ok := scope.(*Elem)
		if !ok {
			return nil, nil
		}
		scopeID = e.scope
	}

	fx, fy := float64(x), float64(y)
	for i := len(d.all) - 1; i >= 0; i-- {
		e := d.all[i]
		if e.scope != scopeID || !e.hasRect {
			continue
		}
		if e.style.Visibility == "hidden" {
			continue
		}
		if fx >= e.rect.X && fx < e.rect.X+e.rect.Width &&
			fy >= e.rect.Y && fy < e.rect.Y+e.rect.Height {
			return e, nil
		}
	}
	return nil, nil
}

var clickFamily = map[string]bool{
	"click":      true,
	"mousedown":  true,
	"mouseup":    true,
	"touchstart": true,
	"touchend":   true,
}

func (d *Doc) HasClickListener(el snapshot.Element) bool {
	e, ok := el.(*Elem)
	if !ok {
		return false
	}
	if _, ok := e.attrs["onclick"]; ok {
		return true
	}
	raw, ok := e.attrs["data-listeners"]
	if !ok {
		return false
	}
	for _, name := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' }) {
		if clickFamily[name] {
			return true
		}
	}
	return false
}
