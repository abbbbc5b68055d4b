package cdp

import (
	"github.com/hazyhaar/domsnap/internal/snapshot"
)

// BoundingBox evaluates getBoundingClientRect in the element's own
// document. Missing geometry (detached node, eval failure) reports ok=false
// and is treated downstream as not visible.
func (p *Provider) BoundingBox(el snapshot.Element) (snapshot.Rect, bool) {
	e, ok := el.(*Element)
	if !ok {
		return snapshot.Rect{}, false
	}
	rodEl, err := e.resolve()
	if err != nil {
		return snapshot.Rect{}, false
	}
	res, err := rodEl.Eval(`() => {
		const r = this.getBoundingClientRect();
		return { x: r.x, y: r.y, w: r.width, h: r.height };
	}`)
	if err != nil {
		return snapshot.Rect{}, false
	}
	return snapshot.Rect{
		X:      res.Value.Get("x").Num(),
		Y:      res.Value.Get("y").Num(),
		Width:  res.Value.Get("w").Num(),
		Height: res.Value.Get("h").Num(),
	}, true
}

// Style returns the computed-style subset the classifier consumes.
func (p *Provider) Style(el snapshot.Element) (snapshot.Style, bool) {
	e, ok := el.(*Element)
	if !ok {
		return snapshot.Style{}, false
	}
	rodEl, err := e.resolve()
	if err != nil {
		return snapshot.Style{}, false
	}
	res, err := rodEl.Eval(`() => {
		const s = window.getComputedStyle(this);
		return { display: s.display, visibility: s.visibility, opacity: s.opacity };
	}`)
	if err != nil {
		return snapshot.Style{}, false
	}
	return snapshot.Style{
		Display:    res.Value.Get("display").Str(),
		Visibility: res.Value.Get("visibility").Str(),
		Opacity:    res.Value.Get("opacity").Str(),
	}, true
}

// TextRect measures a text node through a range selected on it. The node
// is located in its parent by content; identically-texted siblings resolve
// to the first match, which is an accepted bound of the heuristic.
func (p *Provider) TextRect(t snapshot.Text) (snapshot.Rect, bool) {
	txt, ok := t.(*Text)
	if !ok || txt.parent == nil {
		return snapshot.Rect{}, false
	}
	rodEl, err := txt.parent.resolve()
	if err != nil {
		return snapshot.Rect{}, false
	}
	res, err := rodEl.Eval(`(text) => {
		for (const n of this.childNodes) {
			if (n.nodeType === 3 && n.textContent === text) {
				const range = document.createRange();
				range.selectNodeContents(n);
				const r = range.getBoundingClientRect();
				return { x: r.x, y: r.y, w: r.width, h: r.height };
			}
		}
		return null;
	}`, txt.data)
	if err != nil || res.Value.Nil() {
		return snapshot.Rect{}, false
	}
	return snapshot.Rect{
		X:      res.Value.Get("x").Num(),
		Y:      res.Value.Get("y").Num(),
		Width:  res.Value.Get("w").Num(),
		Height: res.Value.Get("h").Num(),
	}, true
}

// Scroll returns the main document's scroll offsets sampled at build time.
func (p *Provider) Scroll() (int, int) { return p.scrollX, p.scrollY }

// Viewport returns the main document's viewport dimensions sampled at
// build time.
func (p *Provider) Viewport() (int, int) { return p.vpWidth, p.vpHeight }
