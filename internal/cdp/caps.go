package cdp

import (
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/domsnap/internal/snapshot"
)

var clickListenerTypes = map[string]bool{
	"click":      true,
	"mousedown":  true,
	"mouseup":    true,
	"touchstart": true,
	"touchend":   true,
}

// HitTest resolves the element at (x, y). A nil scope probes the main
// document; a non-nil scope probes that element's own root, which is how
// shadow-tree occlusion is answered. Elements outside the captured tree
// (anything attached after the document build) resolve to nil.
func (p *Provider) HitTest(x, y int, scope snapshot.Element) (snapshot.Element, error) {
	var obj *proto.RuntimeRemoteObject
	var err error

	if scope == nil {
		obj, err = p.page.Evaluate(rod.Eval(
			`(x, y) => document.elementFromPoint(x, y)`, x, y).ByObject())
	} else {
		scopeEl, ok := scope.(*Element)
		if !ok {
			return nil, nil
		}
		var rodEl *rod.Element
		rodEl, err = scopeEl.resolve()
		if err != nil {
			return nil, err
		}
		obj, err = p.page.Evaluate(rod.Eval(
			`(x, y) => this.getRootNode().elementFromPoint(x, y)`, x, y).
			This(rodEl.Object).ByObject())
	}
	if err != nil {
		return nil, err
	}
	if obj == nil || obj.ObjectID == "" {
		return nil, nil
	}

	hitEl, err := p.page.ElementFromObject(obj)
	if err != nil {
		return nil, err
	}
	desc, err := hitEl.Describe(0, false)
	if err != nil {
		return nil, err
	}
	mapped, ok := p.byBackend[desc.BackendNodeID]
	if !ok {
		return nil, nil
	}
	return mapped, nil
}

// HasClickListener asks the DOMDebugger domain for attached listeners and
// falls back to probing the on<event> properties when introspection is
// unavailable. The fallback is deliberately incomplete; framework-internal
// delegation is invisible to it.
func (p *Provider) HasClickListener(el snapshot.Element) bool {
	e, ok := el.(*Element)
	if !ok {
		return false
	}
	rodEl, err := e.resolve()
	if err != nil {
		return false
	}

	res, err := proto.DOMDebuggerGetEventListeners{
		ObjectID: rodEl.Object.ObjectID,
	}.Call(p.page)
	if err == nil {
		for _, l := range res.Listeners {
			if clickListenerTypes[l.Type] {
				return true
			}
		}
		return false
	}

	probe, err := rodEl.Eval(`() => !!(this.onclick || this.onmousedown ||
		this.onmouseup || this.ontouchstart || this.ontouchend)`)
	if err != nil {
		return false
	}
	return probe.Value.Bool()
}
