// Package synthdom implements the snapshot provider interfaces over a
// parsed HTML document with fabricated layout, so the walker and classifier
// run without a rendering engine.
//
// Layout and engine state are declared inline:
//
//	data-rect="x,y,w,h"      element box (viewport-relative); inherited
//	                         from the nearest ancestor when absent
//	data-viewport="w,h"      on <body>: viewport size (default 1280x720)
//	data-scroll="x,y"        on <body>: scroll offsets
//	data-listeners="click"   attached listeners for HasClickListener
//	data-cross-origin        on <iframe>: document access fails
//	<iframe srcdoc="...">    same-process nested document
//	<template shadowrootmode="open">  declarative shadow root
//
// Hit-testing is painter's order: the last element in document order whose
// box contains the point, within the probed root scope, wins.
package synthdom

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/hazyhaar/domsnap/internal/snapshot"
)

// Doc is a synthetic document implementing snapshot.Geometry and
// snapshot.Capabilities for every element it owns, including elements of
// nested srcdoc documents and shadow trees.
type Doc struct {
	body     *Elem
	all      []*Elem // document order, across scopes
	scrollX  int
	scrollY  int
	vpWidth  int
	vpHeight int

	nextScope int
}

// Elem is one synthetic element.
type Elem struct {
	snapshot.NodeTag

	doc      *Doc
	tag      string
	attrs    map[string]string
	parent   *Elem // nil at a traversal boundary
	children []snapshot.Node
	shadow   []snapshot.Node
	frameDoc *Elem // body of a srcdoc sub-document
	frameErr error

	rect    snapshot.Rect
	hasRect bool
	style   snapshot.Style

	order int
	scope int // 0 = light DOM of the owning document, >0 = shadow scope
}

// Txt is one synthetic text node.
type Txt struct {
	snapshot.NodeTag

	data   string
	parent *Elem
}

// Parse builds a synthetic document from an HTML source.
func Parse(src string) (*Doc, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("synthdom: parse: %w", err)
	}

	body := findElement(root, "body")
	if body == nil {
		return nil, fmt.Errorf("synthdom: document has no body")
	}

	d := &Doc{vpWidth: 1280, vpHeight: 720, nextScope: 1}

	if vp, ok := attrValue(body, "data-viewport"); ok {
		if w, h, err := parsePair(vp); err == nil {
			d.vpWidth, d.vpHeight = int(w), int(h)
		}
	}
	if sc, ok := attrValue(body, "data-scroll"); ok {
		if x, y, err := parsePair(sc); err == nil {
			d.scrollX, d.scrollY = int(x), int(y)
		}
	}

	d.body = d.build(body, nil, 0)
	return d, nil
}

// Body returns the walk root.
func (d *Doc) Body() snapshot.Element { return d.body }

// SetScroll overrides the scroll offsets.
func (d *Doc) SetScroll(x, y int) { d.scrollX, d.scrollY = x, y }

// SetViewport overrides the viewport dimensions.
func (d *Doc) SetViewport(w, h int) { d.vpWidth, d.vpHeight = w, h }

// build recursively converts an html.Node element into an Elem owned by d.
func (d *Doc) build(n *html.Node, parent *Elem, scope int) *Elem {
	el := &Elem{
		doc:    d,
		tag:    strings.ToLower(n.Data),
		attrs:  make(map[string]string, len(n.Attr)),
		parent: parent,
		order:  len(d.all),
		scope:  scope,
	}
	d.all = append(d.all, el)
	for _, a := range n.Attr {
		el.attrs[a.Key] = a.Val
	}

	d.resolveGeometry(el)

	if el.tag == "iframe" {
		d.buildFrame(n, el)
		return el
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			el.children = append(el.children, &Txt{data: c.Data, parent: el})
		case html.ElementNode:
			if strings.ToLower(c.Data) == "template" {
				if _, ok := attrValue(c, "shadowrootmode"); ok {
					el.shadow = d.buildShadow(c, el)
					continue
				}
			}
			el.children = append(el.children, d.build(c, el, scope))
		}
	}
	return el
}

// buildShadow converts a declarative shadow template's children into a
// shadow tree. Top-level shadow children have a nil parent: the shadow
// root is a traversal boundary.
func (d *Doc) buildShadow(tpl *html.Node, host *Elem) []snapshot.Node {
	scope := d.nextScope
	d.nextScope++

	var kids []snapshot.Node
	for c := tpl.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			kids = append(kids, &Txt{data: c.Data, parent: host})
		case html.ElementNode:
			kids = append(kids, d.build(c, nil, scope))
		}
	}
	return kids
}

// buildFrame resolves an iframe's nested document from its srcdoc.
func (d *Doc) buildFrame(n *html.Node, el *Elem) {
	if _, ok := el.attrs["data-cross-origin"]; ok {
		el.frameErr = fmt.Errorf("synthdom: cross-origin frame")
		return
	}
	srcdoc, ok := el.attrs["srcdoc"]
	if !ok {
		return
	}

	root, err := html.Parse(strings.NewReader(srcdoc))
	if err != nil {
		el.frameErr = fmt.Errorf("synthdom: parse srcdoc: %w", err)
		return
	}
	body := findElement(root, "body")
	if body == nil {
		return
	}
	scope := d.nextScope
	d.nextScope++
	el.frameDoc = d.build(body, nil, scope)
}

// resolveGeometry fabricates the element's box and computed style from its
// attributes and ancestors.
func (d *Doc) resolveGeometry(el *Elem) {
	el.style = snapshot.Style{Display: displayOf(el), Visibility: inheritedVisibility(el), Opacity: "1"}
	if op := styleProp(el, "opacity"); op != "" {
		el.style.Opacity = op
	}

	// display:none on self or any ancestor collapses the box.
	for cur := el; cur != nil; cur = cur.parent {
		if displayOf(cur) == "none" {
			return
		}
	}

	if raw, ok := el.attrs["data-rect"]; ok {
		if r, err := parseRect(raw); err == nil {
			el.rect, el.hasRect = r, true
			return
		}
	}
	if el.parent != nil && el.parent.hasRect {
		el.rect, el.hasRect = el.parent.rect, true
		return
	}
	if el.parent == nil {
		// Scope root without an explicit box fills the viewport.
		el.rect = snapshot.Rect{Width: float64(d.vpWidth), Height: float64(d.vpHeight)}
		el.hasRect = true
	}
}

func displayOf(el *Elem) string {
	if v := styleProp(el, "display"); v != "" {
		return v
	}
	return "block"
}

func inheritedVisibility(el *Elem) string {
	for cur := el; cur != nil; cur = cur.parent {
		if v := styleProp(cur, "visibility"); v != "" {
			return v
		}
	}
	return "visible"
}

func styleProp(el *Elem, prop string) string {
	raw, ok := el.attrs["style"]
	if !ok {
		return ""
	}
	for _, decl := range strings.Split(raw, ";") {
		k, v, found := strings.Cut(decl, ":")
		if found && strings.TrimSpace(k) == prop {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func parseRect(raw string) (snapshot.Rect, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return snapshot.Rect{}, fmt.Errorf("synthdom: bad rect %q", raw)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return snapshot.Rect{}, fmt.Errorf("synthdom: bad rect %q: %w", raw, err)
		}
		vals[i] = f
	}
	return snapshot.Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

func parsePair(raw string) (float64, float64, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("synthdom: bad pair %q", raw)
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.ToLower(n.Data) == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func attrValue(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
