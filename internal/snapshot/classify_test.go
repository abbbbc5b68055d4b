package snapshot_test

import (
	"testing"

	"github.com/hazyhaar/domsnap/dom"
	"github.com/hazyhaar/domsnap/internal/snapshot"
)

func findByID(tree *dom.ElementNode, id string) *dom.ElementNode {
	var found *dom.ElementNode
	dom.Walk(tree, func(n dom.Node) {
		if el, ok := n.(*dom.ElementNode); ok && el.Attributes["id"] == id && found == nil {
			found = el
		}
	})
	return found
}

func TestInteractivitySignals(t *testing.T) {
	src := `<body data-viewport="1280,720">
		<div data-rect="0,0,1200,560">
			<div id="role" role="button" data-rect="0,0,100,20">r</div>
			<div id="ariarole" aria-role="checkbox" data-rect="0,30,100,20">ar</div>
			<div id="tab" tabindex="0" data-rect="0,60,100,20">t</div>
			<div id="negtab" tabindex="-1" data-rect="0,90,100,20">nt</div>
			<div id="action" data-action="a-dropdown-select" data-rect="0,120,100,20">a</div>
			<div id="class" class="btn button" data-rect="0,150,100,20">c</div>
			<div id="click" onclick="go()" data-rect="0,180,100,20">o</div>
			<div id="ngclick" ng-click="go()" data-rect="0,210,100,20">n</div>
			<div id="listener" data-listeners="click touchstart" data-rect="0,240,100,20">l</div>
			<div id="aria" aria-expanded="false" data-rect="0,270,100,20">x</div>
			<div id="drag" draggable="true" data-rect="0,300,100,20">d</div>
			<div id="nodrag" draggable="false" data-rect="0,330,100,20">f</div>
			<div id="plain" data-rect="0,360,100,20">p</div>
			<div id="menurole" role="menu" data-rect="0,390,100,20">m</div>
		</div>
		<div id="bodychild" tabindex="0" data-listeners="click" data-rect="0,600,100,20">b</div>
	</body>`

	tree, _ := build(t, src, snapshot.Options{FocusHighlightIndex: -1})

	wantInteractive := map[string]bool{
		"role":      true,
		"ariarole":  true,
		"tab":       true,
		"negtab":    false,
		"action":    true,
		"class":     true,
		"click":     true,
		"ngclick":   true,
		"listener":  true,
		"aria":      true,
		"drag":      true,
		"nodrag":    false,
		"plain":     false,
		"menurole":  false, // menu is an interactive tag, not an interactive role
		"bodychild": false, // direct body children need explicit signals
	}

	for id, want := range wantInteractive {
		el := findByID(tree, id)
		if el == nil {
			t.Fatalf("element %q missing from tree", id)
		}
		if el.IsInteractive != want {
			t.Errorf("%s: isInteractive got %v, want %v", id, el.IsInteractive, want)
		}
	}

	if tree.TagName != "body" || tree.IsInteractive {
		t.Errorf("body: got tag=%q interactive=%v, want body/false", tree.TagName, tree.IsInteractive)
	}
}

func TestInteractiveTagsAlwaysQualify(t *testing.T) {
	src := `<body data-viewport="1280,720">
		<select data-rect="0,0,100,24"><option>x</option></select>
		<textarea data-rect="0,30,100,60"></textarea>
		<label data-rect="0,100,100,20">name</label>
		<summary data-rect="0,130,100,20">more</summary>
	</body>`

	tree, _ := build(t, src, snapshot.Options{FocusHighlightIndex: -1})

	for _, tag := range []string{"select", "textarea", "label", "summary"} {
		els := findByTag(tree, tag)
		if len(els) == 0 {
			t.Fatalf("%s missing from tree", tag)
		}
		if !els[0].IsInteractive {
			t.Errorf("%s: want isInteractive=true", tag)
		}
	}
}
