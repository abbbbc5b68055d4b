package dom

import (
	"encoding/json"
	"fmt"
)

// nodeType tags text nodes on the wire; element nodes carry no type field.
const textNodeType = "TEXT_NODE"

// MarshalJSON emits the TextNode with its type marker.
func (t *TextNode) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string `json:"type"`
		Text      string `json:"text"`
		IsVisible bool   `json:"isVisible"`
	}{textNodeType, t.Text, t.IsVisible})
}

// MarshalJSON emits the ElementNode with children always present as an
// array: a childless element (a pruned or inaccessible subtree included)
// serializes as "children":[], never null.
func (e *ElementNode) MarshalJSON() ([]byte, error) {
	type plainElement ElementNode

	children := e.Children
	if children == nil {
		children = []Node{}
	}
	return json.Marshal(&struct {
		*plainElement
		Children []Node `json:"children"`
	}{(*plainElement)(e), children})
}

// UnmarshalJSON decodes an ElementNode, dispatching each child on the
// presence of the TEXT_NODE type marker.
func (e *ElementNode) UnmarshalJSON(data []byte) error {
	type frameElement struct {
		TagName             string            `json:"tagName"`
		Attributes          map[string]string `json:"attributes"`
		XPath               string            `json:"xpath"`
		Children            []json.RawMessage `json:"children"`
		ViewportCoordinates Frame             `json:"viewportCoordinates"`
		PageCoordinates     Frame             `json:"pageCoordinates"`
		Viewport            Viewport          `json:"viewport"`
		IsInteractive       bool              `json:"isInteractive"`
		IsVisible           bool              `json:"isVisible"`
		IsTopElement        bool              `json:"isTopElement"`
		HighlightIndex      *int              `json:"highlightIndex"`
		ShadowRoot          bool              `json:"shadowRoot"`
	}

	var raw frameElement
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.TagName = raw.TagName
	e.Attributes = raw.Attributes
	e.XPath = raw.XPath
	e.ViewportCoordinates = raw.ViewportCoordinates
	e.PageCoordinates = raw.PageCoordinates
	e.Viewport = raw.Viewport
	e.IsInteractive = raw.IsInteractive
	e.IsVisible = raw.IsVisible
	e.IsTopElement = raw.IsTopElement
	e.HighlightIndex = raw.HighlightIndex
	e.ShadowRoot = raw.ShadowRoot

	e.Children = nil
	for _, rc := range raw.Children {
		child, err := unmarshalNode(rc)
		if err != nil {
			return err
		}
		e.Children = append(e.Children, child)
	}
	return nil
}

func unmarshalNode(data []byte) (Node, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("dom: probe node type: %w", err)
	}

	if probe.Type == textNodeType {
		var t struct {
			Text      string `json:"text"`
			IsVisible bool   `json:"isVisible"`
		}
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("dom: unmarshal text node: %w", err)
		}
		return &TextNode{Text: t.Text, IsVisible: t.IsVisible}, nil
	}

	var el ElementNode
	if err := json.Unmarshal(data, &el); err != nil {
		return nil, fmt.Errorf("dom: unmarshal element node: %w", err)
	}
	return &el, nil
}

// MarshalTree serialises a tree to JSON.
func MarshalTree(root *ElementNode) ([]byte, error) {
	return json.Marshal(root)
}

// UnmarshalTree deserialises a tree from JSON.
func UnmarshalTree(data []byte) (*ElementNode, error) {
	var root ElementNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	return &root, nil
}

// MarshalSnapshot serialises a Snapshot to JSON.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSnapshot deserialises a Snapshot from JSON.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
