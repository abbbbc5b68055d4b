package dom

// Snapshot is one complete capture result: the actionable tree plus the
// envelope consumers need to route, store, and chain captures.
type Snapshot struct {
	ID               string       `json:"id"` // UUIDv7
	PageURL          string       `json:"page_url"`
	PageID           string       `json:"page_id"`
	Tree             *ElementNode `json:"tree"`
	ElementCount     int          `json:"element_count"`
	InteractiveCount int          `json:"interactive_count"`
	Markdown         string       `json:"markdown,omitempty"`
	Timestamp        int64        `json:"timestamp"` // epoch milliseconds
}

// SelectorMap maps a highlight index to its element. Valid only for the
// snapshot it was built from; indices are not stable across captures of a
// mutated page.
type SelectorMap map[int]*ElementNode

// BuildSelectorMap walks the tree and collects every indexed element.
func BuildSelectorMap(root *ElementNode) SelectorMap {
	m := make(SelectorMap)
	if root == nil {
		return m
	}
	Walk(root, func(n Node) {
		if el, ok := n.(*ElementNode); ok && el.HighlightIndex != nil {
			m[*el.HighlightIndex] = el
		}
	})
	return m
}

// CountNodes returns the total element count and the count of elements
// holding a highlight index.
func CountNodes(root *ElementNode) (elements, interactive int) {
	if root == nil {
		return 0, 0
	}
	Walk(root, func(n Node) {
		if el, ok := n.(*ElementNode); ok {
			elements++
			if el.HighlightIndex != nil {
				interactive++
			}
		}
	})
	return elements, interactive
}
