package snapshot

import (
	"fmt"
)

// childXPath extends a parent path with one segment for el. The positional
// suffix is 1-based among same-tag element siblings and appears only when
// the tag occurs more than once under the parent. Paths restart at shadow
// and iframe boundaries: the walker passes parentPath="" there.
func childXPath(parentPath string, el Element, siblings []Node) string {
	tag := el.Tag()

	idx, total := 0, 0
	for _, sib := range siblings {
		se, ok := sib.(Element)
		if !ok || se.Tag() != tag {
			continue
		}
		total++
		if se == el {
			idx = total
		}
	}

	if total > 1 {
		return fmt.Sprintf("%s/%s[%d]", parentPath, tag, idx)
	}
	return parentPath + "/" + tag
}
