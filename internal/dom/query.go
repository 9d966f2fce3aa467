package dom

// mediaTags are the tags whose presence makes a block "media-bearing".
var mediaTags = map[string]bool{
	"img":      true,
	"iframe":   true,
	"video":    true,
	"audio":    true,
	"source":   true,
	"input":    true,
	"textarea": true,
}

// QueryAll returns, depth first, every element in the subtree rooted at e
// (including e itself) for which pred returns true.
func (e *Element) QueryAll(pred func(*Element) bool) []*Element {
	var out []*Element
	e.walk(func(n *Element) {
		if pred(n) {
			out = append(out, n)
		}
	})
	return out
}

func (e *Element) walk(visit func(*Element)) {
	visit(e)
	for _, c := range e.children {
		c.walk(visit)
	}
}

// Closest returns the nearest element, starting from e and walking up
// through its ancestors, for which pred returns true. Returns nil when no
// ancestor matches.
func (e *Element) Closest(pred func(*Element) bool) *Element {
	for n := e; n != nil; n = n.parent {
		if pred(n) {
			return n
		}
	}
	return nil
}

// Contains reports whether other is e or a descendant of e.
func (e *Element) Contains(other *Element) bool {
	for n := other; n != nil; n = n.parent {
		if n == e {
			return true
		}
	}
	return false
}

// FindEditables returns the focusable, directly editable regions inside the
// subtree rooted at e: contentEditable elements and native inputs, in
// depth-first document order.
func FindEditables(root *Element) []*Element {
	if root == nil {
		return nil
	}
	return root.QueryAll(func(n *Element) bool {
		return n.contentEditable || n.IsNativeInput()
	})
}

// ContainsMedia reports whether the subtree rooted at e contains a media
// element.
func ContainsMedia(root *Element) bool {
	if root == nil {
		return false
	}
	found := root.QueryAll(func(n *Element) bool {
		return mediaTags[n.tag]
	})
	return len(found) > 0
}
