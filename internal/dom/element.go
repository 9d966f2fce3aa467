// Package dom models the element tree a block document is composed of:
// elements with attributes, classes, text and geometry, focus/input event
// listeners, and mutation observation over subtrees.
//
// The tree is single-threaded by contract, matching the event-driven core
// that owns it. Mutations are delivered synchronously to observers; callers
// that need coalescing debounce on their side.
package dom

import "strings"

// AttrMutationFree marks an element subtree whose structural changes carry
// no semantic meaning. Observers report records, but a batch made up
// entirely of mutation-free nodes is ignored by the block pipeline.
const AttrMutationFree = "data-mutation-free"

// Rect is the laid-out position and size of an element, in cells.
type Rect struct {
	X, Y, W, H int
}

// Bottom returns the y coordinate just past the element.
func (r Rect) Bottom() int { return r.Y + r.H }

// Element is a node in the document tree.
type Element struct {
	tag             string
	attrs           map[string]string
	classes         map[string]bool
	text            string
	children        []*Element
	parent          *Element
	contentEditable bool
	rect            Rect

	listeners    map[EventType]map[int]func(Event)
	nextListener int
	observers    []*Observer
}

// NewElement creates an element with the given tag.
func NewElement(tag string) *Element {
	return &Element{
		tag:     tag,
		attrs:   make(map[string]string),
		classes: make(map[string]bool),
	}
}

// NewEditable creates a contentEditable element with the given tag.
func NewEditable(tag string) *Element {
	el := NewElement(tag)
	el.contentEditable = true
	return el
}

// Tag returns the element's tag name.
func (e *Element) Tag() string { return e.tag }

// Parent returns the element's parent, or nil for a detached root.
func (e *Element) Parent() *Element { return e.parent }

// Children returns the element's children. The returned slice must not be
// mutated.
func (e *Element) Children() []*Element { return e.children }

// ContentEditable reports whether the element is a directly editable region.
func (e *Element) ContentEditable() bool { return e.contentEditable }

// SetContentEditable toggles direct editability. Emits an attribute record.
func (e *Element) SetContentEditable(editable bool) {
	if e.contentEditable == editable {
		return
	}
	e.contentEditable = editable
	e.notify(Record{Type: RecordAttributes, Target: e, AttributeName: "contenteditable"})
}

// IsNativeInput reports whether the element is a native input control.
// Native inputs never produce character-data mutation records for text
// edits; callers wire "input" event listeners instead.
func (e *Element) IsNativeInput() bool {
	return e.tag == "input" || e.tag == "textarea"
}

// Text returns the element's own text.
func (e *Element) Text() string { return e.text }

// SetText replaces the element's own text. Emits a character-data record
// unless the element is a native input.
func (e *Element) SetText(text string) {
	if e.text == text {
		return
	}
	e.text = text
	if e.IsNativeInput() {
		// Browsers do not report native input edits through mutation
		// observers; the "input" event is the only signal.
		e.Dispatch(Event{Type: EventInput, Target: e})
		return
	}
	e.notify(Record{Type: RecordCharacterData, Target: e})
}

// TextContent returns the element's text and the text of all descendants,
// depth first.
func (e *Element) TextContent() string {
	var sb strings.Builder
	e.appendText(&sb)
	return sb.String()
}

func (e *Element) appendText(sb *strings.Builder) {
	sb.WriteString(e.text)
	for _, c := range e.children {
		c.appendText(sb)
	}
}

// AppendChild attaches child as the last child, detaching it from any
// previous parent. Emits a child-list record.
func (e *Element) AppendChild(child *Element) {
	if child == nil || child == e {
		return
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = e
	e.children = append(e.children, child)
	e.notify(Record{Type: RecordChildList, Target: e, Added: []*Element{child}})
}

// InsertBefore inserts child before ref. A nil ref appends.
func (e *Element) InsertBefore(child, ref *Element) {
	if ref == nil {
		e.AppendChild(child)
		return
	}
	if child == nil || child == e {
		return
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	for i, c := range e.children {
		if c == ref {
			child.parent = e
			e.children = append(e.children[:i], append([]*Element{child}, e.children[i:]...)...)
			e.notify(Record{Type: RecordChildList, Target: e, Added: []*Element{child}})
			return
		}
	}
	e.AppendChild(child)
}

// RemoveChild detaches child. Emits a child-list record.
func (e *Element) RemoveChild(child *Element) {
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			child.parent = nil
			e.notify(Record{Type: RecordChildList, Target: e, Removed: []*Element{child}})
			return
		}
	}
}

// Remove detaches the element from its parent, if any.
func (e *Element) Remove() {
	if e.parent != nil {
		e.parent.RemoveChild(e)
	}
}

// SetAttribute sets an attribute. Emits an attribute record.
func (e *Element) SetAttribute(name, value string) {
	if e.attrs[name] == value {
		return
	}
	e.attrs[name] = value
	e.notify(Record{Type: RecordAttributes, Target: e, AttributeName: name})
}

// Attribute returns an attribute value and whether it is present.
func (e *Element) Attribute(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// AddClass adds a CSS class. Emits an attribute record for "class".
func (e *Element) AddClass(name string) {
	if e.classes[name] {
		return
	}
	e.classes[name] = true
	e.notify(Record{Type: RecordAttributes, Target: e, AttributeName: "class"})
}

// RemoveClass removes a CSS class. Emits an attribute record for "class".
func (e *Element) RemoveClass(name string) {
	if !e.classes[name] {
		return
	}
	delete(e.classes, name)
	e.notify(Record{Type: RecordAttributes, Target: e, AttributeName: "class"})
}

// ToggleClass adds or removes a CSS class.
func (e *Element) ToggleClass(name string, on bool) {
	if on {
		e.AddClass(name)
	} else {
		e.RemoveClass(name)
	}
}

// HasClass reports whether the element carries the CSS class.
func (e *Element) HasClass(name string) bool { return e.classes[name] }

// SetRect records the element's laid-out geometry.
func (e *Element) SetRect(r Rect) { e.rect = r }

// Rect returns the element's laid-out geometry.
func (e *Element) Rect() Rect { return e.rect }

// MarkMutationFree marks the element (and thereby its subtree) as
// mutation-free: decorative nodes whose churn must not be treated as a
// content change.
func (e *Element) MarkMutationFree() {
	e.attrs[AttrMutationFree] = "true"
}

// IsMutationFree reports whether the element is inside a mutation-free
// subtree.
func (e *Element) IsMutationFree() bool {
	for n := e; n != nil; n = n.parent {
		if n.attrs[AttrMutationFree] == "true" {
			return true
		}
	}
	return false
}
