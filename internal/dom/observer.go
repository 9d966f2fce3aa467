package dom

// RecordType classifies a mutation record.
type RecordType int

const (
	// RecordChildList reports nodes added to or removed from a target.
	RecordChildList RecordType = iota
	// RecordAttributes reports an attribute change on the target.
	RecordAttributes
	// RecordCharacterData reports a text change on the target.
	RecordCharacterData
)

// String returns a string representation of the record type.
func (t RecordType) String() string {
	switch t {
	case RecordChildList:
		return "childList"
	case RecordAttributes:
		return "attributes"
	case RecordCharacterData:
		return "characterData"
	default:
		return "unknown"
	}
}

// Record describes a single observed mutation.
type Record struct {
	Type          RecordType
	Target        *Element
	Added         []*Element
	Removed       []*Element
	AttributeName string
}

// IsMutationFree reports whether the record concerns only mutation-free
// nodes: every added and removed node is inside a marked subtree, and for
// attribute and text records the target itself is.
func (r Record) IsMutationFree() bool {
	switch r.Type {
	case RecordChildList:
		if len(r.Added) == 0 && len(r.Removed) == 0 {
			return false
		}
		for _, el := range r.Added {
			if !el.IsMutationFree() {
				return false
			}
		}
		for _, el := range r.Removed {
			// A removed node has lost its ancestors; check the old
			// subtree's own marking plus the record target.
			if !el.IsMutationFree() && !r.Target.IsMutationFree() {
				return false
			}
		}
		return true
	default:
		return r.Target.IsMutationFree()
	}
}

// Options selects which mutations an observer receives.
type Options struct {
	// Subtree extends observation to all descendants of the root.
	Subtree bool
	// ChildList reports node additions and removals.
	ChildList bool
	// Attributes reports attribute changes.
	Attributes bool
	// CharacterData reports text changes.
	CharacterData bool
}

// Observer watches a subtree for mutations. Delivery is synchronous with
// the mutating call; callers needing coalescing debounce downstream.
type Observer struct {
	callback func([]Record)
	root     *Element
	opts     Options
}

// NewObserver creates an observer delivering batches to callback.
func NewObserver(callback func([]Record)) *Observer {
	return &Observer{callback: callback}
}

// Observe starts watching root with the given options. An observer watches
// one root at a time; observing a new root disconnects the previous one.
func (o *Observer) Observe(root *Element, opts Options) {
	if root == nil {
		return
	}
	o.Disconnect()
	o.root = root
	o.opts = opts
	root.observers = append(root.observers, o)
}

// Disconnect stops watching. Safe to call repeatedly.
func (o *Observer) Disconnect() {
	if o.root == nil {
		return
	}
	obs := o.root.observers
	for i, other := range obs {
		if other == o {
			o.root.observers = append(obs[:i], obs[i+1:]...)
			break
		}
	}
	o.root = nil
}

// wants reports whether the observer's options select the record.
func (o *Observer) wants(r Record) bool {
	switch r.Type {
	case RecordChildList:
		return o.opts.ChildList
	case RecordAttributes:
		return o.opts.Attributes
	case RecordCharacterData:
		return o.opts.CharacterData
	default:
		return false
	}
}

// notify walks from the mutation target up to the root, delivering the
// record to every observer whose root and options cover it.
func (e *Element) notify(r Record) {
	direct := true
	for n := e; n != nil; n = n.parent {
		for _, o := range n.observers {
			if !direct && !o.opts.Subtree {
				continue
			}
			if o.wants(r) {
				o.callback([]Record{r})
			}
		}
		direct = false
	}
}
