package dom

// EventType identifies a DOM-level event.
type EventType string

// Event types wired by the block input tracker.
const (
	// EventFocus fires when an editable region receives focus.
	EventFocus EventType = "focus"
	// EventInput fires when a native input's value changes.
	EventInput EventType = "input"
	// EventClick fires when an element is activated.
	EventClick EventType = "click"
)

// Event is delivered to listeners registered on the target element.
type Event struct {
	Type   EventType
	Target *Element
}

// ListenerHandle identifies a registered listener for later removal.
type ListenerHandle struct {
	el    *Element
	event EventType
	id    int
}

// AddEventListener registers fn for events of the given type on the
// element. The returned handle removes exactly this registration.
func (e *Element) AddEventListener(event EventType, fn func(Event)) ListenerHandle {
	if e.listeners == nil {
		e.listeners = make(map[EventType]map[int]func(Event))
	}
	if e.listeners[event] == nil {
		e.listeners[event] = make(map[int]func(Event))
	}
	e.nextListener++
	id := e.nextListener
	e.listeners[event][id] = fn
	return ListenerHandle{el: e, event: event, id: id}
}

// RemoveEventListener removes a previously registered listener. Removing an
// already-removed handle is a no-op.
func (e *Element) RemoveEventListener(h ListenerHandle) {
	if h.el != e || e.listeners == nil {
		return
	}
	if m := e.listeners[h.event]; m != nil {
		delete(m, h.id)
	}
}

// Remove detaches the listener through its handle, regardless of which
// element it was registered on.
func (h ListenerHandle) Remove() {
	if h.el != nil {
		h.el.RemoveEventListener(h)
	}
}

// Dispatch delivers an event to the element's listeners. If the event
// target is unset it defaults to the element itself.
func (e *Element) Dispatch(ev Event) {
	if ev.Target == nil {
		ev.Target = e
	}
	if e.listeners == nil {
		return
	}
	// Snapshot: listeners may unregister themselves while running.
	m := e.listeners[ev.Type]
	fns := make([]func(Event), 0, len(m))
	for _, fn := range m {
		fns = append(fns, fn)
	}
	for _, fn := range fns {
		fn(ev)
	}
}

// Focus dispatches a focus event on the element.
func (e *Element) Focus() {
	e.Dispatch(Event{Type: EventFocus, Target: e})
}

// Click dispatches a click event on the element.
func (e *Element) Click() {
	e.Dispatch(Event{Type: EventClick, Target: e})
}
