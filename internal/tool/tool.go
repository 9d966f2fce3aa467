// Package tool defines the pluggable content tools and behavior tunes a
// block composes, the descriptor that declares them, and the registry the
// editor loads them into.
//
// Tools and tunes are modeled as values over a closed set of optional
// capability interfaces. A call site probes for the capability it needs
// instead of relying on ad hoc property presence:
//
//	if v, ok := tl.(tool.Validator); ok {
//	    valid, err := v.Validate(data)
//	    ...
//	}
package tool

import (
	"encoding/json"

	"github.com/dshills/stanza/internal/dom"
	"github.com/dshills/stanza/internal/event"
	"github.com/dshills/stanza/internal/log"
)

// Data is the tool-specific payload of a block.
type Data = map[string]any

// API is the narrow editor facade handed to tool and tune factories.
// Richer facades implement this interface and may be type-asserted by
// tools that know their host.
type API interface {
	// Events returns the editor's event bus.
	Events() *event.Bus
	// Log returns the editor's logger.
	Log() *log.Logger
}

// Tool is the required contract of a content tool: render the block's
// primary content and extract data back out of the rendered subtree.
type Tool interface {
	// Render produces the tool's content element.
	Render() *dom.Element
	// Save extracts tool data from the current rendered content.
	Save(root *dom.Element) (Data, error)
}

// Validator is implemented by tools that can vet extracted data.
type Validator interface {
	Validate(data Data) (bool, error)
}

// Merger is implemented by tools that can absorb another block's data.
type Merger interface {
	Merge(data Data) error
}

// Destroyer is implemented by tools and tunes that hold resources needing
// explicit teardown.
type Destroyer interface {
	Destroy() error
}

// Hook names a lifecycle notification dispatched through Block.Call.
type Hook string

// Lifecycle hooks a tool may implement.
const (
	// HookRendered fires after the block's content is attached to the
	// document.
	HookRendered Hook = "rendered"
	// HookUpdated fires after a debounced content mutation settles.
	HookUpdated Hook = "updated"
	// HookMoved fires after the block changes position in the document.
	HookMoved Hook = "moved"
	// HookRemoved fires before the block is removed from the document.
	HookRemoved Hook = "removed"
)

// RenderedHook receives HookRendered.
type RenderedHook interface {
	Rendered()
}

// UpdatedHook receives HookUpdated.
type UpdatedHook interface {
	Updated()
}

// MoveEvent carries the positions of a block move.
type MoveEvent struct {
	From int
	To   int
}

// MovedHook receives HookMoved.
type MovedHook interface {
	Moved(ev MoveEvent)
}

// RemovedHook receives HookRemoved.
type RemovedHook interface {
	Removed()
}

// Tune is a behavior modifier attached to a block. All capabilities beyond
// the name are optional.
type Tune interface {
	Name() string
}

// TuneWrapper wraps the block's content node. Wrapping is chained: each
// wrapper receives the previous result and returns the new outer node.
type TuneWrapper interface {
	Tune
	Wrap(content *dom.Element) *dom.Element
}

// TuneSaver persists auxiliary tune data alongside the block.
type TuneSaver interface {
	Tune
	Save() (any, error)
}

// TuneRenderer contributes UI to the block settings panel.
type TuneRenderer interface {
	Tune
	Render() *dom.Element
}

// Context is passed to a tool factory.
type Context struct {
	// Data is the initial tool-specific data.
	Data Data
	// API is the editor facade.
	API API
	// ReadOnly tells the tool the document-wide editing state at
	// construction time.
	ReadOnly bool
	// Settings carries the user settings declared on the Definition.
	Settings map[string]any
}

// TuneContext is passed to a tune factory.
type TuneContext struct {
	// Name is the tune's declared name.
	Name string
	// Data is the tune's persisted payload, verbatim.
	Data json.RawMessage
	// API is the editor facade.
	API API
	// Settings carries tune settings declared on the Definition.
	Settings map[string]any
}
