// Package block implements the editable unit of a structured block
// document: one content tool instance, its composed tunes, the tracked
// editable regions inside the rendered content, debounced mutation
// detection, and save/validate orchestration.
package block

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/dshills/stanza/internal/dom"
	"github.com/dshills/stanza/internal/event"
	"github.com/dshills/stanza/internal/guard"
	"github.com/dshills/stanza/internal/log"
	"github.com/dshills/stanza/internal/tool"
)

// CSS class names carried by the composed block element.
const (
	ClassBlock      = "sz-block"
	ClassContent    = "sz-block__content"
	ClassFocused    = "sz-block--focused"
	ClassSelected   = "sz-block--selected"
	ClassStretched  = "sz-block--stretched"
	ClassDropTarget = "sz-block--drop-target"
	ClassDragHandle = "sz-block__drag-handle"
	ClassAddTrigger = "sz-block__add"
	ClassSettings   = "sz-block__settings"
)

// readOnlyToggler is implemented by tools and tunes that react to the
// document-wide read-only state.
type readOnlyToggler interface {
	ToggleReadOnly(enabled bool)
}

// namedTune pairs a tune instance with its declared name. The declared
// name keys persisted data; the instance's own Name() is not trusted for
// that purpose.
type namedTune struct {
	name string
	tune tool.Tune
}

// Config carries the construction inputs of a block.
type Config struct {
	// ID is the block's unique id. Generated when empty.
	ID string
	// Data is the initial tool-specific data.
	Data tool.Data
	// Definition is the tool descriptor. Required.
	Definition *tool.Definition
	// API is the shared editor facade. Required.
	API *API
	// ReadOnly is the document-wide editing state at construction time.
	ReadOnly bool
	// TunesData maps tune names to their persisted payloads.
	TunesData map[string]json.RawMessage
	// Removable allows the unit to be removed from the document.
	Removable bool
	// Editable allows the unit's content to be edited.
	Editable bool
}

// Saved is the serializable snapshot a block produces.
type Saved struct {
	ID    string                     `json:"id"`
	Tool  string                     `json:"tool"`
	Data  tool.Data                  `json:"data"`
	Tunes map[string]json.RawMessage `json:"tunes,omitempty"`
	// Time is the wall-clock duration of the tool's data extraction,
	// in milliseconds.
	Time int64 `json:"time"`
}

// Block is the document's atomic editable element.
type Block struct {
	id  string
	def *tool.Definition
	api *API
	log *log.Logger

	tool      tool.Tool
	userTunes []namedTune
	// internalTunes are editor-supplied, kept apart from user tunes.
	internalTunes []namedTune
	// unavailableTuneData holds payloads of tunes whose implementation
	// is not loaded. Re-emitted verbatim on save so data is never
	// silently dropped.
	unavailableTuneData map[string]json.RawMessage

	holder      *dom.Element // outer block element
	content     *dom.Element // content cell, contains the wrapped tool output
	toolContent *dom.Element // tool's own rendered root

	readOnly  bool
	removable bool
	editable  bool

	focused    bool
	selected   bool
	stretched  bool
	dropTarget bool

	mu          sync.Mutex
	inputsCache []*dom.Element
	inputIndex  int
	destroyed   bool

	watcher *watcher
	toolbox *toolbox
}

// New constructs a block: instantiates the tool and its declared tunes,
// retains payloads of unavailable tunes, composes the visual container by
// folding the tune wrap chain over the tool's rendered content, and
// attaches the unit's interactive affordances.
func New(cfg Config) (*Block, error) {
	if cfg.Definition == nil || cfg.Definition.New == nil {
		return nil, ErrNilDefinition
	}
	if cfg.API == nil {
		return nil, ErrNilAPI
	}

	id := cfg.ID
	if id == "" {
		id = generateID()
	}

	b := &Block{
		id:                  id,
		def:                 cfg.Definition,
		api:                 cfg.API,
		log:                 cfg.API.Log().WithComponent("block").WithField("tool", cfg.Definition.Name),
		readOnly:            cfg.ReadOnly,
		removable:           cfg.Removable,
		editable:            cfg.Editable,
		unavailableTuneData: make(map[string]json.RawMessage),
	}

	toolInstance, err := cfg.Definition.New(tool.Context{
		Data:     cfg.Data,
		API:      cfg.API,
		ReadOnly: cfg.ReadOnly,
		Settings: cfg.Definition.Settings,
	})
	if err != nil {
		return nil, err
	}
	b.tool = toolInstance

	b.makeTunes(cfg.TunesData)
	b.compose()
	b.watcher = newWatcher(b)
	b.toolbox = newToolbox(b)

	return b, nil
}

// makeTunes instantiates the declared tunes, routing internal tunes into a
// separate collection, and retains payloads with no matching tune verbatim.
func (b *Block) makeTunes(tunesData map[string]json.RawMessage) {
	instantiated := make(map[string]bool, len(b.def.Tunes))

	for _, td := range b.def.Tunes {
		td := td
		instance, ok := guard.Value(b.log, "tune "+td.Name+" construction", func() (tool.Tune, error) {
			return td.New(tool.TuneContext{
				Name:     td.Name,
				Data:     tunesData[td.Name],
				API:      b.api,
				Settings: td.Settings,
			})
		})
		if !ok || instance == nil {
			continue
		}
		instantiated[td.Name] = true
		if td.Internal {
			b.internalTunes = append(b.internalTunes, namedTune{name: td.Name, tune: instance})
		} else {
			b.userTunes = append(b.userTunes, namedTune{name: td.Name, tune: instance})
		}
	}

	for name, raw := range tunesData {
		if !instantiated[name] {
			b.unavailableTuneData[name] = raw
		}
	}
}

// compose builds the visual container: tool content wrapped by each tune in
// order (user tunes first, then internal), then the block affordances.
// The fold threads the wrapped node through each step, so the final nesting
// is tune_n ⊃ … ⊃ tune_1 ⊃ content.
func (b *Block) compose() {
	b.toolContent = b.tool.Render()
	if b.toolContent == nil {
		b.toolContent = dom.NewElement("div")
	}

	wrapped := b.toolContent
	for _, nt := range b.allTunes() {
		w, ok := nt.tune.(tool.TuneWrapper)
		if !ok {
			continue
		}
		nt := nt
		prev := wrapped
		next, ok := guard.Value(b.log, "tune "+nt.name+" wrap", func() (*dom.Element, error) {
			return w.Wrap(prev), nil
		})
		if ok && next != nil {
			wrapped = next
		}
	}

	b.content = dom.NewElement("div")
	b.content.AddClass(ClassContent)
	b.content.AppendChild(wrapped)

	b.holder = dom.NewElement("div")
	b.holder.AddClass(ClassBlock)
	b.holder.SetAttribute("data-id", b.id)
	b.holder.AppendChild(b.content)

	b.attachAffordances()
}

// attachAffordances adds the drag handle, the "add" trigger opening the
// per-unit tool picker, and the settings trigger. All are mutation-free:
// their churn must never count as a content change.
func (b *Block) attachAffordances() {
	handle := dom.NewElement("span")
	handle.MarkMutationFree()
	handle.AddClass(ClassDragHandle)
	b.holder.AppendChild(handle)

	add := dom.NewElement("button")
	add.MarkMutationFree()
	add.AddClass(ClassAddTrigger)
	add.AddEventListener(dom.EventClick, func(dom.Event) {
		b.ToggleToolbox()
	})
	b.holder.AppendChild(add)

	settings := dom.NewElement("button")
	settings.MarkMutationFree()
	settings.AddClass(ClassSettings)
	settings.AddEventListener(dom.EventClick, func(dom.Event) {
		if b.api.Settings != nil {
			b.api.Settings.Toggle(b)
		}
	})
	b.holder.AppendChild(settings)
}

// allTunes returns user tunes followed by internal tunes, in declaration
// order.
func (b *Block) allTunes() []namedTune {
	out := make([]namedTune, 0, len(b.userTunes)+len(b.internalTunes))
	out = append(out, b.userTunes...)
	out = append(out, b.internalTunes...)
	return out
}

// ID returns the block's unique id.
func (b *Block) ID() string { return b.id }

// ToolName returns the name of the tool the block wraps.
func (b *Block) ToolName() string { return b.def.Name }

// Tool returns the owned tool instance.
func (b *Block) Tool() tool.Tool { return b.tool }

// Holder returns the composed outer element.
func (b *Block) Holder() *dom.Element { return b.holder }

// Content returns the content cell containing the wrapped tool output.
func (b *Block) Content() *dom.Element { return b.content }

// Removable reports whether the unit may be removed from the document.
func (b *Block) Removable() bool { return b.removable }

// Editable reports whether the unit's content may be edited.
func (b *Block) Editable() bool { return b.editable }

// IsEmpty reports whether the block has no text content and no media.
func (b *Block) IsEmpty() bool {
	return b.content.TextContent() == "" && !b.HasMedia()
}

// HasMedia reports whether the block's content contains a media element.
func (b *Block) HasMedia() bool {
	return dom.ContainsMedia(b.content)
}

// Save extracts the tool's data and every tune's payload into a snapshot.
//
// The tool extraction is timed; its duration is attached to the result in
// milliseconds. A tune whose save hook fails is logged and omitted without
// aborting the save. A failing tool extraction resolves the whole save to
// nothing: (nil, nil), with the failure logged.
func (b *Block) Save() (*Saved, error) {
	start := time.Now()
	data, ok := guard.Value(b.log, "tool save", func() (tool.Data, error) {
		return b.tool.Save(b.toolContent)
	})
	elapsed := time.Since(start).Milliseconds()
	if !ok {
		return nil, nil
	}

	tunes := make(map[string]json.RawMessage, len(b.unavailableTuneData))
	for name, raw := range b.unavailableTuneData {
		tunes[name] = raw
	}
	for _, nt := range b.allTunes() {
		saver, implements := nt.tune.(tool.TuneSaver)
		if !implements {
			continue
		}
		nt := nt
		payload, ok := guard.Value(b.log, "tune "+nt.name+" save", func() (any, error) {
			return saver.Save()
		})
		if !ok {
			continue
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			b.log.Warn("tune %s payload not serializable: %v", nt.name, err)
			continue
		}
		tunes[nt.name] = raw
	}
	if len(tunes) == 0 {
		tunes = nil
	}

	return &Saved{
		ID:    b.id,
		Tool:  b.def.Name,
		Data:  data,
		Tunes: tunes,
		Time:  elapsed,
	}, nil
}

// Validate defers to the tool's validation capability. Tools without one
// accept everything. A failing hook counts as a rejection.
func (b *Block) Validate(data tool.Data) bool {
	v, implements := b.tool.(tool.Validator)
	if !implements {
		return true
	}
	verdict, ok := guard.Value(b.log, "tool validate", func() (bool, error) {
		return v.Validate(data)
	})
	if !ok {
		return false
	}
	return verdict
}

// MergeWith asks the tool to absorb another block's data. Unsupported
// tools return ErrMergeUnsupported; a failing merge hook is isolated and
// logged.
func (b *Block) MergeWith(data tool.Data) error {
	m, implements := b.tool.(tool.Merger)
	if !implements {
		return ErrMergeUnsupported
	}
	guard.Run(b.log, "tool merge", func() error {
		return m.Merge(data)
	})
	return nil
}

// Call dispatches a lifecycle hook to the tool if it implements it.
// Failures are isolated and logged, never propagated.
func (b *Block) Call(hook tool.Hook, params any) {
	switch hook {
	case tool.HookRendered:
		if h, ok := b.tool.(tool.RenderedHook); ok {
			guard.Run(b.log, "tool rendered", func() error {
				h.Rendered()
				return nil
			})
		}
	case tool.HookUpdated:
		if h, ok := b.tool.(tool.UpdatedHook); ok {
			guard.Run(b.log, "tool updated", func() error {
				h.Updated()
				return nil
			})
		}
	case tool.HookMoved:
		if h, ok := b.tool.(tool.MovedHook); ok {
			ev, _ := params.(tool.MoveEvent)
			guard.Run(b.log, "tool moved", func() error {
				h.Moved(ev)
				return nil
			})
		}
	case tool.HookRemoved:
		if h, ok := b.tool.(tool.RemovedHook); ok {
			guard.Run(b.log, "tool removed", func() error {
				h.Removed()
				return nil
			})
		}
	default:
		b.log.Warn("unknown hook %q", hook)
	}
}

// ToggleReadOnly propagates the document-wide read-only state to the tool
// and every tune that reacts to it.
func (b *Block) ToggleReadOnly(enabled bool) {
	b.readOnly = enabled
	if t, ok := b.tool.(readOnlyToggler); ok {
		t.ToggleReadOnly(enabled)
	}
	for _, nt := range b.allTunes() {
		if t, ok := nt.tune.(readOnlyToggler); ok {
			t.ToggleReadOnly(enabled)
		}
	}
}

// ReadOnly reports the block's view of the document-wide read-only state.
func (b *Block) ReadOnly() bool { return b.readOnly }

// Focused reports the focus flag.
func (b *Block) Focused() bool { return b.focused }

// SetFocused toggles the focus flag and its visual class.
func (b *Block) SetFocused(on bool) {
	b.focused = on
	b.holder.ToggleClass(ClassFocused, on)
}

// Selected reports the selection flag.
func (b *Block) Selected() bool { return b.selected }

// SetSelected toggles the selection flag and its visual class.
func (b *Block) SetSelected(on bool) {
	b.selected = on
	b.holder.ToggleClass(ClassSelected, on)
}

// Stretched reports the stretch flag.
func (b *Block) Stretched() bool { return b.stretched }

// SetStretched toggles the stretch flag and its visual class.
func (b *Block) SetStretched(on bool) {
	b.stretched = on
	b.holder.ToggleClass(ClassStretched, on)
}

// DropTarget reports the drop-target flag.
func (b *Block) DropTarget() bool { return b.dropTarget }

// SetDropTarget toggles the drop-target flag and its visual class.
func (b *Block) SetDropTarget(on bool) {
	b.dropTarget = on
	b.holder.ToggleClass(ClassDropTarget, on)
}

// WillSelect starts mutation observation and input event tracking.
func (b *Block) WillSelect() {
	b.watcher.start()
}

// WillUnselect stops mutation observation and input event tracking,
// cancelling any pending debounced work.
func (b *Block) WillUnselect() {
	b.watcher.stop()
}

// Destroy tears the unit down: observation stops, tunes and then the tool
// run their teardown hooks (the tool's before the unit's own teardown
// completes), and the composed element is detached.
func (b *Block) Destroy() {
	b.mu.Lock()
	if b.destroyed {
		b.mu.Unlock()
		return
	}
	b.destroyed = true
	b.mu.Unlock()

	b.watcher.stop()

	for _, nt := range b.allTunes() {
		if d, ok := nt.tune.(tool.Destroyer); ok {
			nt := nt
			guard.Run(b.log, "tune "+nt.name+" destroy", func() error {
				return d.Destroy()
			})
		}
	}
	if d, ok := b.tool.(tool.Destroyer); ok {
		guard.Run(b.log, "tool destroy", func() error {
			return d.Destroy()
		})
	}

	b.holder.Remove()

	b.mu.Lock()
	b.inputsCache = nil
	b.mu.Unlock()
}

// TuneViews renders the settings UI of every tune that contributes one,
// user tunes first. Failing renderers are isolated and skipped.
func (b *Block) TuneViews() []*dom.Element {
	var out []*dom.Element
	for _, nt := range b.allTunes() {
		r, implements := nt.tune.(tool.TuneRenderer)
		if !implements {
			continue
		}
		nt := nt
		view, ok := guard.Value(b.log, "tune "+nt.name+" render", func() (*dom.Element, error) {
			return r.Render(), nil
		})
		if ok && view != nil {
			out = append(out, view)
		}
	}
	return out
}

// emitDidMutated publishes the block's change event for external listeners.
func (b *Block) emitDidMutated() {
	if b.api.Bus != nil {
		b.api.Bus.Publish(event.Event{Topic: event.TopicBlockChanged, BlockID: b.id})
	}
}

// generateID returns a fresh unique block id.
func generateID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// Fallback to timestamp-based ID if crypto/rand fails
		return hex.EncodeToString([]byte(time.Now().String()))[:16]
	}
	return hex.EncodeToString(buf)
}

// MutationDebounce is the quiet period applied to observed mutation bursts
// before they are processed.
const MutationDebounce = 450 * time.Millisecond
