// Package document holds the block list and the orchestration around it:
// insertion, removal and movement, caret placement, the settings panel,
// dirty tracking, and the save pipeline the read-only coordinator drives.
package document

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dshills/stanza/internal/block"
	"github.com/dshills/stanza/internal/dom"
	"github.com/dshills/stanza/internal/event"
	"github.com/dshills/stanza/internal/log"
	"github.com/dshills/stanza/internal/tool"
)

// Wrapper class names.
const (
	ClassEditor   = "sz-editor"
	ClassRedactor = "sz-editor__redactor"
	ClassReadOnly = "sz-editor--readonly"
)

// Config carries the document's construction inputs.
type Config struct {
	// Registry holds the loaded tools. Required.
	Registry *tool.Registry
	// DefaultTool is inserted when no tool is named. Defaults to the
	// paragraph tool.
	DefaultTool string
	// Bus is the editor event bus. Created when nil.
	Bus *event.Bus
	// Logger defaults to the null logger.
	Logger *log.Logger
	// ReadOnly is the starting editing state.
	ReadOnly bool
	// ViewportHeight is the visible document height, in cells.
	ViewportHeight int
}

// Document is the ordered block list and its shared editor facade.
type Document struct {
	mu       sync.Mutex
	blocks   []*block.Block
	current  int
	readOnly bool
	dirty    bool

	registry    *tool.Registry
	defaultTool string
	bus         *event.Bus
	log         *log.Logger

	wrapper  *dom.Element
	redactor *dom.Element
	viewport int

	api      *block.API
	settings *settingsPanel
}

// New creates an empty document.
func New(cfg Config) (*Document, error) {
	if cfg.Registry == nil {
		return nil, ErrNilRegistry
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Null
	}
	bus := cfg.Bus
	if bus == nil {
		bus = event.NewBus()
	}
	defaultTool := cfg.DefaultTool
	if defaultTool == "" {
		defaultTool = tool.ParagraphName
	}

	d := &Document{
		current:     -1,
		readOnly:    cfg.ReadOnly,
		registry:    cfg.Registry,
		defaultTool: defaultTool,
		bus:         bus,
		log:         logger.WithComponent("document"),
		viewport:    cfg.ViewportHeight,
	}

	d.wrapper = dom.NewElement("div")
	d.wrapper.AddClass(ClassEditor)
	d.wrapper.ToggleClass(ClassReadOnly, cfg.ReadOnly)
	d.redactor = dom.NewElement("div")
	d.redactor.AddClass(ClassRedactor)
	d.wrapper.AppendChild(d.redactor)

	d.settings = newSettingsPanel(d)
	d.api = &block.API{
		Blocks:   d,
		Caret:    (*caret)(d),
		Settings: d.settings,
		UI:       (*layout)(d),
		Registry: cfg.Registry,
		Bus:      bus,
		Logger:   logger,
	}

	// Any settled block mutation makes the document dirty.
	bus.Subscribe(event.TopicBlockChanged, func(event.Event) {
		d.mu.Lock()
		d.dirty = true
		d.mu.Unlock()
	})

	return d, nil
}

// API returns the shared editor facade handed to blocks.
func (d *Document) API() *block.API { return d.api }

// Bus returns the editor event bus.
func (d *Document) Bus() *event.Bus { return d.bus }

// Wrapper returns the document's root element.
func (d *Document) Wrapper() *dom.Element { return d.wrapper }

// Redactor returns the element holding the block list.
func (d *Document) Redactor() *dom.Element { return d.redactor }

// Count returns the number of blocks.
func (d *Document) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.blocks)
}

// Blocks returns the block list in document order.
func (d *Document) Blocks() []*block.Block {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*block.Block, len(d.blocks))
	copy(out, d.blocks)
	return out
}

// BlockAt returns the block at index.
func (d *Document) BlockAt(index int) (*block.Block, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index < 0 || index >= len(d.blocks) {
		return nil, fmt.Errorf("index %d: %w", index, ErrIndexOutOfRange)
	}
	return d.blocks[index], nil
}

// BlockByID returns the block carrying the id.
func (d *Document) BlockByID(id string) (*block.Block, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, b := range d.blocks {
		if b.ID() == id {
			return b, nil
		}
	}
	return nil, fmt.Errorf("block %q: %w", id, ErrBlockNotFound)
}

// Index returns the block's position, or -1.
func (d *Document) Index(b *block.Block) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.indexLocked(b)
}

func (d *Document) indexLocked(b *block.Block) int {
	for i, other := range d.blocks {
		if other == b {
			return i
		}
	}
	return -1
}

// Current implements block.Manager.
func (d *Document) Current() *block.Block {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current < 0 || d.current >= len(d.blocks) {
		return nil
	}
	return d.blocks[d.current]
}

// Next implements block.Manager.
func (d *Document) Next() *block.Block {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current < 0 || d.current+1 >= len(d.blocks) {
		return nil
	}
	return d.blocks[d.current+1]
}

// Last implements block.Manager.
func (d *Document) Last() *block.Block {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.blocks) == 0 {
		return nil
	}
	return d.blocks[len(d.blocks)-1]
}

// Insert implements block.Manager: creates a block of the named tool after
// the current one, replacing the current block when replace is true.
func (d *Document) Insert(toolName string, replace bool) (*block.Block, error) {
	d.mu.Lock()
	index := d.current + 1
	if replace && d.current >= 0 {
		index = d.current
	}
	if index > len(d.blocks) || index < 0 {
		index = len(d.blocks)
	}
	d.mu.Unlock()

	return d.InsertAt(index, toolName, nil, nil, replace)
}

// InsertAt creates a block of the named tool at index. When replace is true
// the block currently at index is destroyed first.
func (d *Document) InsertAt(index int, toolName string, data tool.Data, tunes map[string]json.RawMessage, replace bool) (*block.Block, error) {
	if d.ReadOnly() {
		return nil, ErrReadOnly
	}
	if toolName == "" {
		toolName = d.defaultTool
	}
	def, ok := d.registry.Get(toolName)
	if !ok {
		return nil, fmt.Errorf("tool %q: %w", toolName, ErrUnknownTool)
	}

	b, err := block.New(block.Config{
		Data:       data,
		Definition: def,
		API:        d.api,
		ReadOnly:   d.ReadOnly(),
		TunesData:  tunes,
		Removable:  true,
		Editable:   true,
	})
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	if index < 0 || index > len(d.blocks) {
		index = len(d.blocks)
	}
	var replaced *block.Block
	if replace && index < len(d.blocks) {
		replaced = d.blocks[index]
		d.blocks[index] = b
	} else {
		d.blocks = append(d.blocks[:index], append([]*block.Block{b}, d.blocks[index:]...)...)
	}
	d.current = index
	d.dirty = true
	d.mu.Unlock()

	if replaced != nil {
		replaced.Call(tool.HookRemoved, nil)
		d.redactor.InsertBefore(b.Holder(), replaced.Holder())
		replaced.Destroy()
	} else {
		d.attachAt(b, index)
	}
	b.Call(tool.HookRendered, nil)

	d.log.Debug("inserted %s block %s at %d", toolName, b.ID(), index)
	return b, nil
}

// attachAt places the block's element at its list position in the redactor.
func (d *Document) attachAt(b *block.Block, index int) {
	d.mu.Lock()
	var ref *block.Block
	if index+1 < len(d.blocks) {
		ref = d.blocks[index+1]
	}
	d.mu.Unlock()

	if ref != nil {
		d.redactor.InsertBefore(b.Holder(), ref.Holder())
	} else {
		d.redactor.AppendChild(b.Holder())
	}
}

// RemoveAt destroys the block at index and drops it from the list.
func (d *Document) RemoveAt(index int) error {
	if d.ReadOnly() {
		return ErrReadOnly
	}

	d.mu.Lock()
	if index < 0 || index >= len(d.blocks) {
		d.mu.Unlock()
		return fmt.Errorf("index %d: %w", index, ErrIndexOutOfRange)
	}
	b := d.blocks[index]
	d.blocks = append(d.blocks[:index], d.blocks[index+1:]...)
	if d.current >= len(d.blocks) {
		d.current = len(d.blocks) - 1
	}
	d.dirty = true
	d.mu.Unlock()

	b.Call(tool.HookRemoved, nil)
	b.Destroy()
	return nil
}

// Move relocates the block at from to position to, notifying the tool.
func (d *Document) Move(from, to int) error {
	if d.ReadOnly() {
		return ErrReadOnly
	}

	d.mu.Lock()
	n := len(d.blocks)
	if from < 0 || from >= n || to < 0 || to >= n {
		d.mu.Unlock()
		return fmt.Errorf("move %d -> %d: %w", from, to, ErrIndexOutOfRange)
	}
	if from == to {
		d.mu.Unlock()
		return nil
	}
	b := d.blocks[from]
	d.blocks = append(d.blocks[:from], d.blocks[from+1:]...)
	d.blocks = append(d.blocks[:to], append([]*block.Block{b}, d.blocks[to:]...)...)
	d.current = to
	d.dirty = true
	d.mu.Unlock()

	b.Holder().Remove()
	d.attachAt(b, to)
	b.Call(tool.HookMoved, tool.MoveEvent{From: from, To: to})
	return nil
}

// Merge folds the block at from into the block at to and removes the
// source. Unsupported targets leave the document unchanged.
func (d *Document) Merge(to, from int) error {
	if d.ReadOnly() {
		return ErrReadOnly
	}

	d.mu.Lock()
	n := len(d.blocks)
	if to < 0 || to >= n || from < 0 || from >= n || to == from {
		d.mu.Unlock()
		return fmt.Errorf("merge %d <- %d: %w", to, from, ErrIndexOutOfRange)
	}
	target, source := d.blocks[to], d.blocks[from]
	d.mu.Unlock()

	saved, err := source.Save()
	if err != nil || saved == nil {
		return fmt.Errorf("merge source %s: extraction failed", source.ID())
	}
	if err := target.MergeWith(saved.Data); err != nil {
		return err
	}
	return d.RemoveAt(from)
}

// Clear implements block.Manager and the save pipeline: destroys every
// block.
func (d *Document) Clear() {
	d.mu.Lock()
	blocks := d.blocks
	d.blocks = nil
	d.current = -1
	d.mu.Unlock()

	for _, b := range blocks {
		b.Destroy()
	}
}

// Save snapshots every block, skipping blocks whose extraction failed and
// blocks whose extracted data fails their tool's validation.
func (d *Document) Save() ([]*block.Saved, error) {
	blocks := d.Blocks()
	out := make([]*block.Saved, 0, len(blocks))
	for _, b := range blocks {
		saved, err := b.Save()
		if err != nil || saved == nil {
			d.log.Warn("block %s: extraction failed, skipping", b.ID())
			continue
		}
		if !b.Validate(saved.Data) {
			d.log.Warn("block %s: data rejected by %s, skipping", b.ID(), saved.Tool)
			continue
		}
		out = append(out, saved)
	}
	return out, nil
}

// Render rebuilds the document from a snapshot. Blocks naming unknown
// tools are skipped with a warning; their data is not preserved across a
// render, so load-time callers should check tool availability first.
func (d *Document) Render(saved []*block.Saved) error {
	for _, s := range saved {
		if _, ok := d.registry.Get(s.Tool); !ok {
			d.log.Warn("block %s: tool %q not loaded, skipping", s.ID, s.Tool)
			continue
		}
		if err := d.renderOne(s); err != nil {
			d.log.Error("block %s: %v", s.ID, err)
		}
	}
	return nil
}

func (d *Document) renderOne(s *block.Saved) error {
	def, _ := d.registry.Get(s.Tool)
	b, err := block.New(block.Config{
		ID:         s.ID,
		Data:       s.Data,
		Definition: def,
		API:        d.api,
		ReadOnly:   d.ReadOnly(),
		TunesData:  s.Tunes,
		Removable:  true,
		Editable:   true,
	})
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.blocks = append(d.blocks, b)
	index := len(d.blocks) - 1
	d.mu.Unlock()

	d.attachAt(b, index)
	b.Call(tool.HookRendered, nil)
	return nil
}

// ToggleReadOnly implements the read-only coordinator's part contract:
// forwards the state to every block and reflects it on the wrapper.
func (d *Document) ToggleReadOnly(enabled bool) {
	d.mu.Lock()
	d.readOnly = enabled
	blocks := make([]*block.Block, len(d.blocks))
	copy(blocks, d.blocks)
	d.mu.Unlock()

	d.wrapper.ToggleClass(ClassReadOnly, enabled)
	for _, b := range blocks {
		b.ToggleReadOnly(enabled)
	}
}

// ReadOnly reports the document's editing state.
func (d *Document) ReadOnly() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readOnly
}

// Dirty reports whether the document changed since the last ClearDirty.
func (d *Document) Dirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty
}

// ClearDirty resets the change marker, typically after a persist.
func (d *Document) ClearDirty() {
	d.mu.Lock()
	d.dirty = false
	d.mu.Unlock()
}

// SetViewportHeight updates the visible document height.
func (d *Document) SetViewportHeight(h int) {
	d.mu.Lock()
	d.viewport = h
	d.mu.Unlock()
}

// caret places the document caret. A block without editable regions gets
// block-level selection instead.
type caret Document

// SetToBlock implements block.Caret.
func (c *caret) SetToBlock(b *block.Block) {
	d := (*Document)(c)
	if b == nil {
		return
	}
	if idx := d.Index(b); idx >= 0 {
		d.mu.Lock()
		d.current = idx
		d.mu.Unlock()
	}
	if in := b.FirstInput(); in != nil {
		b.SetCurrentInput(in)
		in.Focus()
		return
	}
	// No editable region to land in; fall back to selecting the unit.
	b.SetSelected(true)
}

// layout exposes document geometry to blocks.
type layout Document

// Wrapper implements block.UI.
func (l *layout) Wrapper() *dom.Element { return (*Document)(l).wrapper }

// ViewportHeight implements block.UI.
func (l *layout) ViewportHeight() int {
	d := (*Document)(l)
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewport
}
