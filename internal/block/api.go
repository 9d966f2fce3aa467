package block

import (
	"github.com/dshills/stanza/internal/dom"
	"github.com/dshills/stanza/internal/event"
	"github.com/dshills/stanza/internal/log"
	"github.com/dshills/stanza/internal/tool"
)

// Manager is the document-wide block list the block reaches through its
// facade. Implemented by the document package; mocked in tests.
type Manager interface {
	// Insert creates a block of the named tool after the current one,
	// replacing the current block when replace is true.
	Insert(toolName string, replace bool) (*Block, error)
	// Current returns the block the caret is in.
	Current() *Block
	// Next returns the block after the current one, or nil.
	Next() *Block
	// Last returns the document's last block, or nil.
	Last() *Block
	// Clear removes every block from the document.
	Clear()
}

// Caret moves the document caret.
type Caret interface {
	SetToBlock(b *Block)
}

// SettingsPanel is the document-wide block settings panel.
type SettingsPanel interface {
	Toggle(b *Block)
}

// UI exposes document-wide layout state to the block.
type UI interface {
	// Wrapper returns the document-wide wrapper element.
	Wrapper() *dom.Element
	// ViewportHeight returns the visible document height, in cells.
	ViewportHeight() int
}

// API is the editor facade shared by all blocks. It is read-mostly and not
// owned by any single block. It satisfies tool.API.
type API struct {
	Blocks   Manager
	Caret    Caret
	Settings SettingsPanel
	UI       UI
	Registry *tool.Registry
	Bus      *event.Bus
	Logger   *log.Logger
}

// Events implements tool.API.
func (a *API) Events() *event.Bus { return a.Bus }

// Log implements tool.API.
func (a *API) Log() *log.Logger {
	if a.Logger == nil {
		return log.Null
	}
	return a.Logger
}

var _ tool.API = (*API)(nil)
