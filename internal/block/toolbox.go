package block

import (
	"github.com/dshills/stanza/internal/dom"
)

// Toolbox class names. The wrapper class mirrors the picker's open state on
// the document-wide wrapper element.
const (
	ClassToolbox            = "sz-toolbox"
	ClassToolboxOpen        = "sz-toolbox--open"
	ClassToolboxEntry       = "sz-toolbox__entry"
	ClassWrapperToolboxOpen = "sz-editor--toolbox-open"
)

// toolbox is the per-block tool picker opened from the add trigger. It
// lists every registered tool that declares a toolbox presence and inserts
// a block of the picked tool next to its owner.
type toolbox struct {
	block *Block
	el    *dom.Element
	open  bool
	names []string
}

func newToolbox(b *Block) *toolbox {
	tb := &toolbox{block: b}
	tb.build()
	return tb
}

// build composes the picker element from the registry. Tools that declare
// a toolbox entry but no icon are skipped with a warning so the
// misconfiguration is visible in logs rather than silently absent.
func (tb *toolbox) build() {
	tb.el = dom.NewElement("div")
	tb.el.MarkMutationFree()
	tb.el.AddClass(ClassToolbox)

	if tb.block.api.Registry == nil {
		return
	}
	for _, def := range tb.block.api.Registry.All() {
		if def.Toolbox == nil {
			// Not declaring a picker entry is a valid choice.
			continue
		}
		if def.Toolbox.Icon == "" {
			tb.block.log.Warn("tool %s declares a toolbox entry without an icon, skipping", def.Name)
			continue
		}
		name := def.Name
		entry := dom.NewElement("button")
		entry.AddClass(ClassToolboxEntry)
		entry.SetAttribute("data-tool", name)
		entry.SetText(def.Toolbox.Icon)
		entry.AddEventListener(dom.EventClick, func(dom.Event) {
			tb.insert(name)
		})
		tb.el.AppendChild(entry)
		tb.names = append(tb.names, name)
	}
}

// Open shows the picker below its block, flipping above when it would
// overflow the viewport. Height is capped to half the viewport.
func (tb *toolbox) Open() {
	if tb.open {
		return
	}
	tb.open = true

	rect := tb.block.holder.Rect()
	h := len(tb.names)
	y := rect.Bottom()

	ui := tb.block.api.UI
	if ui != nil {
		viewportH := ui.ViewportHeight()
		if viewportH > 0 {
			if h > viewportH/2 {
				h = viewportH / 2
			}
			if y+h > viewportH {
				// Flip above the block; clamp to the top edge.
				y = rect.Y - h
				if y < 0 {
					y = 0
				}
			}
		}
	}
	tb.el.SetRect(dom.Rect{X: rect.X, Y: y, W: rect.W, H: h})
	if ui != nil {
		if wrapper := ui.Wrapper(); wrapper != nil {
			wrapper.AppendChild(tb.el)
			wrapper.AddClass(ClassWrapperToolboxOpen)
		}
	}

	tb.el.AddClass(ClassToolboxOpen)
}

// Close hides the picker, reversing both class changes.
func (tb *toolbox) Close() {
	if !tb.open {
		return
	}
	tb.open = false
	tb.el.RemoveClass(ClassToolboxOpen)
	tb.el.Remove()
	if ui := tb.block.api.UI; ui != nil {
		if wrapper := ui.Wrapper(); wrapper != nil {
			wrapper.RemoveClass(ClassWrapperToolboxOpen)
		}
	}
}

// Toggle flips the picker's visibility.
func (tb *toolbox) Toggle() {
	if tb.open {
		tb.Close()
	} else {
		tb.Open()
	}
}

// insert creates a block of the picked tool. An empty current block is
// replaced instead of pushed down. The caret moves into the new block; when
// the picked tool exposes no editable region the caret continues to the next
// unit, appending an empty default one if the new block is last, so typing
// can always resume.
func (tb *toolbox) insert(toolName string) {
	defer tb.Close()

	blocks := tb.block.api.Blocks
	if blocks == nil {
		return
	}
	current := blocks.Current()
	replace := current != nil && current.IsEmpty()

	inserted, err := blocks.Insert(toolName, replace)
	if err != nil {
		tb.block.log.Error("insert %s: %v", toolName, err)
		return
	}
	caret := tb.block.api.Caret
	if caret == nil || inserted == nil {
		return
	}
	caret.SetToBlock(inserted)
	if inserted.FirstInput() != nil {
		return
	}
	if next := blocks.Next(); next != nil {
		caret.SetToBlock(next)
		return
	}
	fallback, err := blocks.Insert("", false)
	if err != nil || fallback == nil {
		return
	}
	caret.SetToBlock(fallback)
}

// OpenToolbox shows the block's tool picker.
func (b *Block) OpenToolbox() { b.toolbox.Open() }

// CloseToolbox hides the block's tool picker.
func (b *Block) CloseToolbox() { b.toolbox.Close() }

// ToggleToolbox flips the block's tool picker.
func (b *Block) ToggleToolbox() { b.toolbox.Toggle() }

// ToolboxOpen reports whether the block's tool picker is showing.
func (b *Block) ToolboxOpen() bool { return b.toolbox.open }
