package main

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/stanza/internal/block"
	"github.com/dshills/stanza/internal/document"
	"github.com/dshills/stanza/internal/dom"
	"github.com/dshills/stanza/internal/log"
	"github.com/dshills/stanza/internal/readonly"
	"github.com/dshills/stanza/internal/store"
	"github.com/dshills/stanza/internal/tool"
)

// viewer is a minimal terminal front end over the document: it draws the
// block list, moves the caret, toggles read-only mode and persists through
// the store.
type viewer struct {
	screen      tcell.Screen
	doc         *document.Document
	coordinator *readonly.Coordinator
	store       *store.Store
	docID       string
	log         *log.Logger

	status   string
	quitting atomic.Bool
}

func newViewer(doc *document.Document, coordinator *readonly.Coordinator, st *store.Store, docID string, logger *log.Logger) (*viewer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.SetStyle(tcell.StyleDefault)

	_, h := screen.Size()
	doc.SetViewportHeight(h - 1)

	return &viewer{
		screen:      screen,
		doc:         doc,
		coordinator: coordinator,
		store:       st,
		docID:       docID,
		log:         logger.WithComponent("viewer"),
	}, nil
}

// Close restores the terminal.
func (v *viewer) Close() {
	v.screen.Fini()
}

// Quit asks the event loop to exit.
func (v *viewer) Quit() {
	v.quitting.Store(true)
	_ = v.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// Run drives the event loop until quit.
func (v *viewer) Run() error {
	for {
		v.draw()
		ev := v.screen.PollEvent()
		if v.quitting.Load() {
			return nil
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			_, h := v.screen.Size()
			v.doc.SetViewportHeight(h - 1)
			v.screen.Sync()
		case *tcell.EventKey:
			if done := v.handleKey(ev); done {
				return nil
			}
		}
	}
}

func (v *viewer) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		return true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'j':
			v.moveCaret(1)
		case 'k':
			v.moveCaret(-1)
		case 'a':
			v.addBlock()
		case 'd':
			v.deleteBlock()
		case 'r':
			v.toggleReadOnly()
		case 's':
			v.save()
		}
	}
	return false
}

func (v *viewer) moveCaret(delta int) {
	blocks := v.doc.Blocks()
	if len(blocks) == 0 {
		return
	}
	idx := 0
	if current := v.doc.Current(); current != nil {
		idx = v.doc.Index(current) + delta
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(blocks) {
		idx = len(blocks) - 1
	}
	v.setCaret(blocks[idx])
}

func (v *viewer) setCaret(b *block.Block) {
	if current := v.doc.Current(); current != nil && current != b {
		current.SetSelected(false)
		current.WillUnselect()
	}
	v.doc.API().Caret.SetToBlock(b)
	b.WillSelect()
}

func (v *viewer) addBlock() {
	b, err := v.doc.Insert(tool.ParagraphName, false)
	if err != nil {
		v.status = err.Error()
		return
	}
	v.setCaret(b)
	v.status = "added " + b.ID()
}

func (v *viewer) deleteBlock() {
	current := v.doc.Current()
	if current == nil {
		return
	}
	idx := v.doc.Index(current)
	if err := v.doc.RemoveAt(idx); err != nil {
		v.status = err.Error()
		return
	}
	v.status = "removed " + current.ID()
}

func (v *viewer) toggleReadOnly() {
	enabled, err := v.coordinator.Toggle()
	if err != nil {
		v.status = err.Error()
		return
	}
	if enabled {
		v.status = "read-only on"
	} else {
		v.status = "read-only off"
	}
}

func (v *viewer) save() {
	saved, err := v.doc.Save()
	if err != nil {
		v.status = err.Error()
		return
	}
	payload, err := document.Marshal(saved)
	if err != nil {
		v.status = err.Error()
		return
	}
	if err := v.store.Save(context.Background(), v.docID, payload); err != nil {
		v.status = err.Error()
		return
	}
	v.doc.ClearDirty()
	v.status = fmt.Sprintf("saved %d blocks to %s", len(saved), v.docID)
}

func (v *viewer) draw() {
	v.screen.Clear()
	w, h := v.screen.Size()

	current := v.doc.Current()
	y := 0
	for _, b := range v.doc.Blocks() {
		if y >= h-1 {
			break
		}
		marker := "  "
		style := tcell.StyleDefault
		if b == current {
			marker = "> "
			style = style.Bold(true)
		}
		text := strings.ReplaceAll(b.Content().TextContent(), "\n", " ")
		line := fmt.Sprintf("%s[%s] %s", marker, b.ToolName(), text)
		v.drawText(0, y, w, line, style)
		// Keep element geometry in sync so overlays position correctly.
		b.Holder().SetRect(dom.Rect{Y: y, W: w, H: 1})
		y++
	}

	v.drawStatus(w, h)
	v.screen.Show()
}

func (v *viewer) drawStatus(w, h int) {
	mode := "edit"
	if v.coordinator.Enabled() {
		mode = "read-only"
	}
	dirty := ""
	if v.doc.Dirty() {
		dirty = " *"
	}
	line := fmt.Sprintf(" %s | %d blocks | %s%s | %s", v.docID, v.doc.Count(), mode, dirty, v.status)
	v.drawText(0, h-1, w, line, tcell.StyleDefault.Reverse(true))
}

func (v *viewer) drawText(x, y, maxW int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col >= maxW {
			break
		}
		v.screen.SetContent(col, y, r, nil, style)
		col++
	}
	// Pad status-style lines to the full width.
	for col < maxW && style != tcell.StyleDefault {
		v.screen.SetContent(col, y, ' ', nil, style)
		col++
	}
}
