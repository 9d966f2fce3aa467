package document

import (
	"github.com/dshills/stanza/internal/block"
	"github.com/dshills/stanza/internal/dom"
)

// Settings panel class names.
const (
	ClassSettingsPanel = "sz-settings"
	ClassSettingsOpen  = "sz-settings--open"
)

// settingsPanel is the document-wide block settings surface. One panel
// serves all blocks; it re-targets on toggle and shows the views of the
// target's tunes.
type settingsPanel struct {
	doc    *Document
	el     *dom.Element
	target *block.Block
}

func newSettingsPanel(d *Document) *settingsPanel {
	el := dom.NewElement("div")
	el.MarkMutationFree()
	el.AddClass(ClassSettingsPanel)
	return &settingsPanel{doc: d, el: el}
}

// Toggle implements block.SettingsPanel: opens the panel for the block, or
// closes it when it is already open for that block.
func (p *settingsPanel) Toggle(b *block.Block) {
	if b == nil {
		return
	}
	if p.target == b {
		p.Close()
		return
	}
	p.openFor(b)
}

func (p *settingsPanel) openFor(b *block.Block) {
	p.Close()
	p.target = b

	for _, view := range b.TuneViews() {
		p.el.AppendChild(view)
	}

	rect := b.Holder().Rect()
	p.el.SetRect(dom.Rect{X: rect.X, Y: rect.Bottom(), W: rect.W, H: len(p.el.Children())})
	p.el.AddClass(ClassSettingsOpen)
	p.doc.wrapper.AppendChild(p.el)
}

// Close hides the panel and drops its content.
func (p *settingsPanel) Close() {
	if p.target == nil {
		return
	}
	p.target = nil
	p.el.RemoveClass(ClassSettingsOpen)
	for _, child := range append([]*dom.Element(nil), p.el.Children()...) {
		child.Remove()
	}
	p.el.Remove()
}

// Open reports whether the panel is showing, and for which block.
func (p *settingsPanel) Open() (*block.Block, bool) {
	return p.target, p.target != nil
}
