package block

import (
	"github.com/dshills/stanza/internal/dom"
)

// Inputs returns the block's editable regions in document order. The list
// is computed lazily from the content subtree and cached; mutation
// settlement and structural changes drop the cache. The caller must not
// mutate the returned slice.
func (b *Block) Inputs() []*dom.Element {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inputsLocked()
}

// inputsLocked resolves the cache, clamping the current-input index into
// the new list's bounds so it never dangles after regions disappear.
func (b *Block) inputsLocked() []*dom.Element {
	if b.inputsCache == nil {
		b.inputsCache = dom.FindEditables(b.content)
		if b.inputIndex >= len(b.inputsCache) {
			b.inputIndex = len(b.inputsCache) - 1
		}
		if b.inputIndex < 0 {
			b.inputIndex = 0
		}
	}
	return b.inputsCache
}

// dropInputsCache forces the next Inputs call to re-resolve the regions.
func (b *Block) dropInputsCache() {
	b.mu.Lock()
	b.inputsCache = nil
	b.mu.Unlock()
}

// CurrentInput returns the editable region the caret was last seen in, or
// nil when the block has none.
func (b *Block) CurrentInput() *dom.Element {
	b.mu.Lock()
	defer b.mu.Unlock()
	inputs := b.inputsLocked()
	if len(inputs) == 0 {
		return nil
	}
	if b.inputIndex >= len(inputs) {
		return inputs[len(inputs)-1]
	}
	return inputs[b.inputIndex]
}

// SetCurrentInput records which editable region holds the caret. The given
// element may be the region itself or any of its descendants; it is
// resolved against the tracked list. Unknown elements are ignored.
func (b *Block) SetCurrentInput(el *dom.Element) {
	if el == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, input := range b.inputsLocked() {
		if input == el || input.Contains(el) {
			b.inputIndex = i
			return
		}
	}
}

// FirstInput returns the first editable region, or nil.
func (b *Block) FirstInput() *dom.Element {
	inputs := b.Inputs()
	if len(inputs) == 0 {
		return nil
	}
	return inputs[0]
}

// LastInput returns the last editable region, or nil.
func (b *Block) LastInput() *dom.Element {
	inputs := b.Inputs()
	if len(inputs) == 0 {
		return nil
	}
	return inputs[len(inputs)-1]
}

// NextInput returns the editable region after the current one, or nil when
// the caret is in the last region.
func (b *Block) NextInput() *dom.Element {
	b.mu.Lock()
	defer b.mu.Unlock()
	inputs := b.inputsLocked()
	if b.inputIndex+1 >= len(inputs) {
		return nil
	}
	return inputs[b.inputIndex+1]
}

// PreviousInput returns the editable region before the current one, or nil
// when the caret is in the first region.
func (b *Block) PreviousInput() *dom.Element {
	b.mu.Lock()
	defer b.mu.Unlock()
	inputs := b.inputsLocked()
	if b.inputIndex == 0 || len(inputs) == 0 {
		return nil
	}
	if b.inputIndex >= len(inputs) {
		return inputs[len(inputs)-1]
	}
	return inputs[b.inputIndex-1]
}
