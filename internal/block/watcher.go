package block

import (
	"sync"

	"github.com/dshills/stanza/internal/debounce"
	"github.com/dshills/stanza/internal/dom"
	"github.com/dshills/stanza/internal/tool"
)

// watcher tracks content changes inside one block: a mutation observer over
// the composed element plus focus and input listeners on the editable
// regions. Observed bursts are debounced; a settled batch made up entirely
// of mutation-free records is discarded without side effects.
type watcher struct {
	block    *Block
	observer *dom.Observer
	debounce *debounce.Debouncer

	mu      sync.Mutex
	pending []dom.Record
	// forced marks a settlement that must be processed regardless of
	// record content. Native input edits set it: they produce no
	// mutation records, only input events.
	forced   bool
	watching bool

	listeners []dom.ListenerHandle
}

func newWatcher(b *Block) *watcher {
	w := &watcher{block: b}
	w.observer = dom.NewObserver(w.onRecords)
	w.debounce = debounce.New(MutationDebounce, w.onSettled)
	return w
}

// start begins observation. Idempotent.
func (w *watcher) start() {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return
	}
	w.watching = true
	w.mu.Unlock()

	w.observer.Observe(w.block.holder, dom.Options{
		Subtree:       true,
		ChildList:     true,
		Attributes:    true,
		CharacterData: true,
	})
	w.wireInputs()
}

// stop ends observation and discards any pending settlement. Idempotent.
func (w *watcher) stop() {
	w.mu.Lock()
	if !w.watching {
		w.mu.Unlock()
		return
	}
	w.watching = false
	w.pending = nil
	w.forced = false
	w.mu.Unlock()

	w.observer.Disconnect()
	w.debounce.Cancel()
	w.unwireInputs()
}

// wireInputs attaches focus tracking to every editable region and input
// tracking to native inputs, whose edits bypass mutation observation.
func (w *watcher) wireInputs() {
	w.unwireInputs()
	for _, input := range w.block.Inputs() {
		input := input
		w.listeners = append(w.listeners,
			input.AddEventListener(dom.EventFocus, func(ev dom.Event) {
				// Regions may have appeared since the last settlement;
				// re-resolve before tracking the caret.
				w.block.dropInputsCache()
				w.block.SetCurrentInput(ev.Target)
			}))
		if input.IsNativeInput() {
			w.listeners = append(w.listeners,
				input.AddEventListener(dom.EventInput, func(dom.Event) {
					w.force()
				}))
		}
	}
}

func (w *watcher) unwireInputs() {
	for _, h := range w.listeners {
		h.Remove()
	}
	w.listeners = nil
}

// onRecords receives a synchronously delivered observer batch and schedules
// a debounced settlement.
func (w *watcher) onRecords(records []dom.Record) {
	w.mu.Lock()
	if !w.watching {
		w.mu.Unlock()
		return
	}
	w.pending = append(w.pending, records...)
	w.mu.Unlock()
	w.debounce.Call()
}

// force schedules a settlement that will be processed even without
// meaningful records.
func (w *watcher) force() {
	w.mu.Lock()
	if !w.watching {
		w.mu.Unlock()
		return
	}
	w.forced = true
	w.mu.Unlock()
	w.debounce.Call()
}

// onSettled runs once a mutation burst has been quiet for the debounce
// period. Batches consisting only of mutation-free records are dropped;
// otherwise the block's derived state is refreshed and the change announced.
func (w *watcher) onSettled() {
	w.mu.Lock()
	records := w.pending
	forced := w.forced
	w.pending = nil
	w.forced = false
	watching := w.watching
	w.mu.Unlock()

	if !watching {
		return
	}
	if !forced && allMutationFree(records) {
		return
	}

	// Structure may have changed: re-resolve regions and their listeners.
	w.block.dropInputsCache()
	w.wireInputs()

	w.block.Call(tool.HookUpdated, nil)
	w.block.emitDidMutated()
}

// allMutationFree reports whether every record in the batch concerns only
// mutation-free nodes. An empty batch counts as mutation-free.
func allMutationFree(records []dom.Record) bool {
	for _, r := range records {
		if !r.IsMutationFree() {
			return false
		}
	}
	return true
}
