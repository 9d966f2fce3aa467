// Package readonly coordinates the document-wide read-only state: it gates
// enabling on every loaded tool declaring support, fans the toggle out to
// registered parts, and drives one save/clear/render cycle so tools can
// re-render for the new state.
package readonly

import (
	"sync"

	"github.com/dshills/stanza/internal/block"
	"github.com/dshills/stanza/internal/event"
	"github.com/dshills/stanza/internal/guard"
	"github.com/dshills/stanza/internal/log"
	"github.com/dshills/stanza/internal/tool"
)

// CapabilitySource answers which tools are loaded and what they declare.
// Implemented by the tool registry.
type CapabilitySource interface {
	Names() []string
	Capability(name string) (tool.Capability, bool)
}

// Toggleable receives the read-only state after it changes.
type Toggleable interface {
	ToggleReadOnly(enabled bool)
}

// Pipeline is the document surface the coordinator drives through a toggle:
// snapshot the blocks, clear them, and render the snapshot back so every
// tool rebuilds its content for the new state.
type Pipeline interface {
	Save() ([]*block.Saved, error)
	Clear()
	Render(saved []*block.Saved) error
}

// Config carries the coordinator's construction inputs.
type Config struct {
	// Source lists the loaded tools. Required.
	Source CapabilitySource
	// Initial is the starting state. Enabling initially fails when any
	// loaded tool lacks read-only support.
	Initial bool
	// Pipeline is driven once per state change. Optional.
	Pipeline Pipeline
	// Bus receives the toggle broadcast. Optional.
	Bus *event.Bus
	// Logger defaults to the null logger.
	Logger *log.Logger
}

// Coordinator owns the document-wide read-only state.
//
// The set of unsupported tools is computed once at construction and never
// changes; tools are loaded before the coordinator exists.
type Coordinator struct {
	mu          sync.Mutex
	enabled     bool
	unsupported []string
	parts       []Toggleable

	pipeline Pipeline
	bus      *event.Bus
	log      *log.Logger
}

// New creates a coordinator. Starting in read-only mode with unsupported
// tools loaded is a construction failure, not a deferred one: the caller
// asked for a state the document cannot be in.
func New(cfg Config) (*Coordinator, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Null
	}

	var unsupported []string
	if cfg.Source != nil {
		for _, name := range cfg.Source.Names() {
			c, ok := cfg.Source.Capability(name)
			if !ok || !c.SupportsReadOnly {
				unsupported = append(unsupported, name)
			}
		}
	}

	if cfg.Initial && len(unsupported) > 0 {
		return nil, &UnsupportedError{Tools: unsupported}
	}

	return &Coordinator{
		enabled:     cfg.Initial,
		unsupported: unsupported,
		pipeline:    cfg.Pipeline,
		bus:         cfg.Bus,
		log:         logger.WithComponent("readonly"),
	}, nil
}

// Register adds a part that reacts to state changes. Parts registered after
// a toggle see only subsequent changes.
func (c *Coordinator) Register(t Toggleable) {
	if t == nil {
		return
	}
	c.mu.Lock()
	c.parts = append(c.parts, t)
	c.mu.Unlock()
}

// Enabled reports the current state.
func (c *Coordinator) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Unsupported returns the names of loaded tools without read-only support.
func (c *Coordinator) Unsupported() []string {
	out := make([]string, len(c.unsupported))
	copy(out, c.unsupported)
	return out
}

// Set moves the document to the given state.
//
// Setting the state it is already in is a complete no-op: no broadcast, no
// notifications, no re-render. Enabling while unsupported tools are loaded
// fails with *UnsupportedError and changes nothing.
//
// A successful change notifies each registered part, broadcasts the toggle
// exactly once, and drives one save/clear/render cycle.
func (c *Coordinator) Set(enabled bool) error {
	c.mu.Lock()
	if c.enabled == enabled {
		c.mu.Unlock()
		return nil
	}
	if enabled && len(c.unsupported) > 0 {
		c.mu.Unlock()
		return &UnsupportedError{Tools: c.Unsupported()}
	}
	c.enabled = enabled
	parts := make([]Toggleable, len(c.parts))
	copy(parts, c.parts)
	c.mu.Unlock()

	c.log.Info("read-only %s", onOff(enabled))

	for _, p := range parts {
		p := p
		guard.Run(c.log, "read-only notification", func() error {
			p.ToggleReadOnly(enabled)
			return nil
		})
	}

	if c.bus != nil {
		c.bus.Publish(event.Event{Topic: event.TopicReadOnlyToggled, Data: enabled})
	}

	c.rerender()
	return nil
}

// Toggle flips the state and returns the new value.
func (c *Coordinator) Toggle() (bool, error) {
	c.mu.Lock()
	target := !c.enabled
	c.mu.Unlock()

	if err := c.Set(target); err != nil {
		return c.Enabled(), err
	}
	return target, nil
}

// rerender drives one save/clear/render cycle so every block rebuilds its
// content for the new state. Pipeline failures are logged, never propagated:
// the state change itself already happened.
func (c *Coordinator) rerender() {
	if c.pipeline == nil {
		return
	}
	saved, ok := guard.Value(c.log, "document save", func() ([]*block.Saved, error) {
		return c.pipeline.Save()
	})
	if !ok {
		return
	}
	c.pipeline.Clear()
	guard.Run(c.log, "document render", func() error {
		return c.pipeline.Render(saved)
	})
}

func onOff(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
