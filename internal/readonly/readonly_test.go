package readonly

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/stanza/internal/block"
	"github.com/dshills/stanza/internal/event"
	"github.com/dshills/stanza/internal/tool"
)

type fakeSource struct {
	tools map[string]bool // name -> supports read-only
	order []string
}

func newFakeSource(pairs ...any) *fakeSource {
	s := &fakeSource{tools: make(map[string]bool)}
	for i := 0; i < len(pairs); i += 2 {
		name := pairs[i].(string)
		s.tools[name] = pairs[i+1].(bool)
		s.order = append(s.order, name)
	}
	return s
}

func (s *fakeSource) Names() []string { return s.order }
func (s *fakeSource) Capability(name string) (tool.Capability, bool) {
	supports, ok := s.tools[name]
	return tool.Capability{SupportsReadOnly: supports}, ok
}

type fakePipeline struct {
	saves, clears, renders int
	snapshot               []*block.Saved
	rendered               []*block.Saved
	saveErr                error
}

func (p *fakePipeline) Save() ([]*block.Saved, error) {
	p.saves++
	return p.snapshot, p.saveErr
}
func (p *fakePipeline) Clear() { p.clears++ }
func (p *fakePipeline) Render(saved []*block.Saved) error {
	p.renders++
	p.rendered = saved
	return nil
}

type fakePart struct {
	states []bool
}

func (p *fakePart) ToggleReadOnly(enabled bool) { p.states = append(p.states, enabled) }

func TestNewComputesUnsupportedSet(t *testing.T) {
	c, err := New(Config{
		Source: newFakeSource("paragraph", true, "widget", false, "legacy", false),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := c.Unsupported()
	if len(got) != 2 || got[0] != "widget" || got[1] != "legacy" {
		t.Errorf("Unsupported() = %v", got)
	}
}

func TestNewFailsWhenStartingReadOnlyUnsupported(t *testing.T) {
	_, err := New(Config{
		Source:  newFakeSource("paragraph", true, "widget", false),
		Initial: true,
	})

	var unsupported *UnsupportedError
	if !errors.As(err, &unsupported) {
		t.Fatalf("err = %v, want *UnsupportedError", err)
	}
	if len(unsupported.Tools) != 1 || unsupported.Tools[0] != "widget" {
		t.Errorf("Tools = %v", unsupported.Tools)
	}
	if !strings.Contains(err.Error(), "widget") {
		t.Errorf("error message should name the tool: %q", err.Error())
	}
}

func TestSetGatesOnSupport(t *testing.T) {
	c, err := New(Config{
		Source: newFakeSource("paragraph", true, "widget", false),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = c.Set(true)
	var unsupported *UnsupportedError
	if !errors.As(err, &unsupported) {
		t.Fatalf("Set(true) = %v, want *UnsupportedError", err)
	}
	if c.Enabled() {
		t.Error("failed enable must leave the state unchanged")
	}

	// Disabling the already-disabled state is fine even with unsupported
	// tools loaded.
	if err := c.Set(false); err != nil {
		t.Errorf("Set(false) = %v", err)
	}
}

func TestSetBroadcastsExactlyOnce(t *testing.T) {
	bus := event.NewBus()
	var events []bool
	bus.Subscribe(event.TopicReadOnlyToggled, func(ev event.Event) {
		events = append(events, ev.Data.(bool))
	})

	c, err := New(Config{
		Source: newFakeSource("paragraph", true),
		Bus:    bus,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := c.Set(true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if len(events) != 1 || events[0] != true {
		t.Fatalf("broadcasts = %v, want exactly [true]", events)
	}

	if err := c.Set(false); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if len(events) != 2 || events[1] != false {
		t.Errorf("broadcasts = %v, want [true false]", events)
	}
}

func TestIdempotentSetIsCompleteNoOp(t *testing.T) {
	bus := event.NewBus()
	broadcasts := 0
	bus.Subscribe(event.TopicReadOnlyToggled, func(event.Event) { broadcasts++ })

	pipe := &fakePipeline{}
	part := &fakePart{}

	c, err := New(Config{
		Source:   newFakeSource("paragraph", true),
		Bus:      bus,
		Pipeline: pipe,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.Register(part)

	if err := c.Set(false); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if broadcasts != 0 || pipe.saves != 0 || len(part.states) != 0 {
		t.Errorf("no-op set had side effects: broadcasts=%d saves=%d notifications=%d",
			broadcasts, pipe.saves, len(part.states))
	}

	if err := c.Set(true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(true); err != nil {
		t.Fatalf("repeat Set: %v", err)
	}
	if broadcasts != 1 || pipe.saves != 1 || len(part.states) != 1 {
		t.Errorf("repeat set must not run the cycle again: broadcasts=%d saves=%d notifications=%d",
			broadcasts, pipe.saves, len(part.states))
	}
}

func TestSetDrivesOneRerenderCycle(t *testing.T) {
	snapshot := []*block.Saved{{ID: "b1", Tool: "paragraph"}}
	pipe := &fakePipeline{snapshot: snapshot}

	c, err := New(Config{
		Source:   newFakeSource("paragraph", true),
		Pipeline: pipe,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := c.Set(true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if pipe.saves != 1 || pipe.clears != 1 || pipe.renders != 1 {
		t.Errorf("cycle counts: saves=%d clears=%d renders=%d, want 1 each",
			pipe.saves, pipe.clears, pipe.renders)
	}
	if len(pipe.rendered) != 1 || pipe.rendered[0].ID != "b1" {
		t.Errorf("rendered snapshot = %v", pipe.rendered)
	}
}

func TestSaveFailureSkipsClearAndRender(t *testing.T) {
	pipe := &fakePipeline{saveErr: errors.New("snapshot broken")}

	c, err := New(Config{
		Source:   newFakeSource("paragraph", true),
		Pipeline: pipe,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := c.Set(true); err != nil {
		t.Fatalf("a failed re-render cycle must not fail the toggle: %v", err)
	}
	if !c.Enabled() {
		t.Error("state change precedes the cycle and must stick")
	}
	if pipe.clears != 0 || pipe.renders != 0 {
		t.Error("clear/render must not run when the snapshot failed")
	}
}

func TestRegisteredPartsAreNotified(t *testing.T) {
	a, b := &fakePart{}, &fakePart{}
	c, err := New(Config{Source: newFakeSource("paragraph", true)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.Register(a)
	c.Register(b)
	c.Register(nil) // ignored

	if err := c.Set(true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(false); err != nil {
		t.Fatalf("Set: %v", err)
	}

	want := []bool{true, false}
	for _, part := range []*fakePart{a, b} {
		if len(part.states) != 2 || part.states[0] != want[0] || part.states[1] != want[1] {
			t.Errorf("part saw %v, want %v", part.states, want)
		}
	}
}

func TestToggleFlips(t *testing.T) {
	c, err := New(Config{Source: newFakeSource("paragraph", true)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	on, err := c.Toggle()
	if err != nil || !on || !c.Enabled() {
		t.Fatalf("Toggle = (%v, %v), Enabled = %v", on, err, c.Enabled())
	}
	off, err := c.Toggle()
	if err != nil || off || c.Enabled() {
		t.Fatalf("Toggle = (%v, %v), Enabled = %v", off, err, c.Enabled())
	}
}

func TestToggleFailsWithUnsupportedTools(t *testing.T) {
	c, err := New(Config{Source: newFakeSource("widget", false)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	state, err := c.Toggle()
	var unsupported *UnsupportedError
	if !errors.As(err, &unsupported) {
		t.Fatalf("Toggle err = %v, want *UnsupportedError", err)
	}
	if state || c.Enabled() {
		t.Error("failed toggle must leave the state disabled")
	}
}

func TestRegistryIsACapabilitySource(t *testing.T) {
	reg := tool.NewRegistry()
	if err := reg.Register(tool.ParagraphDefinition()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	var src CapabilitySource = reg
	c, err := New(Config{Source: src, Initial: true})
	if err != nil {
		t.Fatalf("New with registry source: %v", err)
	}
	if !c.Enabled() {
		t.Error("should start read-only with only supporting tools loaded")
	}
}
