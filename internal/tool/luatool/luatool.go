package luatool

import (
	"fmt"

	"github.com/dshills/stanza/internal/dom"
	"github.com/dshills/stanza/internal/tool"
)

// Load compiles a Lua tool script into a tool.Definition. The script must
// define render(data) and save(content); validate(data) is optional.
// Metadata globals: title, icon, shortcut, supports_readonly.
//
// Every block instantiated from the definition runs the script in its own
// fresh state, so tool instances cannot observe each other.
func Load(name, script string, opts ...StateOption) (*tool.Definition, error) {
	// Probe run: validate the script and read its metadata.
	probe := NewState(opts...)
	defer func() { _ = probe.Close() }()

	if err := probe.DoString(script); err != nil {
		return nil, fmt.Errorf("tool script %q: %w", name, err)
	}
	if !probe.HasFunction("render") {
		return nil, fmt.Errorf("tool script %q: %w", name, ErrMissingRender)
	}
	if !probe.HasFunction("save") {
		return nil, fmt.Errorf("tool script %q: %w", name, ErrMissingSave)
	}

	def := &tool.Definition{
		Name: name,
	}
	if title, ok := probe.Global("title").(string); ok {
		def.Title = title
	}
	if shortcut, ok := probe.Global("shortcut").(string); ok {
		def.Shortcut = shortcut
	}
	if icon, ok := probe.Global("icon").(string); ok && icon != "" {
		def.Toolbox = &tool.Toolbox{Icon: icon, Title: def.Title}
	}
	if ro, ok := probe.Global("supports_readonly").(bool); ok {
		def.SupportsReadOnly = ro
	}

	def.New = func(ctx tool.Context) (tool.Tool, error) {
		state := NewState(opts...)
		if err := state.DoString(script); err != nil {
			_ = state.Close()
			return nil, fmt.Errorf("tool script %q: %w", name, err)
		}
		return &LuaTool{
			name:  name,
			state: state,
			data:  ctx.Data,
		}, nil
	}

	return def, nil
}

// LuaTool is a tool whose behavior lives in a Lua script.
type LuaTool struct {
	name  string
	state *State
	data  tool.Data
}

// Render implements tool.Tool: calls the script's render(data) and realizes
// the returned element table.
func (t *LuaTool) Render() *dom.Element {
	results, err := t.state.Call("render", map[string]any(t.data))
	if err != nil || len(results) == 0 {
		return dom.NewElement("div")
	}
	table, ok := results[0].(map[string]any)
	if !ok {
		return dom.NewElement("div")
	}
	return buildElement(table)
}

// Save implements tool.Tool: calls the script's save(content) with the
// extracted text content.
func (t *LuaTool) Save(root *dom.Element) (tool.Data, error) {
	results, err := t.state.Call("save", map[string]any{
		"text": root.TextContent(),
	})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return tool.Data{}, nil
	}
	data, ok := results[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("tool %q: save must return a table", t.name)
	}
	return data, nil
}

// Validate implements tool.Validator. Scripts without a validate function
// accept everything.
func (t *LuaTool) Validate(data tool.Data) (bool, error) {
	if !t.state.HasFunction("validate") {
		return true, nil
	}
	results, err := t.state.Call("validate", map[string]any(data))
	if err != nil {
		return false, err
	}
	if len(results) == 0 {
		return false, fmt.Errorf("tool %q: validate returned nothing", t.name)
	}
	verdict, ok := results[0].(bool)
	if !ok {
		return false, fmt.Errorf("tool %q: validate must return a boolean", t.name)
	}
	return verdict, nil
}

// Destroy implements tool.Destroyer: releases the Lua state.
func (t *LuaTool) Destroy() error {
	return t.state.Close()
}

// buildElement realizes a Lua element table {tag, text, editable, children}
// as a dom.Element tree.
func buildElement(table map[string]any) *dom.Element {
	tag, _ := table["tag"].(string)
	if tag == "" {
		tag = "div"
	}
	el := dom.NewElement(tag)
	if editable, _ := table["editable"].(bool); editable {
		el.SetContentEditable(true)
	}
	if text, ok := table["text"].(string); ok {
		el.SetText(text)
	}
	if children, ok := table["children"].([]any); ok {
		for _, c := range children {
			if childTable, ok := c.(map[string]any); ok {
				el.AppendChild(buildElement(childTable))
			}
		}
	}
	return el
}
