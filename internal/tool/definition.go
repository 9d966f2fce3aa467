package tool

// ToolFactory creates a tool instance for one block.
type ToolFactory func(ctx Context) (Tool, error)

// TuneFactory creates a tune instance for one block.
type TuneFactory func(ctx TuneContext) (Tune, error)

// Toolbox describes a tool's entry in the block tool picker. A tool
// without a Toolbox cannot be inserted from the picker.
type Toolbox struct {
	// Icon is the glyph shown in the picker. An entry with an empty icon
	// is skipped with a warning.
	Icon string
	// Title is the human-readable picker label. Defaults to the tool
	// name when empty.
	Title string
}

// Sanitize maps a tag name to the attribute names allowed on it when
// content is cleaned. A tag absent from the map is disallowed entirely.
type Sanitize map[string][]string

// Allows reports whether the policy permits the attribute on the tag.
func (s Sanitize) Allows(tag, attr string) bool {
	attrs, ok := s[tag]
	if !ok {
		return false
	}
	for _, a := range attrs {
		if a == attr {
			return true
		}
	}
	return false
}

// AllowsTag reports whether the policy permits the tag at all.
func (s Sanitize) AllowsTag(tag string) bool {
	_, ok := s[tag]
	return ok
}

// TuneDef declares a tune available on a tool's blocks.
type TuneDef struct {
	// Name keys the tune instance and its persisted data.
	Name string
	// Internal marks editor-supplied tunes, kept in a separate
	// collection from user-declared ones.
	Internal bool
	// New creates the tune instance.
	New TuneFactory
	// Settings is passed through to the factory.
	Settings map[string]any
}

// Definition is the descriptor a tool registers under: identity, factories,
// declared tunes, settings and capability flags.
type Definition struct {
	// Name uniquely identifies the tool.
	Name string
	// Title is the human-readable name.
	Title string
	// Shortcut is the keyboard shortcut that inserts the tool.
	Shortcut string
	// Toolbox declares the picker entry, when present.
	Toolbox *Toolbox
	// SupportsReadOnly declares that instances can operate with editing
	// disabled. The read-only coordinator refuses to enable read-only
	// mode while any loaded tool has this unset.
	SupportsReadOnly bool
	// Settings is user configuration passed to the factory.
	Settings map[string]any
	// Sanitize is the tool's content cleaning policy.
	Sanitize Sanitize
	// New creates a tool instance.
	New ToolFactory
	// Tunes declares the tunes composed onto the tool's blocks.
	Tunes []TuneDef
}

// Capability is the registry's answer about a tool, consumed by the
// read-only coordinator and the toolbox builder.
type Capability struct {
	SupportsReadOnly bool
	ToolboxIcon      string
	Title            string
	Shortcut         string
}
