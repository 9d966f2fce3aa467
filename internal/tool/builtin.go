package tool

import (
	"encoding/json"
	"fmt"

	"github.com/dshills/stanza/internal/dom"
)

// Built-in tool and tune names.
const (
	ParagraphName = "paragraph"
	HeaderName    = "header"
	DelimiterName = "delimiter"
	AlignTuneName = "align"
	AnchorName    = "anchor"
)

// ParagraphDefinition returns the default text tool. It is the fallback
// block type the editor inserts when a chosen tool exposes no editable
// region.
func ParagraphDefinition() *Definition {
	return &Definition{
		Name:             ParagraphName,
		Title:            "Text",
		Toolbox:          &Toolbox{Icon: "¶", Title: "Text"},
		SupportsReadOnly: true,
		Sanitize:         Sanitize{"p": nil, "b": nil, "i": nil, "a": {"href"}},
		New: func(ctx Context) (Tool, error) {
			p := &Paragraph{}
			if t, ok := ctx.Data["text"].(string); ok {
				p.text = t
			}
			return p, nil
		},
		Tunes: []TuneDef{
			{Name: AlignTuneName, New: NewAlignTune},
			{Name: AnchorName, Internal: true, New: NewAnchorTune},
		},
	}
}

// Paragraph is a single contentEditable text region.
type Paragraph struct {
	text string
	el   *dom.Element
}

// Render implements Tool.
func (p *Paragraph) Render() *dom.Element {
	p.el = dom.NewEditable("p")
	p.el.SetText(p.text)
	return p.el
}

// Save implements Tool.
func (p *Paragraph) Save(root *dom.Element) (Data, error) {
	return Data{"text": root.TextContent()}, nil
}

// Merge appends the other paragraph's text.
func (p *Paragraph) Merge(data Data) error {
	text, _ := data["text"].(string)
	if p.el == nil {
		p.text += text
		return nil
	}
	p.el.SetText(p.el.Text() + text)
	return nil
}

// HeaderDefinition returns the heading tool.
func HeaderDefinition() *Definition {
	return &Definition{
		Name:             HeaderName,
		Title:            "Heading",
		Shortcut:         "CMD+SHIFT+H",
		Toolbox:          &Toolbox{Icon: "H", Title: "Heading"},
		SupportsReadOnly: true,
		Sanitize:         Sanitize{"h1": nil, "h2": nil, "h3": nil},
		New: func(ctx Context) (Tool, error) {
			h := &Header{level: 2}
			if t, ok := ctx.Data["text"].(string); ok {
				h.text = t
			}
			switch lv := ctx.Data["level"].(type) {
			case int:
				h.level = lv
			case float64:
				h.level = int(lv)
			case json.Number:
				if n, err := lv.Int64(); err == nil {
					h.level = int(n)
				}
			}
			return h, nil
		},
		Tunes: []TuneDef{
			{Name: AnchorName, Internal: true, New: NewAnchorTune},
		},
	}
}

// Header is a heading region with a level between 1 and 6.
type Header struct {
	text  string
	level int
	el    *dom.Element
}

// Render implements Tool.
func (h *Header) Render() *dom.Element {
	h.el = dom.NewEditable(fmt.Sprintf("h%d", h.clampedLevel()))
	h.el.SetText(h.text)
	return h.el
}

// Save implements Tool.
func (h *Header) Save(root *dom.Element) (Data, error) {
	return Data{"text": root.TextContent(), "level": h.clampedLevel()}, nil
}

// Validate implements Validator: a heading needs text and a sane level.
func (h *Header) Validate(data Data) (bool, error) {
	text, _ := data["text"].(string)
	if text == "" {
		return false, nil
	}
	switch lv := data["level"].(type) {
	case int:
		return lv >= 1 && lv <= 6, nil
	case float64:
		return lv >= 1 && lv <= 6, nil
	default:
		return false, nil
	}
}

func (h *Header) clampedLevel() int {
	if h.level < 1 {
		return 1
	}
	if h.level > 6 {
		return 6
	}
	return h.level
}

// DelimiterDefinition returns a decorative separator tool. It renders no
// editable region, which exercises the toolbox caret fallback.
func DelimiterDefinition() *Definition {
	return &Definition{
		Name:             DelimiterName,
		Title:            "Delimiter",
		Toolbox:          &Toolbox{Icon: "***", Title: "Delimiter"},
		SupportsReadOnly: true,
		New: func(ctx Context) (Tool, error) {
			return &Delimiter{}, nil
		},
	}
}

// Delimiter renders a horizontal rule with no editable region.
type Delimiter struct{}

// Render implements Tool.
func (d *Delimiter) Render() *dom.Element {
	return dom.NewElement("hr")
}

// Save implements Tool.
func (d *Delimiter) Save(root *dom.Element) (Data, error) {
	return Data{}, nil
}

// AlignTune is a user tune storing a horizontal alignment and wrapping the
// block content in an alignment container.
type AlignTune struct {
	value string
}

// NewAlignTune is the align tune factory.
func NewAlignTune(ctx TuneContext) (Tune, error) {
	t := &AlignTune{value: "left"}
	if len(ctx.Data) > 0 {
		var payload struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(ctx.Data, &payload); err != nil {
			return nil, fmt.Errorf("align tune data: %w", err)
		}
		if payload.Value != "" {
			t.value = payload.Value
		}
	}
	return t, nil
}

// Name implements Tune.
func (t *AlignTune) Name() string { return AlignTuneName }

// Wrap implements TuneWrapper.
func (t *AlignTune) Wrap(content *dom.Element) *dom.Element {
	wrapper := dom.NewElement("div")
	wrapper.AddClass("sz-tune-align--" + t.value)
	wrapper.AppendChild(content)
	return wrapper
}

// Save implements TuneSaver.
func (t *AlignTune) Save() (any, error) {
	return map[string]any{"value": t.value}, nil
}

// SetValue changes the alignment.
func (t *AlignTune) SetValue(v string) { t.value = v }

// AnchorTune is an internal tune persisting a stable fragment anchor for
// the block.
type AnchorTune struct {
	anchor string
}

// NewAnchorTune is the anchor tune factory.
func NewAnchorTune(ctx TuneContext) (Tune, error) {
	t := &AnchorTune{}
	if len(ctx.Data) > 0 {
		var payload struct {
			Anchor string `json:"anchor"`
		}
		if err := json.Unmarshal(ctx.Data, &payload); err != nil {
			return nil, fmt.Errorf("anchor tune data: %w", err)
		}
		t.anchor = payload.Anchor
	}
	return t, nil
}

// Name implements Tune.
func (t *AnchorTune) Name() string { return AnchorName }

// Save implements TuneSaver.
func (t *AnchorTune) Save() (any, error) {
	return map[string]any{"anchor": t.anchor}, nil
}

// SetAnchor sets the fragment anchor.
func (t *AnchorTune) SetAnchor(a string) { t.anchor = a }
