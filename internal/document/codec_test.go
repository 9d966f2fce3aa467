package document

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/dshills/stanza/internal/block"
	"github.com/dshills/stanza/internal/tool"
)

func TestMarshalShape(t *testing.T) {
	data, err := Marshal([]*block.Saved{
		{
			ID:   "b1",
			Tool: tool.ParagraphName,
			Data: tool.Data{"text": "hello"},
			Tunes: map[string]json.RawMessage{
				"align": json.RawMessage(`{"value":"center"}`),
			},
		},
		{ID: "b2", Tool: tool.DelimiterName},
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	root := gjson.ParseBytes(data)
	if root.Get("version").String() != Version {
		t.Errorf("version = %q", root.Get("version").String())
	}
	if root.Get("time").Int() <= 0 {
		t.Error("time stamp missing")
	}
	blocks := root.Get("blocks").Array()
	if len(blocks) != 2 {
		t.Fatalf("blocks = %d", len(blocks))
	}
	if blocks[0].Get("type").String() != tool.ParagraphName {
		t.Errorf("type = %q", blocks[0].Get("type").String())
	}
	if blocks[0].Get("data.text").String() != "hello" {
		t.Errorf("data.text = %q", blocks[0].Get("data.text").String())
	}
	if blocks[0].Get("tunes.align.value").String() != "center" {
		t.Error("tune payload not written raw")
	}
	// A block without data still serializes an object.
	if !blocks[1].Get("data").IsObject() {
		t.Error("empty data should serialize as an object")
	}
}

func TestCodecRoundTripPreservesTunePayloads(t *testing.T) {
	ghost := `{"opaque":["x",1],"nested":{"deep":true}}`
	in := []*block.Saved{{
		ID:   "b1",
		Tool: tool.ParagraphName,
		Data: tool.Data{"text": "body"},
		Tunes: map[string]json.RawMessage{
			"ghost": json.RawMessage(ghost),
		},
	}}

	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	out, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if len(out) != 1 || out[0].ID != "b1" || out[0].Tool != tool.ParagraphName {
		t.Fatalf("round trip identity lost: %+v", out)
	}
	if out[0].Data["text"] != "body" {
		t.Errorf("data = %v", out[0].Data)
	}
	if string(out[0].Tunes["ghost"]) != ghost {
		t.Errorf("tune payload altered: %s", out[0].Tunes["ghost"])
	}
}

func TestCodecKeepsPathSyntaxInTuneNamesLiteral(t *testing.T) {
	payloads := map[string]string{
		"ver.1":   `{"x":1}`,
		"wild*":   `{"y":2}`,
		"ask?":    `{"z":3}`,
		"layer|a": `{"w":4}`,
	}
	tunes := make(map[string]json.RawMessage, len(payloads))
	for name, raw := range payloads {
		tunes[name] = json.RawMessage(raw)
	}

	data, err := Marshal([]*block.Saved{{
		ID:    "b1",
		Tool:  tool.ParagraphName,
		Data:  tool.Data{"text": "t"},
		Tunes: tunes,
	}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	// The names must land as literal object keys, not nested paths.
	keys := gjson.GetBytes(data, "blocks.0.tunes").Map()
	for name := range payloads {
		if _, ok := keys[name]; !ok {
			t.Errorf("tune %q not stored as a literal key: %v", name, keys)
		}
	}

	out, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for name, raw := range payloads {
		if string(out[0].Tunes[name]) != raw {
			t.Errorf("tune %q = %s, want %s", name, out[0].Tunes[name], raw)
		}
	}
}

func TestUnmarshalRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{"blocks": [`},
		{"no blocks", `{"time": 1}`},
		{"blocks not array", `{"blocks": {}}`},
		{"block without type", `{"blocks": [{"id": "x", "data": {}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(tt.payload)); !errors.Is(err, ErrInvalidPayload) {
				t.Errorf("err = %v, want ErrInvalidPayload", err)
			}
		})
	}
}

func TestUnmarshalEmptyDocument(t *testing.T) {
	out, err := Unmarshal([]byte(`{"time": 1, "version": "1.0.0", "blocks": []}`))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("blocks = %d", len(out))
	}
}

func TestPayloadVersion(t *testing.T) {
	data, err := Marshal(nil)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if got := PayloadVersion(data); got != Version {
		t.Errorf("PayloadVersion = %q", got)
	}
	if got := PayloadVersion([]byte(`{}`)); got != "" {
		t.Errorf("missing version should read empty, got %q", got)
	}
}

func TestDocumentSerializeRoundTrip(t *testing.T) {
	d := testDocument(t)
	mustInsert(t, d, tool.ParagraphName, tool.Data{"text": "persisted"})

	saved, err := d.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := Marshal(saved)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	restored, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	fresh := testDocument(t)
	if err := fresh.Render(restored); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if fresh.Count() != 1 {
		t.Fatalf("Count = %d", fresh.Count())
	}
	b, _ := fresh.BlockAt(0)
	if got := b.Content().TextContent(); got != "persisted" {
		t.Errorf("restored text = %q", got)
	}
}
