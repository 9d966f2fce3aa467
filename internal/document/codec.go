package document

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/stanza/internal/block"
)

// Version is the interchange format version stamped into serialized
// documents.
const Version = "1.0.0"

// Marshal serializes a document snapshot into the interchange format:
//
//	{"time": <unix ms>, "version": "...", "blocks": [{"id", "type", "data", "tunes"}]}
//
// Tune payloads are written raw, so data saved for an unavailable tune
// survives a round trip byte for byte.
func Marshal(saved []*block.Saved) ([]byte, error) {
	out := []byte(`{}`)
	var err error

	if out, err = sjson.SetBytes(out, "time", time.Now().UnixMilli()); err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	if out, err = sjson.SetBytes(out, "version", Version); err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	if out, err = sjson.SetRawBytes(out, "blocks", []byte(`[]`)); err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	for i, s := range saved {
		base := fmt.Sprintf("blocks.%d", i)
		if out, err = sjson.SetBytes(out, base+".id", s.ID); err != nil {
			return nil, fmt.Errorf("marshal block %s: %w", s.ID, err)
		}
		if out, err = sjson.SetBytes(out, base+".type", s.Tool); err != nil {
			return nil, fmt.Errorf("marshal block %s: %w", s.ID, err)
		}
		data := s.Data
		if data == nil {
			data = map[string]any{}
		}
		if out, err = sjson.SetBytes(out, base+".data", data); err != nil {
			return nil, fmt.Errorf("marshal block %s: %w", s.ID, err)
		}
		for name, raw := range s.Tunes {
			if out, err = sjson.SetRawBytes(out, base+".tunes."+escapeKey(name), raw); err != nil {
				return nil, fmt.Errorf("marshal block %s tune %s: %w", s.ID, name, err)
			}
		}
	}
	return out, nil
}

// Unmarshal decodes the interchange format back into block snapshots.
// Tune payloads come back as raw JSON, untouched.
func Unmarshal(data []byte) ([]*block.Saved, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidPayload
	}
	root := gjson.ParseBytes(data)
	blocks := root.Get("blocks")
	if !blocks.IsArray() {
		return nil, fmt.Errorf("missing blocks array: %w", ErrInvalidPayload)
	}

	var out []*block.Saved
	for i, item := range blocks.Array() {
		toolName := item.Get("type").String()
		if toolName == "" {
			return nil, fmt.Errorf("block %d has no type: %w", i, ErrInvalidPayload)
		}
		s := &block.Saved{
			ID:   item.Get("id").String(),
			Tool: toolName,
		}
		if dataRes := item.Get("data"); dataRes.Exists() {
			if m, ok := dataRes.Value().(map[string]any); ok {
				s.Data = m
			}
		}
		if tunes := item.Get("tunes"); tunes.IsObject() {
			s.Tunes = make(map[string]json.RawMessage)
			tunes.ForEach(func(key, value gjson.Result) bool {
				s.Tunes[key.String()] = json.RawMessage(value.Raw)
				return true
			})
		}
		out = append(out, s)
	}
	return out, nil
}

// PayloadVersion reads the format version out of a serialized document
// without decoding it.
func PayloadVersion(data []byte) string {
	return gjson.GetBytes(data, "version").String()
}

// escapeKey makes a map key safe for use as a single path component: path
// separators and wildcards must stay literal so tune names round-trip
// unchanged.
func escapeKey(key string) string {
	var sb strings.Builder
	for _, r := range key {
		switch r {
		case '\\', '.', '*', '?', '|':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
