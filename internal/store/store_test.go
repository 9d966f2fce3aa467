package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/stanza/internal/block"
	"github.com/dshills/stanza/internal/document"
	"github.com/dshills/stanza/internal/tool"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "stanza.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func samplePayload(t *testing.T) []byte {
	t.Helper()
	data, err := document.Marshal([]*block.Saved{
		{ID: "b1", Tool: tool.ParagraphName, Data: tool.Data{"text": "stored"}},
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return data
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	payload := samplePayload(t)

	if err := s.Save(ctx, "doc-1", payload); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != string(payload) {
		t.Error("payload altered by the store")
	}

	saved, err := document.Unmarshal(got)
	if err != nil {
		t.Fatalf("stored payload should stay decodable: %v", err)
	}
	if len(saved) != 1 || saved[0].Data["text"] != "stored" {
		t.Errorf("decoded = %+v", saved)
	}
}

func TestSaveUpserts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "doc-1", []byte(`{"version":"1.0.0","blocks":[]}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	updated := samplePayload(t)
	if err := s.Save(ctx, "doc-1", updated); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := s.Load(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != string(updated) {
		t.Error("save should overwrite the existing payload")
	}

	infos, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 1 {
		t.Errorf("upsert must not duplicate rows: %d", len(infos))
	}
}

func TestLoadMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Load(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestEmptyIDRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "", nil); !errors.Is(err, ErrEmptyID) {
		t.Errorf("Save err = %v", err)
	}
	if _, err := s.Load(ctx, ""); !errors.Is(err, ErrEmptyID) {
		t.Errorf("Load err = %v", err)
	}
	if err := s.Delete(ctx, ""); !errors.Is(err, ErrEmptyID) {
		t.Errorf("Delete err = %v", err)
	}
}

func TestListReportsVersionAndOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "first", samplePayload(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	// Saved later, so it lists first.
	if err := s.Save(ctx, "second", samplePayload(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	infos, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("List = %d rows", len(infos))
	}
	if infos[0].ID != "second" {
		t.Errorf("most recently updated should list first: %v", infos)
	}
	for _, info := range infos {
		if info.Version != document.Version {
			t.Errorf("version = %q", info.Version)
		}
		if info.UpdatedAt.IsZero() || info.CreatedAt.IsZero() {
			t.Error("timestamps missing")
		}
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "doc-1", samplePayload(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Delete(ctx, "doc-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Load(ctx, "doc-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after delete = %v", err)
	}
	if err := s.Delete(ctx, "doc-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v", err)
	}
}
