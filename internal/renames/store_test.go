package renames

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "chatnav.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "conv1", "t1", "sorting question"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, "conv1", "t2", "  padded name  "); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, "conv2", "t1", "other scope"); err != nil {
		t.Fatalf("save: %v", err)
	}

	names, err := store.Load(ctx, "conv1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 overrides, got %d", len(names))
	}
	if names["t1"] != "sorting question" {
		t.Fatalf("t1 = %q", names["t1"])
	}
	if names["t2"] != "padded name" {
		t.Fatalf("trim not applied: %q", names["t2"])
	}
}

func TestSaveOverwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "conv1", "t1", "first"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, "conv1", "t1", "second"); err != nil {
		t.Fatalf("save: %v", err)
	}
	names, err := store.Load(ctx, "conv1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if names["t1"] != "second" {
		t.Fatalf("t1 = %q, want second", names["t1"])
	}
}

func TestWhitespaceNameDeletesOverride(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "conv1", "t1", "keep me"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, "conv1", "t1", "   \t"); err != nil {
		t.Fatalf("save whitespace: %v", err)
	}
	names, err := store.Load(ctx, "conv1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, exists := names["t1"]; exists {
		t.Fatalf("whitespace save must delete the override")
	}
}

func TestCollapsedFlag(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	collapsed, err := store.Collapsed(ctx)
	if err != nil {
		t.Fatalf("read default: %v", err)
	}
	if collapsed {
		t.Fatalf("default collapsed must be false")
	}

	if err := store.SetCollapsed(ctx, true); err != nil {
		t.Fatalf("set: %v", err)
	}
	collapsed, err = store.Collapsed(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !collapsed {
		t.Fatalf("collapsed flag not persisted")
	}
}
