package nav

import (
	"testing"

	"github.com/chatnav/chatnav/internal/transcript"
)

func turns(ids ...string) []transcript.Turn {
	items := make([]transcript.Turn, 0, len(ids))
	for i, id := range ids {
		items = append(items, transcript.Turn{ID: id, Index: i + 1, Summary: "turn " + id})
	}
	return items
}

func TestSetItemsKeepsActiveID(t *testing.T) {
	s := NewState()
	s.SetItems(turns("a", "b"))
	s.SetActive("b")

	s.SetItems(turns("a", "b", "c"))
	if s.Active() != "b" {
		t.Fatalf("active id changed on SetItems: %q", s.Active())
	}
	if turn, ok := s.ActiveTurn(); !ok || turn.ID != "b" {
		t.Fatalf("ActiveTurn = %v, %v", turn, ok)
	}
}

func TestDanglingActiveResolvesToNone(t *testing.T) {
	s := NewState()
	s.SetItems(turns("a", "b"))
	s.SetActive("b")

	s.SetItems(turns("a"))
	if s.Active() != "b" {
		t.Fatalf("dangling id must be kept as-is, got %q", s.Active())
	}
	if _, ok := s.ActiveTurn(); ok {
		t.Fatalf("dangling active id must not resolve")
	}
}

func TestTurnLookup(t *testing.T) {
	s := NewState()
	s.SetItems(turns("a"))
	if _, ok := s.Turn(""); ok {
		t.Fatalf("empty id must not resolve")
	}
	if _, ok := s.Turn("zz"); ok {
		t.Fatalf("unknown id must not resolve")
	}
	if turn, ok := s.Turn("a"); !ok || turn.Index != 1 {
		t.Fatalf("lookup failed: %v %v", turn, ok)
	}
}
