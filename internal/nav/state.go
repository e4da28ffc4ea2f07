// Package nav owns the current ordered turn list and the active item. Writes
// are deliberately cheap: SetItems replaces wholesale and never revalidates
// the active id, so readers must treat a failed lookup as "no active item".
package nav

import "github.com/chatnav/chatnav/internal/transcript"

type State struct {
	items  []transcript.Turn
	active string
}

func NewState() *State {
	return &State{}
}

// SetItems replaces the turn list wholesale. The active id is left untouched
// even when it no longer resolves against the new items.
func (s *State) SetItems(items []transcript.Turn) {
	s.items = items
}

func (s *State) Items() []transcript.Turn {
	return s.items
}

func (s *State) SetActive(id string) {
	s.active = id
}

func (s *State) Active() string {
	return s.active
}

// Turn resolves an id against the current items.
func (s *State) Turn(id string) (transcript.Turn, bool) {
	if id == "" {
		return transcript.Turn{}, false
	}
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return transcript.Turn{}, false
}

// ActiveTurn is the validating read of the active id; a dangling id yields
// no turn.
func (s *State) ActiveTurn() (transcript.Turn, bool) {
	return s.Turn(s.active)
}
