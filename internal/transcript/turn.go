// Package transcript extracts navigable question/answer turns from an
// externally written chat transcript. The markup of the host transcript is
// abstracted behind Source/TurnNode so the scan engine carries no assumptions
// beyond "a turn has at most one user part and at most one assistant part".
package transcript

// TurnNode is one turn container supplied by a content source. A node whose
// UserText is empty (system banners, orphaned assistant output) is not
// indexable and will be skipped by Scan.
type TurnNode interface {
	// StableID returns a host-provided identifier that survives re-scans,
	// or "" when the host has none.
	StableID() string
	UserText() string
	AssistantText() string
}

// Source enumerates the turn containers of the current transcript in order.
type Source interface {
	Turns() []TurnNode
}

// Turn is one scanned entry of the navigation panel. Node references the
// live source node and goes stale when the source is reloaded; consumers
// must re-scan rather than hold onto old generations.
type Turn struct {
	ID       string
	Index    int
	Summary  string
	FullText string
	Node     TurnNode
}
