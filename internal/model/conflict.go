package model

import "time"

// CalendarEvent is the canonical in-memory event shape the conflict engine
// works with: group type resolved, timestamps validated. It is always a
// read-only snapshot; the engine never mutates events.
type CalendarEvent struct {
	ID        string
	Title     string
	From      time.Time
	To        time.Time
	GroupID   *int64
	GroupType GroupType
	Notes     string
}

// Conflict is one detected time overlap between exactly two events. Conflicts
// are recomputed from the current snapshot on every call and never persisted;
// only resolution decisions keyed by Conflict.ID are.
//
// "Existing" vs "incoming" is a display convention (the earlier-starting event
// is existing), except during preflight where incoming is always the candidate
// being saved.
type Conflict struct {
	ID              string
	ExistingEventID string
	IncomingEventID string
	OverlapStart    time.Time
	OverlapEnd      time.Time

	// Attached for rendering; nil when the referenced event has left the
	// current snapshot.
	ExistingEvent *CalendarEvent
	IncomingEvent *CalendarEvent
}

// Resolution is a user's durable decision for one conflict id.
// Last write wins, one per (user, conflict id).
type Resolution string

const (
	ResolutionKeepExisting   Resolution = "keep_existing"
	ResolutionReplaceWithNew Resolution = "replace_with_new"
	ResolutionNone           Resolution = "none"
)

func (r Resolution) Valid() bool {
	switch r {
	case ResolutionKeepExisting, ResolutionReplaceWithNew, ResolutionNone:
		return true
	}
	return false
}
