package conflicts

import (
	"github.com/tandemplan/tandem-backend/internal/model"
)

const idSeparator = "__"

// ConflictID derives the stable identity of a conflict from its two
// participant event ids. The combination is order-independent: swapping the
// arguments yields the same id, so a resolution recorded against it stays
// valid across recomputations as long as both events exist.
func ConflictID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + idSeparator + b
}

// BuildConflicts turns raw overlaps into Conflict values with stable ids and
// the full event objects attached for rendering. A participant missing from
// the provided list leaves its attachment nil; that never aborts the rest of
// the list.
func BuildConflicts(overlaps []Overlap, events []*model.CalendarEvent) []*model.Conflict {
	byID := make(map[string]*model.CalendarEvent, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}

	res := make([]*model.Conflict, 0, len(overlaps))
	for _, o := range overlaps {
		res = append(res, &model.Conflict{
			ID:              ConflictID(o.A.ID, o.B.ID),
			ExistingEventID: o.A.ID,
			IncomingEventID: o.B.ID,
			OverlapStart:    o.Start,
			OverlapEnd:      o.End,
			ExistingEvent:   byID[o.A.ID],
			IncomingEvent:   byID[o.B.ID],
		})
	}

	return res
}
