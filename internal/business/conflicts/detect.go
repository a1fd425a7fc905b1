package conflicts

import (
	"sort"
	"time"

	"github.com/tandemplan/tandem-backend/internal/model"
)

// Overlap is one pair of events whose intervals intersect with strictly
// positive duration. A starts no later than B; the window is
// max(starts)..min(ends).
type Overlap struct {
	A     *model.CalendarEvent
	B     *model.CalendarEvent
	Start time.Time
	End   time.Time
}

// DetectOverlaps finds every pair of events with a positive-length time
// intersection. Touching intervals (one ends exactly when the other starts)
// do not overlap, and an event never pairs with itself.
//
// The input slice is not modified. Events are scanned in (start, id) order,
// so recomputing over a reordered snapshot yields the same pairs in the same
// order.
func DetectOverlaps(events []*model.CalendarEvent) []Overlap {
	if len(events) < 2 {
		return nil
	}

	sorted := make([]*model.CalendarEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].From.Equal(sorted[j].From) {
			return sorted[i].From.Before(sorted[j].From)
		}
		return sorted[i].ID < sorted[j].ID
	})

	var res []Overlap
	for i, a := range sorted {
		for _, b := range sorted[i+1:] {
			// Sorted by start, so once b starts at or after a ends,
			// no later event can overlap a either.
			if !b.From.Before(a.To) {
				break
			}

			start := a.From
			if b.From.After(start) {
				start = b.From
			}

			end := a.To
			if b.To.Before(end) {
				end = b.To
			}

			if end.After(start) {
				res = append(res, Overlap{A: a, B: b, Start: start, End: end})
			}
		}
	}

	return res
}
