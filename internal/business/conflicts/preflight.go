package conflicts

import (
	"errors"
	"fmt"
	"time"

	"github.com/tandemplan/tandem-backend/internal/model"
)

// ErrNoCandidateTimes reports preflight misuse: a candidate without both
// timestamps cannot occur through a normal save flow.
var ErrNoCandidateTimes = errors.New("preflight candidate must have start and end times")

const syntheticIDPrefix = "preflight-"

// syntheticID returns a disposable id for the candidate. Persisted event ids
// are "<id>_<unix>", so the prefix cannot collide with a real one.
func syntheticID() string {
	return fmt.Sprintf("%s%d", syntheticIDPrefix, time.Now().UnixNano())
}

// SimulatePreflight injects the candidate into the snapshot, reruns detection
// and keeps only conflicts touching the candidate: pre-existing conflicts
// among saved events are not the question being asked before this save. When
// editingEventID is set, conflicts against the candidate's own prior version
// are dropped too.
//
// The candidate is always the incoming side of the returned conflicts. An
// empty result means the event is safe to save directly.
func SimulatePreflight(candidate *model.CalendarEvent, existing []*model.CalendarEvent, editingEventID string) ([]*model.Conflict, error) {
	if candidate == nil || candidate.From.IsZero() || candidate.To.IsZero() {
		return nil, ErrNoCandidateTimes
	}

	probe := *candidate
	probe.ID = syntheticID()

	combined := make([]*model.CalendarEvent, 0, len(existing)+1)
	combined = append(combined, existing...)
	combined = append(combined, &probe)

	all := BuildConflicts(DetectOverlaps(combined), combined)

	res := make([]*model.Conflict, 0, len(all))
	for _, c := range all {
		var other string
		switch probe.ID {
		case c.ExistingEventID:
			other = c.IncomingEventID
		case c.IncomingEventID:
			other = c.ExistingEventID
		default:
			continue
		}

		if editingEventID != "" && other == editingEventID {
			continue
		}

		if c.ExistingEventID == probe.ID {
			c.ExistingEventID, c.IncomingEventID = c.IncomingEventID, c.ExistingEventID
			c.ExistingEvent, c.IncomingEvent = c.IncomingEvent, c.ExistingEvent
		}

		res = append(res, c)
	}

	return res, nil
}
