package conflicts

import (
	"github.com/tandemplan/tandem-backend/internal/model"
)

// Normalize converts stored event records into the canonical shape detection
// works with. Group types are resolved through the user's memberships, with
// model.ParseGroupType folding the legacy vocabulary in one place; an event
// without a group id is always personal no matter what else it carries.
//
// Records with missing timestamps are dropped silently. They cannot take part
// in time-based logic, and one broken record must not blank the whole
// conflict view.
func Normalize(events []*model.Event, groups []*model.Group) []*model.CalendarEvent {
	typeByGroup := make(map[int64]model.GroupType, len(groups))
	for _, g := range groups {
		typeByGroup[g.ID] = model.ParseGroupType(g.Type)
	}

	res := make([]*model.CalendarEvent, 0, len(events))
	for _, e := range events {
		if e.From.IsZero() || e.To.IsZero() {
			continue
		}

		groupType := model.GroupTypePersonal
		if e.GroupID != nil {
			if t, ok := typeByGroup[*e.GroupID]; ok {
				groupType = t
			} else {
				groupType = model.GroupTypePair
			}
		}

		res = append(res, &model.CalendarEvent{
			ID:        e.ID,
			Title:     e.Title,
			From:      e.From,
			To:        e.To,
			GroupID:   e.GroupID,
			GroupType: groupType,
			Notes:     e.Notes,
		})
	}

	return res
}
