package conflicts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tandemplan/tandem-backend/internal/model"
)

var day = time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func event(id string, from, to time.Time) *model.CalendarEvent {
	return &model.CalendarEvent{
		ID:        id,
		Title:     "event " + id,
		From:      from,
		To:        to,
		GroupType: model.GroupTypePersonal,
	}
}

func TestDetectOverlaps_Window(t *testing.T) {
	a := event("1_100", at(9, 0), at(10, 30))
	b := event("2_200", at(10, 0), at(11, 0))

	overlaps := DetectOverlaps([]*model.CalendarEvent{a, b})
	require.Len(t, overlaps, 1)

	assert.Equal(t, "1_100", overlaps[0].A.ID)
	assert.Equal(t, "2_200", overlaps[0].B.ID)
	assert.Equal(t, at(10, 0), overlaps[0].Start)
	assert.Equal(t, at(10, 30), overlaps[0].End)
}

func TestDetectOverlaps_TouchingIsNotOverlap(t *testing.T) {
	a := event("1_100", at(9, 0), at(10, 0))
	b := event("2_200", at(10, 0), at(11, 0))

	assert.Empty(t, DetectOverlaps([]*model.CalendarEvent{a, b}))
}

func TestDetectOverlaps_Containment(t *testing.T) {
	outer := event("1_100", at(9, 0), at(17, 0))
	inner := event("2_200", at(12, 0), at(13, 0))

	overlaps := DetectOverlaps([]*model.CalendarEvent{outer, inner})
	require.Len(t, overlaps, 1)

	assert.Equal(t, at(12, 0), overlaps[0].Start)
	assert.Equal(t, at(13, 0), overlaps[0].End)
}

func TestDetectOverlaps_OrderIndependent(t *testing.T) {
	events := []*model.CalendarEvent{
		event("3_300", at(10, 30), at(12, 0)),
		event("1_100", at(9, 0), at(11, 0)),
		event("2_200", at(10, 0), at(10, 45)),
	}
	reordered := []*model.CalendarEvent{events[2], events[0], events[1]}

	first := DetectOverlaps(events)
	second := DetectOverlaps(reordered)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].A.ID, second[i].A.ID)
		assert.Equal(t, first[i].B.ID, second[i].B.ID)
		assert.Equal(t, first[i].Start, second[i].Start)
		assert.Equal(t, first[i].End, second[i].End)
	}
}

func TestDetectOverlaps_NoSelfConflict(t *testing.T) {
	a := event("1_100", at(9, 0), at(10, 0))

	assert.Empty(t, DetectOverlaps([]*model.CalendarEvent{a}))
	assert.Empty(t, DetectOverlaps(nil))
}

func TestDetectOverlaps_IdenticalIntervals(t *testing.T) {
	a := event("1_100", at(9, 0), at(10, 0))
	b := event("2_200", at(9, 0), at(10, 0))

	overlaps := DetectOverlaps([]*model.CalendarEvent{b, a})
	require.Len(t, overlaps, 1)

	// same start resolves by id
	assert.Equal(t, "1_100", overlaps[0].A.ID)
	assert.Equal(t, "2_200", overlaps[0].B.ID)
	assert.Equal(t, at(9, 0), overlaps[0].Start)
	assert.Equal(t, at(10, 0), overlaps[0].End)
}

func TestDetectOverlaps_InputNotModified(t *testing.T) {
	events := []*model.CalendarEvent{
		event("2_200", at(10, 0), at(11, 0)),
		event("1_100", at(9, 0), at(10, 30)),
	}

	DetectOverlaps(events)

	assert.Equal(t, "2_200", events[0].ID)
	assert.Equal(t, "1_100", events[1].ID)
}

func TestDetectOverlaps_MultiplePairs(t *testing.T) {
	events := []*model.CalendarEvent{
		event("1_100", at(9, 0), at(12, 0)),
		event("2_200", at(10, 0), at(11, 0)),
		event("3_300", at(11, 30), at(13, 0)),
		event("4_400", at(14, 0), at(15, 0)),
	}

	overlaps := DetectOverlaps(events)
	require.Len(t, overlaps, 2)

	assert.Equal(t, "1_100", overlaps[0].A.ID)
	assert.Equal(t, "2_200", overlaps[0].B.ID)
	assert.Equal(t, "1_100", overlaps[1].A.ID)
	assert.Equal(t, "3_300", overlaps[1].B.ID)
}
