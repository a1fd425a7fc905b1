package conflicts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tandemplan/tandem-backend/internal/model"
)

func TestConflictID_OrderIndependent(t *testing.T) {
	assert.Equal(t, ConflictID("1_100", "2_200"), ConflictID("2_200", "1_100"))
	assert.Equal(t, "1_100__2_200", ConflictID("2_200", "1_100"))
}

func TestConflictID_Distinct(t *testing.T) {
	assert.NotEqual(t, ConflictID("1_100", "2_200"), ConflictID("1_100", "3_300"))
}

func TestBuildConflicts_AttachesEvents(t *testing.T) {
	a := event("1_100", at(9, 0), at(10, 30))
	b := event("2_200", at(10, 0), at(11, 0))
	events := []*model.CalendarEvent{a, b}

	conflicts := BuildConflicts(DetectOverlaps(events), events)
	require.Len(t, conflicts, 1)

	c := conflicts[0]
	assert.Equal(t, ConflictID("1_100", "2_200"), c.ID)
	assert.Equal(t, "1_100", c.ExistingEventID)
	assert.Equal(t, "2_200", c.IncomingEventID)
	assert.Same(t, a, c.ExistingEvent)
	assert.Same(t, b, c.IncomingEvent)
	assert.Equal(t, at(10, 0), c.OverlapStart)
	assert.Equal(t, at(10, 30), c.OverlapEnd)
}

func TestBuildConflicts_MissingParticipantLeavesNil(t *testing.T) {
	a := event("1_100", at(9, 0), at(10, 30))
	b := event("2_200", at(10, 0), at(11, 0))

	overlaps := DetectOverlaps([]*model.CalendarEvent{a, b})
	conflicts := BuildConflicts(overlaps, []*model.CalendarEvent{a})
	require.Len(t, conflicts, 1)

	assert.Same(t, a, conflicts[0].ExistingEvent)
	assert.Nil(t, conflicts[0].IncomingEvent)
}

func TestBuildConflicts_StableIDAcrossReorder(t *testing.T) {
	a := event("1_100", at(9, 0), at(10, 30))
	b := event("2_200", at(10, 0), at(11, 0))

	first := BuildConflicts(DetectOverlaps([]*model.CalendarEvent{a, b}), []*model.CalendarEvent{a, b})
	second := BuildConflicts(DetectOverlaps([]*model.CalendarEvent{b, a}), []*model.CalendarEvent{b, a})

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
}
