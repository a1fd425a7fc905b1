package conflicts

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tandemplan/tandem-backend/internal/model"
)

func TestSimulatePreflight_FindsConflicts(t *testing.T) {
	existing := []*model.CalendarEvent{
		event("1_100", at(9, 0), at(10, 30)),
		event("2_200", at(14, 0), at(15, 0)),
	}
	candidate := event("", at(10, 0), at(11, 0))

	found, err := SimulatePreflight(candidate, existing, "")
	require.NoError(t, err)
	require.Len(t, found, 1)

	c := found[0]
	assert.Equal(t, "1_100", c.ExistingEventID)
	assert.True(t, strings.HasPrefix(c.IncomingEventID, syntheticIDPrefix))
	assert.Equal(t, at(10, 0), c.OverlapStart)
	assert.Equal(t, at(10, 30), c.OverlapEnd)
}

func TestSimulatePreflight_IgnoresPreexistingConflicts(t *testing.T) {
	// A and B already conflict with each other; the candidate touches neither.
	existing := []*model.CalendarEvent{
		event("1_100", at(9, 0), at(11, 0)),
		event("2_200", at(10, 0), at(12, 0)),
	}
	candidate := event("", at(15, 0), at(16, 0))

	found, err := SimulatePreflight(candidate, existing, "")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSimulatePreflight_ExcludesEditedEvent(t *testing.T) {
	existing := []*model.CalendarEvent{
		event("1_100", at(9, 0), at(11, 0)),
		event("2_200", at(10, 0), at(12, 0)),
	}
	// Moving event 1 slightly; its old version must not count against it.
	candidate := event("", at(9, 15), at(11, 15))

	found, err := SimulatePreflight(candidate, existing, "1_100")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "2_200", found[0].ExistingEventID)
}

func TestSimulatePreflight_CandidateAlwaysIncoming(t *testing.T) {
	// Candidate starts before the existing event, so raw detection would put
	// it on the existing side.
	existing := []*model.CalendarEvent{event("1_100", at(10, 0), at(11, 0))}
	candidate := event("", at(9, 0), at(10, 30))

	found, err := SimulatePreflight(candidate, existing, "")
	require.NoError(t, err)
	require.Len(t, found, 1)

	assert.Equal(t, "1_100", found[0].ExistingEventID)
	assert.True(t, strings.HasPrefix(found[0].IncomingEventID, syntheticIDPrefix))
	require.NotNil(t, found[0].IncomingEvent)
	assert.Equal(t, candidate.Title, found[0].IncomingEvent.Title)
}

func TestSimulatePreflight_CandidateNotMutated(t *testing.T) {
	existing := []*model.CalendarEvent{event("1_100", at(10, 0), at(11, 0))}
	candidate := event("", at(9, 0), at(10, 30))

	_, err := SimulatePreflight(candidate, existing, "")
	require.NoError(t, err)
	assert.Equal(t, "", candidate.ID)
}

func TestSimulatePreflight_MissingTimes(t *testing.T) {
	_, err := SimulatePreflight(nil, nil, "")
	assert.ErrorIs(t, err, ErrNoCandidateTimes)

	_, err = SimulatePreflight(event("", time.Time{}, at(10, 0)), nil, "")
	assert.ErrorIs(t, err, ErrNoCandidateTimes)

	_, err = SimulatePreflight(event("", at(9, 0), time.Time{}), nil, "")
	assert.ErrorIs(t, err, ErrNoCandidateTimes)
}

func TestSimulatePreflight_EmptySnapshot(t *testing.T) {
	found, err := SimulatePreflight(event("", at(9, 0), at(10, 0)), nil, "")
	require.NoError(t, err)
	assert.Empty(t, found)
}
