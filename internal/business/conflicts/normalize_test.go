package conflicts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tandemplan/tandem-backend/internal/model"
)

func storedEvent(id string, groupID *int64, from, to time.Time) *model.Event {
	return &model.Event{
		ID: id,
		EventCreate: model.EventCreate{
			GroupID: groupID,
			Title:   "event " + id,
			From:    from,
			To:      to,
		},
	}
}

func group(id int64, rawType string) *model.Group {
	return &model.Group{
		ID:          id,
		GroupCreate: model.GroupCreate{Name: "group", Type: rawType},
	}
}

func TestNormalize_GroupTypes(t *testing.T) {
	pairID, coupleID, familyID := int64(1), int64(2), int64(3)
	groups := []*model.Group{
		group(pairID, "pair"),
		group(coupleID, "couple"),
		group(familyID, "family"),
	}

	events := []*model.Event{
		storedEvent("1_100", &pairID, at(9, 0), at(10, 0)),
		storedEvent("2_200", &coupleID, at(9, 0), at(10, 0)),
		storedEvent("3_300", &familyID, at(9, 0), at(10, 0)),
		storedEvent("4_400", nil, at(9, 0), at(10, 0)),
	}

	res := Normalize(events, groups)
	require.Len(t, res, 4)

	assert.Equal(t, model.GroupTypePair, res[0].GroupType)
	assert.Equal(t, model.GroupTypePair, res[1].GroupType)
	assert.Equal(t, model.GroupTypeFamily, res[2].GroupType)
	assert.Equal(t, model.GroupTypePersonal, res[3].GroupType)
}

func TestNormalize_UnknownGroupFallsBackToPair(t *testing.T) {
	unknownID := int64(99)
	events := []*model.Event{storedEvent("1_100", &unknownID, at(9, 0), at(10, 0))}

	res := Normalize(events, nil)
	require.Len(t, res, 1)
	assert.Equal(t, model.GroupTypePair, res[0].GroupType)
}

func TestNormalize_DropsEventsWithoutTimestamps(t *testing.T) {
	events := []*model.Event{
		storedEvent("1_100", nil, time.Time{}, at(10, 0)),
		storedEvent("2_200", nil, at(9, 0), time.Time{}),
		storedEvent("3_300", nil, at(9, 0), at(10, 0)),
	}

	res := Normalize(events, nil)
	require.Len(t, res, 1)
	assert.Equal(t, "3_300", res[0].ID)
}

func TestNormalize_CopiesFields(t *testing.T) {
	groupID := int64(1)
	e := storedEvent("1_100", &groupID, at(9, 0), at(10, 0))
	e.Notes = "bring cake"

	res := Normalize([]*model.Event{e}, []*model.Group{group(groupID, "family")})
	require.Len(t, res, 1)

	assert.Equal(t, e.ID, res[0].ID)
	assert.Equal(t, e.Title, res[0].Title)
	assert.Equal(t, e.From, res[0].From)
	assert.Equal(t, e.To, res[0].To)
	assert.Equal(t, &groupID, res[0].GroupID)
	assert.Equal(t, "bring cake", res[0].Notes)
}
