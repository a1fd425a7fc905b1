package events

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tandemplan/tandem-backend/internal/database"
	"github.com/tandemplan/tandem-backend/internal/model"
)

type fakeRepository struct {
	events  []*model.Event
	created []*model.Event
	nextID  int64
}

func (f *fakeRepository) CreateEvent(_ context.Context, _ database.Queryable, event *model.Event) (int64, error) {
	f.created = append(f.created, event)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeRepository) GetEventByID(_ context.Context, _ database.Queryable, id int64) (*model.Event, error) {
	for _, e := range f.events {
		if e.ID == fmt.Sprintf("%v", id) {
			return e, nil
		}
	}
	return nil, model.ErrNoRecord
}

func (f *fakeRepository) GetEvents(_ context.Context, _ database.Queryable, _ model.EventsFilter) ([]*model.Event, error) {
	return f.events, nil
}

func (f *fakeRepository) UpdateEvent(_ context.Context, _ database.Queryable, _ *model.Event) error {
	return nil
}

func (f *fakeRepository) DeleteEvent(_ context.Context, _ database.Queryable, _ int64) error {
	return nil
}

var base = time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)

func TestParseInstanceID(t *testing.T) {
	id, ts, err := ParseInstanceID(fmt.Sprintf("42_%d", base.Unix()))
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.True(t, ts.Equal(base))

	for _, malformed := range []string{"", "42", "_", "abc_123", "42_abc"} {
		_, _, err := ParseInstanceID(malformed)
		assert.Error(t, err, malformed)
	}
}

func TestGetEvents_SingleEventGetsInstanceID(t *testing.T) {
	repo := &fakeRepository{events: []*model.Event{{
		ID: "1",
		EventCreate: model.EventCreate{
			Title: "dentist",
			From:  base,
			To:    base.Add(time.Hour),
		},
	}}}
	s := NewService(nil, repo)

	res, err := s.GetEvents(context.Background(), model.EventsFilter{From: base.Add(-time.Hour), To: base.Add(24 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, fmt.Sprintf("1_%d", base.Unix()), res[0].ID)
}

func TestGetEvents_ExpandsRecurring(t *testing.T) {
	repo := &fakeRepository{events: []*model.Event{{
		ID:         "1",
		RepeatRule: fmt.Sprintf("FREQ=DAILY;INTERVAL=1;DTSTART=%s", base.Format("20060102T150405Z")),
		Exceptions: map[int64]struct{}{base.Add(24 * time.Hour).Unix(): {}},
		EventCreate: model.EventCreate{
			Title:      "standup",
			From:       base,
			To:         base.Add(30 * time.Minute),
			RepeatType: model.RepeatTypeEveryDay,
		},
	}}}
	s := NewService(nil, repo)

	res, err := s.GetEvents(context.Background(), model.EventsFilter{
		From: base,
		To:   base.Add(72 * time.Hour),
	})
	require.NoError(t, err)

	// three daily occurrences in window, one excepted
	require.Len(t, res, 2)
	assert.Equal(t, fmt.Sprintf("1_%d", base.Unix()), res[0].ID)
	assert.Equal(t, fmt.Sprintf("1_%d", base.Add(48*time.Hour).Unix()), res[1].ID)
	for i := 1; i < len(res); i++ {
		assert.False(t, res[i].From.Before(res[i-1].From))
	}
}

func TestCreateEvent_NonRecurring(t *testing.T) {
	repo := &fakeRepository{}
	s := NewService(nil, repo)

	info := &model.EventCreate{
		OwnerID: 1,
		Title:   "dinner",
		From:    base,
		To:      base.Add(2 * time.Hour),
	}

	event, err := s.CreateEvent(context.Background(), info)
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("1_%d", base.Unix()), event.ID)
	assert.Empty(t, event.RepeatRule)
	require.Len(t, repo.created, 1)
	require.NotNil(t, repo.created[0].Until)
	assert.True(t, repo.created[0].Until.Equal(info.To))
}

func TestCreateEvent_RecurringGetsRule(t *testing.T) {
	repo := &fakeRepository{}
	s := NewService(nil, repo)

	event, err := s.CreateEvent(context.Background(), &model.EventCreate{
		OwnerID:    1,
		Title:      "standup",
		From:       base,
		To:         base.Add(30 * time.Minute),
		RepeatType: model.RepeatTypeEveryWeek,
	})
	require.NoError(t, err)

	assert.Contains(t, event.RepeatRule, "FREQ=WEEKLY")
	assert.Nil(t, event.Until)
}
