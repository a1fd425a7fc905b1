package conflicts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tandemplan/tandem-backend/internal/database"
	"github.com/tandemplan/tandem-backend/internal/model"
	"go.uber.org/zap"
)

type fakeEvents struct {
	events []*model.Event
	err    error
}

func (f *fakeEvents) GetEvents(_ context.Context, _ model.EventsFilter) ([]*model.Event, error) {
	return f.events, f.err
}

type fakeGroups struct {
	groups []*model.Group
	err    error
}

func (f *fakeGroups) GetUserGroups(_ context.Context, _ database.Queryable, _ int64) ([]*model.Group, error) {
	return f.groups, f.err
}

type fakeResolutions struct {
	stored map[string]model.Resolution
	getErr error
	setErr error
}

func (f *fakeResolutions) GetResolutions(_ context.Context, _ database.Queryable, _ int64) (map[string]model.Resolution, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}

	res := make(map[string]model.Resolution, len(f.stored))
	for k, v := range f.stored {
		res[k] = v
	}
	return res, nil
}

func (f *fakeResolutions) SetResolution(_ context.Context, _ database.Queryable, _ int64, conflictID string, resolution model.Resolution) error {
	if f.setErr != nil {
		return f.setErr
	}

	if f.stored == nil {
		f.stored = make(map[string]model.Resolution)
	}
	f.stored[conflictID] = resolution
	return nil
}

func (f *fakeResolutions) DeleteResolution(_ context.Context, _ database.Queryable, _ int64, conflictID string) error {
	if f.setErr != nil {
		return f.setErr
	}
	delete(f.stored, conflictID)
	return nil
}

type fakeIgnored struct {
	ignored map[string]struct{}
	err     error
	added   []string
}

func (f *fakeIgnored) Add(_ context.Context, _ int64, ids []string) error {
	if f.err != nil {
		return f.err
	}
	f.added = append(f.added, ids...)
	return nil
}

func (f *fakeIgnored) Ignored(_ context.Context, _ int64) (map[string]struct{}, error) {
	return f.ignored, f.err
}

func newTestService(events *fakeEvents, groups *fakeGroups, resolutions *fakeResolutions, ignored *fakeIgnored) *Service {
	return NewService(nil, zap.NewNop().Sugar(), events, groups, resolutions, ignored)
}

func overlappingEvents() []*model.Event {
	return []*model.Event{
		storedEvent("1_100", nil, at(9, 0), at(10, 30)),
		storedEvent("2_200", nil, at(10, 0), at(11, 0)),
	}
}

func TestConflictsForUser_PendingConflict(t *testing.T) {
	s := newTestService(
		&fakeEvents{events: overlappingEvents()},
		&fakeGroups{},
		&fakeResolutions{},
		&fakeIgnored{},
	)

	res, err := s.ConflictsForUser(context.Background(), 1, at(0, 0), at(23, 0), false)
	require.NoError(t, err)
	require.Len(t, res, 1)

	assert.Equal(t, ConflictID("1_100", "2_200"), res[0].ID)
	assert.Empty(t, res[0].Resolution)
	assert.False(t, res[0].Ignored)
	assert.False(t, res[0].Settled())
}

func TestConflictsForUser_FiltersSettled(t *testing.T) {
	id := ConflictID("1_100", "2_200")
	s := newTestService(
		&fakeEvents{events: overlappingEvents()},
		&fakeGroups{},
		&fakeResolutions{stored: map[string]model.Resolution{id: model.ResolutionKeepExisting}},
		&fakeIgnored{},
	)

	res, err := s.ConflictsForUser(context.Background(), 1, at(0, 0), at(23, 0), false)
	require.NoError(t, err)
	assert.Empty(t, res)

	res, err = s.ConflictsForUser(context.Background(), 1, at(0, 0), at(23, 0), true)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, model.ResolutionKeepExisting, res[0].Resolution)
	assert.True(t, res[0].Settled())
}

func TestConflictsForUser_FiltersIgnored(t *testing.T) {
	id := ConflictID("1_100", "2_200")
	s := newTestService(
		&fakeEvents{events: overlappingEvents()},
		&fakeGroups{},
		&fakeResolutions{},
		&fakeIgnored{ignored: map[string]struct{}{id: {}}},
	)

	res, err := s.ConflictsForUser(context.Background(), 1, at(0, 0), at(23, 0), false)
	require.NoError(t, err)
	assert.Empty(t, res)

	res, err = s.ConflictsForUser(context.Background(), 1, at(0, 0), at(23, 0), true)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.True(t, res[0].Ignored)
}

func TestConflictsForUser_IgnoreStoreDownDegrades(t *testing.T) {
	s := newTestService(
		&fakeEvents{events: overlappingEvents()},
		&fakeGroups{},
		&fakeResolutions{},
		&fakeIgnored{err: errors.New("redis down")},
	)

	res, err := s.ConflictsForUser(context.Background(), 1, at(0, 0), at(23, 0), false)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.False(t, res[0].Ignored)
}

func TestPreflight_ResolvesCandidateGroupType(t *testing.T) {
	familyID := int64(3)
	s := newTestService(
		&fakeEvents{events: []*model.Event{storedEvent("1_100", &familyID, at(10, 0), at(11, 0))}},
		&fakeGroups{groups: []*model.Group{group(familyID, "family")}},
		&fakeResolutions{},
		&fakeIgnored{},
	)

	candidate := &model.CalendarEvent{Title: "dinner", From: at(10, 30), To: at(11, 30), GroupID: &familyID}

	found, err := s.Preflight(context.Background(), 1, candidate, "")
	require.NoError(t, err)
	require.Len(t, found, 1)

	require.NotNil(t, found[0].IncomingEvent)
	assert.Equal(t, model.GroupTypeFamily, found[0].IncomingEvent.GroupType)
	assert.Equal(t, "1_100", found[0].ExistingEventID)
}

func TestPreflight_FailsOpenOnSnapshotError(t *testing.T) {
	s := newTestService(
		&fakeEvents{err: errors.New("db down")},
		&fakeGroups{},
		&fakeResolutions{},
		&fakeIgnored{},
	)

	candidate := &model.CalendarEvent{From: at(10, 0), To: at(11, 0)}

	found, err := s.Preflight(context.Background(), 1, candidate, "")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestPreflight_MissingTimes(t *testing.T) {
	s := newTestService(&fakeEvents{}, &fakeGroups{}, &fakeResolutions{}, &fakeIgnored{})

	_, err := s.Preflight(context.Background(), 1, nil, "")
	assert.ErrorIs(t, err, ErrNoCandidateTimes)
}

func TestResolutions_DegradesToCacheOnReadFailure(t *testing.T) {
	repo := &fakeResolutions{stored: map[string]model.Resolution{"a__b": model.ResolutionNone}}
	s := newTestService(&fakeEvents{}, &fakeGroups{}, repo, &fakeIgnored{})

	// successful read populates the cache
	res := s.Resolutions(context.Background(), 1)
	require.Equal(t, model.ResolutionNone, res["a__b"])

	repo.getErr = errors.New("db down")
	res = s.Resolutions(context.Background(), 1)
	assert.Equal(t, model.ResolutionNone, res["a__b"])
}

func TestResolutions_DegradesToEmptyWhenNothingCached(t *testing.T) {
	s := newTestService(&fakeEvents{}, &fakeGroups{}, &fakeResolutions{getErr: errors.New("db down")}, &fakeIgnored{})

	res := s.Resolutions(context.Background(), 1)
	assert.Empty(t, res)
}

func TestSetResolution_RoundTrip(t *testing.T) {
	repo := &fakeResolutions{}
	s := newTestService(&fakeEvents{}, &fakeGroups{}, repo, &fakeIgnored{})

	require.NoError(t, s.SetResolution(context.Background(), 1, "a__b", model.ResolutionKeepExisting))
	assert.Equal(t, model.ResolutionKeepExisting, repo.stored["a__b"])

	// last write wins
	require.NoError(t, s.SetResolution(context.Background(), 1, "a__b", model.ResolutionReplaceWithNew))
	assert.Equal(t, model.ResolutionReplaceWithNew, repo.stored["a__b"])
}

func TestSetResolution_InvalidValue(t *testing.T) {
	repo := &fakeResolutions{}
	s := newTestService(&fakeEvents{}, &fakeGroups{}, repo, &fakeIgnored{})

	err := s.SetResolution(context.Background(), 1, "a__b", "postpone")
	require.Error(t, err)
	assert.Empty(t, repo.stored)
}

func TestSetResolution_RollsBackCacheOnPersistFailure(t *testing.T) {
	repo := &fakeResolutions{stored: map[string]model.Resolution{"a__b": model.ResolutionKeepExisting}}
	s := newTestService(&fakeEvents{}, &fakeGroups{}, repo, &fakeIgnored{})

	// warm the cache with the stored decision
	s.Resolutions(context.Background(), 1)

	repo.setErr = errors.New("db down")
	err := s.SetResolution(context.Background(), 1, "a__b", model.ResolutionReplaceWithNew)
	require.Error(t, err)

	// cache still serves the previous decision when reads degrade
	repo.getErr = errors.New("db down")
	res := s.Resolutions(context.Background(), 1)
	assert.Equal(t, model.ResolutionKeepExisting, res["a__b"])
}

func TestClearResolution(t *testing.T) {
	repo := &fakeResolutions{stored: map[string]model.Resolution{"a__b": model.ResolutionKeepExisting}}
	s := newTestService(&fakeEvents{}, &fakeGroups{}, repo, &fakeIgnored{})

	require.NoError(t, s.ClearResolution(context.Background(), 1, "a__b"))
	assert.Empty(t, repo.stored)
}

func TestClearResolution_RollsBackCacheOnPersistFailure(t *testing.T) {
	repo := &fakeResolutions{stored: map[string]model.Resolution{"a__b": model.ResolutionKeepExisting}}
	s := newTestService(&fakeEvents{}, &fakeGroups{}, repo, &fakeIgnored{})

	s.Resolutions(context.Background(), 1)

	repo.setErr = errors.New("db down")
	require.Error(t, s.ClearResolution(context.Background(), 1, "a__b"))

	repo.getErr = errors.New("db down")
	res := s.Resolutions(context.Background(), 1)
	assert.Equal(t, model.ResolutionKeepExisting, res["a__b"])
}

func TestIgnoreConflicts(t *testing.T) {
	ignored := &fakeIgnored{}
	s := newTestService(&fakeEvents{}, &fakeGroups{}, &fakeResolutions{}, ignored)

	s.IgnoreConflicts(context.Background(), 1, []string{"a__b", "c__d"})
	assert.Equal(t, []string{"a__b", "c__d"}, ignored.added)
}

func TestIgnoreConflicts_SwallowsStoreFailure(t *testing.T) {
	ignored := &fakeIgnored{err: errors.New("redis down")}
	s := newTestService(&fakeEvents{}, &fakeGroups{}, &fakeResolutions{}, ignored)

	// must not panic or surface the error
	s.IgnoreConflicts(context.Background(), 1, []string{"a__b"})
	assert.Empty(t, ignored.added)
}
