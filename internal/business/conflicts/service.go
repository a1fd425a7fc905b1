package conflicts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tandemplan/tandem-backend/internal/database"
	"github.com/tandemplan/tandem-backend/internal/model"
	"go.uber.org/zap"
)

// How far around the candidate the preflight snapshot reaches. The events
// query matches on interval overlap, so an ongoing event that started well
// before the window still enters the snapshot.
const preflightPadding = 24 * time.Hour

type Service struct {
	db          database.PGX
	logger      *zap.SugaredLogger
	events      eventsService
	groups      groupsRepository
	resolutions resolutionsRepository
	ignored     ignoredRepository

	mu    sync.Mutex
	cache map[int64]map[string]model.Resolution
}

type eventsService interface {
	GetEvents(ctx context.Context, filter model.EventsFilter) ([]*model.Event, error)
}

type groupsRepository interface {
	GetUserGroups(ctx context.Context, q database.Queryable, userID int64) ([]*model.Group, error)
}

type resolutionsRepository interface {
	GetResolutions(ctx context.Context, q database.Queryable, userID int64) (map[string]model.Resolution, error)
	SetResolution(ctx context.Context, q database.Queryable, userID int64, conflictID string, resolution model.Resolution) error
	DeleteResolution(ctx context.Context, q database.Queryable, userID int64, conflictID string) error
}

type ignoredRepository interface {
	Add(ctx context.Context, userID int64, ids []string) error
	Ignored(ctx context.Context, userID int64) (map[string]struct{}, error)
}

func NewService(
	db database.PGX,
	logger *zap.SugaredLogger,
	events eventsService,
	groups groupsRepository,
	resolutions resolutionsRepository,
	ignored ignoredRepository,
) *Service {
	return &Service{
		db:          db,
		logger:      logger,
		events:      events,
		groups:      groups,
		resolutions: resolutions,
		ignored:     ignored,
		cache:       make(map[int64]map[string]model.Resolution),
	}
}

// ConflictStatus is a detected conflict annotated with the caller's decision
// state. An empty Resolution means the conflict is pending.
type ConflictStatus struct {
	*model.Conflict
	Resolution model.Resolution
	Ignored    bool
}

// Settled reports whether the user has already dealt with the conflict, via
// either a durable resolution or the ephemeral ignore list.
func (c *ConflictStatus) Settled() bool {
	return c.Resolution != "" || c.Ignored
}

// ConflictsForUser recomputes conflicts over the user's visible events in the
// given window and annotates each with the user's resolution state. Unless
// includeSettled is set, resolved and ignored conflicts are filtered out.
func (s *Service) ConflictsForUser(ctx context.Context, userID int64, from, to time.Time, includeSettled bool) ([]*ConflictStatus, error) {
	snapshot, err := s.Snapshot(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	conflicts := BuildConflicts(DetectOverlaps(snapshot), snapshot)

	resolutions := s.Resolutions(ctx, userID)

	ignored, err := s.ignored.Ignored(ctx, userID)
	if err != nil {
		// Best-effort store: an unavailable ignore list only makes
		// dismissed conflicts reappear.
		s.logger.Warnw("failed to load ignored conflicts", "user_id", userID, "err", err)
		ignored = nil
	}

	res := make([]*ConflictStatus, 0, len(conflicts))
	for _, c := range conflicts {
		status := &ConflictStatus{Conflict: c}
		status.Resolution = resolutions[c.ID]
		_, status.Ignored = ignored[c.ID]

		if status.Settled() && !includeSettled {
			continue
		}

		res = append(res, status)
	}

	return res, nil
}

// Snapshot loads and normalizes the user's visible events: personal ones plus
// every event in groups the user belongs to.
func (s *Service) Snapshot(ctx context.Context, userID int64, from, to time.Time) ([]*model.CalendarEvent, error) {
	events, _, err := s.snapshot(ctx, userID, from, to)
	return events, err
}

func (s *Service) snapshot(ctx context.Context, userID int64, from, to time.Time) ([]*model.CalendarEvent, []*model.Group, error) {
	groups, err := s.groups.GetUserGroups(ctx, s.db, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get user groups: %w", err)
	}

	groupIDs := make([]int64, len(groups))
	for i, g := range groups {
		groupIDs[i] = g.ID
	}

	events, err := s.events.GetEvents(ctx, model.EventsFilter{
		From:     from,
		To:       to,
		GroupIDs: groupIDs,
		OwnerID:  &userID,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("get events: %w", err)
	}

	return Normalize(events, groups), groups, nil
}

// Preflight simulates detection for a not-yet-saved candidate. A failure to
// load the current snapshot fails open: an advisory warning must never block
// saving, so the caller gets an empty list and the save proceeds.
func (s *Service) Preflight(ctx context.Context, userID int64, candidate *model.CalendarEvent, editingEventID string) ([]*model.Conflict, error) {
	if candidate == nil || candidate.From.IsZero() || candidate.To.IsZero() {
		return nil, ErrNoCandidateTimes
	}

	snapshot, groups, err := s.snapshot(ctx, userID, candidate.From.Add(-preflightPadding), candidate.To.Add(preflightPadding))
	if err != nil {
		s.logger.Warnw("preflight snapshot failed, failing open", "user_id", userID, "err", err)
		return nil, nil
	}

	cand := *candidate
	cand.GroupType = model.GroupTypePersonal
	if cand.GroupID != nil {
		cand.GroupType = model.GroupTypePair
		for _, g := range groups {
			if g.ID == *cand.GroupID {
				cand.GroupType = model.ParseGroupType(g.Type)
				break
			}
		}
	}

	return SimulatePreflight(&cand, snapshot, editingEventID)
}

// Resolutions returns the user's recorded decisions keyed by conflict id. On
// a read failure it degrades to the local cache (possibly empty) instead of
// erroring, so conflict display falls back to "all pending".
func (s *Service) Resolutions(ctx context.Context, userID int64) map[string]model.Resolution {
	stored, err := s.resolutions.GetResolutions(ctx, s.db, userID)
	if err != nil {
		s.logger.Warnw("failed to load resolutions, degrading to pending", "user_id", userID, "err", err)
		return s.cachedResolutions(userID)
	}

	s.mu.Lock()
	cached := make(map[string]model.Resolution, len(stored))
	for k, v := range stored {
		cached[k] = v
	}
	s.cache[userID] = cached
	s.mu.Unlock()

	return stored
}

// SetResolution records a decision for one conflict id, last write wins. The
// local cache is updated optimistically and rolled back if persistence fails,
// in which case the returned error is retryable.
func (s *Service) SetResolution(ctx context.Context, userID int64, conflictID string, resolution model.Resolution) error {
	if !resolution.Valid() {
		return fmt.Errorf("unknown resolution %q", resolution)
	}

	s.mu.Lock()
	userCache, ok := s.cache[userID]
	if !ok {
		userCache = make(map[string]model.Resolution)
		s.cache[userID] = userCache
	}
	prev, had := userCache[conflictID]
	s.mu.Unlock()

	write := newOptimisticWrite(
		func() {
			s.mu.Lock()
			userCache[conflictID] = resolution
			s.mu.Unlock()
		},
		func() {
			s.mu.Lock()
			if had {
				userCache[conflictID] = prev
			} else {
				delete(userCache, conflictID)
			}
			s.mu.Unlock()
		},
	)

	if err := s.resolutions.SetResolution(ctx, s.db, userID, conflictID, resolution); err != nil {
		_ = write.Rollback()
		return fmt.Errorf("persist resolution: %w", err)
	}

	_ = write.Commit()
	return nil
}

// ClearResolution removes a recorded decision, returning the conflict to the
// pending state. Same optimistic write discipline as SetResolution.
func (s *Service) ClearResolution(ctx context.Context, userID int64, conflictID string) error {
	s.mu.Lock()
	userCache, ok := s.cache[userID]
	if !ok {
		userCache = make(map[string]model.Resolution)
		s.cache[userID] = userCache
	}
	prev, had := userCache[conflictID]
	s.mu.Unlock()

	write := newOptimisticWrite(
		func() {
			s.mu.Lock()
			delete(userCache, conflictID)
			s.mu.Unlock()
		},
		func() {
			s.mu.Lock()
			if had {
				userCache[conflictID] = prev
			}
			s.mu.Unlock()
		},
	)

	if err := s.resolutions.DeleteResolution(ctx, s.db, userID, conflictID); err != nil {
		_ = write.Rollback()
		return fmt.Errorf("clear resolution: %w", err)
	}

	_ = write.Commit()
	return nil
}

// IgnoreConflicts adds ids to the user's ephemeral ignore list. The store is
// best-effort by design: on failure the conflicts just reappear later, so the
// error is logged and swallowed.
func (s *Service) IgnoreConflicts(ctx context.Context, userID int64, ids []string) {
	if err := s.ignored.Add(ctx, userID, ids); err != nil {
		s.logger.Warnw("failed to store ignored conflicts", "user_id", userID, "ids", ids, "err", err)
	}
}

func (s *Service) cachedResolutions(userID int64) map[string]model.Resolution {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make(map[string]model.Resolution, len(s.cache[userID]))
	for k, v := range s.cache[userID] {
		res[k] = v
	}

	return res
}
