package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/tandemplan/tandem-backend/internal/business/conflicts"
	"github.com/tandemplan/tandem-backend/internal/config"
	"github.com/tandemplan/tandem-backend/internal/database"
	"github.com/tandemplan/tandem-backend/internal/model"
	"github.com/tandemplan/tandem-backend/internal/pkg/fcm"
	"github.com/xlab/closer"
	"go.uber.org/zap"
)

// Sender periodically scans upcoming group events for schedule conflicts and
// pushes an alert to every member who has not already dealt with the
// conflict. Personal-vs-group collisions are not alerted here; those are a
// single user's concern and surface in their own conflict view.
type Sender struct {
	db            database.PGX
	logger        *zap.SugaredLogger
	groups        groupsRepository
	users         usersRepository
	eventsService eventsService
	conflicts     conflictsService
	ignored       ignoredRepository
	fcm           fcmService

	// conflict ids already alerted, with the time of the alert so stale
	// entries can be pruned
	alerted map[string]time.Time
}

type groupsRepository interface {
	GetGroups(ctx context.Context, q database.Queryable, ids []int64) ([]*model.Group, error)
	GetUserGroupSettings(ctx context.Context, q database.Queryable, filter model.UserGroupSettingsFilter) ([]*model.GroupSettings, error)
}

type usersRepository interface {
	GetUsersByIDs(ctx context.Context, q database.Queryable, ids []int64) ([]*model.User, error)
}

type eventsService interface {
	GetEvents(ctx context.Context, filter model.EventsFilter) ([]*model.Event, error)
}

type conflictsService interface {
	Resolutions(ctx context.Context, userID int64) map[string]model.Resolution
}

type ignoredRepository interface {
	Ignored(ctx context.Context, userID int64) (map[string]struct{}, error)
}

type fcmService interface {
	SendMessageBatch(ctx context.Context, ms []*fcm.Message) error
}

func NewSender(
	db database.PGX,
	logger *zap.SugaredLogger,
	groups groupsRepository,
	users usersRepository,
	eventsService eventsService,
	conflictsService conflictsService,
	ignored ignoredRepository,
	fcm fcmService,
) *Sender {
	return &Sender{
		db:            db,
		logger:        logger,
		groups:        groups,
		users:         users,
		eventsService: eventsService,
		conflicts:     conflictsService,
		ignored:       ignored,
		fcm:           fcm,
		alerted:       make(map[string]time.Time),
	}
}

func (s *Sender) Start(ctx context.Context) {
	s.findAndSendAlerts(ctx)

	ticker := time.NewTicker(time.Minute)
	done := make(chan bool)

	closer.Bind(func() {
		done <- true
		ticker.Stop()
	})

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.findAndSendAlerts(ctx)
		}
	}
}

type groupConflicts struct {
	group     *model.Group
	conflicts []*model.Conflict
}

func (s *Sender) findAndSendAlerts(ctx context.Context) {
	now := time.Now()
	s.pruneAlerted(now)

	filter := model.EventsFilter{
		From: now,
		To:   now.Add(config.AlertWindow()),
	}
	events, err := s.eventsService.GetEvents(ctx, filter)
	if err != nil {
		s.logger.Errorw("failed to get events", "filter", filter, "err", err)
		return
	}

	fresh, err := s.findFreshConflicts(ctx, events)
	if err != nil {
		s.logger.Errorw("failed to detect conflicts", "err", err)
		return
	}
	if len(fresh) == 0 {
		return
	}

	users, settings, err := s.getUsersAndSettings(ctx, fresh)
	if err != nil {
		s.logger.Errorw("failed to get users and settings", "err", err)
		return
	}

	messages := s.buildMessages(ctx, fresh, users, settings)
	if len(messages) == 0 {
		return
	}

	if err := s.fcm.SendMessageBatch(ctx, messages); err != nil {
		s.logger.Errorw("failed to send conflict alerts", "err", err)
		return
	}

	for _, gc := range fresh {
		for _, c := range gc.conflicts {
			s.alerted[c.ID] = now
		}
	}
}

// findFreshConflicts groups upcoming events by group, runs detection per
// group and keeps the conflicts not alerted yet.
func (s *Sender) findFreshConflicts(ctx context.Context, events []*model.Event) ([]*groupConflicts, error) {
	byGroup := make(map[int64][]*model.Event)
	for _, e := range events {
		if e.GroupID == nil {
			continue
		}
		byGroup[*e.GroupID] = append(byGroup[*e.GroupID], e)
	}

	var groupIDs []int64
	for id, groupEvents := range byGroup {
		if len(groupEvents) > 1 {
			groupIDs = append(groupIDs, id)
		}
	}
	if len(groupIDs) == 0 {
		return nil, nil
	}

	groups, err := s.groups.GetGroups(ctx, s.db, groupIDs)
	if err != nil {
		return nil, fmt.Errorf("get groups: %w", err)
	}

	var res []*groupConflicts
	for _, g := range groups {
		canonical := conflicts.Normalize(byGroup[g.ID], []*model.Group{g})
		detected := conflicts.BuildConflicts(conflicts.DetectOverlaps(canonical), canonical)

		var fresh []*model.Conflict
		for _, c := range detected {
			if _, ok := s.alerted[c.ID]; !ok {
				fresh = append(fresh, c)
			}
		}

		if len(fresh) != 0 {
			res = append(res, &groupConflicts{group: g, conflicts: fresh})
		}
	}

	return res, nil
}

func (s *Sender) getUsersAndSettings(ctx context.Context, fresh []*groupConflicts) (map[int64]*model.User, map[int64][]*model.GroupSettings, error) {
	var groupIDs []int64
	var userIDs []int64
	userIDsMap := make(map[int64]struct{})

	for _, gc := range fresh {
		groupIDs = append(groupIDs, gc.group.ID)

		for _, id := range gc.group.UsersIDs {
			if _, ok := userIDsMap[id]; !ok {
				userIDs = append(userIDs, id)
				userIDsMap[id] = struct{}{}
			}
		}
	}

	users, err := s.users.GetUsersByIDs(ctx, s.db, userIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("get users: %w", err)
	}

	usersMap := make(map[int64]*model.User, len(users))
	for _, u := range users {
		usersMap[u.ID] = u
	}

	settings, err := s.groups.GetUserGroupSettings(ctx, s.db, model.UserGroupSettingsFilter{
		UserIDs:  userIDs,
		GroupIDs: groupIDs,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("get settings: %w", err)
	}

	settingsMap := make(map[int64][]*model.GroupSettings)
	for _, gs := range settings {
		settingsMap[gs.UserID] = append(settingsMap[gs.UserID], gs)
	}

	return usersMap, settingsMap, nil
}

func (s *Sender) buildMessages(
	ctx context.Context,
	fresh []*groupConflicts,
	users map[int64]*model.User,
	settings map[int64][]*model.GroupSettings,
) []*fcm.Message {
	var messages []*fcm.Message

	for _, gc := range fresh {
		for _, userID := range gc.group.UsersIDs {
			user, ok := users[userID]
			if !ok {
				s.logger.Errorw("user not found", "user_id", userID, "group_id", gc.group.ID)
				continue
			}
			if !user.Notify || user.PushToken == "" {
				continue
			}

			var groupSettings *model.GroupSettings
			for _, gs := range settings[userID] {
				if gs.GroupID == gc.group.ID {
					groupSettings = gs
				}
			}
			if groupSettings == nil || !groupSettings.Notify {
				continue
			}

			resolutions := s.conflicts.Resolutions(ctx, userID)
			ignored, err := s.ignored.Ignored(ctx, userID)
			if err != nil {
				// best-effort store, alert anyway
				ignored = nil
			}

			for _, c := range gc.conflicts {
				if _, ok := resolutions[c.ID]; ok {
					continue
				}
				if _, ok := ignored[c.ID]; ok {
					continue
				}

				messages = append(messages, newAlert(gc.group, c).Message(user.PushToken))
			}
		}
	}

	return messages
}

func newAlert(group *model.Group, c *model.Conflict) fcm.ConflictAlert {
	alert := fcm.ConflictAlert{
		ConflictID:   c.ID,
		GroupID:      group.ID,
		OverlapStart: c.OverlapStart,
		OverlapEnd:   c.OverlapEnd,
	}

	if c.ExistingEvent != nil {
		alert.ExistingTitle = c.ExistingEvent.Title
	}
	if c.IncomingEvent != nil {
		alert.IncomingTitle = c.IncomingEvent.Title
	}

	return alert
}

func (s *Sender) pruneAlerted(now time.Time) {
	cutoff := now.Add(-2 * config.AlertWindow())
	for id, at := range s.alerted {
		if at.Before(cutoff) {
			delete(s.alerted, id)
		}
	}
}
