package events

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tandemplan/tandem-backend/internal/database"
	"github.com/tandemplan/tandem-backend/internal/model"
	"github.com/teambition/rrule-go"
)

// Service owns event CRUD and expands recurring events into independent
// occurrence instances. Downstream consumers (conflict detection included)
// only ever see expanded instances; each occurrence carries its own id of the
// form "<record id>_<occurrence unix>".
type Service struct {
	db               database.PGX
	eventsRepository eventsRepository
}

type eventsRepository interface {
	CreateEvent(ctx context.Context, q database.Queryable, event *model.Event) (int64, error)
	GetEventByID(ctx context.Context, q database.Queryable, id int64) (*model.Event, error)
	GetEvents(ctx context.Context, q database.Queryable, filter model.EventsFilter) ([]*model.Event, error)
	UpdateEvent(ctx context.Context, q database.Queryable, event *model.Event) error
	DeleteEvent(ctx context.Context, q database.Queryable, id int64) error
}

func NewService(db database.PGX, repo eventsRepository) *Service {
	return &Service{
		db:               db,
		eventsRepository: repo,
	}
}

func (s *Service) CreateEvent(ctx context.Context, info *model.EventCreate) (*model.Event, error) {
	repeatRule := ""
	if info.RepeatType != model.RepeatTypeNone {
		var err error
		repeatRule, err = getRule(info.RepeatType, info.From)
		if err != nil {
			return nil, err
		}
	}

	var endDate *time.Time
	if info.RepeatType == model.RepeatTypeNone {
		endDate = &info.To
	}

	event := &model.Event{
		RepeatRule:  repeatRule,
		Exceptions:  map[int64]struct{}{},
		Until:       endDate,
		EventCreate: *info,
	}

	id, err := s.eventsRepository.CreateEvent(ctx, s.db, event)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.CreateEvent: %w", err)
	}

	event.ID = fmt.Sprintf("%v_%v", id, info.From.Unix())
	return event, nil
}

// GetEvents returns occurrence instances in the filter window, recurring
// records expanded through their rrule and exception dates removed.
func (s *Service) GetEvents(ctx context.Context, filter model.EventsFilter) ([]*model.Event, error) {
	baseEvents, err := s.eventsRepository.GetEvents(ctx, s.db, filter)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetEvents: %w", err)
	}

	var res []*model.Event

	for _, e := range baseEvents {
		if e.RepeatType == model.RepeatTypeNone {
			res = append(res, &model.Event{
				ID:          fmt.Sprintf("%v_%v", e.ID, e.From.Unix()),
				EventCreate: e.EventCreate,
			})
			continue
		}

		duration := e.To.Sub(e.From)

		rOption, err := rrule.StrToROption(e.RepeatRule)
		if err != nil {
			return nil, fmt.Errorf("parse repeat rule %q: %w", e.RepeatRule, err)
		}
		rule, err := rrule.NewRRule(*rOption)
		if err != nil {
			return nil, fmt.Errorf("make rule: %w", err)
		}

		repeats := rule.Between(e.From, filter.To.Add(-1), true)
		for _, r := range repeats {
			from := r
			to := r.Add(duration)

			if filter.To.Before(from) || to.Before(filter.From) {
				continue
			}

			if _, ok := e.Exceptions[r.Unix()]; ok {
				continue
			}

			res = append(res, &model.Event{
				ID:         fmt.Sprintf("%v_%v", e.ID, from.Unix()),
				RepeatRule: e.RepeatRule,
				Exceptions: e.Exceptions,
				EventCreate: model.EventCreate{
					OwnerID:       e.OwnerID,
					GroupID:       e.GroupID,
					Title:         e.Title,
					Notes:         e.Notes,
					AllDay:        e.AllDay,
					From:          from,
					To:            to,
					RepeatType:    e.RepeatType,
					Notifications: e.Notifications,
				},
			})
		}
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].From.Before(res[j].From)
	})

	return res, nil
}

func (s *Service) GetEventByID(ctx context.Context, id int64, ts time.Time) (*model.Event, error) {
	event, err := s.eventsRepository.GetEventByID(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetEventByID: %w", err)
	}

	if event.RepeatType == model.RepeatTypeNone {
		if !event.From.Equal(ts) {
			return nil, model.ErrNoRecord
		}
		return &model.Event{
			ID:          fmt.Sprintf("%v_%v", event.ID, event.From.Unix()),
			EventCreate: event.EventCreate,
		}, nil
	}

	rOption, err := rrule.StrToROption(event.RepeatRule)
	if err != nil {
		return nil, fmt.Errorf("parse repeat rule %q: %w", event.RepeatRule, err)
	}
	rule, err := rrule.NewRRule(*rOption)
	if err != nil {
		return nil, fmt.Errorf("make rule: %w", err)
	}

	if !rule.After(ts, true).Equal(ts) {
		return nil, model.ErrNoRecord
	}

	if _, ok := event.Exceptions[ts.Unix()]; ok {
		return nil, model.ErrNoRecord
	}

	duration := event.To.Sub(event.From)
	return &model.Event{
		ID:         fmt.Sprintf("%v_%v", event.ID, ts.Unix()),
		RepeatRule: event.RepeatRule,
		Exceptions: event.Exceptions,
		EventCreate: model.EventCreate{
			OwnerID:       event.OwnerID,
			GroupID:       event.GroupID,
			Title:         event.Title,
			Notes:         event.Notes,
			AllDay:        event.AllDay,
			From:          ts,
			To:            ts.Add(duration),
			RepeatType:    event.RepeatType,
			Notifications: event.Notifications,
		},
	}, nil
}

func (s *Service) UpdateEvent(ctx context.Context, id int64, ts time.Time, info *model.EventCreate) error {
	oldEvent, err := s.eventsRepository.GetEventByID(ctx, s.db, id)
	if err != nil {
		return fmt.Errorf("get old event: %w", err)
	}

	diff := info.From.Sub(ts)
	from := oldEvent.From.Add(diff)
	to := from.Add(info.To.Sub(info.From))

	repeatRule := oldEvent.RepeatRule
	if oldEvent.RepeatType != model.RepeatTypeNone && !oldEvent.From.Equal(from) {
		var err error
		repeatRule, err = getRule(oldEvent.RepeatType, from)
		if err != nil {
			return err
		}
	}

	exceptions := oldEvent.Exceptions
	if diff != 0 {
		newExceptions := make(map[int64]struct{}, len(oldEvent.Exceptions))
		for e := range oldEvent.Exceptions {
			newExceptions[time.Unix(e, 0).Add(diff).Unix()] = struct{}{}
		}

		exceptions = newExceptions
	}

	var endDate *time.Time
	if oldEvent.RepeatType == model.RepeatTypeNone {
		endDate = &to
	}

	if err := s.eventsRepository.UpdateEvent(ctx, s.db, &model.Event{
		ID:         oldEvent.ID,
		RepeatRule: repeatRule,
		Exceptions: exceptions,
		Until:      endDate,
		EventCreate: model.EventCreate{
			OwnerID:       oldEvent.OwnerID,
			GroupID:       info.GroupID,
			Title:         info.Title,
			Notes:         info.Notes,
			AllDay:        info.AllDay,
			From:          from,
			To:            to,
			RepeatType:    oldEvent.RepeatType,
			Notifications: info.Notifications,
		},
	}); err != nil {
		return fmt.Errorf("eventsRepository.UpdateEvent: %w", err)
	}

	return nil
}

// UpdateEventInstance detaches one occurrence of a recurring event: the
// occurrence date becomes an exception on the original record and the edited
// occurrence is saved as a standalone event.
func (s *Service) UpdateEventInstance(ctx context.Context, id int64, ts time.Time, info *model.EventCreate) error {
	oldEvent, err := s.eventsRepository.GetEventByID(ctx, s.db, id)
	if err != nil {
		return fmt.Errorf("get old event: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	oldEvent.Exceptions[ts.Unix()] = struct{}{}
	if err := s.eventsRepository.UpdateEvent(ctx, tx, oldEvent); err != nil {
		return fmt.Errorf("eventsRepository.UpdateEvent: %w", err)
	}

	if _, err := s.eventsRepository.CreateEvent(ctx, tx, &model.Event{
		RepeatRule: "",
		Exceptions: map[int64]struct{}{},
		Until:      &info.To,
		EventCreate: model.EventCreate{
			OwnerID:       oldEvent.OwnerID,
			GroupID:       info.GroupID,
			Title:         info.Title,
			Notes:         info.Notes,
			AllDay:        info.AllDay,
			From:          info.From,
			To:            info.To,
			RepeatType:    model.RepeatTypeNone,
			Notifications: info.Notifications,
		},
	}); err != nil {
		return fmt.Errorf("eventsRepository.CreateEvent: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func (s *Service) DeleteEvent(ctx context.Context, id int64) error {
	if err := s.eventsRepository.DeleteEvent(ctx, s.db, id); err != nil {
		return fmt.Errorf("eventsRepository.DeleteEvent: %w", err)
	}

	return nil
}

// ParseInstanceID splits an occurrence id "<record id>_<occurrence unix>"
// back into its parts.
func ParseInstanceID(id string) (int64, time.Time, error) {
	parts := strings.SplitN(id, "_", 2)
	if len(parts) != 2 {
		return 0, time.Time{}, fmt.Errorf("malformed event id %q", id)
	}

	recordID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("malformed event id %q", id)
	}

	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("malformed event id %q", id)
	}

	return recordID, time.Unix(ts, 0).UTC(), nil
}

func getRule(t model.RepeatType, from time.Time) (string, error) {
	var freq rrule.Frequency
	var interval int

	switch t {
	case model.RepeatTypeNone:
		return "", nil
	case model.RepeatTypeEveryDay:
		freq = rrule.DAILY
		interval = 1
	case model.RepeatTypeEveryThreeDays:
		freq = rrule.DAILY
		interval = 3
	case model.RepeatTypeEveryWeek:
		freq = rrule.WEEKLY
		interval = 1
	case model.RepeatTypeEveryMonth:
		freq = rrule.MONTHLY
		interval = 1
	case model.RepeatTypeEveryYear:
		freq = rrule.YEARLY
		interval = 1
	default:
		return "", fmt.Errorf("unknown repeat type: %v", t)
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     freq,
		Interval: interval,
		Dtstart:  from.UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("creating rule: %w", err)
	}

	return rule.String(), nil
}
