package events

import (
	"strconv"
	"time"

	"github.com/tandemplan/tandem-backend/internal/model"
)

type eventDTO struct {
	ID             int64
	Title          string
	Notes          string
	OwnerID        int64
	GroupID        *int64
	AllDay         bool
	RepeatType     int
	StartDate      time.Time
	EndDate        *time.Time
	Duration       time.Duration
	RecurrenceRule string
	Exceptions     []time.Time
	Notifications  []int64
}

func mapToEvent(dto *eventDTO) *model.Event {
	notifications := make([]time.Duration, len(dto.Notifications))
	for i, n := range dto.Notifications {
		notifications[i] = time.Duration(n)
	}

	exceptions := make(map[int64]struct{}, len(dto.Exceptions))
	for _, e := range dto.Exceptions {
		exceptions[e.Unix()] = struct{}{}
	}

	return &model.Event{
		ID:         strconv.FormatInt(dto.ID, 10),
		RepeatRule: dto.RecurrenceRule,
		Exceptions: exceptions,
		Until:      dto.EndDate,
		EventCreate: model.EventCreate{
			OwnerID:       dto.OwnerID,
			GroupID:       dto.GroupID,
			Title:         dto.Title,
			Notes:         dto.Notes,
			AllDay:        dto.AllDay,
			From:          dto.StartDate,
			To:            dto.StartDate.Add(dto.Duration),
			RepeatType:    model.RepeatType(dto.RepeatType),
			Notifications: notifications,
		},
	}
}
