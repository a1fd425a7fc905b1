package api

import (
	"fmt"
	"time"

	"github.com/tandemplan/tandem-backend/internal/model"
)

const dateTimeFormat = time.RFC3339

type dateTime time.Time

func (d dateTime) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", time.Time(d).Format(dateTimeFormat))), nil
}

func (d *dateTime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid datetime %s", s)
	}

	t, err := time.Parse(dateTimeFormat, s[1:len(s)-1])
	if err != nil {
		return fmt.Errorf("invalid datetime: %w", err)
	}

	*d = dateTime(t)
	return nil
}

// duration is a notification offset serialized as whole seconds.
type duration time.Duration

func (d duration) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%d", int64(time.Duration(d).Seconds()))), nil
}

func (d *duration) UnmarshalJSON(data []byte) error {
	var seconds int64
	if _, err := fmt.Sscanf(string(data), "%d", &seconds); err != nil {
		return fmt.Errorf("invalid duration %s", data)
	}

	*d = duration(time.Duration(seconds) * time.Second)
	return nil
}

type eventResp struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Notes         string     `json:"notes,omitempty"`
	GroupID       *int64     `json:"group_id"`
	AllDay        bool       `json:"all_day"`
	From          dateTime   `json:"from"`
	To            dateTime   `json:"to"`
	RepeatType    int        `json:"repeat_type"`
	Notifications []duration `json:"notifications,omitempty"`
}

func mapToEventResp(e *model.Event) (*eventResp, error) {
	notifications := make([]duration, len(e.Notifications))
	for i, n := range e.Notifications {
		notifications[i] = duration(n)
	}

	return &eventResp{
		ID:            e.ID,
		Title:         e.Title,
		Notes:         e.Notes,
		GroupID:       e.GroupID,
		AllDay:        e.AllDay,
		From:          dateTime(e.From),
		To:            dateTime(e.To),
		RepeatType:    int(e.RepeatType),
		Notifications: notifications,
	}, nil
}

type calendarEventResp struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	From      dateTime `json:"from"`
	To        dateTime `json:"to"`
	GroupID   *int64   `json:"group_id"`
	GroupType string   `json:"group_type"`
	Notes     string   `json:"notes,omitempty"`
}

func mapToCalendarEventResp(e *model.CalendarEvent) *calendarEventResp {
	if e == nil {
		return nil
	}

	return &calendarEventResp{
		ID:        e.ID,
		Title:     e.Title,
		From:      dateTime(e.From),
		To:        dateTime(e.To),
		GroupID:   e.GroupID,
		GroupType: string(e.GroupType),
		Notes:     e.Notes,
	}
}

type conflictResp struct {
	ID              string             `json:"id"`
	ExistingEventID string             `json:"existing_event_id"`
	IncomingEventID string             `json:"incoming_event_id"`
	OverlapStart    dateTime           `json:"overlap_start"`
	OverlapEnd      dateTime           `json:"overlap_end"`
	ExistingEvent   *calendarEventResp `json:"existing_event,omitempty"`
	IncomingEvent   *calendarEventResp `json:"incoming_event,omitempty"`
	Resolution      string             `json:"resolution,omitempty"`
	Ignored         bool               `json:"ignored,omitempty"`
}

func mapToConflictResp(c *model.Conflict) *conflictResp {
	return &conflictResp{
		ID:              c.ID,
		ExistingEventID: c.ExistingEventID,
		IncomingEventID: c.IncomingEventID,
		OverlapStart:    dateTime(c.OverlapStart),
		OverlapEnd:      dateTime(c.OverlapEnd),
		ExistingEvent:   mapToCalendarEventResp(c.ExistingEvent),
		IncomingEvent:   mapToCalendarEventResp(c.IncomingEvent),
	}
}
