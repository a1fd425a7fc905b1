package model

import "time"

type EventCreate struct {
	OwnerID       int64
	GroupID       *int64
	Title         string
	Notes         string
	AllDay        bool
	From          time.Time
	To            time.Time
	RepeatType    RepeatType
	Notifications []time.Duration
}

type Event struct {
	ID         string
	RepeatRule string
	Until      *time.Time
	Exceptions map[int64]struct{}
	EventCreate
}

type RepeatType int

const (
	RepeatTypeNone RepeatType = iota
	RepeatTypeEveryDay
	RepeatTypeEveryThreeDays
	RepeatTypeEveryWeek
	RepeatTypeEveryMonth
	RepeatTypeEveryYear
)

type EventsFilter struct {
	From     time.Time
	To       time.Time
	GroupIDs []int64
	OwnerID  *int64
}
