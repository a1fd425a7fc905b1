package events

import (
	"context"
	"fmt"
	"time"

	"github.com/tandemplan/tandem-backend/internal/database"
	"github.com/tandemplan/tandem-backend/internal/model"
)

func (*Repository) CreateEvent(ctx context.Context, q database.Queryable, event *model.Event) (int64, error) {
	notifications := make([]int64, len(event.Notifications))
	for i, n := range event.Notifications {
		notifications[i] = int64(n)
	}

	var endDate *time.Time
	if event.RepeatType == model.RepeatTypeNone {
		endDate = &event.To
	}

	qb := database.PSQL.
		Insert(database.EventsTable).
		Columns(
			"title",
			"notes",
			"owner_id",
			"group_id",
			"all_day",
			"repeat_type",
			"start_date",
			"end_date",
			"duration",
			"recurrence_rule",
			"notifications",
		).
		Values(
			event.Title,
			event.Notes,
			event.OwnerID,
			event.GroupID,
			event.AllDay,
			event.RepeatType,
			event.From,
			endDate,
			event.To.Sub(event.From),
			event.RepeatRule,
			notifications,
		).
		Suffix("returning id")

	var id int64
	if err := q.Get(ctx, &id, qb); err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	return id, nil
}
