package events

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/tandemplan/tandem-backend/internal/database"
	"github.com/tandemplan/tandem-backend/internal/model"
)

func (*Repository) GetEventByID(ctx context.Context, q database.Queryable, id int64) (*model.Event, error) {
	qb := baseQuery.
		Where(sq.Eq{"id": id})

	dto := &eventDTO{}
	if err := q.Get(ctx, dto, qb); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNoRecord
		}
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	return mapToEvent(dto), nil
}

// windowed restricts the base query to records that can produce an occurrence
// inside [from, to): the record starts before the window ends and either still
// recurs (null end_date) or ends after the window starts. An ongoing event
// that started long before the window still qualifies.
func windowed(filter model.EventsFilter) sq.SelectBuilder {
	return baseQuery.
		Where(sq.Lt{"start_date": filter.To}).
		Where(sq.Or{sq.Eq{"end_date": nil}, sq.Gt{"end_date": filter.From}})
}

func (*Repository) GetEvents(ctx context.Context, q database.Queryable, filter model.EventsFilter) ([]*model.Event, error) {
	qb := windowed(filter)

	scope := sq.Or{}
	if len(filter.GroupIDs) != 0 {
		scope = append(scope, sq.Eq{"group_id": filter.GroupIDs})
	}
	if filter.OwnerID != nil {
		scope = append(scope, sq.And{sq.Eq{"owner_id": *filter.OwnerID}, sq.Eq{"group_id": nil}})
	}
	if len(scope) != 0 {
		qb = qb.Where(scope)
	}

	var dtos []*eventDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.Event, len(dtos))
	for i, d := range dtos {
		res[i] = mapToEvent(d)
	}

	return res, nil
}
