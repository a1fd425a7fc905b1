package user

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/tandemplan/tandem-backend/internal/database"
	"github.com/tandemplan/tandem-backend/internal/model"
)

func (*Repository) SearchUsers(ctx context.Context, q database.Queryable, filter model.UserSearchFilter) ([]*model.User, error) {
	pattern := "%" + filter.Query + "%"

	qb := baseQuery.
		Where(sq.Or{
			sq.ILike{"full_name": pattern},
			sq.ILike{"email": pattern},
			sq.ILike{"phone_number": pattern},
		}).
		OrderBy("full_name").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Page * filter.Limit))

	var dtos []*userDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.User, len(dtos))
	for i, d := range dtos {
		res[i] = mapToUser(d)
	}

	return res, nil
}
