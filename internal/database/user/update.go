package user

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/tandemplan/tandem-backend/internal/database"
)

func (*Repository) UpdatePushToken(ctx context.Context, q database.Queryable, userID int64, token string) error {
	qb := database.PSQL.
		Update(database.UsersTable).
		Set("push_token", token).
		Where(sq.Eq{"id": userID})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

func (*Repository) UpdateNotify(ctx context.Context, q database.Queryable, userID int64, notify bool) error {
	qb := database.PSQL.
		Update(database.UsersTable).
		Set("notify", notify).
		Where(sq.Eq{"id": userID})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
