package resolutions

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/tandemplan/tandem-backend/internal/database"
	"github.com/tandemplan/tandem-backend/internal/model"
)

type resolutionDTO struct {
	UserID     int64
	ConflictID string
	Resolution string
}

// GetResolutions returns every resolution the user has recorded, keyed by
// conflict id. Ids whose events no longer exist may still be present; callers
// treat those as orphaned and ignore them.
func (*Repository) GetResolutions(ctx context.Context, q database.Queryable, userID int64) (map[string]model.Resolution, error) {
	qb := baseQuery.
		Where(sq.Eq{"user_id": userID})

	var dtos []*resolutionDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make(map[string]model.Resolution, len(dtos))
	for _, d := range dtos {
		res[d.ConflictID] = model.Resolution(d.Resolution)
	}

	return res, nil
}

// SetResolution upserts one resolution. Last write wins.
func (*Repository) SetResolution(ctx context.Context, q database.Queryable, userID int64, conflictID string, resolution model.Resolution) error {
	qb := database.PSQL.
		Insert(database.ConflictResolutionsTable).
		Columns("user_id", "conflict_id", "resolution").
		Values(userID, conflictID, string(resolution)).
		Suffix("on conflict (user_id, conflict_id) do update set resolution = excluded.resolution, updated_at = now()")

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

// DeleteResolution removes a recorded resolution, returning the conflict to
// the pending state.
func (*Repository) DeleteResolution(ctx context.Context, q database.Queryable, userID int64, conflictID string) error {
	qb := database.PSQL.
		Delete(database.ConflictResolutionsTable).
		Where(sq.Eq{"user_id": userID, "conflict_id": conflictID})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
