package resolutions

import "github.com/tandemplan/tandem-backend/internal/database"

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var baseQuery = database.PSQL.
	Select(
		"user_id",
		"conflict_id",
		"resolution",
	).
	From(database.ConflictResolutionsTable)
