package group

import (
	"github.com/tandemplan/tandem-backend/internal/database"
)

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var baseQuery = database.PSQL.
	Select(
		"g.id",
		"g.name",
		"g.group_type",
		"g.creator_id",
		"array_agg(ug.user_id) users_ids",
	).
	From(database.GroupsTable + " g").
	Join(database.UserGroupTable + " ug on g.id = ug.group_id").
	GroupBy("g.id")
