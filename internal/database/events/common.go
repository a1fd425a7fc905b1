package events

import "github.com/tandemplan/tandem-backend/internal/database"

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var baseQuery = database.PSQL.
	Select("id",
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
		"exceptions",
		"notifications",
	).
	From(database.EventsTable)
