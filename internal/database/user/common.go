package user

import (
	"github.com/tandemplan/tandem-backend/internal/database"
)

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var baseQuery = database.PSQL.
	Select(
		"id",
		"full_name",
		"email",
		"phone_number",
		"photo",
		"push_token",
		"notify",
	).
	From(database.UsersTable)
