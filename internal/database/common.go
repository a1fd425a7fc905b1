package database

import sq "github.com/Masterminds/squirrel"

// PSQL is the shared query builder configured for Postgres placeholders.
var PSQL = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	UsersTable               = "users"
	GroupsTable              = "groups"
	UserGroupTable           = "user_group"
	EventsTable              = "events"
	ConflictResolutionsTable = "conflict_resolutions"
)
