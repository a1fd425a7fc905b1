package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tandemplan/tandem-backend/internal/model"
)

func TestWindowed_KeepsOngoingEvents(t *testing.T) {
	from := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	sql, args, err := windowed(model.EventsFilter{From: from, To: to}).ToSql()
	require.NoError(t, err)

	// overlap semantics: bound start_date above and end_date below, so a
	// record that started before the window but is still running matches
	assert.Contains(t, sql, "start_date < $1")
	assert.Contains(t, sql, "end_date IS NULL OR end_date > $2")
	assert.NotContains(t, sql, "start_date >=")

	require.Len(t, args, 2)
	assert.Equal(t, to, args[0])
	assert.Equal(t, from, args[1])
}
