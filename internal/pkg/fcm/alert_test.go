package fcm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConflictAlert_Message(t *testing.T) {
	start := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)

	alert := ConflictAlert{
		ConflictID:    "1_100__2_200",
		GroupID:       7,
		OverlapStart:  start,
		OverlapEnd:    end,
		ExistingTitle: "dentist",
		IncomingTitle: "school run",
	}

	m := alert.Message("device-token")
	require.NotNil(t, m)

	assert.Equal(t, "device-token", m.Token)
	assert.Equal(t, "schedule_conflict", m.Data["type"])
	assert.Equal(t, "1_100__2_200", m.Data["conflict_id"])
	assert.Equal(t, "7", m.Data["group_id"])
	assert.Equal(t, "2026-03-14T10:00:00Z", m.Data["overlap_start"])
	assert.Equal(t, "2026-03-14T10:30:00Z", m.Data["overlap_end"])
	assert.Equal(t, "dentist", m.Data["existing_title"])
	assert.Equal(t, "school run", m.Data["incoming_title"])
}

func TestConflictAlert_Message_OmitsMissingTitles(t *testing.T) {
	alert := ConflictAlert{
		ConflictID:   "1_100__2_200",
		GroupID:      7,
		OverlapStart: time.Now(),
		OverlapEnd:   time.Now().Add(time.Hour),
	}

	m := alert.Message("device-token")

	_, ok := m.Data["existing_title"]
	assert.False(t, ok)
	_, ok = m.Data["incoming_title"]
	assert.False(t, ok)
}
