package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gw-records/internal/models"
)

func TestRecordFilter_BuildQuery_Empty(t *testing.T) {
	query, args := RecordFilter{}.BuildQuery()

	assert.Empty(t, args)
	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "ORDER BY time DESC")
}

func TestRecordFilter_BuildQuery_AllConditions(t *testing.T) {
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 31, 23, 59, 59, 0, time.UTC)
	recordType := models.RecordTypePositive
	destination := "otherdest"

	filter := RecordFilter{
		StartTime:     &start,
		EndTime:       &end,
		Type:          &recordType,
		DestinationID: &destination,
	}

	query, args := filter.BuildQuery()

	require.Len(t, args, 4)
	assert.Equal(t, start, args[0])
	assert.Equal(t, end, args[1])
	assert.Equal(t, "positive", args[2])
	assert.Equal(t, "otherdest", args[3])

	assert.Contains(t, query, "time >= $1")
	assert.Contains(t, query, "time <= $2")
	assert.Contains(t, query, "type = $3")
	assert.Contains(t, query, "destination_id = $4")
	assert.Contains(t, query, "ORDER BY time DESC")
}

func TestRecordFilter_BuildQuery_PlaceholdersFollowPresentFields(t *testing.T) {
	destination := "otherdest"
	filter := RecordFilter{DestinationID: &destination}

	query, args := filter.BuildQuery()

	require.Len(t, args, 1)
	assert.Contains(t, query, "destination_id = $1")
	assert.NotContains(t, query, "$2")
}
