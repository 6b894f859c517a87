package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gw-records/internal/models"
)

func aggRecord(id, destination string, recordType models.RecordType, value string) models.Record {
	record := models.Record{
		RecordID:      id,
		Time:          models.RecordTime{Time: time.Date(2025, 7, 11, 17, 19, 45, 0, time.UTC)},
		SourceID:      "somesource",
		DestinationID: destination,
		Type:          recordType,
		Unit:          "euro",
		Reference:     "ref-1",
	}
	if value != "" {
		record.Value = decimal.NewNullDecimal(decimal.RequireFromString(value))
	}
	return record
}

func TestMergeRecordIntoAggregates_ExistingBucket(t *testing.T) {
	aggregates := []models.TypeAggregate{
		{Type: models.RecordTypePositive, TotalValue: decimal.RequireFromString("55.80"), Count: 1},
		{Type: models.RecordTypeNegative, TotalValue: decimal.RequireFromString("10.00"), Count: 2},
	}

	merged := MergeRecordIntoAggregates(aggregates, aggRecord("r2", "otherdest", models.RecordTypePositive, "55.80"))

	require.Len(t, merged, 2)
	assert.True(t, merged[0].TotalValue.Equal(decimal.RequireFromString("111.60")),
		"ожидалось ровно 111.60, получено %s", merged[0].TotalValue)
	assert.Equal(t, int64(2), merged[0].Count)

	// второй агрегат не тронут
	assert.True(t, merged[1].TotalValue.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, int64(2), merged[1].Count)
}

func TestMergeRecordIntoAggregates_NewBucket(t *testing.T) {
	aggregates := []models.TypeAggregate{
		{Type: models.RecordTypePositive, TotalValue: decimal.RequireFromString("100.00"), Count: 3},
	}

	merged := MergeRecordIntoAggregates(aggregates, aggRecord("r1", "dest", models.RecordTypeNegative, "7.25"))

	require.Len(t, merged, 2)
	assert.Equal(t, models.RecordTypeNegative, merged[1].Type)
	assert.True(t, merged[1].TotalValue.Equal(decimal.RequireFromString("7.25")))
	assert.Equal(t, int64(1), merged[1].Count)
}

func TestMergeRecordIntoAggregates_EmptyInput(t *testing.T) {
	merged := MergeRecordIntoAggregates(nil, aggRecord("r1", "dest", models.RecordTypePositive, "150.00"))

	require.Len(t, merged, 1)
	assert.Equal(t, models.RecordTypePositive, merged[0].Type)
	assert.True(t, merged[0].TotalValue.Equal(decimal.RequireFromString("150.00")))
	assert.Equal(t, int64(1), merged[0].Count)
}

func TestMergeRecordIntoAggregates_NullValueCountsAsZero(t *testing.T) {
	aggregates := []models.TypeAggregate{
		{Type: models.RecordTypePositive, TotalValue: decimal.RequireFromString("55.80"), Count: 1},
	}

	merged := MergeRecordIntoAggregates(aggregates, aggRecord("r2", "dest", models.RecordTypePositive, ""))

	require.Len(t, merged, 1)
	assert.True(t, merged[0].TotalValue.Equal(decimal.RequireFromString("55.80")))
	assert.Equal(t, int64(2), merged[0].Count)
}

func TestMergeRecordIntoAggregates_DoesNotMutateInput(t *testing.T) {
	aggregates := []models.TypeAggregate{
		{Type: models.RecordTypePositive, TotalValue: decimal.RequireFromString("55.80"), Count: 1},
	}

	_ = MergeRecordIntoAggregates(aggregates, aggRecord("r2", "dest", models.RecordTypePositive, "1.00"))

	assert.True(t, aggregates[0].TotalValue.Equal(decimal.RequireFromString("55.80")))
	assert.Equal(t, int64(1), aggregates[0].Count)
}

func TestGroupRecordsByDestination_ExactDecimalTotals(t *testing.T) {
	records := []models.Record{
		aggRecord("34343434", "otherdest", models.RecordTypePositive, "55.80"),
		aggRecord("sdfdsddddfsdfd", "otherdest", models.RecordTypePositive, "55.80"),
	}

	grouped := GroupRecordsByDestination(records)

	require.Contains(t, grouped, "otherdest")
	group := grouped["otherdest"]
	assert.Len(t, group.Records, 2)
	assert.True(t, group.TotalValue.Equal(decimal.RequireFromString("111.60")),
		"ожидалось ровно 111.60, получено %s", group.TotalValue)
}

func TestGroupRecordsByDestination_PreservesOrder(t *testing.T) {
	records := []models.Record{
		aggRecord("latest", "dest", models.RecordTypePositive, "3.00"),
		aggRecord("middle", "dest", models.RecordTypeNegative, "2.00"),
		aggRecord("oldest", "dest", models.RecordTypePositive, "1.00"),
	}

	grouped := GroupRecordsByDestination(records)

	group := grouped["dest"]
	require.Len(t, group.Records, 3)
	assert.Equal(t, "latest", group.Records[0].RecordID)
	assert.Equal(t, "middle", group.Records[1].RecordID)
	assert.Equal(t, "oldest", group.Records[2].RecordID)
	assert.True(t, group.TotalValue.Equal(decimal.RequireFromString("6.00")))
}

func TestGroupRecordsByDestination_MultipleDestinations(t *testing.T) {
	records := []models.Record{
		aggRecord("r1", "dest-a", models.RecordTypePositive, "10.00"),
		aggRecord("r2", "dest-b", models.RecordTypePositive, "20.00"),
		aggRecord("r3", "dest-a", models.RecordTypeNegative, "5.50"),
	}

	grouped := GroupRecordsByDestination(records)

	require.Len(t, grouped, 2)
	assert.True(t, grouped["dest-a"].TotalValue.Equal(decimal.RequireFromString("15.50")))
	assert.True(t, grouped["dest-b"].TotalValue.Equal(decimal.RequireFromString("20.00")))
}

func TestGroupRecordsByDestination_NullValueContributesZero(t *testing.T) {
	records := []models.Record{
		aggRecord("r1", "dest", models.RecordTypePositive, "10.00"),
		aggRecord("r2", "dest", models.RecordTypePositive, ""),
	}

	grouped := GroupRecordsByDestination(records)

	group := grouped["dest"]
	assert.Len(t, group.Records, 2)
	assert.True(t, group.TotalValue.Equal(decimal.RequireFromString("10.00")))
}

func TestGroupRecordsByDestination_Empty(t *testing.T) {
	grouped := GroupRecordsByDestination(nil)
	assert.Empty(t, grouped)
}