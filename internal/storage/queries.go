package storage

const (
	// Record queries
	InsertRecordQuery = `
		INSERT INTO records (record_id, time, source_id, destination_id, type, value, unit, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	// Базовый SELECT, к нему добавляются условия из RecordFilter
	SelectRecordsBaseQuery = `
		SELECT record_id, time, source_id, destination_id, type, value, unit, reference
		FROM records
	`

	// Агрегация по (destination_id, reference) с разбивкой по типу.
	// Только что вставленная запись исключается по record_id: движок агрегации
	// добавляет её сам, поэтому она учитывается ровно один раз независимо
	// от видимости чтения после записи.
	AggregateByDestinationReferenceQuery = `
		SELECT type, COALESCE(SUM(value), 0) AS total_value, COUNT(*) AS total_records
		FROM records
		WHERE destination_id = $1 AND reference = $2 AND record_id <> $3
		GROUP BY type
	`
)
