package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gw-records/internal/custom_err"
	"gw-records/internal/models"
	"gw-records/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolationCode  = "23505"
	pgConnectionErrorClass = "08"
)

type RecordRepository interface {
	Insert(ctx context.Context, record *models.Record) error
	Query(ctx context.Context, filter storage.RecordFilter) ([]models.Record, error)
	AggregateByDestinationReference(ctx context.Context, destinationID, reference, excludeRecordID string) ([]models.TypeAggregate, error)
}

// DB минимальный контракт pgxpool.Pool, используемый репозиторием
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRecordRepository struct {
	db DB
}

func NewRecordRepository(db DB) RecordRepository {
	return &PgRecordRepository{db: db}
}

func (r *PgRecordRepository) Insert(ctx context.Context, record *models.Record) error {
	const op = "storage.Insert"

	_, err := r.db.Exec(ctx, storage.InsertRecordQuery,
		record.RecordID,
		record.Time.Time,
		record.SourceID,
		record.DestinationID,
		string(record.Type),
		record.Value,
		record.Unit,
		record.Reference,
	)
	if err != nil {
		return mapPgError(op, err)
	}
	return nil
}

func (r *PgRecordRepository) Query(ctx context.Context, filter storage.RecordFilter) ([]models.Record, error) {
	const op = "storage.Query"

	query, args := filter.BuildQuery()
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(op, err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var record models.Record
		err := rows.Scan(
			&record.RecordID,
			&record.Time.Time,
			&record.SourceID,
			&record.DestinationID,
			&record.Type,
			&record.Value,
			&record.Unit,
			&record.Reference,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: scan error: %w", op, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(op, err)
	}
	return records, nil
}

func (r *PgRecordRepository) AggregateByDestinationReference(ctx context.Context, destinationID, reference, excludeRecordID string) ([]models.TypeAggregate, error) {
	const op = "storage.AggregateByDestinationReference"

	rows, err := r.db.Query(ctx, storage.AggregateByDestinationReferenceQuery,
		destinationID, reference, excludeRecordID)
	if err != nil {
		return nil, mapPgError(op, err)
	}
	defer rows.Close()

	var aggregates []models.TypeAggregate
	for rows.Next() {
		var agg models.TypeAggregate
		if err := rows.Scan(&agg.Type, &agg.TotalValue, &agg.Count); err != nil {
			return nil, fmt.Errorf("%s: scan error: %w", op, err)
		}
		aggregates = append(aggregates, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(op, err)
	}
	return aggregates, nil
}

// mapPgError переводит ошибки драйвера в ошибки доменной таксономии.
// Детали драйвера сохраняются в обертке для диагностики.
func mapPgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolationCode:
			return fmt.Errorf("%s: %w", op, custom_err.ErrDuplicateRecord)
		case strings.HasPrefix(pgErr.Code, pgConnectionErrorClass):
			return fmt.Errorf("%s: %w: %s", op, custom_err.ErrStorageUnavailable, pgErr.Code)
		}
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return fmt.Errorf("%s: %w", op, custom_err.ErrStorageUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}
