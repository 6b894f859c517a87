package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gw-records/internal/custom_err"
	"gw-records/internal/kafka"
	"gw-records/internal/models"
	"gw-records/internal/storage"
	"gw-records/internal/storage/postgres"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Records interface {
	StoreRecord(ctx context.Context, record models.Record) (*models.StoreRecordResponse, error)
	AggregatedRecords(ctx context.Context, filter storage.RecordFilter) (map[string]models.DestinationAggregate, error)
}

// notifyJob отложенная публикация события о сохраненной записи
type notifyJob struct {
	event     models.RecordStoredEvent
	highValue bool
}

type RecordService struct {
	repo      postgres.RecordRepository
	producer  kafka.Producer
	threshold decimal.Decimal
	log       *slog.Logger

	eventQueue chan notifyJob
	wg         sync.WaitGroup
	stopCh     chan struct{}
}

const publishWorkers = 5

func NewRecordService(
	repo postgres.RecordRepository,
	producer kafka.Producer,
	highValueThreshold decimal.Decimal,
	log *slog.Logger,
) *RecordService {
	svc := &RecordService{
		repo:       repo,
		producer:   producer,
		threshold:  highValueThreshold,
		log:        log,
		eventQueue: make(chan notifyJob, 100),
		stopCh:     make(chan struct{}),
	}

	for i := 0; i < publishWorkers; i++ {
		svc.wg.Add(1)
		go svc.publishWorker(i)
	}

	return svc
}

// publishWorker отправляет события из очереди. Публикация выполняется с
// собственным таймаутом и не зависит от контекста исходного запроса:
// отключение клиента не отменяет уже поставленную в очередь отправку.
func (s *RecordService) publishWorker(id int) {
	defer s.wg.Done()
	s.log.Info("publish worker started", slog.Int("worker_id", id))

	for {
		select {
		case job := <-s.eventQueue:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.producer.PublishAggregation(ctx, job.event); err != nil {
				s.log.Error("publish aggregation failed",
					slog.Int("worker_id", id),
					slog.String("record_id", job.event.RecordID),
					slog.String("error", err.Error()))
			}
			if job.highValue {
				if err := s.producer.PublishHighValueAlert(ctx, job.event); err != nil {
					s.log.Error("publish high value alert failed",
						slog.Int("worker_id", id),
						slog.String("record_id", job.event.RecordID),
						slog.String("error", err.Error()))
				}
			}
			cancel()

		case <-s.stopCh:
			s.log.Info("publish worker stopping", slog.Int("worker_id", id))
			return
		}
	}
}

func (s *RecordService) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down record service")

	close(s.stopCh)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("all publish workers stopped")
		return nil
	case <-ctx.Done():
		s.log.Warn("shutdown timeout exceeded")
		return ctx.Err()
	}
}

// StoreRecord проводит запись через конвейер validate → persist → aggregate →
// notify. Ошибки публикации никогда не влияют на результат сохранения.
func (s *RecordService) StoreRecord(ctx context.Context, record models.Record) (*models.StoreRecordResponse, error) {
	const op = "service.StoreRecord"

	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", custom_err.ErrInvalidInput, err)
	}

	if err := s.repo.Insert(ctx, &record); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("запись сохранена",
		slog.String("record_id", record.RecordID),
		slog.String("destination_id", record.DestinationID),
		slog.String("reference", record.Reference))

	// Запись уже надежно сохранена: сбой чтения агрегатов не должен
	// превращать успешную вставку в ошибку запроса.
	aggregates, err := s.repo.AggregateByDestinationReference(ctx,
		record.DestinationID, record.Reference, record.RecordID)
	if err != nil {
		s.log.Error("чтение агрегатов не удалось, событие будет содержать только новую запись",
			slog.String("record_id", record.RecordID),
			slog.String("error", err.Error()))
		aggregates = nil
	}
	aggregates = MergeRecordIntoAggregates(aggregates, record)

	event := models.RecordStoredEvent{
		EventID:       uuid.NewString(),
		RecordID:      record.RecordID,
		DestinationID: record.DestinationID,
		Reference:     record.Reference,
		Aggregates:    aggregates,
		Timestamp:     time.Now().UTC(),
	}
	highValue := record.Value.Valid && record.Value.Decimal.GreaterThan(s.threshold)

	select {
	case s.eventQueue <- notifyJob{event: event, highValue: highValue}:
		s.log.Debug("событие поставлено в очередь публикации",
			slog.String("record_id", record.RecordID),
			slog.Bool("high_value", highValue))
	default:
		s.log.Error("очередь событий переполнена, событие отброшено",
			slog.String("record_id", record.RecordID))
	}

	return &models.StoreRecordResponse{
		Status:           "success",
		InsertedRecordID: record.RecordID,
	}, nil
}

// AggregatedRecords возвращает отфильтрованные записи, сгруппированные по
// получателю, с точной суммой значений каждой группы.
func (s *RecordService) AggregatedRecords(ctx context.Context, filter storage.RecordFilter) (map[string]models.DestinationAggregate, error) {
	const op = "service.AggregatedRecords"

	records, err := s.repo.Query(ctx, filter)
	if err != nil {
		if errors.Is(err, custom_err.ErrStorageUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return GroupRecordsByDestination(records), nil
}
