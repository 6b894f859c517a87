package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gw-records/internal/models"
	"gw-records/internal/storage"
)

type MockRecordRepo struct {
	mock.Mock
}

func (m *MockRecordRepo) Insert(ctx context.Context, record *models.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepo) Query(ctx context.Context, filter storage.RecordFilter) ([]models.Record, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Record), args.Error(1)
}

func (m *MockRecordRepo) AggregateByDestinationReference(ctx context.Context, destinationID, reference, excludeRecordID string) ([]models.TypeAggregate, error) {
	args := m.Called(ctx, destinationID, reference, excludeRecordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TypeAggregate), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) PublishAggregation(ctx context.Context, event models.RecordStoredEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockProducer) PublishHighValueAlert(ctx context.Context, event models.RecordStoredEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockProducer) Close() error {
	args := m.Called()
	return args.Error(0)
}
