package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"gw-records/internal/models"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

type Producer interface {
	PublishAggregation(ctx context.Context, event models.RecordStoredEvent) error
	PublishHighValueAlert(ctx context.Context, event models.RecordStoredEvent) error
	Close() error
}

type KafkaProducer struct {
	producer    sarama.SyncProducer
	storedTopic string
	alertTopic  string
	log         *slog.Logger
}

func NewKafkaProducer(brokers []string, storedTopic, alertTopic string, log *slog.Logger) (Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Info("kafka producer создан",
		slog.String("stored_topic", storedTopic),
		slog.String("alert_topic", alertTopic),
		slog.Any("brokers", brokers))

	return &KafkaProducer{
		producer:    producer,
		storedTopic: storedTopic,
		alertTopic:  alertTopic,
		log:         log,
	}, nil
}

func (p *KafkaProducer) PublishAggregation(ctx context.Context, event models.RecordStoredEvent) error {
	return p.publish(ctx, p.storedTopic, event)
}

func (p *KafkaProducer) PublishHighValueAlert(ctx context.Context, event models.RecordStoredEvent) error {
	return p.publish(ctx, p.alertTopic, event)
}

func (p *KafkaProducer) publish(ctx context.Context, topic string, event models.RecordStoredEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.RecordID),
		Value: sarama.ByteEncoder(eventData),
	}

	type result struct {
		partition int32
		offset    int64
		err       error
	}

	resultCh := make(chan result, 1)

	go func() {
		partition, offset, err := p.producer.SendMessage(msg)
		resultCh <- result{partition, offset, err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			p.log.Error("kafka send failed",
				slog.String("topic", topic),
				slog.String("record_id", event.RecordID),
				slog.String("error", res.err.Error()))
			return res.err
		}
		p.log.Debug("kafka send success",
			slog.String("topic", topic),
			slog.String("record_id", event.RecordID),
			slog.Int("partition", int(res.partition)),
			slog.Int64("offset", res.offset))
		return nil

	case <-ctx.Done():
		p.log.Warn("kafka send cancelled",
			slog.String("topic", topic),
			slog.String("record_id", event.RecordID))
		return ctx.Err()
	}
}

func (p *KafkaProducer) Close() error {
	if p.producer == nil {
		return nil
	}
	p.log.Info("закрытие kafka producer")
	return p.producer.Close()
}

type NoOpProducer struct {
	log *slog.Logger
}

func NewNoOpProducer(log *slog.Logger) Producer {
	return &NoOpProducer{log: log}
}

func (p *NoOpProducer) PublishAggregation(ctx context.Context, event models.RecordStoredEvent) error {
	p.log.Debug("kafka отключен, событие не отправлено",
		slog.String("record_id", event.RecordID))
	return nil
}

func (p *NoOpProducer) PublishHighValueAlert(ctx context.Context, event models.RecordStoredEvent) error {
	p.log.Debug("kafka отключен, оповещение не отправлено",
		slog.String("record_id", event.RecordID))
	return nil
}

func (p *NoOpProducer) Close() error {
	return nil
}
