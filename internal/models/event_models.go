package models

import (
	"time"
)

// событие о сохраненной записи; публикуется в канал record-stored-notification,
// а при превышении порога значения — тем же телом в record-high-value-notification
type RecordStoredEvent struct {
	EventID       string          `json:"event_id"`       // Уникальный ID события
	RecordID      string          `json:"record_id"`      // ID сохраненной записи
	DestinationID string          `json:"destination_id"` // Получатель
	Reference     string          `json:"reference"`      // Референс группировки
	Aggregates    []TypeAggregate `json:"aggregates"`     // Агрегаты по типам для (destination, reference)
	Timestamp     time.Time       `json:"timestamp"`      // Время формирования события
}
