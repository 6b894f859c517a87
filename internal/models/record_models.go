package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RecordType знак/категория значения записи
type RecordType string

const (
	RecordTypePositive RecordType = "positive"
	RecordTypeNegative RecordType = "negative"
)

// IsValid проверяет валидность типа записи
func (t RecordType) IsValid() bool {
	return t == RecordTypePositive || t == RecordTypeNegative
}

// RecordTime время события с точностью до миллисекунд. На входе принимает
// RFC3339 и формат "2006-01-02 15:04:05", наружу отдает RFC3339 с миллисекундами.
type RecordTime struct {
	time.Time
}

const (
	recordTimeWireLayout   = "2006-01-02T15:04:05.000Z07:00"
	recordTimeLegacyLayout = "2006-01-02 15:04:05"
)

// ParseRecordTime разбирает время из строки запроса или JSON-поля
func ParseRecordTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Truncate(time.Millisecond), nil
	}
	if t, err := time.Parse(recordTimeLegacyLayout, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unsupported time format %q", s)
}

func (t *RecordTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time must be a string: %w", err)
	}
	parsed, err := ParseRecordTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t RecordTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(recordTimeWireLayout))
}

// Record одна неизменяемая транзакционная запись
type Record struct {
	RecordID      string              `json:"recordId" db:"record_id"`
	Time          RecordTime          `json:"time" db:"time"`
	SourceID      string              `json:"sourceId" db:"source_id"`
	DestinationID string              `json:"destinationId" db:"destination_id"`
	Type          RecordType          `json:"type" db:"type"`
	Value         decimal.NullDecimal `json:"value" db:"value"`
	Unit          string              `json:"unit" db:"unit"`
	Reference     string              `json:"reference" db:"reference"`
}

// Validate проверяет обязательные поля записи перед сохранением.
// Все поля обязательны, кроме value: отсутствующее значение допустимо
// и учитывается в суммах как ноль.
func (r *Record) Validate() error {
	var missing []string
	if r.RecordID == "" {
		missing = append(missing, "recordId")
	}
	if r.Time.IsZero() {
		missing = append(missing, "time")
	}
	if r.SourceID == "" {
		missing = append(missing, "sourceId")
	}
	if r.DestinationID == "" {
		missing = append(missing, "destinationId")
	}
	if r.Unit == "" {
		missing = append(missing, "unit")
	}
	if r.Reference == "" {
		missing = append(missing, "reference")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if !r.Type.IsValid() {
		return fmt.Errorf("type must be %q or %q, got %q", RecordTypePositive, RecordTypeNegative, r.Type)
	}
	return nil
}

// ValueOrZero возвращает значение записи или ноль, если значение отсутствует
func (r *Record) ValueOrZero() decimal.Decimal {
	if !r.Value.Valid {
		return decimal.Zero
	}
	return r.Value.Decimal
}

// TypeAggregate агрегат по одному типу записей в рамках (destinationId, reference)
type TypeAggregate struct {
	Type       RecordType      `json:"type"`
	TotalValue decimal.Decimal `json:"totalValue"`
	Count      int64           `json:"count"`
}

// DestinationAggregate записи одного получателя с накопленной суммой.
// Порядок записей сохраняется таким, каким его вернуло хранилище (time DESC).
type DestinationAggregate struct {
	Records    []Record        `json:"records"`
	TotalValue decimal.Decimal `json:"totalValue"`
}

// StoreRecordResponse ответ на успешное сохранение записи
type StoreRecordResponse struct {
	Status           string `json:"status"`
	InsertedRecordID string `json:"inserted_record_id"`
}
