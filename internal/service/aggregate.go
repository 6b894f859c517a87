package service

import (
	"gw-records/internal/models"

	"github.com/shopspring/decimal"
)

// MergeRecordIntoAggregates добавляет запись в агрегат её типа. Сумма и
// счетчик считаются точной десятичной арифметикой; отсутствующее значение
// учитывается как ноль. Исходный срез не меняется.
//
// Запрос к хранилищу исключает свежевставленную запись по record_id, поэтому
// слияние здесь гарантирует, что она учтена ровно один раз независимо от
// задержки видимости чтения после записи.
func MergeRecordIntoAggregates(aggregates []models.TypeAggregate, record models.Record) []models.TypeAggregate {
	merged := make([]models.TypeAggregate, len(aggregates))
	copy(merged, aggregates)

	value := record.ValueOrZero()
	for i := range merged {
		if merged[i].Type == record.Type {
			merged[i].TotalValue = merged[i].TotalValue.Add(value)
			merged[i].Count++
			return merged
		}
	}

	return append(merged, models.TypeAggregate{
		Type:       record.Type,
		TotalValue: value,
		Count:      1,
	})
}

// GroupRecordsByDestination группирует записи по получателю, сохраняя
// исходный порядок (time DESC из хранилища), и накапливает точную
// десятичную сумму значений. Записи без значения добавляют к сумме ноль.
func GroupRecordsByDestination(records []models.Record) map[string]models.DestinationAggregate {
	grouped := make(map[string]models.DestinationAggregate, len(records))

	for _, record := range records {
		group, ok := grouped[record.DestinationID]
		if !ok {
			group = models.DestinationAggregate{TotalValue: decimal.Zero}
		}
		group.Records = append(group.Records, record)
		group.TotalValue = group.TotalValue.Add(record.ValueOrZero())
		grouped[record.DestinationID] = group
	}

	return grouped
}
