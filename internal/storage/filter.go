package storage

import (
	"fmt"
	"strings"
	"time"

	"gw-records/internal/models"
)

// RecordFilter конъюнкция необязательных условий выборки записей.
// Пустой фильтр означает выборку всех записей.
type RecordFilter struct {
	StartTime     *time.Time
	EndTime       *time.Time
	Type          *models.RecordType
	DestinationID *string
}

// BuildQuery собирает параметризованный SELECT с условиями фильтра.
// Список колонок фиксирован, клиентские данные попадают только в аргументы.
func (f RecordFilter) BuildQuery() (string, []any) {
	var (
		conds []string
		args  []any
	)

	addCond := func(expr string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(expr, len(args)))
	}

	if f.StartTime != nil {
		addCond("time >= $%d", *f.StartTime)
	}
	if f.EndTime != nil {
		addCond("time <= $%d", *f.EndTime)
	}
	if f.Type != nil {
		addCond("type = $%d", string(*f.Type))
	}
	if f.DestinationID != nil {
		addCond("destination_id = $%d", *f.DestinationID)
	}

	query := strings.TrimSpace(SelectRecordsBaseQuery)
	if len(conds) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conds, " AND ")
	}
	query += "\n\t\tORDER BY time DESC, record_id"

	return query, args
}
