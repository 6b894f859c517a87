package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"gw-records/internal/api/middlew"
	"gw-records/internal/custom_err"
	"gw-records/internal/models"
	"gw-records/internal/service"
	"gw-records/internal/storage"
	"gw-records/pkg/response"
)

type RecordHandler struct {
	service service.Records
}

func NewRecordHandler(service service.Records) *RecordHandler {
	return &RecordHandler{
		service: service,
	}
}

// Health godoc
// @Summary      Проверка работоспособности сервиса
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       / [get]
func (h *RecordHandler) Health(w http.ResponseWriter, r *http.Request) {
	log := middlew.GetLogger(r.Context())
	response.WriteJSONSuccess(w, log, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "gw-records",
	})
}

// CreateRecord godoc
// @Summary      Сохранить одну запись
// @Description  Принимает одну транзакционную запись, сохраняет её и публикует агрегаты по (destinationId, reference)
// @Tags         records
// @Accept       json
// @Produce      json
// @Param        record body models.Record true "Запись"
// @Success      201 {object} models.StoreRecordResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse
// @Failure      503 {object} response.ErrorResponse
// @Router       /records [post]
func (h *RecordHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	const op = "handler.CreateRecord"
	log := middlew.GetLogger(r.Context())

	defer r.Body.Close()

	// Схема строгая: неизвестные поля отклоняются, а не пропускаются в хранилище
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var record models.Record
	if err := decoder.Decode(&record); err != nil {
		log.Warn("invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
		response.WriteJSONError(w, log, http.StatusBadRequest, "invalid_json", "Expected a JSON object representing a single record")
		return
	}

	resp, err := h.service.StoreRecord(r.Context(), record)
	if err != nil {
		switch {
		case errors.Is(err, custom_err.ErrInvalidInput):
			log.Warn("validation failed", slog.String("op", op), slog.String("error", err.Error()))
			response.WriteJSONError(w, log, http.StatusBadRequest, "invalid_record", err.Error())
		case errors.Is(err, custom_err.ErrDuplicateRecord):
			log.Info("duplicate record", slog.String("op", op), slog.String("record_id", record.RecordID))
			response.WriteJSONError(w, log, http.StatusConflict, "duplicate_record", "Record with this recordId already exists")
		case errors.Is(err, custom_err.ErrStorageUnavailable):
			log.Error("storage unavailable", slog.String("op", op), slog.String("error", err.Error()))
			response.WriteJSONError(w, log, http.StatusServiceUnavailable, "storage_unavailable", "Storage is temporarily unavailable")
		default:
			log.Error("failed to store record", slog.String("op", op), slog.String("error", err.Error()))
			response.WriteJSONError(w, log, http.StatusInternalServerError, "internal_error", "Failed to store record")
		}
		return
	}

	response.WriteJSONSuccess(w, log, http.StatusCreated, resp)
}

// GetAggregatedRecords godoc
// @Summary      Получить записи, сгруппированные по получателю
// @Description  Фильтры start_time, end_time, type и destination_id необязательны; результат - отображение destinationId в {records, totalValue}
// @Tags         records
// @Produce      json
// @Param        start_time     query string false "Нижняя граница времени (RFC3339 или '2006-01-02 15:04:05')"
// @Param        end_time       query string false "Верхняя граница времени"
// @Param        type           query string false "Тип записи (positive или negative)"
// @Param        destination_id query string false "Получатель"
// @Success      200 {object} map[string]models.DestinationAggregate
// @Failure      400 {object} response.ErrorResponse
// @Failure      503 {object} response.ErrorResponse
// @Router       /records/aggregated [get]
func (h *RecordHandler) GetAggregatedRecords(w http.ResponseWriter, r *http.Request) {
	const op = "handler.GetAggregatedRecords"
	log := middlew.GetLogger(r.Context())

	filter, err := parseRecordFilter(r)
	if err != nil {
		log.Warn("invalid filter", slog.String("op", op), slog.String("error", err.Error()))
		response.WriteJSONError(w, log, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	grouped, err := h.service.AggregatedRecords(r.Context(), filter)
	if err != nil {
		switch {
		case errors.Is(err, custom_err.ErrStorageUnavailable):
			log.Error("storage unavailable", slog.String("op", op), slog.String("error", err.Error()))
			response.WriteJSONError(w, log, http.StatusServiceUnavailable, "storage_unavailable", "Storage is temporarily unavailable")
		default:
			log.Error("failed to query records", slog.String("op", op), slog.String("error", err.Error()))
			response.WriteJSONError(w, log, http.StatusInternalServerError, "internal_error", "Failed to retrieve records")
		}
		return
	}

	response.WriteJSONSuccess(w, log, http.StatusOK, grouped)
}

// parseRecordFilter разбирает необязательные параметры фильтра.
// destination_id не обязателен: пустой фильтр возвращает все записи.
// Значение type вне перечисления игнорируется.
func parseRecordFilter(r *http.Request) (storage.RecordFilter, error) {
	var filter storage.RecordFilter
	query := r.URL.Query()

	if raw := query.Get("start_time"); raw != "" {
		t, err := models.ParseRecordTime(raw)
		if err != nil {
			return filter, err
		}
		filter.StartTime = &t
	}
	if raw := query.Get("end_time"); raw != "" {
		t, err := models.ParseRecordTime(raw)
		if err != nil {
			return filter, err
		}
		filter.EndTime = &t
	}
	if recordType := models.RecordType(query.Get("type")); recordType.IsValid() {
		filter.Type = &recordType
	}
	if destinationID := query.Get("destination_id"); destinationID != "" {
		filter.DestinationID = &destinationID
	}

	return filter, nil
}
