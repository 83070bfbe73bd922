package records

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	recordsdomain "pet-diary/internal/domain/records"
	commonhandler "pet-diary/internal/transport/httpserver/handler/common"
	"pet-diary/pkg/clock"
)

const idempotencyKeyHeader = "Idempotency-Key"

type dailyBatchRequest struct {
	AnimalID    string                          `json:"animalId"`
	Date        string                          `json:"date"`
	Version     *int64                          `json:"version"`
	Weight      *float64                        `json:"weight"`
	Temperature *float64                        `json:"temperature"`
	Humidity    *float64                        `json:"humidity"`
	Memo        *string                         `json:"memo"`
	Meals       []recordsdomain.MealInput       `json:"meals"`
	Excretions  []recordsdomain.ExcretionInput  `json:"excretions"`
	Medications []recordsdomain.MedicationInput `json:"medications"`
}

type dailyBatchResponse struct {
	Success  bool                 `json:"success"`
	Version  int64                `json:"version"`
	Applied  []recordsdomain.Step `json:"applied"`
	Replayed bool                 `json:"replayed"`
}

// dailyBatchFailure always lists the committed steps; a failed batch commits none.
type dailyBatchFailure struct {
	Success    bool                 `json:"success"`
	Code       string               `json:"code"`
	Error      string               `json:"error"`
	Field      string               `json:"field,omitempty"`
	FailedStep recordsdomain.Step   `json:"failedStep,omitempty"`
	Committed  []recordsdomain.Step `json:"committed"`
}

type weightResponse struct {
	ID        string    `json:"id"`
	Grams     float64   `json:"grams"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type conditionResponse struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

type mealResponse struct {
	ID      string   `json:"id"`
	Time    string   `json:"time"`
	Content string   `json:"content"`
	Amount  *float64 `json:"amount"`
	Unit    string   `json:"unit,omitempty"`
}

type excretionResponse struct {
	ID        string `json:"id"`
	Time      string `json:"time"`
	Type      string `json:"type"`
	Condition string `json:"condition"`
	Notes     string `json:"notes,omitempty"`
}

type medicationResponse struct {
	ID   string `json:"id"`
	Time string `json:"time"`
	Name string `json:"name"`
}

type dailyRecordsResponse struct {
	AnimalID    string               `json:"animalId"`
	Date        string               `json:"date"`
	Version     int64                `json:"version"`
	Weight      *weightResponse      `json:"weight"`
	Condition   *conditionResponse   `json:"condition"`
	Memo        *string              `json:"memo"`
	Meals       []mealResponse       `json:"meals"`
	Excretions  []excretionResponse  `json:"excretions"`
	Medications []medicationResponse `json:"medications"`
}

func (h *Handlers) SaveDailyBatch(w http.ResponseWriter, r *http.Request) {
	startedAt := time.Now()

	var req dailyBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	ownerID, ok := commonhandler.OwnerID(w, r)
	if !ok {
		return
	}

	date, err := commonhandler.ParseDateRequired(req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dailyBatchFailure{
			Code:      "validation_error",
			Error:     "date must be YYYY-MM-DD",
			Field:     "date",
			Committed: []recordsdomain.Step{},
		})
		return
	}

	idempotencyKey := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
	result, err := h.Records.SaveDailyBatch(r.Context(), recordsdomain.DailyBatchInput{
		OwnerID:         ownerID,
		AnimalID:        strings.TrimSpace(req.AnimalID),
		Date:            date,
		IdempotencyKey:  idempotencyKey,
		ExpectedVersion: req.Version,
		Weight:          req.Weight,
		Temperature:     req.Temperature,
		Humidity:        req.Humidity,
		Memo:            req.Memo,
		Meals:           req.Meals,
		Excretions:      req.Excretions,
		Medications:     req.Medications,
	})
	if err != nil {
		logAttrs := []any{
			"owner_id", ownerID,
			"animal_id", req.AnimalID,
			"date", req.Date,
			"has_idempotency_key", idempotencyKey != "",
			"duration_ms", time.Since(startedAt).Milliseconds(),
		}

		mapped, business := mapError(err)
		if business {
			h.log.BusinessError("records.save_daily: "+mapped.code, err, logAttrs...)
		} else {
			h.log.InternalError("records.save_daily: batch failed", err, append(logAttrs, "failed_step", mapped.step)...)
		}
		writeJSON(w, mapped.status, dailyBatchFailure{
			Code:       mapped.code,
			Error:      mapped.message,
			Field:      mapped.field,
			FailedStep: mapped.step,
			Committed:  []recordsdomain.Step{},
		})
		return
	}

	if result.Replayed {
		w.Header().Set("Idempotency-Replayed", "true")
	}
	applied := result.Applied
	if applied == nil {
		applied = []recordsdomain.Step{}
	}
	writeJSON(w, http.StatusOK, dailyBatchResponse{
		Success:  true,
		Version:  result.Version,
		Applied:  applied,
		Replayed: result.Replayed,
	})
}

func (h *Handlers) GetDailyRecords(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := commonhandler.OwnerID(w, r)
	if !ok {
		return
	}
	animalID := chi.URLParam(r, "animal_id")

	date, err := commonhandler.ParseDateRequired(chi.URLParam(r, "date"))
	if err != nil {
		commonhandler.WriteFieldError(w, "date", "must be YYYY-MM-DD")
		return
	}

	set, err := h.Records.GetDailyRecords(r.Context(), ownerID, animalID, date)
	if err != nil {
		h.writeRecordError(w, "records.get_daily", err, "owner_id", ownerID, "animal_id", animalID, "date", clock.FormatDate(date))
		return
	}

	if set.Version > 0 {
		w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(set.Version, 10)))
	}
	writeJSON(w, http.StatusOK, toDailyRecordsResponse(set))
}

func toDailyRecordsResponse(set *recordsdomain.DailyRecordSet) dailyRecordsResponse {
	response := dailyRecordsResponse{
		AnimalID:    set.AnimalID,
		Date:        clock.FormatDate(set.Date),
		Version:     set.Version,
		Meals:       make([]mealResponse, 0, len(set.Meals)),
		Excretions:  make([]excretionResponse, 0, len(set.Excretions)),
		Medications: make([]medicationResponse, 0, len(set.Medications)),
	}
	if set.Weight != nil {
		response.Weight = toWeightResponse(set.Weight)
	}
	if set.Environment != nil {
		response.Condition = &conditionResponse{
			Temperature: set.Environment.TemperatureC,
			Humidity:    set.Environment.HumidityPct,
		}
	}
	if set.Memo != nil {
		memo := set.Memo.Body
		response.Memo = &memo
	}
	for _, meal := range set.Meals {
		response.Meals = append(response.Meals, toMealResponse(meal))
	}
	for _, excretion := range set.Excretions {
		response.Excretions = append(response.Excretions, toExcretionResponse(excretion))
	}
	for _, medication := range set.Medications {
		response.Medications = append(response.Medications, medicationResponse{
			ID:   medication.ID,
			Time: medication.Time,
			Name: medication.Name,
		})
	}
	return response
}

func toWeightResponse(weight *recordsdomain.WeightEntry) *weightResponse {
	return &weightResponse{ID: weight.ID, Grams: weight.WeightGrams, UpdatedAt: weight.UpdatedAt}
}

func toMealResponse(meal recordsdomain.MealEntry) mealResponse {
	return mealResponse{
		ID:      meal.ID,
		Time:    meal.Time,
		Content: meal.Content,
		Amount:  meal.Amount,
		Unit:    meal.Unit,
	}
}

func toExcretionResponse(excretion recordsdomain.ExcretionEntry) excretionResponse {
	return excretionResponse{
		ID:        excretion.ID,
		Time:      excretion.Time,
		Type:      string(excretion.Type),
		Condition: string(excretion.Condition),
		Notes:     excretion.Notes,
	}
}
