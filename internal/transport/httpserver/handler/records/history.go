package records

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	recordsdomain "pet-diary/internal/domain/records"
	commonhandler "pet-diary/internal/transport/httpserver/handler/common"
	"pet-diary/pkg/clock"
)

type weightPointResponse struct {
	Date  string  `json:"date"`
	Grams float64 `json:"grams"`
}

type weightHistoryResponse struct {
	Range string                `json:"range"`
	Items []weightPointResponse `json:"items"`
}

type recentDayResponse struct {
	Date       string              `json:"date"`
	Weight     *weightResponse     `json:"weight"`
	Meals      []mealResponse      `json:"meals"`
	Excretions []excretionResponse `json:"excretions"`
}

type recentRecordsResponse struct {
	Days  int                 `json:"days"`
	Items []recentDayResponse `json:"items"`
}

func (h *Handlers) GetWeightHistory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := commonhandler.OwnerID(w, r)
	if !ok {
		return
	}
	animalID := chi.URLParam(r, "animal_id")

	weightRange, err := recordsdomain.ParseWeightRange(r.URL.Query().Get("range"))
	if err != nil {
		commonhandler.WriteFieldError(w, "range", "must be one of 30d, 90d, 180d")
		return
	}

	weights, err := h.Records.GetWeightHistory(r.Context(), ownerID, animalID, weightRange)
	if err != nil {
		h.writeRecordError(w, "records.weight_history", err, "owner_id", ownerID, "animal_id", animalID, "range", weightRange)
		return
	}

	response := weightHistoryResponse{
		Range: string(weightRange),
		Items: make([]weightPointResponse, 0, len(weights)),
	}
	for _, weight := range weights {
		response.Items = append(response.Items, weightPointResponse{
			Date:  clock.FormatDate(weight.Date),
			Grams: weight.WeightGrams,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) GetRecentRecords(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := commonhandler.OwnerID(w, r)
	if !ok {
		return
	}
	animalID := chi.URLParam(r, "animal_id")

	days, err := commonhandler.ParseIntParam(r.URL.Query().Get("days"), recordsdomain.DefaultRecentDays)
	if err != nil {
		commonhandler.WriteFieldError(w, "days", "must be a positive integer")
		return
	}
	if days == 0 {
		commonhandler.WriteFieldError(w, "days", "must be a positive integer")
		return
	}

	recent, err := h.Records.GetRecentRecords(r.Context(), ownerID, animalID, days)
	if err != nil {
		h.writeRecordError(w, "records.recent", err, "owner_id", ownerID, "animal_id", animalID, "days", days)
		return
	}

	response := recentRecordsResponse{
		Days:  days,
		Items: make([]recentDayResponse, 0, len(recent)),
	}
	for _, day := range recent {
		item := recentDayResponse{
			Date:       clock.FormatDate(day.Date),
			Meals:      make([]mealResponse, 0, len(day.Meals)),
			Excretions: make([]excretionResponse, 0, len(day.Excretions)),
		}
		if day.Weight != nil {
			item.Weight = toWeightResponse(day.Weight)
		}
		for _, meal := range day.Meals {
			item.Meals = append(item.Meals, toMealResponse(meal))
		}
		for _, excretion := range day.Excretions {
			item.Excretions = append(item.Excretions, toExcretionResponse(excretion))
		}
		response.Items = append(response.Items, item)
	}
	writeJSON(w, http.StatusOK, response)
}
