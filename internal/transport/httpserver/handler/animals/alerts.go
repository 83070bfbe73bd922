package animals

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	alertsdomain "pet-diary/internal/domain/alerts"
	commonhandler "pet-diary/internal/transport/httpserver/handler/common"
)

type AlertResponse struct {
	AnimalID string `json:"animalId"`
	Type     string `json:"type"`
	Level    string `json:"level"`
	Message  string `json:"message"`
}

type alertsResponse struct {
	Items []AlertResponse `json:"items"`
}

func (h *Handlers) ListAlerts(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := commonhandler.OwnerID(w, r)
	if !ok {
		return
	}
	animalID := chi.URLParam(r, "animal_id")

	items, err := h.Alerts.ForAnimal(r.Context(), ownerID, animalID)
	if err != nil {
		h.writeAnimalError(w, "alerts.list", err, "owner_id", ownerID, "animal_id", animalID)
		return
	}

	writeJSON(w, http.StatusOK, alertsResponse{Items: ToAlertResponses(items)})
}

func ToAlertResponses(items []alertsdomain.Alert) []AlertResponse {
	result := make([]AlertResponse, 0, len(items))
	for _, item := range items {
		result = append(result, AlertResponse{
			AnimalID: item.AnimalID,
			Type:     string(item.Type),
			Level:    string(item.Level),
			Message:  item.Message,
		})
	}
	return result
}
