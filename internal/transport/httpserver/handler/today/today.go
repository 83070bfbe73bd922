// Package today serves the landing view: today's reminders and the current
// health alerts of every animal of the caller.
package today

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	alertsdomain "pet-diary/internal/domain/alerts"
	remindersdomain "pet-diary/internal/domain/reminders"
	animalshandler "pet-diary/internal/transport/httpserver/handler/animals"
	commonhandler "pet-diary/internal/transport/httpserver/handler/common"
	remindershandler "pet-diary/internal/transport/httpserver/handler/reminders"
	"pet-diary/pkg/clock"
	"pet-diary/pkg/logger"
)

type Handlers struct {
	Reminders *remindersdomain.Service
	Alerts    *alertsdomain.Service
	log       logger.Logger
}

func New(reminders *remindersdomain.Service, alerts *alertsdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Reminders: reminders,
		Alerts:    alerts,
		log:       log,
	}
}

type animalAlertsResponse struct {
	AnimalID   string                         `json:"animalId"`
	AnimalName string                         `json:"animalName"`
	Alerts     []animalshandler.AlertResponse `json:"alerts"`
}

type todayResponse struct {
	Date      string                              `json:"date"`
	Reminders []remindershandler.ReminderResponse `json:"reminders"`
	Alerts    []animalAlertsResponse              `json:"alerts"`
}

func (h *Handlers) GetToday(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := commonhandler.OwnerID(w, r)
	if !ok {
		return
	}

	var (
		views  []remindersdomain.View
		alerts []alertsdomain.AnimalAlerts
	)
	group, ctx := errgroup.WithContext(r.Context())
	group.Go(func() error {
		var err error
		views, err = h.Reminders.ListToday(ctx, ownerID)
		return err
	})
	group.Go(func() error {
		var err error
		alerts, err = h.Alerts.ForOwner(ctx, ownerID)
		return err
	})
	if err := group.Wait(); err != nil {
		h.log.InternalError("today.get: build landing view failed", err, "owner_id", ownerID)
		commonhandler.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := todayResponse{
		Date:      clock.FormatDate(h.Reminders.Today()),
		Reminders: remindershandler.ToReminderResponses(views, false),
		Alerts:    make([]animalAlertsResponse, 0, len(alerts)),
	}
	for _, entry := range alerts {
		response.Alerts = append(response.Alerts, animalAlertsResponse{
			AnimalID:   entry.AnimalID,
			AnimalName: entry.AnimalName,
			Alerts:     animalshandler.ToAlertResponses(entry.Alerts),
		})
	}
	commonhandler.WriteJSON(w, http.StatusOK, response)
}
