package reminders

import (
	"net/http"

	remindersdomain "pet-diary/internal/domain/reminders"
	commonhandler "pet-diary/internal/transport/httpserver/handler/common"
	"pet-diary/pkg/logger"
)

type Handlers struct {
	Reminders *remindersdomain.Service
	log       logger.Logger
}

func New(reminders *remindersdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Reminders: reminders,
		log:       log,
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	commonhandler.WriteError(w, status, code, message)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	commonhandler.WriteJSON(w, status, payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return commonhandler.DecodeJSON(r, dst)
}
