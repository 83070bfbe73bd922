package animals

import (
	"net/http"

	alertsdomain "pet-diary/internal/domain/alerts"
	animalsdomain "pet-diary/internal/domain/animals"
	commonhandler "pet-diary/internal/transport/httpserver/handler/common"
	"pet-diary/pkg/logger"
)

type Handlers struct {
	Animals *animalsdomain.Service
	Alerts  *alertsdomain.Service
	log     logger.Logger
}

func New(animals *animalsdomain.Service, alerts *alertsdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Animals: animals,
		Alerts:  alerts,
		log:     log,
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
