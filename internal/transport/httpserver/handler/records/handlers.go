package records

import (
	"net/http"

	recordsdomain "pet-diary/internal/domain/records"
	commonhandler "pet-diary/internal/transport/httpserver/handler/common"
	"pet-diary/pkg/logger"
)

type Handlers struct {
	Records *recordsdomain.Service
	log     logger.Logger
}

func New(records *recordsdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Records: records,
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
