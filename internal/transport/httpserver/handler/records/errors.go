package records

import (
	"errors"
	"net/http"

	animalsdomain "pet-diary/internal/domain/animals"
	recordsdomain "pet-diary/internal/domain/records"
	"pet-diary/internal/domain/validation"
	commonhandler "pet-diary/internal/transport/httpserver/handler/common"
)

type errorMapping struct {
	status  int
	code    string
	message string
	field   string
	step    recordsdomain.Step
}

func mapError(err error) (errorMapping, bool) {
	if verr, ok := validation.As(err); ok {
		return errorMapping{status: http.StatusBadRequest, code: "validation_error", message: verr.Error(), field: verr.Field}, true
	}

	var batchErr *recordsdomain.BatchError
	switch {
	case errors.Is(err, animalsdomain.ErrAnimalNotFound):
		return errorMapping{status: http.StatusNotFound, code: "animal_not_found", message: "animal not found"}, true
	case errors.Is(err, animalsdomain.ErrForbidden):
		return errorMapping{status: http.StatusForbidden, code: "forbidden", message: "forbidden"}, true
	case errors.Is(err, recordsdomain.ErrVersionConflict):
		return errorMapping{status: http.StatusConflict, code: "version_conflict", message: "records for this day changed, reload and retry"}, true
	case errors.Is(err, recordsdomain.ErrIdempotencyKeyPayloadMismatch):
		return errorMapping{status: http.StatusConflict, code: "idempotency_key_reused", message: "idempotency key was used with a different payload"}, true
	case errors.Is(err, recordsdomain.ErrBatchInProgress):
		return errorMapping{status: http.StatusConflict, code: "batch_in_progress", message: "a batch with this idempotency key is still running"}, true
	case errors.As(err, &batchErr):
		return errorMapping{status: http.StatusInternalServerError, code: "internal_error", message: "saving the daily records failed, nothing was saved", step: batchErr.Step}, false
	default:
		return errorMapping{status: http.StatusInternalServerError, code: "internal_error", message: "internal error"}, false
	}
}

// writeRecordError handles errors of the read endpoints.
func (h *Handlers) writeRecordError(w http.ResponseWriter, op string, err error, attrs ...any) {
	mapped, business := mapError(err)
	if business {
		h.log.BusinessError(op+": "+mapped.code, err, attrs...)
	} else {
		h.log.InternalError(op+": failed", err, attrs...)
	}
	if mapped.code == "validation_error" {
		commonhandler.WriteFieldError(w, mapped.field, mapped.message)
		return
	}
	writeError(w, mapped.status, mapped.code, mapped.message)
}
