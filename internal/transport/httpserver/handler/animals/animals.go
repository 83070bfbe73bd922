package animals

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	animalsdomain "pet-diary/internal/domain/animals"
	"pet-diary/internal/domain/validation"
	commonhandler "pet-diary/internal/transport/httpserver/handler/common"
)

type createAnimalRequest struct {
	Name      string  `json:"name"`
	Species   string  `json:"species"`
	Breed     string  `json:"breed"`
	Sex       string  `json:"sex"`
	BirthDate *string `json:"birthDate"`
	Notes     string  `json:"notes"`
}

// An empty birthDate clears it; an absent one leaves it unchanged.
type updateAnimalRequest struct {
	Name      *string `json:"name"`
	Species   *string `json:"species"`
	Breed     *string `json:"breed"`
	Sex       *string `json:"sex"`
	BirthDate *string `json:"birthDate"`
	Notes     *string `json:"notes"`
}

type animalResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Species   string    `json:"species"`
	Breed     string    `json:"breed"`
	Sex       string    `json:"sex"`
	BirthDate *string   `json:"birthDate"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type listAnimalsResponse struct {
	Items []animalResponse `json:"items"`
	Total int              `json:"total"`
	Limit int              `json:"limit"`
}

func (h *Handlers) ListAnimals(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := commonhandler.OwnerID(w, r)
	if !ok {
		return
	}

	items, err := h.Animals.ListAnimals(r.Context(), ownerID)
	if err != nil {
		h.log.InternalError("animals.list: list animals failed", err, "owner_id", ownerID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := listAnimalsResponse{
		Items: make([]animalResponse, 0, len(items)),
		Total: len(items),
		Limit: animalsdomain.MaxAnimalsPerOwner,
	}
	for _, item := range items {
		response.Items = append(response.Items, toAnimalResponse(item))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateAnimal(w http.ResponseWriter, r *http.Request) {
	var req createAnimalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	ownerID, ok := commonhandler.OwnerID(w, r)
	if !ok {
		return
	}

	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		commonhandler.WriteFieldError(w, "birthDate", "must be YYYY-MM-DD")
		return
	}

	animal, err := h.Animals.CreateAnimal(r.Context(), animalsdomain.CreateAnimalInput{
		OwnerID:   ownerID,
		Name:      req.Name,
		Species:   req.Species,
		Breed:     req.Breed,
		Sex:       animalsdomain.Sex(strings.TrimSpace(req.Sex)),
		BirthDate: birthDate,
		Notes:     req.Notes,
	})
	if err != nil {
		h.writeAnimalError(w, "animals.create", err, "owner_id", ownerID)
		return
	}

	writeJSON(w, http.StatusCreated, toAnimalResponse(*animal))
}

func (h *Handlers) GetAnimal(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := commonhandler.OwnerID(w, r)
	if !ok {
		return
	}
	animalID := chi.URLParam(r, "animal_id")

	animal, err := h.Animals.GetAnimal(r.Context(), ownerID, animalID)
	if err != nil {
		h.writeAnimalError(w, "animals.get", err, "owner_id", ownerID, "animal_id", animalID)
		return
	}

	writeJSON(w, http.StatusOK, toAnimalResponse(*animal))
}

func (h *Handlers) UpdateAnimal(w http.ResponseWriter, r *http.Request) {
	var req updateAnimalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	ownerID, ok := commonhandler.OwnerID(w, r)
	if !ok {
		return
	}
	animalID := chi.URLParam(r, "animal_id")

	input := animalsdomain.UpdateAnimalInput{
		OwnerID:  ownerID,
		AnimalID: animalID,
		Name:     req.Name,
		Species:  req.Species,
		Breed:    req.Breed,
		Notes:    req.Notes,
	}
	if req.Sex != nil {
		sex := animalsdomain.Sex(strings.TrimSpace(*req.Sex))
		input.Sex = &sex
	}
	if req.BirthDate != nil {
		if strings.TrimSpace(*req.BirthDate) == "" {
			input.ClearBirthDate = true
		} else {
			birthDate, err := parseBirthDate(req.BirthDate)
			if err != nil {
				commonhandler.WriteFieldError(w, "birthDate", "must be YYYY-MM-DD")
				return
			}
			input.BirthDate = birthDate
		}
	}

	animal, err := h.Animals.UpdateAnimal(r.Context(), input)
	if err != nil {
		h.writeAnimalError(w, "animals.update", err, "owner_id", ownerID, "animal_id", animalID)
		return
	}

	writeJSON(w, http.StatusOK, toAnimalResponse(*animal))
}

func (h *Handlers) DeleteAnimal(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := commonhandler.OwnerID(w, r)
	if !ok {
		return
	}
	animalID := chi.URLParam(r, "animal_id")

	if err := h.Animals.DeleteAnimal(r.Context(), ownerID, animalID); err != nil {
		h.writeAnimalError(w, "animals.delete", err, "owner_id", ownerID, "animal_id", animalID)
		return
	}

	h.Alerts.Invalidate(animalID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) writeAnimalError(w http.ResponseWriter, op string, err error, attrs ...any) {
	if verr, ok := validation.As(err); ok {
		h.log.BusinessError(op+": validation failed", err, attrs...)
		commonhandler.WriteFieldError(w, verr.Field, verr.Error())
		return
	}

	switch {
	case errors.Is(err, animalsdomain.ErrAnimalNotFound):
		h.log.BusinessError(op+": animal not found", err, attrs...)
		writeError(w, http.StatusNotFound, "animal_not_found", "animal not found")
	case errors.Is(err, animalsdomain.ErrForbidden):
		h.log.BusinessError(op+": animal belongs to another owner", err, attrs...)
		writeError(w, http.StatusForbidden, "forbidden", "forbidden")
	case errors.Is(err, animalsdomain.ErrLimitExceeded):
		h.log.BusinessError(op+": animal limit reached", err, attrs...)
		writeError(w, http.StatusConflict, "animal_limit_exceeded", "an owner can register at most 10 animals")
	default:
		h.log.InternalError(op+": failed", err, attrs...)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func parseBirthDate(value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	return commonhandler.ParseDateParam(*value)
}

func toAnimalResponse(animal animalsdomain.Animal) animalResponse {
	return animalResponse{
		ID:        animal.ID,
		Name:      animal.Name,
		Species:   animal.Species,
		Breed:     animal.Breed,
		Sex:       string(animal.Sex),
		BirthDate: commonhandler.FormatDate(animal.BirthDate),
		Notes:     animal.Notes,
		CreatedAt: animal.CreatedAt,
		UpdatedAt: animal.UpdatedAt,
	}
}
