package handlers

import (
	"errors"
	"net/http"

	"github.com/matchforge/registration-system/middleware"
	"github.com/matchforge/registration-system/services"
	"github.com/matchforge/registration-system/storage"
)

type SportEventHandler struct {
	sportEventService services.SportEventService
}

func NewSportEventHandler(ses services.SportEventService) *SportEventHandler {
	return &SportEventHandler{sportEventService: ses}
}

// CreateHandler обрабатывает POST /tournaments/{tournamentID}/events
func (h *SportEventHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create sport event")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateSportEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.sportEventService.Create(r.Context(), tournamentID, currentUserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"sport_event": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /tournaments/{tournamentID}/events
func (h *SportEventHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	events, err := h.sportEventService.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"sport_events": events}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadQRCodeHandler обрабатывает POST /organizer/qr-code (multipart/form-data, поле "file")
func (h *SportEventHandler) UploadQRCodeHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to upload QR code")
		return
	}

	if err := r.ParseMultipartForm(storage.MaxUploadSize); err != nil {
		badRequestResponse(w, r, errors.New("failed to parse multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequestResponse(w, r, errors.New("form field 'file' is required"))
		return
	}
	defer file.Close()

	result, err := h.sportEventService.UploadQRCode(r.Context(), currentUserID, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		if errors.Is(err, storage.ErrUploadTooLarge) {
			errorResponse(w, r, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"upload": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
