package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/matchforge/registration-system/middleware"
	"github.com/matchforge/registration-system/services"
	"github.com/matchforge/registration-system/storage"
)

// IntakeHandler — HTTP-поверхность пошагового мастера регистрации.
// Все маршруты требуют аутентификации; сессия привязана к (user, tournament).
type IntakeHandler struct {
	intakeService services.IntakeService
}

func NewIntakeHandler(is services.IntakeService) *IntakeHandler {
	return &IntakeHandler{intakeService: is}
}

// StartHandler обрабатывает POST /tournaments/{tournamentID}/intake
func (h *IntakeHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, tournamentID, ok := h.identify(w, r)
	if !ok {
		return
	}

	session, err := h.intakeService.Start(r.Context(), currentUserID, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SessionHandler обрабатывает GET /tournaments/{tournamentID}/intake
func (h *IntakeHandler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, tournamentID, ok := h.identify(w, r)
	if !ok {
		return
	}

	session, err := h.intakeService.Session(currentUserID, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SelectEventHandler обрабатывает POST /tournaments/{tournamentID}/intake/event
func (h *IntakeHandler) SelectEventHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, tournamentID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var input struct {
		SportEventID int `json:"sport_event_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.intakeService.SelectEvent(r.Context(), currentUserID, tournamentID, input.SportEventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitDetailsHandler обрабатывает POST /tournaments/{tournamentID}/intake/details
func (h *IntakeHandler) SubmitDetailsHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, tournamentID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var input services.ParticipantDetailsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.intakeService.SubmitDetails(r.Context(), currentUserID, tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// Для бесплатных дисциплин мастер завершается прямо здесь.
	status := http.StatusOK
	response := jsonResponse{"session": outcome.Session}
	if outcome.Request != nil {
		status = http.StatusCreated
		response["request"] = outcome.Request
	}

	if err := writeJSON(w, status, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AttachTeamPhotoHandler обрабатывает POST /tournaments/{tournamentID}/intake/photo
func (h *IntakeHandler) AttachTeamPhotoHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, tournamentID, ok := h.identify(w, r)
	if !ok {
		return
	}

	file, header, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	session, err := h.intakeService.AttachTeamPhoto(r.Context(), currentUserID, tournamentID, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		if errors.Is(err, storage.ErrUploadTooLarge) {
			errorResponse(w, r, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PaymentInfoHandler обрабатывает GET /tournaments/{tournamentID}/intake/payment
func (h *IntakeHandler) PaymentInfoHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, tournamentID, ok := h.identify(w, r)
	if !ok {
		return
	}

	info, err := h.intakeService.PaymentInfo(r.Context(), currentUserID, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"payment": info}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitEvidenceHandler godoc
// @Summary Загрузить подтверждение оплаты и отправить заявку
// @Tags intake
// @Description Финальный шаг мастера для платных дисциплин: файл уходит в хранилище, затем создаётся заявка. При сбое создания загруженный файл удаляется.
// @Accept multipart/form-data
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param file formData file true "Payment proof image"
// @Success 201 {object} map[string]interface{} "Заявка создана"
// @Failure 409 {object} map[string]string "Активная заявка уже существует или лимит исчерпан"
// @Failure 413 {object} map[string]string "Файл превышает допустимый размер"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/intake/evidence [post]
func (h *IntakeHandler) SubmitEvidenceHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, tournamentID, ok := h.identify(w, r)
	if !ok {
		return
	}

	file, header, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	request, err := h.intakeService.SubmitEvidence(r.Context(), currentUserID, tournamentID, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		if errors.Is(err, storage.ErrUploadTooLarge) {
			errorResponse(w, r, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"request": request}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// BackHandler обрабатывает POST /tournaments/{tournamentID}/intake/back
func (h *IntakeHandler) BackHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, tournamentID, ok := h.identify(w, r)
	if !ok {
		return
	}

	session, err := h.intakeService.Back(currentUserID, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *IntakeHandler) identify(w http.ResponseWriter, r *http.Request) (userID, tournamentID int, ok bool) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return 0, 0, false
	}
	tournamentID, err = getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	return userID, tournamentID, true
}

func (h *IntakeHandler) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	if err := r.ParseMultipartForm(storage.MaxUploadSize); err != nil {
		badRequestResponse(w, r, errors.New("failed to parse multipart form"))
		return nil, nil, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		badRequestResponse(w, r, errors.New("form field 'file' is required"))
		return nil, nil, false
	}
	return file, header, true
}
