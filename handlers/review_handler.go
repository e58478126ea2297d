package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/matchforge/registration-system/middleware"
	"github.com/matchforge/registration-system/models"
	"github.com/matchforge/registration-system/services"
)

// ReviewHandler — консоль организатора: очередь заявок и действия над ними.
type ReviewHandler struct {
	reviewService      services.ReviewService
	joinRequestService services.JoinRequestService
}

func NewReviewHandler(rs services.ReviewService, jrs services.JoinRequestService) *ReviewHandler {
	return &ReviewHandler{
		reviewService:      rs,
		joinRequestService: jrs,
	}
}

// ListHandler обрабатывает GET /tournaments/{tournamentID}/requests?status=
func (h *ReviewHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var statusFilter *models.JoinRequestStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.JoinRequestStatus(raw)
		if !status.Valid() {
			badRequestResponse(w, r, errors.New("status must be one of pending, approved, rejected"))
			return
		}
		statusFilter = &status
	}

	list, err := h.reviewService.List(r.Context(), tournamentID, currentUserID, statusFilter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"requests": list.Requests, "sport_events": list.Events}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type reviewActionInput struct {
	Notes string `json:"notes"`
}

// ApproveHandler godoc
// @Summary Одобрить заявку на участие
// @Tags requests
// @Description Организатор одобряет pending-заявку; слот вместимости захватывается атомарно.
// @Accept json
// @Produce json
// @Param requestID path int true "Join request ID"
// @Success 200 {object} map[string]interface{} "Заявка одобрена, список обновлён"
// @Failure 403 {object} map[string]string "Действие доступно только организатору"
// @Failure 404 {object} map[string]string "Заявка не найдена"
// @Failure 409 {object} map[string]string "Заявка уже рассмотрена или лимит исчерпан"
// @Security BearerAuth
// @Router /requests/{requestID}/approve [post]
func (h *ReviewHandler) ApproveHandler(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.reviewService.Approve)
}

// RejectHandler godoc
// @Summary Отклонить заявку на участие
// @Tags requests
// @Produce json
// @Param requestID path int true "Join request ID"
// @Success 200 {object} map[string]interface{} "Заявка отклонена, список обновлён"
// @Failure 403 {object} map[string]string "Действие доступно только организатору"
// @Failure 409 {object} map[string]string "Заявка уже рассмотрена"
// @Security BearerAuth
// @Router /requests/{requestID}/reject [post]
func (h *ReviewHandler) RejectHandler(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.reviewService.Reject)
}

// RetryRecordHandler обрабатывает POST /requests/{requestID}/retry-record —
// повтор создания записи участника после частичного сбоя одобрения.
func (h *ReviewHandler) RetryRecordHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	requestID, err := getIDFromURL(r, "requestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.joinRequestService.RetryParticipantRecord(r.Context(), requestID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type reviewAction func(ctx context.Context, requestID, callerID int, notes string) (*models.JoinRequest, *services.ReviewList, error)

func (h *ReviewHandler) action(w http.ResponseWriter, r *http.Request, act reviewAction) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	requestID, err := getIDFromURL(r, "requestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input reviewActionInput
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	request, list, err := act(r.Context(), requestID, currentUserID, input.Notes)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"request": request}
	if list != nil {
		response["requests"] = list.Requests
		response["sport_events"] = list.Events
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
