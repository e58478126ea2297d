package handlers

import (
	"net/http"

	"github.com/matchforge/registration-system/middleware"
	"github.com/matchforge/registration-system/services"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bs services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bs}
}

// FormHandler godoc
// @Summary Сформировать сетку первого раунда
// @Tags brackets
// @Description Случайная жеребьёвка одобренных участников дисциплины; при нечётном числе последний получает bye.
// @Produce json
// @Param sportEventID path int true "Sport event ID"
// @Success 201 {object} map[string]interface{} "Сетка сформирована"
// @Failure 400 {object} map[string]string "Недостаточно участников"
// @Failure 403 {object} map[string]string "Действие доступно только организатору"
// @Failure 409 {object} map[string]string "Сетка уже существует"
// @Security BearerAuth
// @Router /events/{sportEventID}/bracket [post]
func (h *BracketHandler) FormHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to form a bracket")
		return
	}

	sportEventID, err := getIDFromURL(r, "sportEventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.bracketService.FormRoundOne(r.Context(), sportEventID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler обрабатывает GET /events/{sportEventID}/bracket
func (h *BracketHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	sportEventID, err := getIDFromURL(r, "sportEventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.bracketService.GetBracket(r.Context(), sportEventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
