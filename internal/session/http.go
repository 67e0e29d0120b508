package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/boardprep/review-platform/internal/auth"
	httperrors "github.com/boardprep/review-platform/pkg/http/errors"
)

// HTTPHandler exposes the quiz session lifecycle over REST.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With().Str("component", "session_http").Logger(),
	}
}

// HandleStart serves POST /v1/sessions.
func (h *HTTPHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	view, err := h.svc.Start(r.Context(), user.ID, req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// HandleScrollingStart serves POST /v1/sessions/scrolling. It opens a
// read-only browse of a deck or filtered question set.
func (h *HTTPHandler) HandleScrollingStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	var req struct {
		Module    string     `json:"module"`
		Category  string     `json:"category"`
		CreatorID *uuid.UUID `json:"creator_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	view, err := h.svc.StartScrolling(r.Context(), user.ID, req.Module, req.Category, req.CreatorID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// HandleRankedRemaining serves GET /v1/sessions/ranked/remaining.
func (h *HTTPHandler) HandleRankedRemaining(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeRankedLoginRequired, "Ranked mode requires login")
		return
	}

	remaining, err := h.svc.RankedRemaining(r.Context(), user.ID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"remaining": remaining})
}

// HandleSession routes requests under /v1/sessions/{id}[/{action}]:
// GET for the current view, DELETE to abandon, POST {id}/answers,
// POST {id}/advance, POST {id}/retreat.
func (h *HTTPHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/sessions/")
	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 2)
	sessionID, err := uuid.Parse(parts[0])
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid session ID")
		return
	}

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		view, err := h.svc.Get(r.Context(), user.ID, sessionID)
		h.respond(w, view, err)
	case action == "" && r.Method == http.MethodDelete:
		if err := h.svc.Abandon(r.Context(), user.ID, sessionID); err != nil {
			h.respondServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"abandoned": true})
	case action == "answers" && r.Method == http.MethodPost:
		var req struct {
			Choice int `json:"choice"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
			return
		}
		view, err := h.svc.Answer(r.Context(), user.ID, sessionID, req.Choice)
		h.respond(w, view, err)
	case action == "advance" && r.Method == http.MethodPost:
		view, err := h.svc.Advance(r.Context(), user.ID, sessionID)
		h.respond(w, view, err)
	case action == "retreat" && r.Method == http.MethodPost:
		view, err := h.svc.Retreat(r.Context(), user.ID, sessionID)
		h.respond(w, view, err)
	default:
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
	}
}

func (h *HTTPHandler) respond(w http.ResponseWriter, view *View, err error) {
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *HTTPHandler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found or expired")
	case errors.Is(err, ErrNotSessionOwner):
		httperrors.RespondForbidden(w, httperrors.ErrCodeForbidden, err.Error())
	case errors.Is(err, ErrInvalidModule):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidModule, err.Error())
	case errors.Is(err, ErrInvalidSize):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeValidationFailed, err.Error())
	case errors.Is(err, ErrNotEnoughQuestions):
		httperrors.RespondConflict(w, httperrors.ErrCodeNotEnoughQuestions, err.Error())
	case errors.Is(err, ErrNoQuestionsMatched):
		httperrors.RespondConflict(w, httperrors.ErrCodeNoQuestionsMatched, err.Error())
	case errors.Is(err, ErrRankedLimitReached):
		httperrors.RespondConflict(w, httperrors.ErrCodeRankedLimitReached, err.Error())
	case errors.Is(err, ErrQuestionUnanswered):
		httperrors.RespondConflict(w, httperrors.ErrCodeQuestionUnanswered, err.Error())
	case errors.Is(err, ErrAnswerLocked):
		httperrors.RespondConflict(w, httperrors.ErrCodeAnswerLocked, err.Error())
	case errors.Is(err, ErrChoiceOutOfRange):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeChoiceOutOfRange, err.Error())
	case errors.Is(err, ErrSessionCompleted):
		httperrors.RespondConflict(w, httperrors.ErrCodeSessionCompleted, err.Error())
	case errors.Is(err, ErrNotInteractive):
		httperrors.RespondConflict(w, httperrors.ErrCodeSessionCompleted, err.Error())
	default:
		h.logger.Error().Err(err).Msg("session request failed")
		httperrors.RespondBadGateway(w, httperrors.ErrCodeUpstreamError, "Session operation failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
