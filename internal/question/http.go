package question

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

// HTTPHandler exposes REST endpoints for the question bank.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With().Str("component", "question_http").Logger(),
	}
}

// HandleCollection routes GET (list) and POST (create) on /v1/questions.
func (h *HTTPHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
	}
}

// HandleItem routes PUT (update) and DELETE on /v1/questions/{id}.
func (h *HTTPHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/v1/questions/")
	id, err := uuid.Parse(strings.TrimSuffix(idStr, "/"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid question ID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
	}
}

// HandleCategories serves GET /v1/questions/categories?module=
func (h *HTTPHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	categories, err := h.svc.Categories(r.Context(), r.URL.Query().Get("module"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

// HandleAvailability serves GET /v1/questions/availability?module=&category=
func (h *HTTPHandler) HandleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	availability, err := h.svc.Availability(r.Context(), r.URL.Query().Get("module"), r.URL.Query().Get("category"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availability)
}

func (h *HTTPHandler) list(w http.ResponseWriter, r *http.Request) {
	var creatorID *uuid.UUID
	if raw := r.URL.Query().Get("creator"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid creator ID")
			return
		}
		creatorID = &id
	}

	questions, err := h.svc.List(r.Context(), r.URL.Query().Get("module"), r.URL.Query().Get("category"), creatorID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions, "count": len(questions)})
}

func (h *HTTPHandler) get(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	q, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *HTTPHandler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	q, err := h.svc.Create(r.Context(), actor, req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (h *HTTPHandler) update(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	if err := h.svc.Update(r.Context(), actor, id, req); err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"updated": true})
}

func (h *HTTPHandler) delete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	if err := h.svc.Delete(r.Context(), actor, id); err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

func (h *HTTPHandler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeQuestionNotFound, "Question not found")
	case errors.Is(err, ErrNotOwner):
		httperrors.RespondForbidden(w, httperrors.ErrCodeNotQuestionOwner, err.Error())
	case errors.Is(err, ErrModuleLocked):
		httperrors.RespondForbidden(w, httperrors.ErrCodeModuleLocked, err.Error())
	case errors.Is(err, ErrInvalidModule):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidModule, err.Error())
	case errors.Is(err, ErrInvalidAnswer), errors.Is(err, ErrEmptyPrompt), errors.Is(err, ErrEmptyChoice):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeValidationFailed, err.Error())
	default:
		h.logger.Error().Err(err).Msg("question request failed")
		httperrors.RespondBadGateway(w, httperrors.ErrCodeQuestionFetchFailed, "Could not load questions")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
