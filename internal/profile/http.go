package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/boardprep/review-platform/internal/auth"
	httperrors "github.com/boardprep/review-platform/pkg/http/errors"
)

// HTTPHandler serves the authenticated user's profile endpoints.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With().Str("component", "profile_http").Logger(),
	}
}

// HandleMe routes GET (fetch) and PUT (edit) on /v1/profiles/me.
func (h *HTTPHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		profile, err := h.svc.Get(r.Context(), user.ID)
		if err != nil {
			h.respondServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	case http.MethodPut:
		var req UpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
			return
		}
		profile, err := h.svc.Update(r.Context(), user.ID, req)
		if err != nil {
			h.respondServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	default:
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
	}
}

// HandleStats serves GET /v1/profiles/me/stats.
func (h *HTTPHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	stats, err := h.svc.Stats(r.Context(), user.ID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleResults serves GET /v1/profiles/me/results.
func (h *HTTPHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	attempts, err := h.svc.Results(r.Context(), user.ID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": attempts, "count": len(attempts)})
}

func (h *HTTPHandler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "Profile not found")
	case errors.Is(err, ErrInvalidSubRole):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeValidationFailed, err.Error())
	default:
		h.logger.Error().Err(err).Msg("profile request failed")
		httperrors.RespondBadGateway(w, httperrors.ErrCodeProfileUpdateFailed, "Profile operation failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
