package deck

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	httperrors "github.com/boardprep/review-platform/pkg/http/errors"
)

// HTTPHandler serves the deck browser endpoints.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With().Str("component", "deck_http").Logger(),
	}
}

// HandleList serves GET /v1/decks?search=&module=&category=
func (h *HTTPHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	decks, err := h.svc.List(r.Context(), filterFromQuery(r))
	if err != nil {
		h.logger.Error().Err(err).Msg("deck list failed")
		httperrors.RespondBadGateway(w, httperrors.ErrCodeDeckFetchFailed, "Could not load decks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"decks": decks, "count": len(decks)})
}

// HandleGet serves GET /v1/decks/{creatorID}
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	idStr := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/decks/"), "/")
	creatorID, err := uuid.Parse(idStr)
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid creator ID")
		return
	}

	deck, questions, err := h.svc.Get(r.Context(), creatorID, filterFromQuery(r))
	if err != nil {
		if errors.Is(err, ErrDeckNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeDeckNotFound, "Deck not found")
			return
		}
		h.logger.Error().Err(err).Msg("deck fetch failed")
		httperrors.RespondBadGateway(w, httperrors.ErrCodeDeckFetchFailed, "Could not load deck")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deck": deck, "questions": questions})
}

func filterFromQuery(r *http.Request) Filter {
	q := r.URL.Query()
	return Filter{
		Search:   q.Get("search"),
		Module:   q.Get("module"),
		Category: q.Get("category"),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
