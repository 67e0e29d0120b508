package leaderboard

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/boardprep/review-platform/internal/question"
	httperrors "github.com/boardprep/review-platform/pkg/http/errors"
)

// HTTPHandler serves the leaderboard REST endpoint.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With().Str("component", "leaderboard_http").Logger(),
	}
}

// HandleGet serves GET /v1/leaderboards?module=&sort_by=&limit=
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	q := r.URL.Query()
	module := q.Get("module")
	if module != "" && module != ModuleAll && !question.ValidModule(module) {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidModule, "Unknown module")
		return
	}

	sortBy := q.Get("sort_by")
	if sortBy != "" && !ValidSortBy(sortBy) {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeUnknownSortKey, "Sort key must be points or questions")
		return
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	board, err := h.svc.Get(r.Context(), module, sortBy, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("leaderboard fetch failed")
		httperrors.RespondBadGateway(w, httperrors.ErrCodeLeaderboardFetchFailed, "Could not load leaderboard")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(board)
}
