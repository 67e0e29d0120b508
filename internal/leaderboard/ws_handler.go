package leaderboard

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	ws "github.com/boardprep/review-platform/pkg/http/ws"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: implement proper origin checking for production
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WSHandler upgrades /ws/leaderboards connections and registers them on
// the hub. On connect the client immediately receives the current
// points ranking so it does not wait for the next broadcast.
type WSHandler struct {
	svc    *Service
	hub    *ws.Hub
	logger zerolog.Logger
}

func NewWSHandler(svc *Service, hub *ws.Hub, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		svc:    svc,
		hub:    hub,
		logger: logger.With().Str("component", "leaderboard_ws").Logger(),
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	clientID := uuid.New().String()
	wsConn := ws.NewConnection(conn, h.logger)
	h.hub.Register(clientID, wsConn)

	go wsConn.WritePump()
	h.sendSnapshot(r, wsConn)

	wsConn.ReadPump(func(msg ws.Message) error {
		switch msg.Type {
		case ws.TypePing:
			return wsConn.Send(ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})
		case ws.TypeSubscribe:
			// Subscription is implicit; acknowledge with a fresh snapshot.
			h.sendSnapshot(r, wsConn)
			return nil
		default:
			payload, _ := json.Marshal(ws.ErrorPayload{Code: "unknown_type", Message: "Unsupported message type"})
			return wsConn.Send(ws.Message{Type: ws.TypeError, Payload: payload, RequestID: msg.RequestID})
		}
	})

	h.hub.Unregister(clientID)
}

func (h *WSHandler) sendSnapshot(r *http.Request, conn *ws.Connection) {
	module := r.URL.Query().Get("module")
	board, err := h.svc.Get(r.Context(), module, SortByPoints, 10)
	if err != nil {
		h.logger.Warn().Err(err).Msg("leaderboard snapshot failed")
		return
	}

	payload, err := json.Marshal(ws.LeaderboardUpdatePayload{
		Module: board.Module,
		SortBy: board.SortBy,
		Top:    toWSEntries(board.Entries),
	})
	if err != nil {
		return
	}
	if err := conn.Send(ws.Message{Type: ws.TypeLeaderboardUpdate, Payload: payload}); err != nil {
		h.logger.Warn().Err(err).Msg("snapshot send failed")
	}
}
