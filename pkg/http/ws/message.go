package ws

import "encoding/json"

// MessageType constants for the WebSocket protocol.
const (
	// Client -> Server
	TypeSubscribe = "subscribe"

	// Server -> Client
	TypeLeaderboardUpdate = "leaderboard_update"
	TypeError             = "error"
	TypePing              = "ping"
	TypePong              = "pong"
)

// Message wraps all WebSocket payloads with a type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	RequestID string          `json:"request_id,omitempty"`
}

// SubscribePayload lets a client narrow updates to one exam module.
type SubscribePayload struct {
	Module string `json:"module,omitempty"` // "psychology", "nursing", or empty for all
}

// LeaderboardUpdatePayload carries a refreshed ranking to clients.
type LeaderboardUpdatePayload struct {
	Module string             `json:"module"` // "all" when unfiltered
	SortBy string             `json:"sort_by"`
	Top    []LeaderboardEntry `json:"top"`
}

// LeaderboardEntry is one ranked contributor row.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"user_id"`
	FullName      string `json:"full_name"`
	SubRole       string `json:"sub_role,omitempty"`
	Points        int    `json:"points"`
	QuestionCount int    `json:"question_count"`
}

// ErrorPayload reports a protocol-level error to the client.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
