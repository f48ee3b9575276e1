package websocket

import "time"

// Client to server frame types.
const (
	FrameWatch   = "watch"
	FrameUnwatch = "unwatch"
	FramePing    = "ping"
)

// Server to client frame types.
const (
	FrameWatching = "watching"
	FrameRefresh  = "refresh"
	FramePong     = "pong"
	FrameError    = "error"
)

type ClientFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type ServerFrame struct {
	Type           string     `json:"type"`
	ConversationID string     `json:"conversation_id,omitempty"`
	OccurredAt     *time.Time `json:"occurred_at,omitempty"`
	Error          string     `json:"error,omitempty"`
	Code           string     `json:"code,omitempty"`
}
