package events

import (
	"encoding/json"
	"time"
)

// EventType is the kind of row change.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
)

// TableMessages is the only table emitting change notifications.
const TableMessages = "messages"

// Change is a single row change notification. Keys carries the filterable
// column values of the row (conversation_id, receiver_id, ...) and drives
// channel routing; Record is the row as written, for logging only.
type Change struct {
	Table      string            `json:"table"`
	Type       EventType         `json:"type"`
	Keys       map[string]string `json:"keys"`
	Record     json.RawMessage   `json:"record,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Filter restricts a subscription to rows where Column equals Value.
type Filter struct {
	Column string
	Value  string
}

// Matches reports whether c carries the filtered column value.
func (f Filter) Matches(c Change) bool {
	if f.Column == "" {
		return true
	}
	return c.Keys[f.Column] == f.Value
}

func NewChange(table string, eventType EventType, keys map[string]string, record interface{}) (Change, error) {
	var raw json.RawMessage
	if record != nil {
		data, err := json.Marshal(record)
		if err != nil {
			return Change{}, err
		}
		raw = data
	}
	return Change{
		Table:      table,
		Type:       eventType,
		Keys:       keys,
		Record:     raw,
		OccurredAt: time.Now().UTC(),
	}, nil
}
