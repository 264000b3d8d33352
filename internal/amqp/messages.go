package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Change operations carried on the event bus.
const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpReplace = "replace"
)

// ChangeMessage signals that a transaction write happened. It carries only
// the record id and operation; consumers re-read the authoritative list from
// the local store before acting.
type ChangeMessage struct {
	MessageID string    `json:"message_id"`
	ID        string    `json:"id,omitempty"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeMessage(op, id string) *ChangeMessage {
	return &ChangeMessage{
		MessageID: uuid.New().String(),
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
