package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record kinds and operations carried by RecordChangedMessage.
const (
	KindContract = "contract"
	KindExpense  = "expense"

	OpUpsert = "upsert"
	OpDelete = "delete"
)

// RecordChangedMessage announces that a stored record was written or
// removed. Consumers only use it to drop derived state; the record itself
// is always re-read from the store.
type RecordChangedMessage struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordChangedMessage(kind, id, op string) *RecordChangedMessage {
	return &RecordChangedMessage{
		Kind:      kind,
		ID:        id,
		Op:        op,
		Timestamp: time.Now().UTC(),
	}
}

func (m *RecordChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangedMessageFromJSON decodes and validates a message body.
func RecordChangedMessageFromJSON(data []byte) (*RecordChangedMessage, error) {
	var msg RecordChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Kind {
	case KindContract, KindExpense:
	default:
		return nil, fmt.Errorf("unknown record kind %q", msg.Kind)
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("missing record id")
	}
	return &msg, nil
}
