package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// ChangeEvent announces a successful write to one resource collection.
// Consumers re-read the collection rather than trusting the event payload.
type ChangeEvent struct {
	Resource  string    `json:"resource"`
	ID        string    `json:"id"`
	Op        Op        `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeEvent(resource, id string, op Op) *ChangeEvent {
	return &ChangeEvent{
		Resource:  resource,
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

func (m *ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeEventFromJSON(data []byte) (*ChangeEvent, error) {
	var msg ChangeEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Resource == "" {
		return nil, fmt.Errorf("change event without resource")
	}
	return &msg, nil
}
