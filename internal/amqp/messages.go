package amqp

import (
	"encoding/json"
	"time"

	"nutridash/internal/core"
)

// MealInsertedMessage announces a newly inserted meal-log row. The
// payload carries the raw row as the store shaped it; normalization
// happens on the consuming side.
type MealInsertedMessage struct {
	UserID    string         `json:"user_id"`
	Record    core.RawRecord `json:"record"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewMealInsertedMessage wraps a raw meal row for publishing.
func NewMealInsertedMessage(userID string, record core.RawRecord) *MealInsertedMessage {
	return &MealInsertedMessage{
		UserID:    userID,
		Record:    record,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *MealInsertedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MealInsertedMessageFromJSON creates a message from JSON bytes.
func MealInsertedMessageFromJSON(data []byte) (*MealInsertedMessage, error) {
	var msg MealInsertedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
