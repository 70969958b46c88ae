package amqp

import (
	"encoding/json"
	"time"
)

// Mutation operations carried on the change stream.
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpDelete = "delete"
)

// RecordChangeMessage announces that a user's collection changed. It carries
// only identifiers; consumers reload the collection from the backend.
type RecordChangeMessage struct {
	Username  string    `json:"username"`
	Op        string    `json:"op"`
	RecordID  int64     `json:"recordId"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordChangeMessage creates a change message for one mutation
func NewRecordChangeMessage(username, op string, recordID int64, count int) *RecordChangeMessage {
	return &RecordChangeMessage{
		Username:  username,
		Op:        op,
		RecordID:  recordID,
		Count:     count,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangeMessageFromJSON creates a message from JSON bytes
func RecordChangeMessageFromJSON(data []byte) (*RecordChangeMessage, error) {
	var msg RecordChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
