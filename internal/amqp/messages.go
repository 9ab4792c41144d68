package amqp

import (
	"encoding/json"
	"time"
)

// AdviceEventMessage describes one completed advice turn. Consumers
// (the hosting platform's analytics workers) only need the routing
// facts, not the conversation content.
type AdviceEventMessage struct {
	SessionID    string    `json:"session_id"`
	Persona      string    `json:"persona"`
	Provider     string    `json:"provider"`
	Mode         string    `json:"mode"`
	Personalized bool      `json:"personalized"`
	Fallbacks    int       `json:"fallbacks"`
	DurationMs   int64     `json:"duration_ms"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewAdviceEventMessage stamps an event with the current time.
func NewAdviceEventMessage(sessionID, persona, provider, mode string, personalized bool, fallbacks int, duration time.Duration) *AdviceEventMessage {
	return &AdviceEventMessage{
		SessionID:    sessionID,
		Persona:      persona,
		Provider:     provider,
		Mode:         mode,
		Personalized: personalized,
		Fallbacks:    fallbacks,
		DurationMs:   duration.Milliseconds(),
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *AdviceEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AdviceEventMessageFromJSON creates a message from JSON bytes
func AdviceEventMessageFromJSON(data []byte) (*AdviceEventMessage, error) {
	var msg AdviceEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
