package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	// client -> server
	MessageTypeClick MessageType = "click"
	MessageTypeMove  MessageType = "move"
	MessageTypeReset MessageType = "reset"

	// server -> client
	MessageTypeBoardState MessageType = "boardState"
	MessageTypeOutcome    MessageType = "outcome"
	MessageTypeVerdict    MessageType = "verdict"
	MessageTypeError      MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ErrorPayload is the body of an error message.
type ErrorPayload struct {
	Error string `json:"error"`
}
