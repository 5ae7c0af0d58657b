package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	MessageTypeMove               MessageType = "move"
	MessageTypeRoomState          MessageType = "roomState"
	MessageTypeOpponentJoined     MessageType = "opponentJoined"
	MessageTypeStatusChanged      MessageType = "statusChanged"
	MessageTypeThreefold          MessageType = "threefoldRepetition"
	MessageTypeFiftyMoveRule      MessageType = "fiftyMoveRule"
	MessageTypePlayerDisconnected MessageType = "playerDisconnected"
	MessageTypeMatchFound         MessageType = "matchFound"
	MessageTypeError              MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewMessage marshals payload into a message of the given type.
func NewMessage(t MessageType, payload interface{}) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: data}, nil
}

// MovePayload is what a client sends to move. Squares use algebraic labels
// for the room's board size.
type MovePayload struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

type PlayerPayload struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	Color       string `json:"color"`
}

// NoticePayload accompanies the one-shot repetition and fifty-move notices.
type NoticePayload struct {
	RoomID        string `json:"roomId"`
	Repetitions   int    `json:"repetitions,omitempty"`
	HalfmoveClock int    `json:"halfmoveClock,omitempty"`
}

type MatchFoundPayload struct {
	RoomID  string `json:"roomId"`
	Color   string `json:"color"`
	Variant string `json:"variant"`
}
