package gateway

import (
	"encoding/json"
	"fmt"
)

// ClientMessageType names a request sent by a browser client
type ClientMessageType string

const (
	ClientMessageStart      ClientMessageType = "start"
	ClientMessageRestart    ClientMessageType = "restart"
	ClientMessageVisibility ClientMessageType = "visibility"
)

// ClientMessage is a control message read from a websocket
type ClientMessage struct {
	Type ClientMessageType `json:"type"`
	// Hidden is set by visibility messages when the page goes to the background
	Hidden bool `json:"hidden,omitempty"`
	// Seed optionally overrides the session seed for start and restart
	Seed *int `json:"seed,omitempty"`
}

func parseClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, fmt.Errorf("invalid client message: %w", err)
	}
	switch msg.Type {
	case ClientMessageStart, ClientMessageRestart, ClientMessageVisibility:
		return msg, nil
	default:
		return msg, fmt.Errorf("unknown client message type %q", msg.Type)
	}
}
