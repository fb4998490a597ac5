package bridge

import (
	"encoding/json"
	"fmt"
)

// Message is the envelope for every script-message crossing the bridge.
// The embedded side posts {type, payload} objects on the streamview channel.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Inbound channel names.
const (
	msgHeightChanged = "heightChanged"
	msgContentReady  = "contentReady"
)

func decodeMessage(raw string) (Message, error) {
	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return Message{}, fmt.Errorf("bridge: malformed message envelope: %w", err)
	}
	if msg.Type == "" {
		return Message{}, fmt.Errorf("bridge: message without type")
	}
	return msg, nil
}

type heightPayload struct {
	Height *float64 `json:"height"`
}

// decodeHeight extracts the height field. Missing or wrong-typed fields mean
// the message is dropped, never partially applied.
func decodeHeight(payload json.RawMessage) (float64, bool) {
	var p heightPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.Height == nil {
		return 0, false
	}
	return *p.Height, true
}
