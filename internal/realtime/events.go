package realtime

import "encoding/json"

// Event names are part of the client contract, spelling included.
const (
	EventJoinRoom    = "join-room"
	EventSendMessage = "send-messege"
	EventTypingStart = "typing-start"
	EventTypingEnd   = "typing-end"

	EventMessageBack = "messege-back"
	EventTyping      = "recieve-typing"
	EventNotTyping   = "notRecieve-typing"
	EventJoined      = "joined-room"
	EventError       = "error"

	unknownEvent = "unknown"
)

type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type roomPayload struct {
	RoomID string `json:"roomID"`
}

type chatPayload struct {
	RoomID   string `json:"roomID"`
	Message  string `json:"message"`
	UserName string `json:"userName"`
	Sender   string `json:"sender"`
}

type chatBack struct {
	Message  string `json:"message"`
	UserName string `json:"userName"`
	Sender   string `json:"sender"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func encode(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
