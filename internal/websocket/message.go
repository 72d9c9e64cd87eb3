package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	TypeSyncRequest      MessageType = "sync_request"
	TypeSyncResponse     MessageType = "sync_response"
	TypeItemUpdate       MessageType = "item_update"
	TypeItemDelete       MessageType = "item_delete"
	TypeConflictRaised   MessageType = "conflict_raised"
	TypeConflictResolved MessageType = "conflict_resolved"
	TypeAck              MessageType = "ack"
	TypePing             MessageType = "ping"
	TypePong             MessageType = "pong"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type SyncRequestPayload struct {
	ClientID     string           `json:"client_id"`
	LastSyncTime time.Time        `json:"last_sync_time"`
	ItemVersions map[string]int64 `json:"item_versions"`
}

type SyncResponsePayload struct {
	Changes  []ItemChange `json:"changes"`
	HasMore  bool         `json:"has_more"`
	SyncTime time.Time    `json:"sync_time"`
}

type ItemChange struct {
	ItemID    string          `json:"item_id"`
	Operation string          `json:"operation"`
	Version   int64           `json:"version"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type ItemUpdatePayload struct {
	ItemID    string          `json:"item_id"`
	ListID    string          `json:"list_id"`
	Version   int64           `json:"version"`
	Item      json.RawMessage `json:"item"`
	UpdatedAt time.Time       `json:"updated_at"`
	ClientID  string          `json:"client_id"`
}

type ItemDeletePayload struct {
	ItemID   string `json:"item_id"`
	ListID   string `json:"list_id"`
	Version  int64  `json:"version"`
	ClientID string `json:"client_id"`
}

type ConflictRaisedPayload struct {
	ConflictID     string          `json:"conflict_id"`
	ItemID         string          `json:"item_id"`
	ListID         string          `json:"list_id"`
	Type           string          `json:"type"`
	Priority       int             `json:"priority"`
	AutoResolvable bool            `json:"auto_resolvable"`
	Conflict       json.RawMessage `json:"conflict"`
}

type ConflictResolvedPayload struct {
	ConflictID string          `json:"conflict_id"`
	ItemID     string          `json:"item_id"`
	ListID     string          `json:"list_id"`
	Choice     string          `json:"choice"`
	Item       json.RawMessage `json:"item,omitempty"`
}

type AckPayload struct {
	MessageID string `json:"message_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}, nil
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
