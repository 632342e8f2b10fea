// Package event parses Feishu callback payloads (schema 2.0) into
// read-only Event values.
package event

import (
	"encoding/json"

	"github.com/kart-io/feishubot/errors"
)

// TypeMessageReceive is the generic message-received event type. The
// dispatcher branches on the embedded message's type for these events.
const TypeMessageReceive = "im.message.receive_v1"

// Header holds the common fields every callback event carries
type Header struct {
	EventID    string `json:"event_id"`
	EventType  string `json:"event_type"`
	CreateTime string `json:"create_time"`
	Token      string `json:"token"`
	AppID      string `json:"app_id"`
	TenantKey  string `json:"tenant_key"`
}

// Event is a read-only view over a single callback payload. It is
// constructed per request and discarded after the handler returns.
type Event struct {
	Header Header

	raw  json.RawMessage
	body Map
}

type envelope struct {
	Schema string          `json:"schema"`
	Header *Header         `json:"header"`
	Event  json.RawMessage `json:"event"`
}

// Parse validates and decodes a raw callback body. A payload missing the
// header or event object fails with an invalid-event error.
func Parse(body []byte) (*Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrap(errors.CodeInvalidEvent, errors.CategoryValidation, "malformed event payload", err)
	}
	if env.Header == nil || len(env.Event) == 0 {
		return nil, errors.ErrInvalidEvent
	}

	var eventBody Map
	if err := json.Unmarshal(env.Event, &eventBody); err != nil {
		return nil, errors.Wrap(errors.CodeInvalidEvent, errors.CategoryValidation, "malformed event object", err)
	}
	// a JSON null decodes without error but carries no event
	if eventBody == nil {
		return nil, errors.ErrInvalidEvent
	}

	return &Event{
		Header: *env.Header,
		raw:    env.Event,
		body:   eventBody,
	}, nil
}

// Type returns the event type string used for dispatch
func (e *Event) Type() string {
	return e.Header.EventType
}

// Body returns a permissive view over the event object. Fields the typed
// accessors do not cover stay reachable through it.
func (e *Event) Body() Map {
	return e.body
}

// RawBody returns the undecoded event object
func (e *Event) RawBody() []byte {
	return e.raw
}

// SenderID identifies the user a message came from
type SenderID struct {
	OpenID  string `json:"open_id"`
	UnionID string `json:"union_id"`
	UserID  string `json:"user_id"`
}

// Sender describes the sender of a received message
type Sender struct {
	SenderID   SenderID `json:"sender_id"`
	SenderType string   `json:"sender_type"`
	TenantKey  string   `json:"tenant_key"`
}

// Mention is a user mentioned inside a received message
type Mention struct {
	Key  string   `json:"key"`
	ID   SenderID `json:"id"`
	Name string   `json:"name"`
}

// Message is the typed view of event.message for message-received events
type Message struct {
	MessageID   string    `json:"message_id"`
	RootID      string    `json:"root_id"`
	ParentID    string    `json:"parent_id"`
	CreateTime  string    `json:"create_time"`
	ChatID      string    `json:"chat_id"`
	ChatType    string    `json:"chat_type"`
	MessageType string    `json:"message_type"`
	Content     string    `json:"content"`
	Mentions    []Mention `json:"mentions"`
}

type messageBody struct {
	Sender  *Sender  `json:"sender"`
	Message *Message `json:"message"`
}

// Message decodes the embedded message of a message-received event. It
// fails with an invalid-event error when the event carries no message.
func (e *Event) Message() (*Message, *Sender, error) {
	var mb messageBody
	if err := json.Unmarshal(e.raw, &mb); err != nil {
		return nil, nil, errors.Wrap(errors.CodeInvalidEvent, errors.CategoryValidation, "malformed message event", err)
	}
	if mb.Message == nil {
		return nil, nil, errors.New(errors.CodeInvalidEvent, errors.CategoryValidation, "event carries no message")
	}
	return mb.Message, mb.Sender, nil
}

// TextContent decodes the JSON-string content of a text message and
// returns the bare text.
func (m *Message) TextContent() (string, error) {
	var c struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(m.Content), &c); err != nil {
		return "", errors.Wrap(errors.CodeInvalidEvent, errors.CategoryValidation, "malformed text content", err)
	}
	return c.Text, nil
}
