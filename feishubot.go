// Package feishubot is a thin client for the Feishu (Lark) open platform:
// an authenticated message sender with transparent tenant token refresh and
// a webhook dispatcher that routes incoming events to registered handlers.
//
// Sending a message:
//
//	bot, err := feishubot.New("cli_xxx", "secret")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	_, err = bot.SendTextWithOpenID(context.Background(), "ou_xxx", "hello")
//
// Receiving events:
//
//	d := feishubot.NewDispatcher()
//	d.OnMessage("text", func(ctx context.Context, evt *feishubot.Event) (interface{}, error) {
//		msg, sender, err := evt.Message()
//		if err != nil {
//			return nil, err
//		}
//		text, _ := msg.TextContent()
//		_, err = bot.SendTextWithOpenID(ctx, sender.SenderID.OpenID, text)
//		return nil, err
//	})
//
//	http.Handle("/webhook/event", feishubot.NewHTTPHandler(d))
package feishubot

import (
	"net/http"

	"github.com/kart-io/feishubot/client"
	"github.com/kart-io/feishubot/config"
	"github.com/kart-io/feishubot/event"
	"github.com/kart-io/feishubot/webhook"
)

// ================================
// Core type aliases
// ================================

type (
	// Client sends messages through the Feishu open API
	Client = client.MessageAPIClient

	// Config holds client credentials and tuning knobs
	Config = config.Config

	// Option mutates a Config during construction
	Option = config.Option

	// Event is a parsed webhook callback
	Event = event.Event

	// Message is the message body of an im.message.receive_v1 event
	Message = event.Message

	// Sender identifies who produced a message event
	Sender = event.Sender

	// Dispatcher routes webhook events to handlers
	Dispatcher = webhook.Dispatcher

	// Handler processes one event and optionally returns a response body
	Handler = webhook.Handler

	// Response is what the platform receives back for a webhook delivery
	Response = webhook.Response
)

// Receive ID types accepted by Send.
const (
	ReceiveIDTypeOpenID  = client.ReceiveIDTypeOpenID
	ReceiveIDTypeUserID  = client.ReceiveIDTypeUserID
	ReceiveIDTypeUnionID = client.ReceiveIDTypeUnionID
	ReceiveIDTypeEmail   = client.ReceiveIDTypeEmail
	ReceiveIDTypeChatID  = client.ReceiveIDTypeChatID
)

// Message content types accepted by Send.
const (
	MsgTypeText        = client.MsgTypeText
	MsgTypePost        = client.MsgTypePost
	MsgTypeImage       = client.MsgTypeImage
	MsgTypeInteractive = client.MsgTypeInteractive
	MsgTypeShareChat   = client.MsgTypeShareChat
)

// ================================
// Constructors
// ================================

// New creates a message client from an app ID and secret.
func New(appID, appSecret string, opts ...Option) (*Client, error) {
	opts = append([]Option{config.WithCredentials(appID, appSecret)}, opts...)
	return client.New(opts...)
}

// FromEnv creates a message client configured from APP_ID and APP_SECRET,
// loading a .env file when one is present.
func FromEnv(opts ...Option) (*Client, error) {
	return client.FromEnv(opts...)
}

// NewDispatcher creates an event dispatcher.
func NewDispatcher(opts ...webhook.Option) *Dispatcher {
	return webhook.New(opts...)
}

// NewHTTPHandler wraps a dispatcher as a net/http handler.
func NewHTTPHandler(d *Dispatcher) http.Handler {
	return webhook.NewHTTPHandler(d)
}
