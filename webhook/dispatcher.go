// Package webhook verifies and routes inbound Feishu event payloads to
// registered handler functions.
package webhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kart-io/feishubot/event"
	"github.com/kart-io/feishubot/logger"
	"github.com/kart-io/feishubot/observability"
)

// Handler is a callback registered for a message type or event type. The
// returned value becomes the JSON response body; return nil for the
// default acknowledgment.
type Handler func(ctx context.Context, evt *event.Event) (interface{}, error)

// Response is what the hosting HTTP layer writes back to the vendor
type Response struct {
	StatusCode int
	Body       interface{}
}

// defaultAck acknowledges an event without a handler-defined body
func defaultAck() *Response {
	return &Response{StatusCode: 200, Body: map[string]interface{}{}}
}

// Dispatcher routes parsed events to handlers. Handlers are registered at
// startup; the registries are read-only during request handling.
type Dispatcher struct {
	messageHandlers map[string]Handler
	eventHandlers   map[string]Handler

	log        logger.Interface
	telemetry  *observability.Telemetry
	background bool
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithLogger sets the dispatcher logger
func WithLogger(l logger.Interface) Option {
	return func(d *Dispatcher) {
		d.log = l
	}
}

// WithTelemetry records dispatch metrics through the given provider
func WithTelemetry(t *observability.Telemetry) Option {
	return func(d *Dispatcher) {
		d.telemetry = t
	}
}

// WithBackgroundProcessing acknowledges events immediately and runs the
// handler in a goroutine. The default runs handlers to completion before
// responding; background mode trades the handler's response body for
// lower webhook latency.
func WithBackgroundProcessing() Option {
	return func(d *Dispatcher) {
		d.background = true
	}
}

// New creates an empty dispatcher
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		messageHandlers: make(map[string]Handler),
		eventHandlers:   make(map[string]Handler),
		log:             logger.Default,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.telemetry == nil {
		// no-op provider keeps the dispatch path branch-free
		d.telemetry, _ = observability.New(nil)
	}
	return d
}

// OnMessage registers a handler for a message type ("text", "image",
// "interactive", ...) of the generic message-received event. Returns the
// dispatcher for chaining.
func (d *Dispatcher) OnMessage(msgType string, h Handler) *Dispatcher {
	d.messageHandlers[msgType] = h
	return d
}

// OnEvent registers a handler for a non-message event type
// (e.g. "im.chat.member.user.added_v1").
func (d *Dispatcher) OnEvent(eventType string, h Handler) *Dispatcher {
	d.eventHandlers[eventType] = h
	return d
}

// challengeProbe matches the URL-verification handshake. Challenge stays
// raw so the echo is byte-for-byte.
type challengeProbe struct {
	Type      string          `json:"type"`
	Challenge json.RawMessage `json:"challenge"`
}

// Dispatch processes one raw webhook body. URL-verification payloads are
// answered with the echoed challenge; everything else is parsed into an
// Event and routed. An unroutable but well-formed event gets the default
// acknowledgment, not an error; only malformed payloads fail.
func (d *Dispatcher) Dispatch(ctx context.Context, body []byte) (*Response, error) {
	var probe challengeProbe
	if err := json.Unmarshal(body, &probe); err == nil && probe.Type == "url_verification" {
		d.log.Debug(ctx, "url verification handshake")
		return &Response{
			StatusCode: 200,
			Body:       map[string]interface{}{"challenge": probe.Challenge},
		}, nil
	}

	evt, err := event.Parse(body)
	if err != nil {
		d.log.Warn(ctx, "rejected webhook payload: %v", err)
		return nil, err
	}

	begin := time.Now()
	resp, handled, err := d.route(ctx, evt)

	d.telemetry.RecordDispatch(ctx, evt.Type(), handled, time.Since(begin))
	d.log.Trace(ctx, begin, func() (string, string) {
		return "webhook.dispatch " + evt.Type(), evt.Header.EventID
	}, err)

	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (d *Dispatcher) route(ctx context.Context, evt *event.Event) (*Response, bool, error) {
	var h Handler

	if evt.Type() == event.TypeMessageReceive {
		msg, _, err := evt.Message()
		if err != nil {
			return nil, false, err
		}
		h = d.messageHandlers[msg.MessageType]
		if h == nil {
			d.log.Debug(ctx, "no handler for message type %s", msg.MessageType)
		}
	} else {
		h = d.eventHandlers[evt.Type()]
		if h == nil {
			d.log.Debug(ctx, "no handler for event type %s", evt.Type())
		}
	}

	if h == nil {
		return defaultAck(), false, nil
	}

	if d.background {
		go d.runBackground(evt, h)
		return defaultAck(), true, nil
	}

	result, err := h(ctx, evt)
	if err != nil {
		// handler failures are ours to log, the vendor still gets its ack
		d.log.Error(ctx, "handler for %s failed (event %s): %v", evt.Type(), evt.Header.EventID, err)
		return defaultAck(), true, nil
	}
	if result == nil {
		return defaultAck(), true, nil
	}
	return &Response{StatusCode: 200, Body: result}, true, nil
}

// runBackground executes a handler detached from the request; the request
// context is gone by the time the handler runs.
func (d *Dispatcher) runBackground(evt *event.Event, h Handler) {
	ctx := context.Background()
	if _, err := h(ctx, evt); err != nil {
		d.log.Error(ctx, "background handler for %s failed (event %s): %v", evt.Type(), evt.Header.EventID, err)
	}
}
