package webhook

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/feishubot/errors"
	"github.com/kart-io/feishubot/event"
	"github.com/kart-io/feishubot/logger"
)

func textMessagePayload(text string) []byte {
	content, _ := json.Marshal(map[string]string{"text": text})
	payload := map[string]interface{}{
		"schema": "2.0",
		"header": map[string]string{
			"event_id":    "evt_1",
			"event_type":  "im.message.receive_v1",
			"create_time": "1693565712117",
			"token":       "v_token",
			"app_id":      "cli_a1234",
			"tenant_key":  "tenant_1",
		},
		"event": map[string]interface{}{
			"sender": map[string]interface{}{
				"sender_id": map[string]string{"open_id": "ou_sender"},
			},
			"message": map[string]interface{}{
				"message_id":   "om_1",
				"chat_id":      "oc_1",
				"chat_type":    "p2p",
				"message_type": "text",
				"content":      string(content),
			},
		},
	}
	body, _ := json.Marshal(payload)
	return body
}

func eventPayload(eventType string) []byte {
	payload := map[string]interface{}{
		"schema": "2.0",
		"header": map[string]string{
			"event_id":   "evt_2",
			"event_type": eventType,
		},
		"event": map[string]interface{}{
			"chat_id": "oc_1",
		},
	}
	body, _ := json.Marshal(payload)
	return body
}

func newTestDispatcher(opts ...Option) *Dispatcher {
	return New(append([]Option{WithLogger(logger.Discard)}, opts...)...)
}

func TestDispatch_ChallengeEcho(t *testing.T) {
	tests := []struct {
		name      string
		challenge string // raw JSON
	}{
		{"string challenge", `"ajls384kdjx98XX"`},
		{"numeric challenge", `1234567`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDispatcher()
			body := []byte(`{"challenge": ` + tt.challenge + `, "token": "v_token", "type": "url_verification"}`)

			resp, err := d.Dispatch(context.Background(), body)
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)

			got, err := json.Marshal(resp.Body)
			require.NoError(t, err)
			assert.JSONEq(t, `{"challenge": `+tt.challenge+`}`, string(got))
		})
	}
}

func TestDispatch_TextHandlerInvokedOnce(t *testing.T) {
	d := newTestDispatcher()

	calls := 0
	var gotText string
	d.OnMessage("text", func(ctx context.Context, evt *event.Event) (interface{}, error) {
		calls++
		msg, sender, err := evt.Message()
		require.NoError(t, err)
		assert.Equal(t, "ou_sender", sender.SenderID.OpenID)
		gotText, err = msg.TextContent()
		return nil, err
	})

	resp, err := d.Dispatch(context.Background(), textMessagePayload("hello bot"))
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, "hello bot", gotText)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{}, resp.Body)
}

func TestDispatch_MessageTypeMismatch(t *testing.T) {
	d := newTestDispatcher()

	called := false
	d.OnMessage("image", func(ctx context.Context, evt *event.Event) (interface{}, error) {
		called = true
		return nil, nil
	})

	resp, err := d.Dispatch(context.Background(), textMessagePayload("hi"))
	require.NoError(t, err)
	assert.False(t, called, "image handler must not see text messages")
	assert.Equal(t, 200, resp.StatusCode)
}

func TestDispatch_EventHandler(t *testing.T) {
	d := newTestDispatcher()

	var gotType string
	d.OnEvent("im.chat.member.user.added_v1", func(ctx context.Context, evt *event.Event) (interface{}, error) {
		gotType = evt.Type()
		return nil, nil
	})

	_, err := d.Dispatch(context.Background(), eventPayload("im.chat.member.user.added_v1"))
	require.NoError(t, err)
	assert.Equal(t, "im.chat.member.user.added_v1", gotType)
}

func TestDispatch_NoHandlerIsDefaultAck(t *testing.T) {
	d := newTestDispatcher()

	resp, err := d.Dispatch(context.Background(), eventPayload("contact.user.updated_v3"))
	require.NoError(t, err, "unregistered event types are acknowledged, not errors")
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{}, resp.Body)
}

func TestDispatch_InvalidEvent(t *testing.T) {
	d := newTestDispatcher()

	_, err := d.Dispatch(context.Background(), []byte(`{"event": {"message": {}}}`))
	require.Error(t, err)
	assert.True(t, errors.IsInvalidEvent(err))
}

func TestDispatch_HandlerResultBecomesBody(t *testing.T) {
	d := newTestDispatcher()
	d.OnMessage("text", func(ctx context.Context, evt *event.Event) (interface{}, error) {
		return map[string]string{"status": "handled"}, nil
	})

	resp, err := d.Dispatch(context.Background(), textMessagePayload("hi"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"status": "handled"}, resp.Body)
}

func TestDispatch_HandlerErrorStillAcks(t *testing.T) {
	d := newTestDispatcher()
	d.OnMessage("text", func(ctx context.Context, evt *event.Event) (interface{}, error) {
		return nil, errors.ErrSendingFailed
	})

	resp, err := d.Dispatch(context.Background(), textMessagePayload("hi"))
	require.NoError(t, err, "handler failures are logged, the vendor still gets its ack")
	assert.Equal(t, 200, resp.StatusCode)
}

func TestDispatch_BackgroundProcessing(t *testing.T) {
	d := newTestDispatcher(WithBackgroundProcessing())

	done := make(chan string, 1)
	d.OnMessage("text", func(ctx context.Context, evt *event.Event) (interface{}, error) {
		msg, _, _ := evt.Message()
		text, _ := msg.TextContent()
		done <- text
		return nil, nil
	})

	resp, err := d.Dispatch(context.Background(), textMessagePayload("async hi"))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{}, resp.Body, "background mode acks immediately")

	select {
	case text := <-done:
		assert.Equal(t, "async hi", text)
	case <-time.After(time.Second):
		t.Fatal("background handler never ran")
	}
}
