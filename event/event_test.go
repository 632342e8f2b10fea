package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/feishubot/errors"
)

var messagePayload = []byte(`{
	"schema": "2.0",
	"header": {
		"event_id": "f7984f25108f8137722bb63cee927e66",
		"event_type": "im.message.receive_v1",
		"create_time": "1693565712117",
		"token": "v_token",
		"app_id": "cli_a1234",
		"tenant_key": "tenant_1"
	},
	"event": {
		"sender": {
			"sender_id": {"open_id": "ou_abc", "union_id": "on_abc", "user_id": "u1"},
			"sender_type": "user",
			"tenant_key": "tenant_1"
		},
		"message": {
			"message_id": "om_msg1",
			"create_time": "1693565712100",
			"chat_id": "oc_chat1",
			"chat_type": "p2p",
			"message_type": "text",
			"content": "{\"text\":\"hello bot\"}"
		}
	}
}`)

func TestParse(t *testing.T) {
	evt, err := Parse(messagePayload)
	require.NoError(t, err)

	assert.Equal(t, "im.message.receive_v1", evt.Type())
	assert.Equal(t, "f7984f25108f8137722bb63cee927e66", evt.Header.EventID)
	assert.Equal(t, "cli_a1234", evt.Header.AppID)
	assert.Equal(t, "tenant_1", evt.Header.TenantKey)
}

func TestParse_InvalidPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing header", `{"event": {"message": {}}}`},
		{"missing event", `{"header": {"event_type": "x"}}`},
		{"empty object", `{}`},
		{"not json", `challenge=abc`},
		{"event not an object", `{"header": {"event_type": "x"}, "event": "nope"}`},
		{"event is null", `{"header": {"event_type": "contact.user.created_v3"}, "event": null}`},
		{"header is null", `{"header": null, "event": {"message": {}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			require.Error(t, err)
			assert.True(t, errors.IsInvalidEvent(err), "want invalid-event error, got %v", err)
		})
	}
}

func TestEvent_Message(t *testing.T) {
	evt, err := Parse(messagePayload)
	require.NoError(t, err)

	msg, sender, err := evt.Message()
	require.NoError(t, err)

	assert.Equal(t, "om_msg1", msg.MessageID)
	assert.Equal(t, "text", msg.MessageType)
	assert.Equal(t, "oc_chat1", msg.ChatID)
	assert.Equal(t, "ou_abc", sender.SenderID.OpenID)

	text, err := msg.TextContent()
	require.NoError(t, err)
	assert.Equal(t, "hello bot", text)
}

func TestEvent_Message_NoMessage(t *testing.T) {
	evt, err := Parse([]byte(`{"header": {"event_type": "contact.user.created_v3"}, "event": {"user": {}}}`))
	require.NoError(t, err)

	_, _, err = evt.Message()
	require.Error(t, err)
	assert.True(t, errors.IsInvalidEvent(err))
}

func TestMap_Get(t *testing.T) {
	evt, err := Parse(messagePayload)
	require.NoError(t, err)
	body := evt.Body()

	assert.Equal(t, "ou_abc", body.String("sender", "sender_id", "open_id"))
	assert.Equal(t, "p2p", body.String("message", "chat_type"))

	_, ok := body.Get("message", "no_such_field")
	assert.False(t, ok)

	// wrong type resolves permissively, not with a panic
	assert.Equal(t, "", body.String("message", "no_such_field"))
	assert.Nil(t, body.Map("message", "content"))
}

func TestMap_Scalars(t *testing.T) {
	m := Map{
		"count":   float64(3),
		"flag":    true,
		"items":   []interface{}{"a", "b"},
		"wrapped": map[string]interface{}{"inner": "v"},
	}

	assert.Equal(t, int64(3), m.Int64("count"))
	assert.True(t, m.Bool("flag"))
	assert.Len(t, m.Slice("items"), 2)
	assert.Equal(t, "v", m.Map("wrapped").String("inner"))
	assert.Equal(t, int64(0), m.Int64("missing"))
}
