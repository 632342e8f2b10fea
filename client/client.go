// Package client issues authenticated calls to the Feishu message API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kart-io/feishubot/auth"
	"github.com/kart-io/feishubot/config"
	"github.com/kart-io/feishubot/errors"
	"github.com/kart-io/feishubot/logger"
	"github.com/kart-io/feishubot/observability"
)

const (
	tenantAccessTokenURI = "/open-apis/auth/v3/tenant_access_token/internal"
	messageURI           = "/open-apis/im/v1/messages"
)

// Receive ID types accepted by the message API
const (
	ReceiveIDTypeOpenID  = "open_id"
	ReceiveIDTypeUserID  = "user_id"
	ReceiveIDTypeUnionID = "union_id"
	ReceiveIDTypeEmail   = "email"
	ReceiveIDTypeChatID  = "chat_id"
)

// Message types
const (
	MsgTypeText        = "text"
	MsgTypePost        = "post"
	MsgTypeImage       = "image"
	MsgTypeInteractive = "interactive"
	MsgTypeShareChat   = "share_chat"
)

// MessageAPIClient sends messages through the Feishu open API with a
// lazily refreshed tenant access token.
type MessageAPIClient struct {
	cfg       *config.Config
	log       logger.Interface
	store     auth.Store
	telemetry *observability.Telemetry

	// now is replaceable for expiry tests
	now func() time.Time
}

// New creates a client from options
func New(opts ...config.Option) (*MessageAPIClient, error) {
	cfg, err := config.New(opts...)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg)
}

// FromEnv creates a client with credentials read from the environment
// (APP_ID / APP_SECRET by default).
func FromEnv(opts ...config.Option) (*MessageAPIClient, error) {
	cfg, err := config.FromEnv(opts...)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a client from an assembled Config
func NewWithConfig(cfg *config.Config) (*MessageAPIClient, error) {
	if cfg == nil {
		return nil, errors.ErrInvalidConfig
	}

	telemetry, err := observability.New(cfg.Telemetry)
	if err != nil {
		return nil, err
	}

	return &MessageAPIClient{
		cfg:       cfg,
		log:       cfg.Logger,
		store:     cfg.TokenStore,
		telemetry: telemetry,
		now:       time.Now,
	}, nil
}

// Send sends one message. content must be the serialized content object
// for the given msg_type (e.g. {"text":"hi"} for text messages). The
// tenant access token is acquired lazily when absent or expired, exactly
// once; transport failures surface to the caller without retry.
func (c *MessageAPIClient) Send(ctx context.Context, receiveIDType, receiveID, msgType, content string) (string, error) {
	if receiveID == "" {
		return "", errors.New(errors.CodeInvalidReceive, errors.CategoryValidation, "receive_id cannot be empty")
	}
	if content == "" {
		return "", errors.ErrEmptyMessage
	}

	begin := c.now()
	sctx, span := c.telemetry.StartSend(ctx, "im.message.create", msgType)

	messageID, err := c.send(sctx, receiveIDType, receiveID, msgType, content)

	c.telemetry.RecordSend(sctx, span, msgType, time.Since(begin), err)
	c.log.Trace(ctx, begin, func() (string, string) {
		return fmt.Sprintf("im.message.create msg_type=%s receive_id_type=%s", msgType, receiveIDType), messageID
	}, err)

	return messageID, err
}

func (c *MessageAPIClient) send(ctx context.Context, receiveIDType, receiveID, msgType, content string) (string, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s%s?receive_id_type=%s", c.cfg.Host, messageURI, receiveIDType)
	reqBody := map[string]string{
		"receive_id": receiveID,
		"msg_type":   msgType,
		"content":    content,
	}

	var resp apiResponse
	if err := c.doRequest(ctx, http.MethodPost, url, token, reqBody, &resp); err != nil {
		return "", err
	}
	return resp.Data.MessageID, nil
}

// SendTextWithOpenID sends a text message to a user by open_id
func (c *MessageAPIClient) SendTextWithOpenID(ctx context.Context, openID, text string) (string, error) {
	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", errors.Wrap(errors.CodeEmptyMessage, errors.CategoryValidation, "encode text content", err)
	}
	return c.Send(ctx, ReceiveIDTypeOpenID, openID, MsgTypeText, string(content))
}

// SendCardWithOpenID sends an interactive card to a user by open_id.
// card may be a pre-serialized JSON string or any value that marshals to
// the card object.
func (c *MessageAPIClient) SendCardWithOpenID(ctx context.Context, openID string, card interface{}) (string, error) {
	content, err := cardContent(card)
	if err != nil {
		return "", err
	}
	return c.Send(ctx, ReceiveIDTypeOpenID, openID, MsgTypeInteractive, content)
}

// UpdateMessageCard updates a previously sent message card in place
func (c *MessageAPIClient) UpdateMessageCard(ctx context.Context, messageID string, card interface{}) error {
	if messageID == "" {
		return errors.New(errors.CodeInvalidReceive, errors.CategoryValidation, "message_id cannot be empty")
	}
	content, err := cardContent(card)
	if err != nil {
		return err
	}

	begin := c.now()
	sctx, span := c.telemetry.StartSend(ctx, "im.message.patch", MsgTypeInteractive)

	err = c.updateCard(sctx, messageID, content)

	c.telemetry.RecordSend(sctx, span, MsgTypeInteractive, time.Since(begin), err)
	c.log.Trace(ctx, begin, func() (string, string) {
		return "im.message.patch", messageID
	}, err)

	return err
}

func (c *MessageAPIClient) updateCard(ctx context.Context, messageID, content string) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s%s/%s", c.cfg.Host, messageURI, messageID)
	reqBody := map[string]string{"content": content}

	var resp apiResponse
	return c.doRequest(ctx, http.MethodPatch, url, token, reqBody, &resp)
}

// cardContent normalizes a card value to its serialized form
func cardContent(card interface{}) (string, error) {
	switch v := card.(type) {
	case nil:
		return "", errors.ErrEmptyMessage
	case string:
		if v == "" {
			return "", errors.ErrEmptyMessage
		}
		return v, nil
	case json.RawMessage:
		return string(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", errors.Wrap(errors.CodeEmptyMessage, errors.CategoryValidation, "encode card content", err)
		}
		return string(data), nil
	}
}

// ensureToken returns a usable tenant access token, fetching a fresh one
// from the auth endpoint when the cached token is absent or expired.
func (c *MessageAPIClient) ensureToken(ctx context.Context) (string, error) {
	token, err := c.store.Load(ctx)
	if err != nil {
		return "", errors.Wrap(errors.CodeProcessingFailed, errors.CategoryInternal, "load cached token", err)
	}
	if token.Valid(c.now()) {
		return token.Value, nil
	}

	return c.refreshToken(ctx)
}

func (c *MessageAPIClient) refreshToken(ctx context.Context) (string, error) {
	begin := c.now()
	c.log.Debug(ctx, "refreshing tenant access token for app %s", c.cfg.AppID)

	url := c.cfg.Host + tenantAccessTokenURI
	reqBody := map[string]string{
		"app_id":     c.cfg.AppID,
		"app_secret": c.cfg.AppSecret,
	}

	var resp tokenResponse
	if err := c.doRequest(ctx, http.MethodPost, url, "", reqBody, &resp); err != nil {
		return "", err
	}

	expiresAt := begin.Add(time.Duration(resp.Expire) * time.Second)
	if margin := c.cfg.TokenMargin; margin > 0 && time.Duration(resp.Expire)*time.Second > 2*margin {
		expiresAt = expiresAt.Add(-margin)
	}

	token := auth.Token{Value: resp.TenantAccessToken, ExpiresAt: expiresAt}
	if err := c.store.Save(ctx, token); err != nil {
		return "", errors.Wrap(errors.CodeProcessingFailed, errors.CategoryInternal, "save token", err)
	}

	return token.Value, nil
}

type tokenResponse struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int    `json:"expire"`
}

type apiResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		MessageID string `json:"message_id"`
	} `json:"data"`
}

// responseEnvelope is the part of every API response carrying the vendor
// error contract.
type responseEnvelope interface {
	errorCode() (int, string)
}

func (r *tokenResponse) errorCode() (int, string) { return r.Code, r.Msg }
func (r *apiResponse) errorCode() (int, string)   { return r.Code, r.Msg }

// doRequest issues one HTTP call and decodes the vendor envelope. The
// vendor signals failure both through HTTP status and a non-zero code in
// a 200 body; both map to coded errors.
func (c *MessageAPIClient) doRequest(ctx context.Context, method, url, token string, body interface{}, out responseEnvelope) error {
	data, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(errors.CodeProcessingFailed, errors.CategoryInternal, "marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(errors.CodeProcessingFailed, errors.CategoryInternal, "create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return errors.MapNetworkError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.MapNetworkError(err)
	}

	if resp.StatusCode != http.StatusOK {
		return errors.MapHTTPError(resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrap(errors.CodeProcessingFailed, errors.CategoryInternal, "decode response", err)
	}

	if code, msg := out.errorCode(); code != 0 {
		c.log.Error(ctx, "feishu api returned code %d: %s", code, msg)
		return errors.NewLarkError(code, msg)
	}
	return nil
}
