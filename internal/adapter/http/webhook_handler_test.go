package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanaosei-dev/chatvendor/internal/adapter/logger"
	"github.com/nanaosei-dev/chatvendor/internal/interfaces"
)

type fakeRouter struct {
	received []interfaces.InboundMessage
	err      error
}

func (r *fakeRouter) HandleInbound(ctx context.Context, msg interfaces.InboundMessage) error {
	r.received = append(r.received, msg)
	return r.err
}

func postEvent(handler *WebhookHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.HandleEvent(rec, req)
	return rec
}

func TestHandleEvent_OK(t *testing.T) {
	router := &fakeRouter{}
	handler := NewWebhookHandler(router, logger.New("test"))

	rec := postEvent(handler, `{"sender":"233200000001","text":"hello","messageId":"wamid.1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])

	require.Len(t, router.received, 1)
	assert.Equal(t, "233200000001", router.received[0].Sender)
	assert.Equal(t, "wamid.1", router.received[0].MessageID)
}

func TestHandleEvent_RejectsNonPost(t *testing.T) {
	handler := NewWebhookHandler(&fakeRouter{}, logger.New("test"))

	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	rec := httptest.NewRecorder()
	handler.HandleEvent(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleEvent_RejectsBadBody(t *testing.T) {
	router := &fakeRouter{}
	handler := NewWebhookHandler(router, logger.New("test"))

	rec := postEvent(handler, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, router.received)
}

func TestHandleEvent_RequiresSenderAndMessageID(t *testing.T) {
	router := &fakeRouter{}
	handler := NewWebhookHandler(router, logger.New("test"))

	for name, body := range map[string]string{
		"missing sender":    `{"text":"hi","messageId":"wamid.1"}`,
		"missing messageId": `{"sender":"233200000001","text":"hi"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := postEvent(handler, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Empty(t, router.received)
}

func TestHandleEvent_RouterErrorIsServerError(t *testing.T) {
	handler := NewWebhookHandler(&fakeRouter{err: errors.New("db down")}, logger.New("test"))

	rec := postEvent(handler, `{"sender":"233200000001","text":"hello","messageId":"wamid.1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
