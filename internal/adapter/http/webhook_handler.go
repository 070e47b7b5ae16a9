package http

import (
	"encoding/json"
	"net/http"

	"github.com/nanaosei-dev/chatvendor/internal/adapter/logger"
	"github.com/nanaosei-dev/chatvendor/internal/interfaces"
)

// WebhookHandler receives normalized chat events from the transport
// adapter. Each event is one short-lived, strictly sequential unit of
// work; the transport's at-least-once delivery is the only ordering
// guarantee assumed.
type WebhookHandler struct {
	router interfaces.RouterService
	logger logger.Logger
}

func NewWebhookHandler(router interfaces.RouterService, lgr logger.Logger) *WebhookHandler {
	return &WebhookHandler{router: router, logger: lgr}
}

type webhookResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *WebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var msg interfaces.InboundMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		h.respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if msg.Sender == "" || msg.MessageID == "" {
		h.respondError(w, "sender and messageId are required", http.StatusBadRequest)
		return
	}

	if err := h.router.HandleInbound(r.Context(), msg); err != nil {
		// The customer never sees this; every customer-facing failure
		// already terminated in a graceful reply inside the engine.
		h.logger.Error("inbound_failed", "Failed to process inbound event", msg.MessageID, map[string]interface{}{
			"sender": msg.Sender,
		}, err)
		h.respondError(w, "failed to process event", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(webhookResponse{Status: "ok"})
}

func (h *WebhookHandler) respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}
