package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nanaosei-dev/chatvendor/internal/adapter/logger"
	"github.com/nanaosei-dev/chatvendor/internal/interfaces"
)

// EventHandler is the dashboard-subscriber side: it decodes live event
// envelopes from the admin fanout and prints them.
type EventHandler struct {
	logger logger.Logger
}

func NewEventHandler(logger logger.Logger) *EventHandler {
	return &EventHandler{logger: logger}
}

func (h *EventHandler) HandleEvent(ctx context.Context, body []byte) error {
	var env interfaces.EventEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		h.logger.Error("event_parse_failed", "Failed to parse event envelope", "", nil, err)
		return err
	}

	h.logger.Debug("event_received", fmt.Sprintf("Received %s event", env.Event), "", map[string]interface{}{
		"event":       env.Event,
		"merchant_id": env.MerchantID,
	})

	fmt.Printf("[%s] %s merchant=%s payload=%s\n",
		env.Timestamp.Format("15:04:05"), env.Event, env.MerchantID, string(env.Payload))

	return nil
}
