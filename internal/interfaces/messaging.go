package interfaces

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nanaosei-dev/chatvendor/internal/domain"
)

// EventEnvelope is the wire shape of a live dashboard event.
type EventEnvelope struct {
	Event      string          `json:"event"`
	MerchantID string          `json:"merchant_id,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	Timestamp  time.Time       `json:"timestamp"`
}

// OrderEventPayload is published on newOrder.
type OrderEventPayload struct {
	OrderID       string                 `json:"order_id"`
	ShortID       string                 `json:"short_id"`
	MerchantID    string                 `json:"merchant_id"`
	CustomerName  string                 `json:"customer_name"`
	CustomerPhone string                 `json:"customer_phone"`
	Fulfillment   domain.FulfillmentMode `json:"fulfillment"`
	TotalAmount   float64                `json:"total_amount"`
	ItemCount     int                    `json:"item_count"`
}

// EventPublisher fans events out to live dashboard subscribers. Delivery
// is at-most-once per connected subscriber; there is no replay.
type EventPublisher interface {
	PublishToMerchant(ctx context.Context, merchantID, event string, payload any) error
	PublishToAdmin(ctx context.Context, event string, payload any) error
}

// EventConsumer is the dashboard-subscriber side.
type EventConsumer interface {
	ConsumeAdminEvents(ctx context.Context, handler EventHandler) error
}

type EventHandler func(ctx context.Context, body []byte) error
