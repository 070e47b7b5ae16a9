package interfaces

import (
	"context"

	"github.com/nanaosei-dev/chatvendor/internal/domain"
)

// Tool argument shapes (passed to and received from the model backend)

type PlaceOrderArgs struct {
	Items           []RequestedItem `json:"items"`
	FulfillmentMode string          `json:"fulfillmentMode"`
	CustomerName    string          `json:"customerName"`
	DeliveryAddress *string         `json:"deliveryAddress,omitempty"`
	ContactNumber   *string         `json:"contactNumber,omitempty"`
}

type RequestedItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type OrderStatusArgs struct {
	// OrderID is the short reference (ORD-XXXXXXXX) when the customer
	// names a specific order; empty means "list my open orders".
	OrderID string `json:"orderId,omitempty"`
}

// Commands

// CommitOrderCommand carries catalog-resolved items; prices must already
// reflect catalog prices, never client-supplied ones.
type CommitOrderCommand struct {
	MerchantID       string
	CustomerName     string
	CustomerPhone    string
	Items            []CommitOrderItem
	Fulfillment      domain.FulfillmentMode
	DeliveryLocation *string
	DeliveryFee      float64
}

type CommitOrderItem struct {
	ProductID string
	Name      string
	Quantity  int
	Price     float64
}

// Service contracts (Business Logic)

// RouterService turns one inbound transport event into a routed,
// optionally order-producing conversation turn.
type RouterService interface {
	HandleInbound(ctx context.Context, msg InboundMessage) error
}

// DialogueService runs one model-driven turn for an already-resolved
// merchant. Failures degrade to a graceful reply; the returned string is
// what goes back to the customer ("" means nothing to send).
type DialogueService interface {
	Converse(ctx context.Context, merchant *domain.Merchant, customerPhone, utterance string) (string, error)
}

// OrderService commits orders idempotently and triggers fan-out.
type OrderService interface {
	Commit(ctx context.Context, cmd CommitOrderCommand) (*domain.Order, error)
}

// Notifier pushes events to dashboard rooms and escalates CRITICAL ones
// to human operators. Delivery failures are logged, never propagated.
type Notifier interface {
	ToMerchant(ctx context.Context, merchantID string, event *domain.NotificationEvent)
	ToAdmin(ctx context.Context, event *domain.NotificationEvent)
	Escalate(ctx context.Context, contacts []string, event *domain.NotificationEvent)
}
