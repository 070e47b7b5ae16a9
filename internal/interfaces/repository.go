package interfaces

import (
	"context"
	"time"

	"github.com/nanaosei-dev/chatvendor/internal/domain"
)

// Repository contracts (Adapter/Postgres)
type MerchantRepository interface {
	// FindByID resolves the exact internal id.
	FindByID(ctx context.Context, id string) (*domain.Merchant, error)
	// FindByAlias tries the transport-assigned number (exact and
	// +-prefixed) and the legacy channel id, in that order.
	FindByAlias(ctx context.Context, alias string) (*domain.Merchant, error)
	IncrementOrderCount(ctx context.Context, id string) error
}

type CustomerRepository interface {
	FindByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	Upsert(ctx context.Context, customer *domain.Customer) error
	SetCurrentMerchant(ctx context.Context, phone, merchantID string) error
	SetBotPaused(ctx context.Context, phone string, paused bool) error
	TouchLastSeen(ctx context.Context, phone string) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByShortID(ctx context.Context, merchantID, shortID string) (*domain.Order, error)
	// FindRecentDuplicate returns an order from the same phone+merchant
	// placed after `since` with the same mode and total, or nil.
	FindRecentDuplicate(ctx context.Context, phone, merchantID string, mode domain.FulfillmentMode, total float64, since time.Time) (*domain.Order, error)
	// FindActiveByCustomer returns the customer's non-terminal orders
	// for the merchant, newest first.
	FindActiveByCustomer(ctx context.Context, phone, merchantID string) ([]*domain.Order, error)
}

type NotificationRepository interface {
	Save(ctx context.Context, event *domain.NotificationEvent) error
}
