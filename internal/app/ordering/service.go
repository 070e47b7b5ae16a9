package ordering

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nanaosei-dev/chatvendor/internal/adapter/logger"
	"github.com/nanaosei-dev/chatvendor/internal/domain"
	"github.com/nanaosei-dev/chatvendor/internal/interfaces"
)

// duplicateWindow is the coarse dedupe heuristic: a commit matching an
// existing order's phone, merchant, mode and total inside this window is
// treated as a retried tool call or duplicate webhook delivery, not a
// new order. It is not a cryptographic idempotency key; two genuinely
// distinct orders with coincidentally equal totals will coalesce.
const duplicateWindow = 5 * time.Minute

type Service struct {
	orders    interfaces.OrderRepository
	customers interfaces.CustomerRepository
	merchants interfaces.MerchantRepository
	publisher interfaces.EventPublisher
	logger    logger.Logger
	now       func() time.Time
}

func NewService(
	orders interfaces.OrderRepository,
	customers interfaces.CustomerRepository,
	merchants interfaces.MerchantRepository,
	publisher interfaces.EventPublisher,
	lgr logger.Logger,
) *Service {
	return &Service{
		orders:    orders,
		customers: customers,
		merchants: merchants,
		publisher: publisher,
		logger:    lgr,
		now:       time.Now,
	}
}

// Commit turns a validated tool invocation into a persisted order. The
// total is computed once here, from caller-supplied prices that must
// already reflect the catalog.
func (s *Service) Commit(ctx context.Context, cmd interfaces.CommitOrderCommand) (*domain.Order, error) {
	items := make([]domain.OrderItem, len(cmd.Items))
	for i, item := range cmd.Items {
		items[i] = domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	order, err := domain.NewOrder(cmd.MerchantID, cmd.CustomerName, domain.NormalizePhone(cmd.CustomerPhone),
		cmd.Fulfillment, items, cmd.DeliveryLocation, cmd.DeliveryFee)
	if err != nil {
		s.logger.Error("validation_failed", "Order validation failed", "", nil, err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	since := s.now().Add(-duplicateWindow)
	existing, err := s.orders.FindRecentDuplicate(ctx, order.CustomerPhone, order.MerchantID, order.Fulfillment, order.TotalAmount, since)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate order: %w", err)
	}
	if existing != nil {
		s.logger.Info("order_coalesced", "Duplicate commit coalesced to existing order", "", map[string]interface{}{
			"short_id":    existing.ShortID,
			"merchant_id": existing.MerchantID,
		})
		return existing, nil
	}

	order.ID = uuid.NewString()
	order.ShortID = newShortID()

	if err := s.orders.Create(ctx, order); err != nil {
		s.logger.Error("db_transaction_failed", "Failed to create order", "", nil, err)
		return nil, err
	}
	s.logger.Debug("order_created", "Order created in DB", "", map[string]interface{}{
		"short_id": order.ShortID,
		"total":    order.TotalAmount,
	})

	s.afterCommit(ctx, cmd, order)
	return order, nil
}

// afterCommit runs the side effects that must never roll back the order:
// customer upsert, merchant counter, live event fan-out.
func (s *Service) afterCommit(ctx context.Context, cmd interfaces.CommitOrderCommand, order *domain.Order) {
	customer := &domain.Customer{
		Phone:             order.CustomerPhone,
		Name:              cmd.CustomerName,
		CurrentMerchantID: order.MerchantID,
	}
	if err := s.customers.Upsert(ctx, customer); err != nil {
		s.logger.Error("customer_upsert_failed", "Failed to upsert customer after order", "", nil, err)
	}

	if err := s.merchants.IncrementOrderCount(ctx, order.MerchantID); err != nil {
		s.logger.Error("order_count_failed", "Failed to bump merchant order count", "", nil, err)
	}

	payload := interfaces.OrderEventPayload{
		OrderID:       order.ID,
		ShortID:       order.ShortID,
		MerchantID:    order.MerchantID,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		Fulfillment:   order.Fulfillment,
		TotalAmount:   order.TotalAmount,
		ItemCount:     len(order.Items),
	}
	if err := s.publisher.PublishToMerchant(ctx, order.MerchantID, domain.EventNewOrder, payload); err != nil {
		s.logger.Error("event_publish_failed", "Failed to publish order event to merchant room", "", nil, err)
	}
	if err := s.publisher.PublishToAdmin(ctx, domain.EventNewOrder, payload); err != nil {
		s.logger.Error("event_publish_failed", "Failed to publish order event to admin room", "", nil, err)
	}
}

// newShortID builds a human-shareable order reference.
func newShortID() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}
