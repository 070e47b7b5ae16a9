package domain

import (
	"errors"
	"math"
	"time"
)

// Order represents a committed customer order. The total is fixed at
// creation and never silently recomputed.
type Order struct {
	ID               string
	ShortID          string
	MerchantID       string
	CustomerName     string
	CustomerPhone    string
	Items            []OrderItem
	Fulfillment      FulfillmentMode
	DeliveryLocation *string
	DeliveryFee      float64
	TotalAmount      float64
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OrderItem captures the unit price at order time.
type OrderItem struct {
	ID        int
	OrderID   string
	ProductID string
	Name      string
	Quantity  int
	Price     float64
}

// NewOrder creates an order with business rules applied.
func NewOrder(merchantID, customerName, customerPhone string, mode FulfillmentMode, items []OrderItem, deliveryLocation *string, deliveryFee float64) (*Order, error) {
	now := time.Now()
	order := &Order{
		MerchantID:       merchantID,
		CustomerName:     customerName,
		CustomerPhone:    customerPhone,
		Fulfillment:      mode,
		Items:            items,
		DeliveryLocation: deliveryLocation,
		DeliveryFee:      deliveryFee,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	order.CalculateTotal()
	return order, nil
}

// Validate applies business validation rules.
func (o *Order) Validate() error {
	if o.MerchantID == "" {
		return errors.New("merchant id is required")
	}
	if o.CustomerPhone == "" {
		return errors.New("customer phone is required")
	}
	if o.Fulfillment != ModePickup && o.Fulfillment != ModeDelivery {
		return ErrInvalidFulfillmentMode
	}
	if len(o.Items) < 1 {
		return errors.New("order must have at least 1 item")
	}
	for _, item := range o.Items {
		if item.Name == "" {
			return errors.New("item name is required")
		}
		if item.Quantity < 1 {
			return errors.New("item quantity must be at least 1")
		}
		if item.Price < 0 {
			return errors.New("item price must not be negative")
		}
	}
	if o.DeliveryFee < 0 {
		return errors.New("delivery fee must not be negative")
	}
	return nil
}

// CalculateTotal sets total = sum(price*qty) + delivery fee, rounded to
// 2 decimals. The rounding keeps the value bit-identical with what the
// NUMERIC(10,2) column reads back, so the duplicate-window equality
// holds on a retried commit.
func (o *Order) CalculateTotal() {
	total := o.DeliveryFee
	for _, item := range o.Items {
		total += item.Price * float64(item.Quantity)
	}
	o.TotalAmount = math.Round(total*100) / 100
}

// TransitionTo transitions the order to a new status.
func (o *Order) TransitionTo(newStatus Status) error {
	if !o.CanTransitionTo(newStatus) {
		return ErrInvalidStatusTransition
	}
	o.Status = newStatus
	o.UpdatedAt = time.Now()
	return nil
}

// CanTransitionTo checks if the order can transition to the new status.
func (o *Order) CanTransitionTo(newStatus Status) bool {
	validTransitions := map[Status][]Status{
		StatusPending:   {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusReady, StatusCancelled},
		StatusReady:     {StatusDelivered, StatusCancelled},
		StatusDelivered: {},
		StatusCancelled: {},
	}

	for _, s := range validTransitions[o.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInvalidFulfillmentMode  = errors.New("invalid fulfillment mode")
	ErrMerchantNotFound        = errors.New("merchant not found")
	ErrCustomerNotFound        = errors.New("customer not found")
	ErrOrderNotFound           = errors.New("order not found")
)
