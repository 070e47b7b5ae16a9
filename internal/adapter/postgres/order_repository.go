package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nanaosei-dev/chatvendor/internal/domain"
	"github.com/nanaosei-dev/chatvendor/internal/interfaces"
)

type orderRepository struct {
	db DB
}

func NewOrderRepository(db DB) interfaces.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO orders (id, short_id, merchant_id, customer_name, customer_phone,
		                    fulfillment, delivery_location, delivery_fee, total_amount,
		                    status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = tx.Exec(ctx, query,
		order.ID, order.ShortID, order.MerchantID, order.CustomerName, order.CustomerPhone,
		order.Fulfillment, order.DeliveryLocation, order.DeliveryFee, order.TotalAmount,
		order.Status, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		itemQuery := `
			INSERT INTO order_items (order_id, product_id, name, quantity, price)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`
		err = tx.QueryRow(ctx, itemQuery,
			order.ID, order.Items[i].ProductID, order.Items[i].Name,
			order.Items[i].Quantity, order.Items[i].Price,
		).Scan(&order.Items[i].ID)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
		order.Items[i].OrderID = order.ID
	}

	return tx.Commit(ctx)
}

const orderColumns = `id, short_id, merchant_id, customer_name, customer_phone,
	       fulfillment, delivery_location, delivery_fee, total_amount,
	       status, created_at, updated_at`

func (r *orderRepository) FindByShortID(ctx context.Context, merchantID, shortID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE merchant_id = $1 AND short_id = $2`

	order, err := r.scanOne(r.db.QueryRow(ctx, query, merchantID, shortID))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) FindRecentDuplicate(ctx context.Context, phone, merchantID string, mode domain.FulfillmentMode, total float64, since time.Time) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE customer_phone = $1 AND merchant_id = $2
		  AND fulfillment = $3 AND total_amount = $4
		  AND created_at > $5
		ORDER BY created_at DESC
		LIMIT 1
	`

	order, err := r.scanOne(r.db.QueryRow(ctx, query, phone, merchantID, mode, total, since))
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) FindActiveByCustomer(ctx context.Context, phone, merchantID string) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE customer_phone = $1 AND merchant_id = $2
		  AND status NOT IN ('delivered', 'cancelled')
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, phone, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *orderRepository) scanOne(row Row) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID, &order.ShortID, &order.MerchantID, &order.CustomerName, &order.CustomerPhone,
		&order.Fulfillment, &order.DeliveryLocation, &order.DeliveryFee, &order.TotalAmount,
		&order.Status, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	return &order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, order *domain.Order) error {
	query := `SELECT id, order_id, product_id, name, quantity, price FROM order_items WHERE order_id = $1`
	rows, err := r.db.Query(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.Quantity, &item.Price); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	return nil
}
