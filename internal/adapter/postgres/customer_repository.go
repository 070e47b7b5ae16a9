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

type customerRepository struct {
	db DB
}

func NewCustomerRepository(db DB) interfaces.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) FindByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	query := `
		SELECT phone, name, current_merchant_id, bot_paused, last_seen, last_nudged_at, created_at
		FROM customers
		WHERE phone = $1
	`

	var c domain.Customer
	var merchantID *string
	err := r.db.QueryRow(ctx, query, domain.NormalizePhone(phone)).Scan(
		&c.Phone, &c.Name, &merchantID, &c.BotPaused, &c.LastSeen, &c.LastNudgedAt, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to query customer: %w", err)
	}
	if merchantID != nil {
		c.CurrentMerchantID = *merchantID
	}
	return &c, nil
}

func (r *customerRepository) Upsert(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (phone, name, current_merchant_id, bot_paused, last_seen, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $5)
		ON CONFLICT (phone) DO UPDATE
		SET name                = COALESCE(NULLIF(EXCLUDED.name, ''), customers.name),
		    current_merchant_id = EXCLUDED.current_merchant_id,
		    last_seen           = EXCLUDED.last_seen
	`
	_, err := r.db.Exec(ctx, query,
		domain.NormalizePhone(customer.Phone), customer.Name, customer.CurrentMerchantID,
		customer.BotPaused, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}
	return nil
}

func (r *customerRepository) SetCurrentMerchant(ctx context.Context, phone, merchantID string) error {
	query := `UPDATE customers SET current_merchant_id = NULLIF($2, ''), last_seen = $3 WHERE phone = $1`
	tag, err := r.db.Exec(ctx, query, domain.NormalizePhone(phone), merchantID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set current merchant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *customerRepository) SetBotPaused(ctx context.Context, phone string, paused bool) error {
	query := `UPDATE customers SET bot_paused = $2 WHERE phone = $1`
	tag, err := r.db.Exec(ctx, query, domain.NormalizePhone(phone), paused)
	if err != nil {
		return fmt.Errorf("failed to set bot paused: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *customerRepository) TouchLastSeen(ctx context.Context, phone string) error {
	query := `UPDATE customers SET last_seen = $2 WHERE phone = $1`
	_, err := r.db.Exec(ctx, query, domain.NormalizePhone(phone), time.Now())
	if err != nil {
		return fmt.Errorf("failed to touch last seen: %w", err)
	}
	return nil
}
