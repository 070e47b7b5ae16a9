package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nanaosei-dev/chatvendor/internal/domain"
	"github.com/nanaosei-dev/chatvendor/internal/interfaces"
)

type merchantRepository struct {
	db DB
}

func NewMerchantRepository(db DB) interfaces.MerchantRepository {
	return &merchantRepository{db: db}
}

const merchantColumns = `id, name, whatsapp_number, channel_id, category, description,
	       location, opening_hours, contact_number, fulfillment, menu_image_url,
	       is_open, prompt_override, order_count, created_at`

func (r *merchantRepository) FindByID(ctx context.Context, id string) (*domain.Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM merchants WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *merchantRepository) FindByAlias(ctx context.Context, alias string) (*domain.Merchant, error) {
	// Alias priority: transport-assigned number (exact, then +-prefixed),
	// then the legacy channel id.
	query := `
		SELECT ` + merchantColumns + `
		FROM merchants
		WHERE whatsapp_number = $1 OR whatsapp_number = '+' || $1 OR channel_id = $1
		ORDER BY (whatsapp_number = $1) DESC
		LIMIT 1
	`
	return r.findOne(ctx, query, alias)
}

func (r *merchantRepository) findOne(ctx context.Context, query string, arg any) (*domain.Merchant, error) {
	var m domain.Merchant
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&m.ID, &m.Name, &m.WhatsappNumber, &m.ChannelID, &m.Category, &m.Description,
		&m.Location, &m.OpeningHours, &m.ContactNumber, &m.Fulfillment, &m.MenuImageURL,
		&m.IsOpen, &m.PromptOverride, &m.OrderCount, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMerchantNotFound
		}
		return nil, fmt.Errorf("failed to query merchant: %w", err)
	}

	if err := r.loadCatalog(ctx, &m); err != nil {
		return nil, err
	}
	if err := r.loadZones(ctx, &m); err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *merchantRepository) loadCatalog(ctx context.Context, m *domain.Merchant) error {
	query := `
		SELECT id, name, price, description, position
		FROM products
		WHERE merchant_id = $1
		ORDER BY position ASC
	`
	rows, err := r.db.Query(ctx, query, m.ID)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Position); err != nil {
			return fmt.Errorf("failed to scan product: %w", err)
		}
		m.Catalog = append(m.Catalog, p)
	}
	return nil
}

func (r *merchantRepository) loadZones(ctx context.Context, m *domain.Merchant) error {
	query := `
		SELECT name, fee
		FROM delivery_zones
		WHERE merchant_id = $1
		ORDER BY name ASC
	`
	rows, err := r.db.Query(ctx, query, m.ID)
	if err != nil {
		return fmt.Errorf("failed to load delivery zones: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var z domain.DeliveryZone
		if err := rows.Scan(&z.Name, &z.Fee); err != nil {
			return fmt.Errorf("failed to scan delivery zone: %w", err)
		}
		m.DeliveryZones = append(m.DeliveryZones, z)
	}
	return nil
}

func (r *merchantRepository) IncrementOrderCount(ctx context.Context, id string) error {
	query := `UPDATE merchants SET order_count = order_count + 1 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment order count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMerchantNotFound
	}
	return nil
}
