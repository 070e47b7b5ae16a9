package postgres

import (
	"context"
	"fmt"

	"github.com/nanaosei-dev/chatvendor/internal/domain"
	"github.com/nanaosei-dev/chatvendor/internal/interfaces"
)

type notificationRepository struct {
	db DB
}

func NewNotificationRepository(db DB) interfaces.NotificationRepository {
	return &notificationRepository{db: db}
}

// Save persists the event so a dashboard can catch up on anything it
// missed while disconnected.
func (r *notificationRepository) Save(ctx context.Context, event *domain.NotificationEvent) error {
	query := `
		INSERT INTO notifications (id, merchant_id, type, priority, title, message, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		event.ID, event.MerchantID, event.Type, event.Priority,
		event.Title, event.Message, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}
