package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nanaosei-dev/chatvendor/internal/adapter/logger"
	"github.com/nanaosei-dev/chatvendor/internal/domain"
	"github.com/nanaosei-dev/chatvendor/internal/interfaces"
)

// Service fans notification events out to dashboard rooms and escalates
// CRITICAL ones to human operators over the chat transport. All failures
// here are logged and isolated; nothing propagates back to the caller.
type Service struct {
	publisher interfaces.EventPublisher
	store     interfaces.NotificationRepository
	transport interfaces.Transport
	operators []string
	logger    logger.Logger
}

func NewService(
	publisher interfaces.EventPublisher,
	store interfaces.NotificationRepository,
	transport interfaces.Transport,
	operators []string,
	lgr logger.Logger,
) *Service {
	return &Service{
		publisher: publisher,
		store:     store,
		transport: transport,
		operators: operators,
		logger:    lgr,
	}
}

func (s *Service) ToMerchant(ctx context.Context, merchantID string, event *domain.NotificationEvent) {
	s.prepare(event, merchantID)
	s.persist(ctx, event)

	if err := s.publisher.PublishToMerchant(ctx, merchantID, event.Type, event); err != nil {
		s.logger.Error("event_publish_failed", "Failed to publish to merchant room", "", map[string]interface{}{
			"merchant_id": merchantID,
			"event":       event.Type,
		}, err)
	}
	// Every merchant event is mirrored to the admin room.
	if err := s.publisher.PublishToAdmin(ctx, event.Type, event); err != nil {
		s.logger.Error("event_publish_failed", "Failed to mirror event to admin room", "", nil, err)
	}

	if event.Priority == domain.PriorityCritical && len(s.operators) > 0 {
		s.Escalate(ctx, s.operators, event)
	}
}

func (s *Service) ToAdmin(ctx context.Context, event *domain.NotificationEvent) {
	s.prepare(event, event.MerchantID)
	s.persist(ctx, event)

	if err := s.publisher.PublishToAdmin(ctx, event.Type, event); err != nil {
		s.logger.Error("event_publish_failed", "Failed to publish to admin room", "", nil, err)
	}

	if event.Priority == domain.PriorityCritical && len(s.operators) > 0 {
		s.Escalate(ctx, s.operators, event)
	}
}

// Escalate sends the event as a direct message to each contact. A
// failure for one recipient never blocks the others.
func (s *Service) Escalate(ctx context.Context, contacts []string, event *domain.NotificationEvent) {
	body := fmt.Sprintf("⚠️ %s\n%s", event.Title, event.Message)
	for _, contact := range contacts {
		if contact == "" {
			continue
		}
		if err := s.transport.SendText(ctx, contact, body); err != nil {
			s.logger.Error("escalation_send_failed", "Failed to reach operator contact", "", map[string]interface{}{
				"contact": contact,
				"event":   event.Type,
			}, err)
		}
	}
}

func (s *Service) prepare(event *domain.NotificationEvent, merchantID string) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.MerchantID == "" {
		event.MerchantID = merchantID
	}
	if event.Priority == "" {
		event.Priority = domain.PriorityNormal
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
}

func (s *Service) persist(ctx context.Context, event *domain.NotificationEvent) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, event); err != nil {
		s.logger.Error("notification_persist_failed", "Failed to persist notification", "", map[string]interface{}{
			"event": event.Type,
		}, err)
	}
}
