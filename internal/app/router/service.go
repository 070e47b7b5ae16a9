package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nanaosei-dev/chatvendor/internal/adapter/logger"
	"github.com/nanaosei-dev/chatvendor/internal/domain"
	"github.com/nanaosei-dev/chatvendor/internal/interfaces"
)

// Global commands short-circuit before tenant resolution and clear the
// active session.
var globalCommands = map[string]bool{
	"home":      true,
	"menu":      true,
	"reset":     true,
	"exit":      true,
	"main menu": true,
}

const startTokenPrefix = "start:"

type Service struct {
	merchants interfaces.MerchantRepository
	customers interfaces.CustomerRepository
	sessions  interfaces.SessionStore
	dialogue  interfaces.DialogueService
	transport interfaces.Transport
	directory interfaces.Directory
	notifier  interfaces.Notifier
	logger    logger.Logger
}

func NewService(
	merchants interfaces.MerchantRepository,
	customers interfaces.CustomerRepository,
	sessions interfaces.SessionStore,
	dialogue interfaces.DialogueService,
	transport interfaces.Transport,
	directory interfaces.Directory,
	notifier interfaces.Notifier,
	lgr logger.Logger,
) *Service {
	return &Service{
		merchants: merchants,
		customers: customers,
		sessions:  sessions,
		dialogue:  dialogue,
		transport: transport,
		directory: directory,
		notifier:  notifier,
		logger:    lgr,
	}
}

// HandleInbound processes one normalized transport event end to end:
// resolve the tenant, run the turn, send the reply. Routing is
// session-first, content-second.
func (s *Service) HandleInbound(ctx context.Context, msg interfaces.InboundMessage) error {
	phone := domain.NormalizePhone(msg.Sender)
	if phone == "" {
		return fmt.Errorf("inbound message has no sender")
	}

	customer, err := s.ensureCustomer(ctx, phone)
	if err != nil {
		return err
	}

	if customer.BotPaused {
		// A human has taken over; the engine stays out of the way.
		s.logger.Debug("bot_paused", "Skipping turn for paused conversation", msg.MessageID, map[string]interface{}{
			"merchant_id": customer.CurrentMerchantID,
		})
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	lowered := strings.ToLower(text)

	if globalCommands[lowered] {
		return s.resetToDirectory(ctx, customer, msg.MessageID)
	}

	if strings.HasPrefix(lowered, startTokenPrefix) {
		merchantID := strings.TrimSpace(text[len(startTokenPrefix):])
		return s.startSession(ctx, customer, merchantID, msg.MessageID)
	}

	if customer.CurrentMerchantID != "" {
		return s.continueSession(ctx, customer, msg)
	}

	// No active session, no start token: point at the directory and stop.
	// Never fall through to the model.
	return s.transport.SendText(ctx, customer.Phone,
		"Hi! 👋 You're not chatting with a shop yet. "+s.directory.Listing(ctx))
}

func (s *Service) ensureCustomer(ctx context.Context, phone string) (*domain.Customer, error) {
	customer, err := s.customers.FindByPhone(ctx, phone)
	if err == nil {
		if err := s.customers.TouchLastSeen(ctx, phone); err != nil {
			s.logger.Warn("last_seen_failed", "Failed to touch last seen", "", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return customer, nil
	}
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}

	customer, err = domain.NewCustomer(phone)
	if err != nil {
		return nil, err
	}
	if err := s.customers.Upsert(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

// resetToDirectory clears the active session and hands the customer to
// the directory listing, regardless of prior state.
func (s *Service) resetToDirectory(ctx context.Context, customer *domain.Customer, requestID string) error {
	if customer.CurrentMerchantID != "" {
		key := domain.ConversationKey(customer.Phone, customer.CurrentMerchantID)
		if err := s.sessions.Clear(ctx, key); err != nil {
			s.logger.Warn("session_clear_failed", "Failed to clear session on reset", requestID, map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	if err := s.customers.SetCurrentMerchant(ctx, customer.Phone, ""); err != nil {
		return fmt.Errorf("failed to clear active session: %w", err)
	}
	customer.CurrentMerchantID = ""

	return s.transport.SendText(ctx, customer.Phone, s.directory.Listing(ctx))
}

// startSession resolves the merchant behind a Start token and opens a
// session for it, replacing any previous one.
func (s *Service) startSession(ctx context.Context, customer *domain.Customer, merchantID, requestID string) error {
	merchant, err := s.resolveMerchant(ctx, merchantID)
	if err != nil {
		if errors.Is(err, domain.ErrMerchantNotFound) {
			s.logger.Warn("start_token_unresolved", "Start token pointed at an unknown merchant", requestID, map[string]interface{}{
				"identifier": merchantID,
			})
			return s.transport.SendText(ctx, customer.Phone,
				"Hmm, that shop isn't registered here. "+s.directory.Listing(ctx))
		}
		return err
	}

	if customer.CurrentMerchantID != "" && customer.CurrentMerchantID != merchant.ID {
		// One active session per customer: entering a new shop closes
		// the old conversation.
		oldKey := domain.ConversationKey(customer.Phone, customer.CurrentMerchantID)
		if err := s.sessions.Clear(ctx, oldKey); err != nil {
			s.logger.Warn("session_clear_failed", "Failed to clear previous session", requestID, map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if err := s.customers.SetCurrentMerchant(ctx, customer.Phone, merchant.ID); err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	customer.CurrentMerchantID = merchant.ID

	persona := domain.PersonaFor(merchant.Category)
	welcome := fmt.Sprintf("Welcome to %s! %s I can show you our %s, take your %s, or check an order. What would you like?",
		merchant.Name, persona.Emoji, strings.ToLower(persona.CatalogNoun), strings.ToLower(persona.ActionVerb))
	return s.transport.SendText(ctx, customer.Phone, welcome)
}

// resolveMerchant tries the exact internal id first, then the
// transport-assigned/legacy aliases.
func (s *Service) resolveMerchant(ctx context.Context, identifier string) (*domain.Merchant, error) {
	merchant, err := s.merchants.FindByID(ctx, identifier)
	if err == nil {
		return merchant, nil
	}
	if !errors.Is(err, domain.ErrMerchantNotFound) {
		return nil, err
	}
	return s.merchants.FindByAlias(ctx, identifier)
}

func (s *Service) continueSession(ctx context.Context, customer *domain.Customer, msg interfaces.InboundMessage) error {
	merchant, err := s.merchants.FindByID(ctx, customer.CurrentMerchantID)
	if err != nil {
		if errors.Is(err, domain.ErrMerchantNotFound) {
			// Stale session: the merchant is gone. Never leave the
			// customer pointing at a dead tenant.
			s.logger.Warn("stale_session", "Active merchant no longer exists, resetting", msg.MessageID, map[string]interface{}{
				"merchant_id": customer.CurrentMerchantID,
			})
			return s.resetToDirectory(ctx, customer, msg.MessageID)
		}
		return fmt.Errorf("failed to load merchant: %w", err)
	}

	utterance := strings.TrimSpace(msg.Text)
	if utterance == "" && msg.MediaURL != "" {
		// Media-only events reach the model as a note; transcription is
		// a separate collaborator.
		utterance = fmt.Sprintf("[customer sent a %s attachment]", msg.MediaType)
	}
	if utterance == "" {
		return nil
	}

	s.notifier.ToMerchant(ctx, merchant.ID, &domain.NotificationEvent{
		Type:       domain.EventNewMessage,
		Priority:   domain.PriorityInfo,
		Title:      "New customer message",
		Message:    utterance,
		MerchantID: merchant.ID,
	})

	reply, err := s.dialogue.Converse(ctx, merchant, customer.Phone, utterance)
	if err != nil {
		return fmt.Errorf("dialogue turn failed: %w", err)
	}
	if reply == "" {
		return nil
	}
	return s.transport.SendText(ctx, customer.Phone, reply)
}
