package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nanaosei-dev/chatvendor/internal/adapter/logger"
	"github.com/nanaosei-dev/chatvendor/internal/domain"
	"github.com/nanaosei-dev/chatvendor/internal/interfaces"
)

const apologyMessage = "Sorry, our assistant is having trouble right now. 🙏 Someone from the team will get back to you shortly."

type Service struct {
	model     interfaces.ChatModel
	sessions  interfaces.SessionStore
	orders    interfaces.OrderService
	orderRepo interfaces.OrderRepository
	customers interfaces.CustomerRepository
	transport interfaces.Transport
	notifier  interfaces.Notifier
	logger    logger.Logger
}

func NewService(
	model interfaces.ChatModel,
	sessions interfaces.SessionStore,
	orders interfaces.OrderService,
	orderRepo interfaces.OrderRepository,
	customers interfaces.CustomerRepository,
	transport interfaces.Transport,
	notifier interfaces.Notifier,
	lgr logger.Logger,
) *Service {
	return &Service{
		model:     model,
		sessions:  sessions,
		orders:    orders,
		orderRepo: orderRepo,
		customers: customers,
		transport: transport,
		notifier:  notifier,
		logger:    lgr,
	}
}

// Converse runs one model-driven turn. Every failure path ends in a
// graceful reply or a human handoff, never a raw error to the customer.
func (s *Service) Converse(ctx context.Context, merchant *domain.Merchant, customerPhone, utterance string) (string, error) {
	key := domain.ConversationKey(customerPhone, merchant.ID)

	history, err := s.sessions.AppendAndFetch(ctx, key, domain.Turn{Role: domain.RoleUser, Content: utterance})
	if err != nil {
		// Degrade to a single-turn prompt rather than failing the turn.
		s.logger.Warn("session_append_failed", "Proceeding without stored history", "", map[string]interface{}{
			"merchant_id": merchant.ID,
			"error":       err.Error(),
		})
		history = []domain.Turn{{Role: domain.RoleUser, Content: utterance}}
	}

	resp, err := s.model.Chat(ctx, BuildSystemPrompt(merchant), history, Tools())
	if err != nil {
		return s.failTurn(ctx, merchant, customerPhone, err), nil
	}

	if resp.ToolCall != nil {
		switch resp.ToolCall.Name {
		case toolPlaceOrder:
			return s.handlePlaceOrder(ctx, merchant, customerPhone, key, resp.ToolCall.Arguments)
		case toolCheckOrderStatus:
			return s.handleOrderStatus(ctx, merchant, customerPhone, key, resp.ToolCall.Arguments)
		default:
			s.logger.Warn("unknown_tool_call", "Model requested an unknown tool", "", map[string]interface{}{
				"tool": resp.ToolCall.Name,
			})
			return s.replyAndRemember(ctx, key, "Sorry, I didn't catch that. Could you say it again?"), nil
		}
	}

	result := ParseModelText(resp.Text)
	s.applyDirectives(ctx, merchant, customerPhone, result)
	return s.replyAndRemember(ctx, key, result.Text), nil
}

// failTurn implements the model-failure degradation: pause the bot,
// apologize to the customer, best-effort alert to the merchant contact.
func (s *Service) failTurn(ctx context.Context, merchant *domain.Merchant, customerPhone string, cause error) string {
	s.logger.Error("ai_failure", "Model backend exhausted, handing off to a human", "", map[string]interface{}{
		"merchant_id": merchant.ID,
	}, cause)

	if err := s.customers.SetBotPaused(ctx, customerPhone, true); err != nil {
		s.logger.Error("bot_pause_failed", "Failed to pause bot for customer", "", nil, err)
	}

	event := &domain.NotificationEvent{
		Type:       domain.EventNewAlert,
		Priority:   domain.PriorityCritical,
		Title:      "Assistant unavailable",
		Message:    fmt.Sprintf("The AI assistant failed for a customer of %s. The conversation needs a human reply.", merchant.Name),
		MerchantID: merchant.ID,
	}
	s.notifier.ToMerchant(ctx, merchant.ID, event)

	if merchant.ContactNumber != "" {
		s.notifier.Escalate(ctx, []string{merchant.ContactNumber}, event)
	} else {
		s.logger.Warn("no_merchant_contact", "Merchant has no contact number for escalation", "", map[string]interface{}{
			"merchant_id": merchant.ID,
		})
	}

	return apologyMessage
}

func (s *Service) handlePlaceOrder(ctx context.Context, merchant *domain.Merchant, customerPhone, key string, rawArgs json.RawMessage) (string, error) {
	var args interfaces.PlaceOrderArgs
	if err := json.Unmarshal(rawArgs, &args); err != nil {
		s.logger.Error("tool_args_invalid", "Failed to parse place_order arguments", "", nil, err)
		return s.replyAndRemember(ctx, key, "Sorry, something went wrong putting that order together. Could you confirm it once more?"), nil
	}

	mode := domain.FulfillmentMode(strings.ToUpper(strings.TrimSpace(args.FulfillmentMode)))

	// Policy check comes first: a mode the merchant does not offer gets a
	// corrective reply and no commit.
	if !merchant.Fulfillment.Allows(mode) {
		return s.replyAndRemember(ctx, key, policyCorrection(merchant, mode)), nil
	}

	items := make([]interfaces.CommitOrderItem, 0, len(args.Items))
	for _, requested := range args.Items {
		product := merchant.FindProduct(requested.Name)
		if product == nil {
			// Unresolvable items are dropped; the order proceeds with
			// whatever matched.
			s.logger.Warn("item_unresolved", "Dropping item not found in catalog", "", map[string]interface{}{
				"merchant_id": merchant.ID,
				"item":        requested.Name,
			})
			continue
		}
		qty := requested.Quantity
		if qty < 1 {
			qty = 1
		}
		items = append(items, interfaces.CommitOrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  qty,
			Price:     product.Price,
		})
	}

	if len(items) == 0 {
		s.logger.Warn("no_items_resolved", "place_order had no resolvable items, nothing committed", "", map[string]interface{}{
			"merchant_id": merchant.ID,
		})
		return "", nil
	}

	var location *string
	var fee float64
	if mode == domain.ModeDelivery && args.DeliveryAddress != nil {
		location = args.DeliveryAddress
		if zoneFee, ok := merchant.ZoneFee(*args.DeliveryAddress); ok {
			fee = zoneFee
		}
	}

	order, err := s.orders.Commit(ctx, interfaces.CommitOrderCommand{
		MerchantID:       merchant.ID,
		CustomerName:     args.CustomerName,
		CustomerPhone:    customerPhone,
		Items:            items,
		Fulfillment:      mode,
		DeliveryLocation: location,
		DeliveryFee:      fee,
	})
	if err != nil {
		s.logger.Error("order_commit_failed", "Failed to commit order", "", map[string]interface{}{
			"merchant_id": merchant.ID,
		}, err)
		return s.replyAndRemember(ctx, key, "Sorry, I couldn't save your order just now. Please try again in a moment."), nil
	}

	// The negotiation is done; drop the working memory.
	if err := s.sessions.Clear(ctx, key); err != nil {
		s.logger.Warn("session_clear_failed", "Failed to clear session after order", "", map[string]interface{}{
			"error": err.Error(),
		})
	}

	persona := domain.PersonaFor(merchant.Category)
	return fmt.Sprintf("Your order is in! %s Order ID: %s. Total: %.2f. %s will confirm shortly.",
		persona.Emoji, order.ShortID, order.TotalAmount, merchant.Name), nil
}

func (s *Service) handleOrderStatus(ctx context.Context, merchant *domain.Merchant, customerPhone, key string, rawArgs json.RawMessage) (string, error) {
	var args interfaces.OrderStatusArgs
	if len(rawArgs) > 0 {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			// Malformed args degrade to the open-orders listing.
			s.logger.Warn("tool_args_invalid", "Ignoring malformed check_order_status arguments", "", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if ref := strings.ToUpper(strings.TrimSpace(args.OrderID)); ref != "" {
		return s.orderStatusByRef(ctx, merchant, key, ref)
	}

	active, err := s.orderRepo.FindActiveByCustomer(ctx, customerPhone, merchant.ID)
	if err != nil {
		s.logger.Error("order_lookup_failed", "Failed to fetch active orders", "", map[string]interface{}{
			"merchant_id": merchant.ID,
		}, err)
		return s.replyAndRemember(ctx, key, "I couldn't check your orders just now. Please try again shortly."), nil
	}

	persona := domain.PersonaFor(merchant.Category)
	if len(active) == 0 {
		return s.replyAndRemember(ctx, key,
			fmt.Sprintf("You have no open orders with %s yet. Want to browse the %s? %s",
				merchant.Name, strings.ToLower(persona.CatalogNoun), persona.Emoji)), nil
	}

	var b strings.Builder
	b.WriteString("Here's where your orders stand:\n")
	for _, order := range active {
		fmt.Fprintf(&b, "• %s — %s (%.2f)\n", order.ShortID, strings.ToUpper(string(order.Status)), order.TotalAmount)
	}
	return s.replyAndRemember(ctx, key, strings.TrimSpace(b.String())), nil
}

// orderStatusByRef answers for one specific short order reference.
func (s *Service) orderStatusByRef(ctx context.Context, merchant *domain.Merchant, key, ref string) (string, error) {
	order, err := s.orderRepo.FindByShortID(ctx, merchant.ID, ref)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return s.replyAndRemember(ctx, key,
				fmt.Sprintf("I couldn't find an order %s with %s. Want me to list your open orders instead?", ref, merchant.Name)), nil
		}
		s.logger.Error("order_lookup_failed", "Failed to fetch order by reference", "", map[string]interface{}{
			"merchant_id": merchant.ID,
			"short_id":    ref,
		}, err)
		return s.replyAndRemember(ctx, key, "I couldn't check your orders just now. Please try again shortly."), nil
	}

	return s.replyAndRemember(ctx, key,
		fmt.Sprintf("Order %s is %s. Total: %.2f.", order.ShortID, strings.ToUpper(string(order.Status)), order.TotalAmount)), nil
}

// applyDirectives performs the side effects a plain-text reply asked for.
func (s *Service) applyDirectives(ctx context.Context, merchant *domain.Merchant, customerPhone string, result ModelResult) {
	if result.Has(DirectiveSendMenuImage) {
		if merchant.MenuImageURL == "" {
			s.logger.Warn("menu_image_missing", "Model asked for menu image but merchant has none on file", "", map[string]interface{}{
				"merchant_id": merchant.ID,
			})
		} else {
			persona := domain.PersonaFor(merchant.Category)
			caption := fmt.Sprintf("%s %s from %s", persona.Emoji, persona.CatalogNoun, merchant.Name)
			if err := s.transport.SendMedia(ctx, customerPhone, merchant.MenuImageURL, caption); err != nil {
				s.logger.Error("media_send_failed", "Failed to send menu image", "", map[string]interface{}{
					"merchant_id": merchant.ID,
				}, err)
			}
		}
	}

	if result.Has(DirectiveAskFulfillment) {
		prompt := fulfillmentPrompt(merchant)
		if err := s.transport.SendText(ctx, customerPhone, prompt); err != nil {
			s.logger.Error("text_send_failed", "Failed to send fulfillment prompt", "", nil, err)
		}
	}

	if result.Has(DirectiveHumanRequest) {
		if err := s.customers.SetBotPaused(ctx, customerPhone, true); err != nil {
			s.logger.Error("bot_pause_failed", "Failed to pause bot for handoff", "", nil, err)
		}

		event := &domain.NotificationEvent{
			Type:       domain.EventNewAlert,
			Priority:   domain.PriorityCritical,
			Title:      "Customer wants a human",
			Message:    fmt.Sprintf("A customer of %s (%s) asked to talk to a person. The bot is paused for them.", merchant.Name, customerPhone),
			MerchantID: merchant.ID,
		}
		s.notifier.ToMerchant(ctx, merchant.ID, event)

		if merchant.ContactNumber != "" {
			s.notifier.Escalate(ctx, []string{merchant.ContactNumber}, event)
		} else {
			s.logger.Warn("no_merchant_contact", "Merchant has no contact number for handoff alert", "", map[string]interface{}{
				"merchant_id": merchant.ID,
			})
		}
	}
}

// replyAndRemember persists the assistant's reply to the session before
// returning it.
func (s *Service) replyAndRemember(ctx context.Context, key, reply string) string {
	if reply == "" {
		return reply
	}
	if err := s.sessions.Append(ctx, key, domain.Turn{Role: domain.RoleAssistant, Content: reply}); err != nil {
		s.logger.Warn("session_append_failed", "Failed to store assistant reply", "", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return reply
}

func policyCorrection(merchant *domain.Merchant, requested domain.FulfillmentMode) string {
	switch merchant.Fulfillment {
	case domain.FulfillmentDeliveryOnly:
		return fmt.Sprintf("%s delivers only — pickup isn't available. What address should we deliver to?", merchant.Name)
	case domain.FulfillmentPickupOnly:
		return fmt.Sprintf("%s is pickup only — we can't deliver. Shall I put the order down for pickup?", merchant.Name)
	default:
		return fmt.Sprintf("Sorry, %s can't do %s for this order. Would the other option work?", merchant.Name, strings.ToLower(string(requested)))
	}
}

func fulfillmentPrompt(merchant *domain.Merchant) string {
	switch merchant.Fulfillment {
	case domain.FulfillmentPickupOnly:
		return "This order will be for pickup. Can I have your name to confirm?"
	case domain.FulfillmentDeliveryOnly:
		return "We'll deliver this one. What's the delivery address?"
	default:
		return "Would you like pickup or delivery? 🛵"
	}
}
