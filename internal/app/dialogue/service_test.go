package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanaosei-dev/chatvendor/internal/adapter/logger"
	"github.com/nanaosei-dev/chatvendor/internal/adapter/memstore"
	"github.com/nanaosei-dev/chatvendor/internal/domain"
	"github.com/nanaosei-dev/chatvendor/internal/interfaces"
)

// --- test doubles ---

type stubModel struct {
	resp *interfaces.ChatResponse
	err  error
}

func (m *stubModel) Chat(ctx context.Context, system string, history []domain.Turn, tools []interfaces.ToolDef) (*interfaces.ChatResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

type stubOrders struct {
	commands []interfaces.CommitOrderCommand
	order    *domain.Order
	err      error
}

func (o *stubOrders) Commit(ctx context.Context, cmd interfaces.CommitOrderCommand) (*domain.Order, error) {
	o.commands = append(o.commands, cmd)
	if o.err != nil {
		return nil, o.err
	}
	return o.order, nil
}

type stubOrderRepo struct {
	active    []*domain.Order
	byShortID map[string]*domain.Order
}

func (r *stubOrderRepo) Create(ctx context.Context, order *domain.Order) error { return nil }
func (r *stubOrderRepo) FindByShortID(ctx context.Context, merchantID, shortID string) (*domain.Order, error) {
	if order, ok := r.byShortID[shortID]; ok {
		return order, nil
	}
	return nil, domain.ErrOrderNotFound
}
func (r *stubOrderRepo) FindRecentDuplicate(ctx context.Context, phone, merchantID string, mode domain.FulfillmentMode, total float64, since time.Time) (*domain.Order, error) {
	return nil, nil
}
func (r *stubOrderRepo) FindActiveByCustomer(ctx context.Context, phone, merchantID string) ([]*domain.Order, error) {
	return r.active, nil
}

type stubCustomers struct {
	paused map[string]bool
}

func (c *stubCustomers) FindByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	return nil, domain.ErrCustomerNotFound
}
func (c *stubCustomers) Upsert(ctx context.Context, customer *domain.Customer) error { return nil }
func (c *stubCustomers) SetCurrentMerchant(ctx context.Context, phone, merchantID string) error {
	return nil
}
func (c *stubCustomers) SetBotPaused(ctx context.Context, phone string, paused bool) error {
	if c.paused == nil {
		c.paused = make(map[string]bool)
	}
	c.paused[phone] = paused
	return nil
}
func (c *stubCustomers) TouchLastSeen(ctx context.Context, phone string) error { return nil }

type sentMessage struct {
	to, body string
}

type stubTransport struct {
	texts []sentMessage
	media []sentMessage
}

func (t *stubTransport) SendText(ctx context.Context, to, body string) error {
	t.texts = append(t.texts, sentMessage{to, body})
	return nil
}
func (t *stubTransport) SendMedia(ctx context.Context, to, mediaURL, caption string) error {
	t.media = append(t.media, sentMessage{to, mediaURL})
	return nil
}

type stubNotifier struct {
	merchantEvents []*domain.NotificationEvent
	adminEvents    []*domain.NotificationEvent
	escalations    [][]string
}

func (n *stubNotifier) ToMerchant(ctx context.Context, merchantID string, event *domain.NotificationEvent) {
	n.merchantEvents = append(n.merchantEvents, event)
}
func (n *stubNotifier) ToAdmin(ctx context.Context, event *domain.NotificationEvent) {
	n.adminEvents = append(n.adminEvents, event)
}
func (n *stubNotifier) Escalate(ctx context.Context, contacts []string, event *domain.NotificationEvent) {
	n.escalations = append(n.escalations, contacts)
}

// --- fixtures ---

type fixture struct {
	service   *Service
	model     *stubModel
	sessions  *memstore.Store
	orders    *stubOrders
	orderRepo *stubOrderRepo
	customers *stubCustomers
	transport *stubTransport
	notifier  *stubNotifier
}

func newFixture() *fixture {
	f := &fixture{
		model:     &stubModel{},
		sessions:  memstore.New(),
		orders:    &stubOrders{},
		orderRepo: &stubOrderRepo{},
		customers: &stubCustomers{},
		transport: &stubTransport{},
		notifier:  &stubNotifier{},
	}
	f.service = NewService(f.model, f.sessions, f.orders, f.orderRepo, f.customers, f.transport, f.notifier, logger.New("test"))
	return f
}

func starJollof() *domain.Merchant {
	return &domain.Merchant{
		ID:            "m1",
		Name:          "Star Jollof",
		Category:      "Restaurant",
		ContactNumber: "233244000000",
		Fulfillment:   domain.FulfillmentBoth,
		IsOpen:        true,
		Catalog: []domain.Product{
			{ID: "p1", Name: "Jollof Combo", Price: 45.00},
			{ID: "p2", Name: "Waakye Special", Price: 30.00},
		},
		DeliveryZones: []domain.DeliveryZone{{Name: "East Legon", Fee: 15.00}},
	}
}

func placeOrderCall(t *testing.T, args interfaces.PlaceOrderArgs) *interfaces.ToolCall {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	return &interfaces.ToolCall{Name: toolPlaceOrder, Arguments: raw}
}

// --- tests ---

func TestConverse_PlainTextReplyIsRemembered(t *testing.T) {
	f := newFixture()
	f.model.resp = &interfaces.ChatResponse{Text: "We have Jollof Combo and Waakye Special!"}
	merchant := starJollof()

	reply, err := f.service.Converse(context.Background(), merchant, "233200000001", "what do you sell?")
	require.NoError(t, err)
	assert.Equal(t, "We have Jollof Combo and Waakye Special!", reply)

	key := domain.ConversationKey("233200000001", merchant.ID)
	turns, err := f.sessions.Fetch(context.Background(), key)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, domain.RoleUser, turns[0].Role)
	assert.Equal(t, domain.RoleAssistant, turns[1].Role)
	assert.Equal(t, reply, turns[1].Content)
}

func TestConverse_PolicyViolationBlocksCommit(t *testing.T) {
	f := newFixture()
	merchant := starJollof()
	merchant.Fulfillment = domain.FulfillmentDeliveryOnly

	f.model.resp = &interfaces.ChatResponse{ToolCall: placeOrderCall(t, interfaces.PlaceOrderArgs{
		Items:           []interfaces.RequestedItem{{Name: "Jollof Combo", Quantity: 1}},
		FulfillmentMode: "PICKUP",
		CustomerName:    "Ama",
	})}

	reply, err := f.service.Converse(context.Background(), merchant, "233200000001", "I'll pick it up")
	require.NoError(t, err)

	assert.Empty(t, f.orders.commands, "order must not be committed on a policy violation")
	assert.Contains(t, reply, "delivers only")
}

func TestConverse_OrderCommitResolvesCatalogAndClearsSession(t *testing.T) {
	f := newFixture()
	merchant := starJollof()
	address := "East Legon"
	f.orders.order = &domain.Order{ShortID: "ORD-1A2B3C4D", TotalAmount: 60.00, Status: domain.StatusPending}

	f.model.resp = &interfaces.ChatResponse{ToolCall: placeOrderCall(t, interfaces.PlaceOrderArgs{
		Items:           []interfaces.RequestedItem{{Name: "jollof", Quantity: 1}, {Name: "unicorn burger", Quantity: 2}},
		FulfillmentMode: "DELIVERY",
		CustomerName:    "Ama",
		DeliveryAddress: &address,
	})}

	reply, err := f.service.Converse(context.Background(), merchant, "233200000001", "yes, place it")
	require.NoError(t, err)

	require.Len(t, f.orders.commands, 1)
	cmd := f.orders.commands[0]
	// The unresolvable item is dropped; the resolved one carries the
	// catalog price, not whatever the model said.
	require.Len(t, cmd.Items, 1)
	assert.Equal(t, "Jollof Combo", cmd.Items[0].Name)
	assert.Equal(t, 45.00, cmd.Items[0].Price)
	assert.Equal(t, domain.ModeDelivery, cmd.Fulfillment)
	assert.Equal(t, 15.00, cmd.DeliveryFee)
	require.NotNil(t, cmd.DeliveryLocation)
	assert.Equal(t, address, *cmd.DeliveryLocation)

	assert.Contains(t, reply, "ORD-1A2B3C4D")
	assert.Contains(t, reply, "60.00")

	key := domain.ConversationKey("233200000001", merchant.ID)
	turns, err := f.sessions.Fetch(context.Background(), key)
	require.NoError(t, err)
	assert.Nil(t, turns, "session must be cleared after a committed order")
}

func TestConverse_NoResolvableItemsCommitsNothing(t *testing.T) {
	f := newFixture()
	merchant := starJollof()

	f.model.resp = &interfaces.ChatResponse{ToolCall: placeOrderCall(t, interfaces.PlaceOrderArgs{
		Items:           []interfaces.RequestedItem{{Name: "pepperoni pizza", Quantity: 1}},
		FulfillmentMode: "PICKUP",
		CustomerName:    "Ama",
	})}

	reply, err := f.service.Converse(context.Background(), merchant, "233200000001", "pizza please")
	require.NoError(t, err)
	assert.Empty(t, reply)
	assert.Empty(t, f.orders.commands)
}

func TestConverse_ModelFailurePausesAndEscalates(t *testing.T) {
	f := newFixture()
	merchant := starJollof()
	f.model.err = errors.New("all providers exhausted")

	reply, err := f.service.Converse(context.Background(), merchant, "233200000001", "hello?")
	require.NoError(t, err, "model failure must not surface as a turn error")
	assert.Equal(t, apologyMessage, reply)

	assert.True(t, f.customers.paused["233200000001"], "bot must be paused for the customer")

	require.Len(t, f.notifier.merchantEvents, 1)
	assert.Equal(t, domain.PriorityCritical, f.notifier.merchantEvents[0].Priority)
	assert.Equal(t, domain.EventNewAlert, f.notifier.merchantEvents[0].Type)

	require.Len(t, f.notifier.escalations, 1)
	assert.Equal(t, []string{merchant.ContactNumber}, f.notifier.escalations[0])
}

func TestConverse_HumanRequestDirective(t *testing.T) {
	f := newFixture()
	merchant := starJollof()
	f.model.resp = &interfaces.ChatResponse{Text: "Of course, getting someone for you. [HUMAN_REQUEST]"}

	reply, err := f.service.Converse(context.Background(), merchant, "233200000001", "let me talk to a person")
	require.NoError(t, err)

	assert.Equal(t, "Of course, getting someone for you.", reply)
	assert.True(t, f.customers.paused["233200000001"])
	require.Len(t, f.notifier.merchantEvents, 1)
	assert.Equal(t, domain.PriorityCritical, f.notifier.merchantEvents[0].Priority)
}

func TestConverse_MenuImageDirective(t *testing.T) {
	t.Run("sends the image on file", func(t *testing.T) {
		f := newFixture()
		merchant := starJollof()
		merchant.MenuImageURL = "https://cdn.example.com/menus/star-jollof.jpg"
		f.model.resp = &interfaces.ChatResponse{Text: "Here you go! [SEND_MENU_IMAGE]"}

		reply, err := f.service.Converse(context.Background(), merchant, "233200000001", "show me the menu")
		require.NoError(t, err)
		assert.Equal(t, "Here you go!", reply)

		require.Len(t, f.transport.media, 1)
		assert.Equal(t, merchant.MenuImageURL, f.transport.media[0].body)
	})

	t.Run("skips quietly when none on file", func(t *testing.T) {
		f := newFixture()
		merchant := starJollof()
		f.model.resp = &interfaces.ChatResponse{Text: "Here you go! [SEND_MENU_IMAGE]"}

		reply, err := f.service.Converse(context.Background(), merchant, "233200000001", "show me the menu")
		require.NoError(t, err)
		assert.Equal(t, "Here you go!", reply)
		assert.Empty(t, f.transport.media)
	})
}

func TestConverse_FulfillmentDirectiveSendsPrompt(t *testing.T) {
	f := newFixture()
	merchant := starJollof()
	f.model.resp = &interfaces.ChatResponse{Text: "Noted! [ASK_FULFILLMENT]"}

	_, err := f.service.Converse(context.Background(), merchant, "233200000001", "one jollof combo")
	require.NoError(t, err)

	require.Len(t, f.transport.texts, 1)
	assert.Contains(t, f.transport.texts[0].body, "pickup or delivery")
}

func TestConverse_UnknownToolAsksAgain(t *testing.T) {
	f := newFixture()
	merchant := starJollof()
	f.model.resp = &interfaces.ChatResponse{ToolCall: &interfaces.ToolCall{Name: "cancel_subscription", Arguments: json.RawMessage(`{}`)}}

	reply, err := f.service.Converse(context.Background(), merchant, "233200000001", "do the thing")
	require.NoError(t, err)
	assert.Contains(t, reply, "didn't catch that")
	assert.Empty(t, f.orders.commands)
}

func TestConverse_OrderStatus(t *testing.T) {
	t.Run("no open orders", func(t *testing.T) {
		f := newFixture()
		merchant := starJollof()
		f.model.resp = &interfaces.ChatResponse{ToolCall: &interfaces.ToolCall{Name: toolCheckOrderStatus, Arguments: json.RawMessage(`{}`)}}

		reply, err := f.service.Converse(context.Background(), merchant, "233200000001", "where's my food?")
		require.NoError(t, err)
		assert.Contains(t, reply, "no open orders")
		assert.Contains(t, reply, "menu")
	})

	t.Run("lists active orders", func(t *testing.T) {
		f := newFixture()
		merchant := starJollof()
		f.orderRepo.active = []*domain.Order{
			{ShortID: "ORD-AAAA1111", Status: domain.StatusConfirmed, TotalAmount: 60.00},
			{ShortID: "ORD-BBBB2222", Status: domain.StatusPending, TotalAmount: 30.00},
		}
		f.model.resp = &interfaces.ChatResponse{ToolCall: &interfaces.ToolCall{Name: toolCheckOrderStatus, Arguments: json.RawMessage(`{}`)}}

		reply, err := f.service.Converse(context.Background(), merchant, "233200000001", "where's my food?")
		require.NoError(t, err)
		assert.Contains(t, reply, "ORD-AAAA1111")
		assert.Contains(t, reply, "CONFIRMED")
		assert.Contains(t, reply, "ORD-BBBB2222")
	})

	t.Run("looks up a specific reference", func(t *testing.T) {
		f := newFixture()
		merchant := starJollof()
		f.orderRepo.byShortID = map[string]*domain.Order{
			"ORD-AAAA1111": {ShortID: "ORD-AAAA1111", Status: domain.StatusReady, TotalAmount: 60.00},
		}
		f.model.resp = &interfaces.ChatResponse{ToolCall: &interfaces.ToolCall{Name: toolCheckOrderStatus, Arguments: json.RawMessage(`{"orderId":"ord-aaaa1111"}`)}}

		reply, err := f.service.Converse(context.Background(), merchant, "233200000001", "any news on ORD-AAAA1111?")
		require.NoError(t, err)
		assert.Contains(t, reply, "ORD-AAAA1111")
		assert.Contains(t, reply, "READY")
		assert.Contains(t, reply, "60.00")
	})

	t.Run("unknown reference offers the listing", func(t *testing.T) {
		f := newFixture()
		merchant := starJollof()
		f.model.resp = &interfaces.ChatResponse{ToolCall: &interfaces.ToolCall{Name: toolCheckOrderStatus, Arguments: json.RawMessage(`{"orderId":"ORD-GHOST000"}`)}}

		reply, err := f.service.Converse(context.Background(), merchant, "233200000001", "check ORD-GHOST000")
		require.NoError(t, err)
		assert.Contains(t, reply, "couldn't find an order ORD-GHOST000")
	})
}
