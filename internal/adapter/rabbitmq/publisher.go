package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nanaosei-dev/chatvendor/internal/interfaces"
)

const (
	// merchantExchange routes per-merchant rooms: merchant.<id>.<event>.
	merchantExchange = "merchant_events"
	// adminExchange mirrors every event to all admin subscribers.
	adminExchange = "admin_events"
)

type publisher struct {
	conn Connection
}

func NewPublisher(conn Connection) interfaces.EventPublisher {
	return &publisher{conn: conn}
}

func (p *publisher) PublishToMerchant(ctx context.Context, merchantID, event string, payload any) error {
	routingKey := fmt.Sprintf("merchant.%s.%s", merchantID, event)
	return p.publish(merchantExchange, "topic", routingKey, merchantID, event, payload)
}

func (p *publisher) PublishToAdmin(ctx context.Context, event string, payload any) error {
	return p.publish(adminExchange, "fanout", "", "", event, payload)
}

func (p *publisher) publish(exchange, kind, routingKey, merchantID, event string, payload any) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, kind, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	body, err := json.Marshal(interfaces.EventEnvelope{
		Event:      event,
		MerchantID: merchantID,
		Payload:    raw,
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	err = ch.Publish(exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
