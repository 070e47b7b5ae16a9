package domain

import "time"

type Priority string

const (
	PriorityInfo     Priority = "info"
	PriorityNormal   Priority = "normal"
	PriorityCritical Priority = "critical"
)

// Live event names, scoped to a merchant room and mirrored to the admin room.
const (
	EventNewOrder   = "newOrder"
	EventNewMessage = "newMessage"
	EventNewAlert   = "newAlert"
)

// NotificationEvent is always fanned out live; it is also persisted so a
// dashboard can catch up on events missed while disconnected. CRITICAL
// events additionally escalate to a direct message to a human operator.
type NotificationEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Priority   Priority  `json:"priority"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	MerchantID string    `json:"merchant_id"`
	CreatedAt  time.Time `json:"created_at"`
}
