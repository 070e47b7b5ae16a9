package domain

import (
	"errors"
	"strings"
	"time"
)

// Customer is identified by its normalized phone/channel address.
// At most one merchant session is active at a time; entering a new
// session overwrites the previous one.
type Customer struct {
	Phone             string
	Name              string
	CurrentMerchantID string // empty means no active session
	BotPaused         bool
	LastSeen          time.Time
	LastNudgedAt      *time.Time
	CreatedAt         time.Time
}

func NewCustomer(phone string) (*Customer, error) {
	phone = NormalizePhone(phone)
	if phone == "" {
		return nil, errors.New("customer phone is required")
	}
	now := time.Now()
	return &Customer{
		Phone:     phone,
		LastSeen:  now,
		CreatedAt: now,
	}, nil
}

// NormalizePhone strips whitespace and the whatsapp jid suffix so the
// same customer always maps to the same row.
func NormalizePhone(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexByte(s, '@'); i >= 0 {
		s = s[:i]
	}
	return s
}
