package domain

import (
	"strings"
	"time"
)

// FulfillmentPolicy is what the merchant is set up to offer.
type FulfillmentPolicy string

const (
	FulfillmentPickupOnly   FulfillmentPolicy = "pickup_only"
	FulfillmentDeliveryOnly FulfillmentPolicy = "delivery_only"
	FulfillmentBoth         FulfillmentPolicy = "both"
)

// FulfillmentMode is what a single order requests.
type FulfillmentMode string

const (
	ModePickup   FulfillmentMode = "PICKUP"
	ModeDelivery FulfillmentMode = "DELIVERY"
)

// Allows reports whether the policy permits the requested mode.
func (p FulfillmentPolicy) Allows(mode FulfillmentMode) bool {
	switch p {
	case FulfillmentPickupOnly:
		return mode == ModePickup
	case FulfillmentDeliveryOnly:
		return mode == ModeDelivery
	case FulfillmentBoth:
		return mode == ModePickup || mode == ModeDelivery
	default:
		return false
	}
}

type Product struct {
	ID          string
	Name        string
	Price       float64
	Description string
	Position    int
}

type DeliveryZone struct {
	Name string
	Fee  float64
}

// Merchant is a tenant: a business account with its own catalog, policy
// and conversation persona. Read-heavy in this engine; only the order
// counter is ever written back.
type Merchant struct {
	ID             string
	Name           string
	WhatsappNumber string // transport-assigned routable number
	ChannelID      string // legacy/custom alias
	Category       string
	Description    string
	Location       string
	OpeningHours   string
	ContactNumber  string
	Fulfillment    FulfillmentPolicy
	MenuImageURL   string
	IsOpen         bool
	PromptOverride string
	Catalog        []Product
	DeliveryZones  []DeliveryZone
	OrderCount     int
	CreatedAt      time.Time
}

// FindProduct resolves a requested item name against the catalog by
// case-insensitive substring match. Returns nil when nothing matches.
func (m *Merchant) FindProduct(name string) *Product {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil
	}
	for i := range m.Catalog {
		haystack := strings.ToLower(m.Catalog[i].Name)
		if strings.Contains(haystack, needle) || strings.Contains(needle, haystack) {
			return &m.Catalog[i]
		}
	}
	return nil
}

// ZoneFee looks up the delivery fee for a location by case-insensitive
// substring match against the configured zones.
func (m *Merchant) ZoneFee(location string) (float64, bool) {
	needle := strings.ToLower(strings.TrimSpace(location))
	if needle == "" {
		return 0, false
	}
	for _, z := range m.DeliveryZones {
		zone := strings.ToLower(z.Name)
		if strings.Contains(needle, zone) || strings.Contains(zone, needle) {
			return z.Fee, true
		}
	}
	return 0, false
}
