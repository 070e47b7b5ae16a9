package domain

import (
	"strings"
	"testing"
)

func testMerchant() *Merchant {
	return &Merchant{
		ID:          "m1",
		Name:        "Star Jollof",
		Category:    "Restaurant",
		Fulfillment: FulfillmentBoth,
		Catalog: []Product{
			{ID: "p1", Name: "Jollof Combo", Price: 45.00},
			{ID: "p2", Name: "Waakye Special", Price: 30.00},
		},
		DeliveryZones: []DeliveryZone{
			{Name: "East Legon", Fee: 15.00},
			{Name: "Osu", Fee: 10.00},
		},
	}
}

func TestMerchant_FindProduct(t *testing.T) {
	m := testMerchant()

	tests := []struct {
		query string
		want  string
	}{
		{"Jollof Combo", "p1"},
		{"jollof", "p1"},
		{"WAAKYE", "p2"},
		{"1x Jollof Combo please", "p1"}, // model sometimes passes extra words
	}
	for _, tt := range tests {
		p := m.FindProduct(tt.query)
		if p == nil {
			t.Errorf("FindProduct(%q) = nil, want %s", tt.query, tt.want)
			continue
		}
		if p.ID != tt.want {
			t.Errorf("FindProduct(%q) = %s, want %s", tt.query, p.ID, tt.want)
		}
	}

	if p := m.FindProduct("pizza"); p != nil {
		t.Errorf("FindProduct(pizza) = %s, want nil", p.ID)
	}
	if p := m.FindProduct(""); p != nil {
		t.Error("empty query must not match")
	}
}

func TestMerchant_ZoneFee(t *testing.T) {
	m := testMerchant()

	fee, ok := m.ZoneFee("deliver to East Legon please")
	if !ok || fee != 15.00 {
		t.Errorf("ZoneFee(East Legon) = %.2f, %v; want 15.00, true", fee, ok)
	}

	if _, ok := m.ZoneFee("Kumasi"); ok {
		t.Error("unknown zone must not resolve")
	}
}

func TestFulfillmentPolicy_Allows(t *testing.T) {
	tests := []struct {
		policy FulfillmentPolicy
		mode   FulfillmentMode
		want   bool
	}{
		{FulfillmentPickupOnly, ModePickup, true},
		{FulfillmentPickupOnly, ModeDelivery, false},
		{FulfillmentDeliveryOnly, ModeDelivery, true},
		{FulfillmentDeliveryOnly, ModePickup, false},
		{FulfillmentBoth, ModePickup, true},
		{FulfillmentBoth, ModeDelivery, true},
		{FulfillmentPolicy("unknown"), ModePickup, false},
	}
	for _, tt := range tests {
		if got := tt.policy.Allows(tt.mode); got != tt.want {
			t.Errorf("%s.Allows(%s) = %v, want %v", tt.policy, tt.mode, got, tt.want)
		}
	}
}

func TestPersonaFor(t *testing.T) {
	if p := PersonaFor("Restaurant"); p.CatalogNoun != "Menu" || p.ActionVerb != "Order" {
		t.Errorf("Restaurant persona = %+v", p)
	}
	if p := PersonaFor("Boutique"); p.CatalogNoun != "Collections" {
		t.Errorf("Boutique persona = %+v", p)
	}
	if p := PersonaFor("Unheard Of Category"); p.CatalogNoun != "Products" || p.ActionVerb != "Buy" {
		t.Errorf("default persona = %+v", p)
	}
}

func TestConversationKey_HashesCustomer(t *testing.T) {
	key := ConversationKey("233200000001", "m1")
	if key == "" {
		t.Fatal("empty key")
	}
	// The raw phone must never appear in the key.
	if strings.Contains(key, "233200000001") {
		t.Errorf("key %q leaks the phone number", key)
	}
	if key != ConversationKey("233200000001", "m1") {
		t.Error("key is not stable")
	}
	if key == ConversationKey("233200000001", "m2") {
		t.Error("key must differ per merchant")
	}
}

func TestNormalizePhone(t *testing.T) {
	if got := NormalizePhone(" 233200000001@s.whatsapp.net "); got != "233200000001" {
		t.Errorf("NormalizePhone = %q", got)
	}
}
