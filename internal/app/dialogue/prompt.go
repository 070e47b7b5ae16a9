package dialogue

import (
	"fmt"
	"strings"

	"github.com/nanaosei-dev/chatvendor/internal/domain"
)

// catalogPromptLimit bounds how many catalog items go into the prompt.
const catalogPromptLimit = 30

// BuildSystemPrompt assembles the per-merchant system prompt: persona,
// business details, a numbered quick menu, the fulfillment policy, the
// truncated catalog and delivery-zone rates, plus the sentinel protocol.
func BuildSystemPrompt(m *domain.Merchant) string {
	persona := domain.PersonaFor(m.Category)
	var b strings.Builder

	if m.PromptOverride != "" {
		b.WriteString(m.PromptOverride)
		b.WriteString("\n\n")
	} else {
		fmt.Fprintf(&b, "You are the WhatsApp assistant for %s, speaking as %s %s. Keep replies short and warm.\n\n",
			m.Name, persona.Tone, persona.Emoji)
	}

	if m.Description != "" {
		fmt.Fprintf(&b, "About the business: %s\n", m.Description)
	}
	if m.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", m.Location)
	}
	if m.OpeningHours != "" {
		fmt.Fprintf(&b, "Opening hours: %s\n", m.OpeningHours)
	}
	if !m.IsOpen {
		b.WriteString("The business is currently CLOSED. Let the customer browse, but explain you cannot take orders until it reopens.\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Quick menu you can offer:\n1. Browse %s\n2. %s now\n3. Check order status\n4. Talk to a human\n\n",
		persona.CatalogNoun, persona.ActionVerb)

	switch m.Fulfillment {
	case domain.FulfillmentPickupOnly:
		b.WriteString("This business offers PICKUP only. Never accept delivery requests; ask the customer to pick up instead.\n")
	case domain.FulfillmentDeliveryOnly:
		b.WriteString("This business offers DELIVERY only. Never accept pickup requests; always collect a delivery address.\n")
	default:
		b.WriteString("This business offers both PICKUP and DELIVERY. Ask which one the customer wants before ordering.\n")
	}

	if m.MenuImageURL != "" {
		fmt.Fprintf(&b, "A %s image is on file. When the customer asks to see it, include the tag %s in your reply.\n",
			strings.ToLower(persona.CatalogNoun), tagSendMenuImage)
	}
	fmt.Fprintf(&b, "When the customer is ready to order but has not chosen pickup or delivery, include the tag %s.\n", tagAskFulfillment)
	fmt.Fprintf(&b, "When the customer asks for a human, include the tag %s.\n\n", tagHumanRequest)

	fmt.Fprintf(&b, "%s:\n", persona.CatalogNoun)
	for i, p := range m.Catalog {
		if i >= catalogPromptLimit {
			break
		}
		if p.Description != "" {
			fmt.Fprintf(&b, "- %s: %.2f (%s)\n", p.Name, p.Price, p.Description)
		} else {
			fmt.Fprintf(&b, "- %s: %.2f\n", p.Name, p.Price)
		}
	}

	if len(m.DeliveryZones) > 0 && m.Fulfillment != domain.FulfillmentPickupOnly {
		b.WriteString("\nDelivery rates:\n")
		for _, z := range m.DeliveryZones {
			fmt.Fprintf(&b, "- %s: %.2f\n", z.Name, z.Fee)
		}
	}

	b.WriteString("\nUse the place_order tool only after items, fulfillment mode and the customer's name are confirmed. Use check_order_status when asked about an existing order.")

	return b.String()
}
