package domain

// Persona shapes the assistant's vocabulary and tone for a business
// category: what it calls the catalog, the verb for ordering, and how
// it should sound.
type Persona struct {
	CatalogNoun string
	ActionVerb  string
	Tone        string
	Emoji       string
}

var personas = map[string]Persona{
	"Restaurant":  {CatalogNoun: "Menu", ActionVerb: "Order", Tone: "a friendly host", Emoji: "🍽️"},
	"Boutique":    {CatalogNoun: "Collections", ActionVerb: "Buy", Tone: "a trendy stylist", Emoji: "🛍️"},
	"Grocery":     {CatalogNoun: "Stock", ActionVerb: "Order", Tone: "a helpful shopkeeper", Emoji: "🛒"},
	"Pharmacy":    {CatalogNoun: "Products", ActionVerb: "Order", Tone: "a careful pharmacist", Emoji: "💊"},
	"Electronics": {CatalogNoun: "Gadgets", ActionVerb: "Buy", Tone: "a tech-savvy assistant", Emoji: "🔌"},
	"Salon":       {CatalogNoun: "Services", ActionVerb: "Book", Tone: "a warm receptionist", Emoji: "💇"},
}

var defaultPersona = Persona{CatalogNoun: "Products", ActionVerb: "Buy", Tone: "a helpful clerk", Emoji: "🏪"}

// PersonaFor maps a business category to its persona tuple. Unknown
// categories fall back to the generic clerk.
func PersonaFor(category string) Persona {
	if p, ok := personas[category]; ok {
		return p
	}
	return defaultPersona
}
