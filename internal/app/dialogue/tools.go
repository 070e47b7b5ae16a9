package dialogue

import "github.com/nanaosei-dev/chatvendor/internal/interfaces"

const (
	toolPlaceOrder       = "place_order"
	toolCheckOrderStatus = "check_order_status"
)

// Tools returns the tool schemas passed to the model backend.
func Tools() []interfaces.ToolDef {
	return []interfaces.ToolDef{
		{
			Name:        toolPlaceOrder,
			Description: "Place an order once the customer has confirmed items, fulfillment mode and their name.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"items": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"name":     map[string]any{"type": "string"},
								"quantity": map[string]any{"type": "number"},
							},
							"required": []string{"name", "quantity"},
						},
					},
					"fulfillmentMode": map[string]any{
						"type": "string",
						"enum": []string{"PICKUP", "DELIVERY"},
					},
					"customerName":    map[string]any{"type": "string"},
					"deliveryAddress": map[string]any{"type": "string"},
					"contactNumber":   map[string]any{"type": "string"},
				},
				"required": []string{"items", "fulfillmentMode", "customerName"},
			},
		},
		{
			Name:        toolCheckOrderStatus,
			Description: "Look up the customer's current orders with this business, or one specific order by its reference.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"orderId": map[string]any{
						"type":        "string",
						"description": "Order reference like ORD-1A2B3C4D, only when the customer mentions one.",
					},
				},
			},
		},
	}
}
