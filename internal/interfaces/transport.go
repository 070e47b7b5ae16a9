package interfaces

import "context"

// InboundMessage is the normalized chat event handed over by the
// transport adapter.
type InboundMessage struct {
	Sender    string `json:"sender"`
	Text      string `json:"text,omitempty"`
	MediaURL  string `json:"mediaUrl,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
	MessageID string `json:"messageId"`
}

// Transport is the outbound side of the chat provider.
type Transport interface {
	SendText(ctx context.Context, to, body string) error
	SendMedia(ctx context.Context, to, mediaURL, caption string) error
}

// Directory lists registered merchants for customers without an active
// session. The listing itself is owned by an external collaborator.
type Directory interface {
	Listing(ctx context.Context) string
}
