package chat

import "context"

// Message is one constructed chat notification, transport-agnostic.
type Message struct {
	Text     string
	Fallback string
	// Attachments carry structured detail lines the transport may render
	// below the main text.
	Attachments []Attachment
	// Channels are the resolved destinations, already deduplicated.
	Channels []string
	// Username overrides the bot display name when the instance
	// configures one.
	Username string
	Meta     Meta
}

// Meta carries event context for transports that re-encode deliveries
// into structured wire formats instead of plain chat text.
type Meta struct {
	Kind        string
	ProjectName string
	ProjectURL  string
	SHA         string
	Ref         string
	Status      string
	UserName    string
}

// Attachment is one structured detail block on a message.
type Attachment struct {
	Title string
	Text  string
	Color string
}

// SendOptions carry per-delivery options for the transport.
type SendOptions struct {
	Channel  string
	Username string
}

// Sender posts a constructed message to the destination service. The wire
// format of each vendor lives behind this boundary.
type Sender interface {
	Send(ctx context.Context, message Message, opts SendOptions) error
}
