package assistant

import "context"

// Assistant is what the API needs from the chat client.
type Assistant interface {
	Enabled() bool
	Translate(ctx context.Context, text, from, to string) (string, error)
	Chat(ctx context.Context, language string, history []Message, text string) (string, error)
}

var _ Assistant = (*Client)(nil)
