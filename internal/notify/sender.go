package notify

import "context"

// Sender delivers one message to an already-addressed recipient.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, to, body string) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, to, body string) error {
	return f(ctx, to, body)
}

var _ Sender = (SenderFunc)(nil)
