package transport

import "context"

// Sender delivers an outbound message to a recipient. Implementations
// wrap a messaging provider; the engine treats delivery as best-effort.
type Sender interface {
	Send(ctx context.Context, recipientID, body string) error
}
