package stream

import "context"

// StreamConsumer pulls score requests off a message stream and feeds
// them to the harness.
type StreamConsumer interface {
	Setup(ctx context.Context) error
	Start(ctx context.Context) error
	Stop() error
}
