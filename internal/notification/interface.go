package notification

import "context"

// Publisher announces job state transitions to interested consumers
type Publisher interface {
	Publish(ctx context.Context, event JobEvent) error
	Ping(ctx context.Context) error
	Close() error
}
