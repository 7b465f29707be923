package notification

import "context"

// NopPublisher drops every event. Used when Redis is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, JobEvent) error { return nil }
func (NopPublisher) Ping(context.Context) error              { return nil }
func (NopPublisher) Close() error                            { return nil }
