package eventstream

import "context"

// Publisher publishes state events to an event stream backend.
type Publisher interface {
	PublishStateSaved(ctx context.Context, event *StateSavedEvent) error
	Close() error
}
