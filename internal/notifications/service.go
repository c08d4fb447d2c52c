package notifications

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Publisher delivers request events to one channel
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards every event
type Nop struct{}

// Publish implements Publisher
func (Nop) Publish(context.Context, Event) error { return nil }

type channel struct {
	name      string
	publisher Publisher
}

// Multi fans an event out to every registered channel. A failing channel
// does not stop delivery to the others.
type Multi struct {
	channels []channel
	logger   *zap.Logger
}

// NewMulti creates an empty fan-out publisher
func NewMulti(logger *zap.Logger) *Multi {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Multi{logger: logger}
}

// Add registers a channel under name
func (m *Multi) Add(name string, p Publisher) *Multi {
	m.channels = append(m.channels, channel{name: name, publisher: p})
	return m
}

// Channels returns the registered channel names in delivery order
func (m *Multi) Channels() []string {
	names := make([]string, 0, len(m.channels))
	for _, ch := range m.channels {
		names = append(names, ch.name)
	}
	return names
}

// Publish implements Publisher
func (m *Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, ch := range m.channels {
		if err := ch.publisher.Publish(ctx, event); err != nil {
			m.logger.Warn("Failed to deliver event",
				zap.String("channel", ch.name),
				zap.String("event", event.Type),
				zap.String("certificate_request_id", event.RequestID),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", ch.name, err))
		}
	}
	return errors.Join(errs...)
}
