// Package events fans committed lifecycle events out to the activity log
// and, when configured, to MQTT and Redis subscribers.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ukydev/maintenance-tracker/internal/models"
)

// Publisher delivers an event. Publishing happens after the change it
// describes has been committed; a failed publish never undoes it.
type Publisher interface {
	Publish(ctx context.Context, event models.Event) error
}

// New builds an event with a fresh id.
func New(eventType models.EventType, subject string, actor models.Actor, at time.Time) models.Event {
	return models.Event{
		EventID:    uuid.NewString(),
		Type:       eventType,
		Subject:    subject,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorRole:  actor.Role,
		OccurredAt: at,
	}
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, event models.Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, models.Event) error { return nil }
