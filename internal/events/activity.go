package events

import (
	"context"

	"github.com/ukydev/maintenance-tracker/internal/db"
	"github.com/ukydev/maintenance-tracker/internal/models"
)

// ActivityPublisher writes events to the activity log collection.
type ActivityPublisher struct {
	Store db.ActivityStore
}

// Publish implements Publisher.
func (p *ActivityPublisher) Publish(ctx context.Context, event models.Event) error {
	return p.Store.InsertEvent(ctx, event)
}
