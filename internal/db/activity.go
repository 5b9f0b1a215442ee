package db

import (
	"context"
	"fmt"

	"github.com/ukydev/maintenance-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoActivityCollection implements ActivityStore for MongoDB.
type MongoActivityCollection struct {
	Collection *mongo.Collection
}

// InsertEvent appends an event to the activity log.
func (c *MongoActivityCollection) InsertEvent(ctx context.Context, event models.Event) error {
	if c.Collection == nil {
		return errNilCollection
	}
	if _, err := c.Collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// FindEvents returns the most recent events, newest first.
func (c *MongoActivityCollection) FindEvents(ctx context.Context, limit int64) ([]models.Event, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := c.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []models.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}
