package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sequence names.
const (
	SeqRequests  = "work_requests"
	SeqReports   = "service_reports"
	SeqSchedules = "pm_schedules"
)

// MongoCounterCollection implements CounterCollection with one document
// per sequence.
type MongoCounterCollection struct {
	Collection *mongo.Collection
}

// Next atomically increments the named sequence and returns the new value.
// The first call for a name returns 1.
func (c *MongoCounterCollection) Next(ctx context.Context, name string) (int64, error) {
	if c.Collection == nil {
		return 0, errNilCollection
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := c.Collection.FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": 1}}, opts).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s: %w", name, err)
	}
	return counter.Seq, nil
}

// Reset drops every sequence.
func (c *MongoCounterCollection) Reset(ctx context.Context) error {
	if c.Collection == nil {
		return errNilCollection
	}
	_, err := c.Collection.DeleteMany(ctx, bson.M{})
	return err
}
