package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/ukydev/maintenance-tracker/internal/apperr"
	"github.com/ukydev/maintenance-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoScheduleCollection implements ScheduleCollection for MongoDB.
type MongoScheduleCollection struct {
	Collection *mongo.Collection
}

// InsertSchedule inserts a new PM schedule.
func (c *MongoScheduleCollection) InsertSchedule(ctx context.Context, schedule models.PMSchedule) error {
	if c.Collection == nil {
		return errNilCollection
	}
	if _, err := c.Collection.InsertOne(ctx, schedule); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.InvariantViolation("schedule %s already exists", schedule.ScheduleID)
		}
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

// FindScheduleByID finds a schedule by its PM- identifier.
func (c *MongoScheduleCollection) FindScheduleByID(ctx context.Context, scheduleID string) (*models.PMSchedule, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	var schedule models.PMSchedule
	if err := c.Collection.FindOne(ctx, bson.M{"schedule_id": scheduleID}).Decode(&schedule); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("schedule %s not found", scheduleID)
		}
		return nil, fmt.Errorf("find schedule: %w", err)
	}
	return &schedule, nil
}

// FindSchedules lists schedules by next due date, soonest first.
func (c *MongoScheduleCollection) FindSchedules(ctx context.Context, filter ScheduleFilter) ([]models.PMSchedule, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	query := bson.M{}
	if filter.ActiveOnly {
		query["is_active"] = true
	}
	if filter.DueBefore != nil {
		query["next_due_date"] = bson.M{"$lte": *filter.DueBefore}
	}
	opts := options.Find().SetSort(bson.D{{Key: "next_due_date", Value: 1}})
	cursor, err := c.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find schedules: %w", err)
	}
	defer cursor.Close(ctx)

	schedules := []models.PMSchedule{}
	if err := cursor.All(ctx, &schedules); err != nil {
		return nil, fmt.Errorf("decode schedules: %w", err)
	}
	return schedules, nil
}

// UpdateSchedule writes the next state of a schedule if nobody changed it
// since it was read.
func (c *MongoScheduleCollection) UpdateSchedule(ctx context.Context, schedule models.PMSchedule, version int64) error {
	if c.Collection == nil {
		return errNilCollection
	}
	schedule.Version = version + 1
	filter := bson.M{"schedule_id": schedule.ScheduleID, "version": version}
	result, err := c.Collection.ReplaceOne(ctx, filter, schedule)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}
