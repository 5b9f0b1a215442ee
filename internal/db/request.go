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

// MongoRequestCollection implements RequestCollection for MongoDB.
type MongoRequestCollection struct {
	Collection *mongo.Collection
}

// InsertRequest inserts a freshly submitted request.
func (c *MongoRequestCollection) InsertRequest(ctx context.Context, req models.WorkRequest) error {
	if c.Collection == nil {
		return errNilCollection
	}
	if _, err := c.Collection.InsertOne(ctx, req); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.InvariantViolation("request %s already exists", req.RequestID)
		}
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

// FindRequestByID finds a request by its REQ- identifier.
func (c *MongoRequestCollection) FindRequestByID(ctx context.Context, requestID string) (*models.WorkRequest, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	var req models.WorkRequest
	err := c.Collection.FindOne(ctx, bson.M{"request_id": requestID}).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("request %s not found", requestID)
		}
		return nil, fmt.Errorf("find request: %w", err)
	}
	return &req, nil
}

// FindRequests lists requests newest first.
func (c *MongoRequestCollection) FindRequests(ctx context.Context, filter RequestFilter) ([]models.WorkRequest, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := c.Collection.Find(ctx, requestQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("find requests: %w", err)
	}
	defer cursor.Close(ctx)

	requests := []models.WorkRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("decode requests: %w", err)
	}
	return requests, nil
}

func requestQuery(filter RequestFilter) bson.M {
	query := bson.M{}
	switch {
	case filter.SubmittedBy != "" && filter.AssignedTo != "":
		query["$or"] = bson.A{
			bson.M{"submitted_by": filter.SubmittedBy},
			bson.M{"assigned_to": filter.AssignedTo},
		}
	case filter.SubmittedBy != "":
		query["submitted_by"] = filter.SubmittedBy
	case filter.AssignedTo != "":
		query["assigned_to"] = filter.AssignedTo
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return query
}

// UpdateRequest writes the next state of a request if nobody changed it
// since it was read.
func (c *MongoRequestCollection) UpdateRequest(ctx context.Context, req models.WorkRequest, status models.RequestStatus, version int64) error {
	if c.Collection == nil {
		return errNilCollection
	}
	req.Version = version + 1
	filter := bson.M{"request_id": req.RequestID, "status": status, "version": version}
	result, err := c.Collection.ReplaceOne(ctx, filter, req)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}

// CountRequestsByStatus groups requests by status.
func (c *MongoRequestCollection) CountRequestsByStatus(ctx context.Context) (map[models.RequestStatus]int64, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$status"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
	}
	cursor, err := c.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate request counts: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.RequestStatus `bson:"_id"`
		Count  int64                `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode request counts: %w", err)
	}
	counts := make(map[models.RequestStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// AverageTurnaroundHours averages the turnaround of closed requests. Zero
// when none are closed.
func (c *MongoRequestCollection) AverageTurnaroundHours(ctx context.Context) (float64, error) {
	if c.Collection == nil {
		return 0, errNilCollection
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "status", Value: models.StatusClosed},
			{Key: "turnaround_time", Value: bson.D{{Key: "$exists", Value: true}}},
		}}},
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: nil}, {Key: "avg", Value: bson.D{{Key: "$avg", Value: "$turnaround_time"}}}}}},
	}
	cursor, err := c.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregate turnaround: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Avg float64 `bson:"avg"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("decode turnaround: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Avg, nil
}
