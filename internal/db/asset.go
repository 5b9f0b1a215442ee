package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/maintenance-tracker/internal/apperr"
	"github.com/ukydev/maintenance-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAssetCollection implements AssetCollection for MongoDB.
type MongoAssetCollection struct {
	Collection *mongo.Collection
}

// InsertAsset inserts a new asset. Asset codes are unique.
func (c *MongoAssetCollection) InsertAsset(ctx context.Context, asset models.Asset) error {
	if c.Collection == nil {
		return errNilCollection
	}
	if asset.MaintenanceHistory == nil {
		asset.MaintenanceHistory = []models.MaintenanceRecord{}
	}
	if _, err := c.Collection.InsertOne(ctx, asset); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.InvalidInput("asset code %s is already in use", asset.AssetCode)
		}
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

// FindAssetByCode finds an asset by its code.
func (c *MongoAssetCollection) FindAssetByCode(ctx context.Context, code string) (*models.Asset, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	var asset models.Asset
	if err := c.Collection.FindOne(ctx, bson.M{"asset_code": code}).Decode(&asset); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("asset %s not found", code)
		}
		return nil, fmt.Errorf("find asset: %w", err)
	}
	return &asset, nil
}

// FindAssets lists all assets ordered by code.
func (c *MongoAssetCollection) FindAssets(ctx context.Context) ([]models.Asset, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	opts := options.Find().SetSort(bson.D{{Key: "asset_code", Value: 1}})
	cursor, err := c.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find assets: %w", err)
	}
	defer cursor.Close(ctx)

	assets := []models.Asset{}
	if err := cursor.All(ctx, &assets); err != nil {
		return nil, fmt.Errorf("decode assets: %w", err)
	}
	return assets, nil
}

// AppendMaintenance pushes a history entry. The last maintenance date only
// ever moves forward, so concurrent appends cannot lose an entry or move
// the date back.
func (c *MongoAssetCollection) AppendMaintenance(ctx context.Context, code string, record models.MaintenanceRecord, performedAt, now time.Time) error {
	if c.Collection == nil {
		return errNilCollection
	}
	update := bson.M{
		"$push": bson.M{"maintenance_history": record},
		"$max":  bson.M{"last_maintenance_date": performedAt},
		"$set":  bson.M{"updated_at": now},
	}
	return c.updateByCode(ctx, code, update)
}

// SetHealthScore stores an externally assessed health score.
func (c *MongoAssetCollection) SetHealthScore(ctx context.Context, code string, score int, now time.Time) error {
	if c.Collection == nil {
		return errNilCollection
	}
	return c.updateByCode(ctx, code, bson.M{"$set": bson.M{"health_score": score, "updated_at": now}})
}

// SetNextScheduledMaintenance stores the asset's next PM due date.
func (c *MongoAssetCollection) SetNextScheduledMaintenance(ctx context.Context, code string, due, now time.Time) error {
	if c.Collection == nil {
		return errNilCollection
	}
	return c.updateByCode(ctx, code, bson.M{"$set": bson.M{"next_scheduled_maintenance": due, "updated_at": now}})
}

func (c *MongoAssetCollection) updateByCode(ctx context.Context, code string, update bson.M) error {
	result, err := c.Collection.UpdateOne(ctx, bson.M{"asset_code": code}, update)
	if err != nil {
		return fmt.Errorf("update asset: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("asset %s not found", code)
	}
	return nil
}

// CountAssetsByStatus groups assets by status.
func (c *MongoAssetCollection) CountAssetsByStatus(ctx context.Context) (map[models.AssetStatus]int64, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$status"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
	}
	cursor, err := c.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate asset counts: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.AssetStatus `bson:"_id"`
		Count  int64              `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode asset counts: %w", err)
	}
	counts := make(map[models.AssetStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
