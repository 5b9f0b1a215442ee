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

// MongoReportCollection implements ReportCollection for MongoDB.
type MongoReportCollection struct {
	Collection *mongo.Collection
}

// InsertReport inserts a service report. A request has at most one.
func (c *MongoReportCollection) InsertReport(ctx context.Context, report models.ServiceReport) error {
	if c.Collection == nil {
		return errNilCollection
	}
	if _, err := c.Collection.InsertOne(ctx, report); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.InvalidTransition("request %s already has a service report", report.RequestID)
		}
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// FindReportByID finds a report by its SR- identifier.
func (c *MongoReportCollection) FindReportByID(ctx context.Context, reportID string) (*models.ServiceReport, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	var report models.ServiceReport
	if err := c.Collection.FindOne(ctx, bson.M{"report_id": reportID}).Decode(&report); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("service report %s not found", reportID)
		}
		return nil, fmt.Errorf("find report: %w", err)
	}
	return &report, nil
}

// FindReports lists reports by service date, newest first.
func (c *MongoReportCollection) FindReports(ctx context.Context) ([]models.ServiceReport, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	opts := options.Find().SetSort(bson.D{{Key: "service_date", Value: -1}})
	cursor, err := c.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find reports: %w", err)
	}
	defer cursor.Close(ctx)

	reports := []models.ServiceReport{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}
	return reports, nil
}
