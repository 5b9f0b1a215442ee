package db

import (
	"context"
	"time"

	"github.com/ukydev/maintenance-tracker/internal/models"
)

// Transactor runs a function atomically across collections.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// RequestFilter narrows a request listing. When both SubmittedBy and
// AssignedTo are set a request matching either is returned.
type RequestFilter struct {
	SubmittedBy string
	AssignedTo  string
	Status      models.RequestStatus
}

// RequestCollection defines the interface for work request operations.
type RequestCollection interface {
	InsertRequest(ctx context.Context, req models.WorkRequest) error
	FindRequestByID(ctx context.Context, requestID string) (*models.WorkRequest, error)
	FindRequests(ctx context.Context, filter RequestFilter) ([]models.WorkRequest, error)
	// UpdateRequest replaces the request only if it still has the given
	// status and version, and bumps the version. ErrConflict otherwise.
	UpdateRequest(ctx context.Context, req models.WorkRequest, status models.RequestStatus, version int64) error
	CountRequestsByStatus(ctx context.Context) (map[models.RequestStatus]int64, error)
	AverageTurnaroundHours(ctx context.Context) (float64, error)
}

// AssetCollection defines the interface for asset operations.
type AssetCollection interface {
	InsertAsset(ctx context.Context, asset models.Asset) error
	FindAssetByCode(ctx context.Context, code string) (*models.Asset, error)
	FindAssets(ctx context.Context) ([]models.Asset, error)
	AppendMaintenance(ctx context.Context, code string, record models.MaintenanceRecord, performedAt, now time.Time) error
	SetHealthScore(ctx context.Context, code string, score int, now time.Time) error
	SetNextScheduledMaintenance(ctx context.Context, code string, due, now time.Time) error
	CountAssetsByStatus(ctx context.Context) (map[models.AssetStatus]int64, error)
}

// ScheduleFilter narrows a PM schedule listing.
type ScheduleFilter struct {
	ActiveOnly bool
	DueBefore  *time.Time
}

// ScheduleCollection defines the interface for PM schedule operations.
type ScheduleCollection interface {
	InsertSchedule(ctx context.Context, schedule models.PMSchedule) error
	FindScheduleByID(ctx context.Context, scheduleID string) (*models.PMSchedule, error)
	FindSchedules(ctx context.Context, filter ScheduleFilter) ([]models.PMSchedule, error)
	// UpdateSchedule replaces the schedule only if it still has the given
	// version, and bumps the version. ErrConflict otherwise.
	UpdateSchedule(ctx context.Context, schedule models.PMSchedule, version int64) error
}

// ReportCollection defines the interface for service report operations.
type ReportCollection interface {
	InsertReport(ctx context.Context, report models.ServiceReport) error
	FindReportByID(ctx context.Context, reportID string) (*models.ServiceReport, error)
	FindReports(ctx context.Context) ([]models.ServiceReport, error)
}

// CounterCollection hands out monotonically increasing sequence numbers.
type CounterCollection interface {
	Next(ctx context.Context, name string) (int64, error)
}

// ActivityStore persists and lists lifecycle events.
type ActivityStore interface {
	InsertEvent(ctx context.Context, event models.Event) error
	FindEvents(ctx context.Context, limit int64) ([]models.Event, error)
}
