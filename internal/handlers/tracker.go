package handlers

import (
	"bytes"
	"context"

	"github.com/ukydev/maintenance-tracker/internal/db"
	"github.com/ukydev/maintenance-tracker/internal/models"
)

// Tracker is the set of operations the API exposes. *tracker.Service
// implements it.
type Tracker interface {
	SubmitRequest(ctx context.Context, actor models.Actor, in models.SubmitRequestInput) (*models.WorkRequest, error)
	ApproveRequest(ctx context.Context, actor models.Actor, requestID string, in models.ApproveRequestInput) (*models.WorkRequest, error)
	DenyRequest(ctx context.Context, actor models.Actor, requestID, reason string) (*models.WorkRequest, error)
	StartWork(ctx context.Context, actor models.Actor, requestID string) (*models.WorkRequest, error)
	ResolveWork(ctx context.Context, actor models.Actor, requestID string) (*models.WorkRequest, error)
	MarkCannotResolve(ctx context.Context, actor models.Actor, requestID, reason string) (*models.WorkRequest, error)
	ConfirmCompletion(ctx context.Context, actor models.Actor, requestID, feedback string) (*models.WorkRequest, error)
	CloseRequest(ctx context.Context, actor models.Actor, requestID string) (*models.WorkRequest, error)
	GetRequest(ctx context.Context, actor models.Actor, requestID string) (*models.WorkRequest, error)
	ListRequests(ctx context.Context, actor models.Actor, status models.RequestStatus) ([]models.WorkRequest, error)

	CreateServiceReport(ctx context.Context, actor models.Actor, in models.ServiceReportInput) (*models.ServiceReport, error)
	GetServiceReport(ctx context.Context, actor models.Actor, reportID string) (*models.ServiceReport, error)
	ListServiceReports(ctx context.Context, actor models.Actor) ([]models.ServiceReport, error)
	ExportServiceReports(ctx context.Context, actor models.Actor) (*bytes.Buffer, error)

	CreateAsset(ctx context.Context, actor models.Actor, in models.CreateAssetInput) (*models.Asset, error)
	AdjustHealthScore(ctx context.Context, actor models.Actor, code string, score int) (*models.Asset, error)
	GetAsset(ctx context.Context, actor models.Actor, code string) (*models.Asset, error)
	ListAssets(ctx context.Context, actor models.Actor) ([]models.Asset, error)
	SummarizeAsset(ctx context.Context, actor models.Actor, code string) (string, error)

	CreatePMSchedule(ctx context.Context, actor models.Actor, in models.CreatePMScheduleInput) (*models.PMSchedule, error)
	CompletePMSchedule(ctx context.Context, actor models.Actor, scheduleID string) (*models.PMSchedule, error)
	DeactivatePMSchedule(ctx context.Context, actor models.Actor, scheduleID string) (*models.PMSchedule, error)
	ListPMSchedules(ctx context.Context, actor models.Actor, filter db.ScheduleFilter) ([]models.PMSchedule, error)
	ScheduleCalendar(ctx context.Context, actor models.Actor) (string, error)

	DashboardStats(ctx context.Context, actor models.Actor) (*models.DashboardStats, error)
	ListTechnicians(ctx context.Context, actor models.Actor) ([]models.User, error)
	ListActivity(ctx context.Context, actor models.Actor, limit int64) ([]models.Event, error)
}

// TrackerHandler serves the work request, service report, asset, PM
// schedule and dashboard endpoints.
type TrackerHandler struct {
	svc Tracker
}

// NewTrackerHandler creates a TrackerHandler.
func NewTrackerHandler(svc Tracker) *TrackerHandler {
	return &TrackerHandler{svc: svc}
}
