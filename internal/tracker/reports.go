package tracker

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/maintenance-tracker/internal/apperr"
	"github.com/ukydev/maintenance-tracker/internal/db"
	"github.com/ukydev/maintenance-tracker/internal/events"
	"github.com/ukydev/maintenance-tracker/internal/export"
	"github.com/ukydev/maintenance-tracker/internal/ledger"
	"github.com/ukydev/maintenance-tracker/internal/lifecycle"
	"github.com/ukydev/maintenance-tracker/internal/metrics"
	"github.com/ukydev/maintenance-tracker/internal/models"
)

// CreateServiceReport files the report for a request's work. The report,
// the request's link to it and the asset's history entry are written in
// one transaction.
func (s *Service) CreateServiceReport(ctx context.Context, actor models.Actor, in models.ServiceReportInput) (*models.ServiceReport, error) {
	req, err := s.requests.FindRequestByID(ctx, strings.TrimSpace(in.RequestID))
	if err != nil {
		return nil, err
	}
	now := s.now()
	if _, err := lifecycle.AttachServiceReport(*req, actor, "", now); err != nil {
		return nil, err
	}

	manHours, err := metrics.ManHours(in.WorkStartTime, in.WorkEndTime)
	if err != nil {
		return nil, err
	}
	partsCost, err := metrics.TotalPartsCost(in.PartsMaterials)
	if err != nil {
		return nil, err
	}
	if err := validateReportInput(in); err != nil {
		return nil, err
	}
	asset, err := s.assets.FindAssetByCode(ctx, req.AssetCode)
	if err != nil {
		return nil, err
	}

	seq, err := s.counters.Next(ctx, db.SeqReports)
	if err != nil {
		return nil, err
	}
	report := buildReport(fmt.Sprintf("SR-%04d", seq), *req, *asset, actor, in, manHours, partsCost, now)

	attached, err := lifecycle.AttachServiceReport(*req, actor, report.ReportID, now)
	if err != nil {
		return nil, err
	}
	recorded := ledger.RecordService(*asset, report, now)
	entry := recorded.MaintenanceHistory[len(recorded.MaintenanceHistory)-1]

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.reports.InsertReport(ctx, report); err != nil {
			return err
		}
		if err := s.requests.UpdateRequest(ctx, attached, req.Status, req.Version); err != nil {
			return err
		}
		return s.assets.AppendMaintenance(ctx, asset.AssetCode, entry, report.ServiceDate, now)
	})
	if err != nil {
		log.WithError(err).WithField("request", req.RequestID).Warn("Service report rolled back")
		return nil, s.requestConflict(ctx, req.RequestID, err)
	}

	log.WithFields(log.Fields{
		"report":  report.ReportID,
		"request": req.RequestID,
		"asset":   asset.AssetCode,
	}).Info("Service report created")
	event := events.New(models.EventServiceReportCreated, report.ReportID, actor, now)
	event.Details = fmt.Sprintf("request %s, asset %s", req.RequestID, asset.AssetCode)
	s.announce(ctx, event)
	return &report, nil
}

func validateReportInput(in models.ServiceReportInput) error {
	if !models.IsValidServiceType(in.ServiceType) {
		return apperr.InvalidInput("unknown service type %q", in.ServiceType)
	}
	if in.LaborCost < 0 {
		return apperr.InvalidInput("labor cost cannot be negative")
	}
	if in.HoursDown < 0 {
		return apperr.InvalidInput("hours down cannot be negative")
	}
	return nil
}

func buildReport(reportID string, req models.WorkRequest, asset models.Asset, actor models.Actor, in models.ServiceReportInput, manHours, partsCost float64, now time.Time) models.ServiceReport {
	description := strings.TrimSpace(in.WorkDescription)
	if description == "" {
		description = req.WorkDescription
	}
	serviceDate := in.WorkEndTime
	if in.ServiceDate != nil {
		serviceDate = *in.ServiceDate
	}
	parts := in.PartsMaterials
	if parts == nil {
		parts = []models.PartUsed{}
	}
	return models.ServiceReport{
		ReportID:        reportID,
		TSWRNo:          req.TSWRNo,
		RequestID:       req.RequestID,
		AssetID:         asset.ID.Hex(),
		AssetCode:       asset.AssetCode,
		AssetName:       asset.Name,
		Location:        asset.Location,
		WorkDescription: description,
		Remarks:         strings.TrimSpace(in.Remarks),
		Urgency:         req.Urgency,
		WorkStartTime:   in.WorkStartTime,
		WorkEndTime:     in.WorkEndTime,
		ManHours:        manHours,
		LaborCost:       in.LaborCost,
		PartsMaterials:  parts,
		TotalPartsCost:  partsCost,
		ServiceType:     in.ServiceType,
		HoursDown:       in.HoursDown,
		ReportFindings:  strings.TrimSpace(in.ReportFindings),
		ServiceDate:     serviceDate,
		PreparedBy:      actor.ID,
		PreparedByName:  actor.Name,
		CreatedAt:       now,
	}
}

// GetServiceReport returns one report.
func (s *Service) GetServiceReport(ctx context.Context, actor models.Actor, reportID string) (*models.ServiceReport, error) {
	if err := authorize(actor, models.ActionViewServiceReports); err != nil {
		return nil, err
	}
	return s.reports.FindReportByID(ctx, reportID)
}

// ListServiceReports lists every report, newest service date first.
func (s *Service) ListServiceReports(ctx context.Context, actor models.Actor) ([]models.ServiceReport, error) {
	if err := authorize(actor, models.ActionViewServiceReports); err != nil {
		return nil, err
	}
	return s.reports.FindReports(ctx)
}

// ExportServiceReports renders every report as an XLSX workbook.
func (s *Service) ExportServiceReports(ctx context.Context, actor models.Actor) (*bytes.Buffer, error) {
	if err := authorize(actor, models.ActionExportReports); err != nil {
		return nil, err
	}
	reports, err := s.reports.FindReports(ctx)
	if err != nil {
		return nil, err
	}
	return export.ServiceReportsXLSX(reports)
}
