// Package ledger keeps an asset's maintenance trail. History is append-only
// and the health score is never touched here.
package ledger

import (
	"time"

	"github.com/ukydev/maintenance-tracker/internal/models"
)

// Entry builds the history record for a service report.
func Entry(report models.ServiceReport) models.MaintenanceRecord {
	kind := models.MaintenanceCorrective
	if report.ServiceType == models.ServicePlanned {
		kind = models.MaintenancePreventive
	}

	parts := make([]string, 0, len(report.PartsMaterials))
	for _, p := range report.PartsMaterials {
		parts = append(parts, p.PartName)
	}

	return models.MaintenanceRecord{
		Date:            report.ServiceDate,
		Type:            kind,
		Description:     report.WorkDescription,
		TechnicianName:  report.PreparedByName,
		Cost:            report.TotalPartsCost + report.LaborCost,
		PartsReplaced:   parts,
		ServiceReportID: report.ReportID,
	}
}

// RecordService appends the report to the asset's history and moves the
// last-maintenance date forward. Reports recorded out of order never move
// the date back.
func RecordService(asset models.Asset, report models.ServiceReport, now time.Time) models.Asset {
	next := asset
	history := make([]models.MaintenanceRecord, len(asset.MaintenanceHistory), len(asset.MaintenanceHistory)+1)
	copy(history, asset.MaintenanceHistory)
	next.MaintenanceHistory = append(history, Entry(report))

	if asset.LastMaintenanceDate == nil || report.ServiceDate.After(*asset.LastMaintenanceDate) {
		date := report.ServiceDate
		next.LastMaintenanceDate = &date
	}
	next.UpdatedAt = now
	return next
}

// NextScheduled returns the asset's next scheduled maintenance after a PM
// schedule moved to due. The current value is replaced when it is unset,
// already passed at completion, or later than the new due date.
func NextScheduled(asset models.Asset, completedAt, due time.Time) (time.Time, bool) {
	current := asset.NextScheduledMaintenance
	if current == nil || !current.After(completedAt) || due.Before(*current) {
		return due, true
	}
	return *current, false
}
