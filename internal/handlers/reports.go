package handlers

import (
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/maintenance-tracker/internal/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ListServiceReports handles GET /api/service-reports.
func (h *TrackerHandler) ListServiceReports(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	reports, err := h.svc.ListServiceReports(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// CreateServiceReport handles POST /api/service-reports.
func (h *TrackerHandler) CreateServiceReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var in models.ServiceReportInput
	if !decodeJSON(w, r, &in) {
		return
	}
	report, err := h.svc.CreateServiceReport(r.Context(), actor, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// GetServiceReport handles GET /api/service-reports/{id}.
func (h *TrackerHandler) GetServiceReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	report, err := h.svc.GetServiceReport(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ExportServiceReports handles GET /api/service-reports/export.xlsx.
func (h *TrackerHandler) ExportServiceReports(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	buf, err := h.svc.ExportServiceReports(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="service-reports.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.WithError(err).Warn("Failed to write service report export")
	}
}
