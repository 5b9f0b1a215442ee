package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/maintenance-tracker/internal/db"
	"github.com/ukydev/maintenance-tracker/internal/models"
)

// ListPMSchedules handles GET /api/pm-schedules?active=true&due_before=.
// due_before accepts a date or an RFC 3339 timestamp.
func (h *TrackerHandler) ListPMSchedules(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	filter, err := scheduleFilter(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	schedules, err := h.svc.ListPMSchedules(r.Context(), actor, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedules)
}

func scheduleFilter(r *http.Request) (db.ScheduleFilter, error) {
	var filter db.ScheduleFilter
	q := r.URL.Query()
	if v := q.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return filter, err
		}
		filter.ActiveOnly = active
	}
	if v := q.Get("due_before"); v != "" {
		due, err := time.Parse(time.DateOnly, v)
		if err != nil {
			if due, err = time.Parse(time.RFC3339, v); err != nil {
				return filter, err
			}
		}
		filter.DueBefore = &due
	}
	return filter, nil
}

// CreatePMSchedule handles POST /api/pm-schedules.
func (h *TrackerHandler) CreatePMSchedule(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var in models.CreatePMScheduleInput
	if !decodeJSON(w, r, &in) {
		return
	}
	schedule, err := h.svc.CreatePMSchedule(r.Context(), actor, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, schedule)
}

// CompletePMSchedule handles POST /api/pm-schedules/{id}/complete.
func (h *TrackerHandler) CompletePMSchedule(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	schedule, err := h.svc.CompletePMSchedule(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

// DeactivatePMSchedule handles POST /api/pm-schedules/{id}/deactivate.
func (h *TrackerHandler) DeactivatePMSchedule(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	schedule, err := h.svc.DeactivatePMSchedule(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

// ScheduleCalendar handles GET /api/pm-schedules/calendar.ics.
func (h *TrackerHandler) ScheduleCalendar(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	cal, err := h.svc.ScheduleCalendar(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="pm-schedules.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, cal); err != nil {
		log.WithError(err).Warn("Failed to write calendar")
	}
}
