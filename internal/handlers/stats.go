package handlers

import (
	"net/http"
	"strconv"
)

// DashboardStats handles GET /api/stats.
func (h *TrackerHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	stats, err := h.svc.DashboardStats(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ListTechnicians handles GET /api/users/technicians.
func (h *TrackerHandler) ListTechnicians(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	users, err := h.svc.ListTechnicians(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// ListActivity handles GET /api/activity?limit=.
func (h *TrackerHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var limit int64
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			badRequest(w, "limit must be a number")
			return
		}
		limit = parsed
	}
	events, err := h.svc.ListActivity(r.Context(), actor, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
