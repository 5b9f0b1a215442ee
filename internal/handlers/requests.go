package handlers

import (
	"context"
	"net/http"

	"github.com/ukydev/maintenance-tracker/internal/models"
)

type reasonBody struct {
	Reason string `json:"reason"`
}

type feedbackBody struct {
	Feedback string `json:"feedback"`
}

// ListRequests handles GET /api/requests?status=.
func (h *TrackerHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	status := models.RequestStatus(r.URL.Query().Get("status"))
	reqs, err := h.svc.ListRequests(r.Context(), actor, status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

// SubmitRequest handles POST /api/requests.
func (h *TrackerHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var in models.SubmitRequestInput
	if !decodeJSON(w, r, &in) {
		return
	}
	req, err := h.svc.SubmitRequest(r.Context(), actor, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// GetRequest handles GET /api/requests/{id}.
func (h *TrackerHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	req, err := h.svc.GetRequest(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// ApproveRequest handles POST /api/requests/{id}/approve.
func (h *TrackerHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	var in models.ApproveRequestInput
	if !decodeJSON(w, r, &in) {
		return
	}
	h.transition(w, r, func(ctx context.Context, actor models.Actor, id string) (*models.WorkRequest, error) {
		return h.svc.ApproveRequest(ctx, actor, id, in)
	})
}

// DenyRequest handles POST /api/requests/{id}/deny.
func (h *TrackerHandler) DenyRequest(w http.ResponseWriter, r *http.Request) {
	var body reasonBody
	if !decodeJSON(w, r, &body) {
		return
	}
	h.transition(w, r, func(ctx context.Context, actor models.Actor, id string) (*models.WorkRequest, error) {
		return h.svc.DenyRequest(ctx, actor, id, body.Reason)
	})
}

// StartWork handles POST /api/requests/{id}/start.
func (h *TrackerHandler) StartWork(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.StartWork)
}

// ResolveWork handles POST /api/requests/{id}/resolve.
func (h *TrackerHandler) ResolveWork(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.ResolveWork)
}

// MarkCannotResolve handles POST /api/requests/{id}/cannot-resolve.
func (h *TrackerHandler) MarkCannotResolve(w http.ResponseWriter, r *http.Request) {
	var body reasonBody
	if !decodeJSON(w, r, &body) {
		return
	}
	h.transition(w, r, func(ctx context.Context, actor models.Actor, id string) (*models.WorkRequest, error) {
		return h.svc.MarkCannotResolve(ctx, actor, id, body.Reason)
	})
}

// ConfirmCompletion handles POST /api/requests/{id}/confirm.
func (h *TrackerHandler) ConfirmCompletion(w http.ResponseWriter, r *http.Request) {
	var body feedbackBody
	if !decodeJSON(w, r, &body) {
		return
	}
	h.transition(w, r, func(ctx context.Context, actor models.Actor, id string) (*models.WorkRequest, error) {
		return h.svc.ConfirmCompletion(ctx, actor, id, body.Feedback)
	})
}

// CloseRequest handles POST /api/requests/{id}/close.
func (h *TrackerHandler) CloseRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.CloseRequest)
}

func (h *TrackerHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, actor models.Actor, id string) (*models.WorkRequest, error)) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	req, err := op(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
