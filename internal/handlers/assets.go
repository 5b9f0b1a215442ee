package handlers

import (
	"net/http"

	"github.com/ukydev/maintenance-tracker/internal/models"
)

type healthBody struct {
	HealthScore *int `json:"health_score"`
}

type summaryResponse struct {
	AssetCode string `json:"asset_code"`
	Summary   string `json:"summary"`
}

// ListAssets handles GET /api/assets.
func (h *TrackerHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	assets, err := h.svc.ListAssets(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

// CreateAsset handles POST /api/assets.
func (h *TrackerHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var in models.CreateAssetInput
	if !decodeJSON(w, r, &in) {
		return
	}
	asset, err := h.svc.CreateAsset(r.Context(), actor, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

// GetAsset handles GET /api/assets/{code}.
func (h *TrackerHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	asset, err := h.svc.GetAsset(r.Context(), actor, r.PathValue("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

// AdjustHealthScore handles PUT /api/assets/{code}/health.
func (h *TrackerHandler) AdjustHealthScore(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var body healthBody
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.HealthScore == nil {
		badRequest(w, "health_score is required")
		return
	}
	asset, err := h.svc.AdjustHealthScore(r.Context(), actor, r.PathValue("code"), *body.HealthScore)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

// SummarizeAsset handles GET /api/assets/{code}/summary.
func (h *TrackerHandler) SummarizeAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	code := r.PathValue("code")
	text, err := h.svc.SummarizeAsset(r.Context(), actor, code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{AssetCode: code, Summary: text})
}
