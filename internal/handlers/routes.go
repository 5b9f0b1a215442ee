package handlers

import (
	"net/http"

	"github.com/ukydev/maintenance-tracker/internal/middleware"
	"github.com/ukydev/maintenance-tracker/internal/models"
)

// Routes registers every endpoint on a new ServeMux. Manager dashboards are
// also gated by role at the router.
func Routes(authHandler *AuthHandler, h *TrackerHandler, authMiddleware *middleware.AuthMiddleware) *http.ServeMux {
	mux := http.NewServeMux()
	managerOnly := func(fn http.HandlerFunc) http.Handler {
		return authMiddleware.RequireRole(models.RoleManager)(fn)
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("GET /api/auth/me", authHandler.GetProfile)

	mux.HandleFunc("GET /api/requests", h.ListRequests)
	mux.HandleFunc("POST /api/requests", h.SubmitRequest)
	mux.HandleFunc("GET /api/requests/{id}", h.GetRequest)
	mux.HandleFunc("POST /api/requests/{id}/approve", h.ApproveRequest)
	mux.HandleFunc("POST /api/requests/{id}/deny", h.DenyRequest)
	mux.HandleFunc("POST /api/requests/{id}/start", h.StartWork)
	mux.HandleFunc("POST /api/requests/{id}/resolve", h.ResolveWork)
	mux.HandleFunc("POST /api/requests/{id}/cannot-resolve", h.MarkCannotResolve)
	mux.HandleFunc("POST /api/requests/{id}/confirm", h.ConfirmCompletion)
	mux.HandleFunc("POST /api/requests/{id}/close", h.CloseRequest)

	mux.HandleFunc("GET /api/service-reports", h.ListServiceReports)
	mux.HandleFunc("POST /api/service-reports", h.CreateServiceReport)
	mux.Handle("GET /api/service-reports/export.xlsx", managerOnly(h.ExportServiceReports))
	mux.HandleFunc("GET /api/service-reports/{id}", h.GetServiceReport)

	mux.HandleFunc("GET /api/assets", h.ListAssets)
	mux.HandleFunc("POST /api/assets", h.CreateAsset)
	mux.HandleFunc("GET /api/assets/{code}", h.GetAsset)
	mux.HandleFunc("PUT /api/assets/{code}/health", h.AdjustHealthScore)
	mux.HandleFunc("GET /api/assets/{code}/summary", h.SummarizeAsset)

	mux.HandleFunc("GET /api/pm-schedules", h.ListPMSchedules)
	mux.HandleFunc("POST /api/pm-schedules", h.CreatePMSchedule)
	mux.HandleFunc("GET /api/pm-schedules/calendar.ics", h.ScheduleCalendar)
	mux.HandleFunc("POST /api/pm-schedules/{id}/complete", h.CompletePMSchedule)
	mux.HandleFunc("POST /api/pm-schedules/{id}/deactivate", h.DeactivatePMSchedule)

	mux.Handle("GET /api/users/technicians", managerOnly(h.ListTechnicians))
	mux.Handle("GET /api/stats", managerOnly(h.DashboardStats))
	mux.Handle("GET /api/activity", managerOnly(h.ListActivity))

	return mux
}
