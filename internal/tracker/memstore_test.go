package tracker

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ukydev/maintenance-tracker/internal/apperr"
	"github.com/ukydev/maintenance-tracker/internal/db"
	"github.com/ukydev/maintenance-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore implements every collection interface in memory. Transactions
// snapshot the maps and restore them when the function fails.
type memStore struct {
	mu        sync.Mutex
	requests  map[string]models.WorkRequest
	assets    map[string]models.Asset
	schedules map[string]models.PMSchedule
	reports   map[string]models.ServiceReport
	users     map[string]models.User
	counters  map[string]int64
	events    []models.Event

	appendErr error
}

func newMemStore() *memStore {
	return &memStore{
		requests:  map[string]models.WorkRequest{},
		assets:    map[string]models.Asset{},
		schedules: map[string]models.PMSchedule{},
		reports:   map[string]models.ServiceReport{},
		users:     map[string]models.User{},
		counters:  map[string]int64{},
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (m *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	requests, assets, schedules, reports := copyMap(m.requests), copyMap(m.assets), copyMap(m.schedules), copyMap(m.reports)
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.requests, m.assets, m.schedules, m.reports = requests, assets, schedules, reports
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) InsertRequest(_ context.Context, req models.WorkRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[req.RequestID]; ok {
		return apperr.InvariantViolation("request %s already exists", req.RequestID)
	}
	m.requests[req.RequestID] = req
	return nil
}

func (m *memStore) FindRequestByID(_ context.Context, requestID string) (*models.WorkRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return nil, apperr.NotFound("request %s not found", requestID)
	}
	return &req, nil
}

func (m *memStore) FindRequests(_ context.Context, filter db.RequestFilter) ([]models.WorkRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.WorkRequest{}
	for _, req := range m.requests {
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		mine := filter.SubmittedBy != "" && req.SubmittedBy == filter.SubmittedBy
		assigned := filter.AssignedTo != "" && req.AssignedTo == filter.AssignedTo
		if (filter.SubmittedBy != "" || filter.AssignedTo != "") && !mine && !assigned {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) UpdateRequest(_ context.Context, req models.WorkRequest, status models.RequestStatus, version int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.requests[req.RequestID]
	if !ok || current.Status != status || current.Version != version {
		return db.ErrConflict
	}
	req.Version = version + 1
	m.requests[req.RequestID] = req
	return nil
}

func (m *memStore) CountRequestsByStatus(context.Context) (map[models.RequestStatus]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[models.RequestStatus]int64{}
	for _, req := range m.requests {
		counts[req.Status]++
	}
	return counts, nil
}

func (m *memStore) AverageTurnaroundHours(context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum, n float64
	for _, req := range m.requests {
		if req.Status == models.StatusClosed && req.TurnaroundTime != nil {
			sum += float64(*req.TurnaroundTime)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / n, nil
}

func (m *memStore) InsertAsset(_ context.Context, asset models.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assets[asset.AssetCode]; ok {
		return apperr.InvalidInput("asset code %s is already in use", asset.AssetCode)
	}
	if asset.ID.IsZero() {
		asset.ID = primitive.NewObjectID()
	}
	m.assets[asset.AssetCode] = asset
	return nil
}

func (m *memStore) FindAssetByCode(_ context.Context, code string) (*models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	asset, ok := m.assets[code]
	if !ok {
		return nil, apperr.NotFound("asset %s not found", code)
	}
	return &asset, nil
}

func (m *memStore) FindAssets(context.Context) ([]models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Asset{}
	for _, a := range m.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetCode < out[j].AssetCode })
	return out, nil
}

func (m *memStore) AppendMaintenance(_ context.Context, code string, record models.MaintenanceRecord, performedAt, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	asset, ok := m.assets[code]
	if !ok {
		return apperr.NotFound("asset %s not found", code)
	}
	history := make([]models.MaintenanceRecord, len(asset.MaintenanceHistory), len(asset.MaintenanceHistory)+1)
	copy(history, asset.MaintenanceHistory)
	asset.MaintenanceHistory = append(history, record)
	if asset.LastMaintenanceDate == nil || performedAt.After(*asset.LastMaintenanceDate) {
		asset.LastMaintenanceDate = &performedAt
	}
	asset.UpdatedAt = now
	m.assets[code] = asset
	return nil
}

func (m *memStore) SetHealthScore(_ context.Context, code string, score int, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	asset, ok := m.assets[code]
	if !ok {
		return apperr.NotFound("asset %s not found", code)
	}
	asset.HealthScore = score
	asset.UpdatedAt = now
	m.assets[code] = asset
	return nil
}

func (m *memStore) SetNextScheduledMaintenance(_ context.Context, code string, due, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	asset, ok := m.assets[code]
	if !ok {
		return apperr.NotFound("asset %s not found", code)
	}
	asset.NextScheduledMaintenance = &due
	asset.UpdatedAt = now
	m.assets[code] = asset
	return nil
}

func (m *memStore) CountAssetsByStatus(context.Context) (map[models.AssetStatus]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[models.AssetStatus]int64{}
	for _, a := range m.assets {
		counts[a.Status]++
	}
	return counts, nil
}

func (m *memStore) InsertSchedule(_ context.Context, schedule models.PMSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedules[schedule.ScheduleID] = schedule
	return nil
}

func (m *memStore) FindScheduleByID(_ context.Context, scheduleID string) (*models.PMSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	schedule, ok := m.schedules[scheduleID]
	if !ok {
		return nil, apperr.NotFound("schedule %s not found", scheduleID)
	}
	return &schedule, nil
}

func (m *memStore) FindSchedules(_ context.Context, filter db.ScheduleFilter) ([]models.PMSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.PMSchedule{}
	for _, s := range m.schedules {
		if filter.ActiveOnly && !s.IsActive {
			continue
		}
		if filter.DueBefore != nil && s.NextDueDate.After(*filter.DueBefore) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextDueDate.Before(out[j].NextDueDate) })
	return out, nil
}

func (m *memStore) UpdateSchedule(_ context.Context, schedule models.PMSchedule, version int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.schedules[schedule.ScheduleID]
	if !ok || current.Version != version {
		return db.ErrConflict
	}
	schedule.Version = version + 1
	m.schedules[schedule.ScheduleID] = schedule
	return nil
}

func (m *memStore) InsertReport(_ context.Context, report models.ServiceReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reports {
		if r.RequestID == report.RequestID {
			return apperr.InvalidTransition("request %s already has a service report", report.RequestID)
		}
	}
	m.reports[report.ReportID] = report
	return nil
}

func (m *memStore) FindReportByID(_ context.Context, reportID string) (*models.ServiceReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	report, ok := m.reports[reportID]
	if !ok {
		return nil, apperr.NotFound("service report %s not found", reportID)
	}
	return &report, nil
}

func (m *memStore) FindReports(context.Context) ([]models.ServiceReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ServiceReport{}
	for _, r := range m.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServiceDate.After(out[j].ServiceDate) })
	return out, nil
}

func (m *memStore) Next(_ context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
	return m.counters[name], nil
}

func (m *memStore) InsertEvent(_ context.Context, event models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *memStore) FindEvents(_ context.Context, limit int64) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Event{}
	for i := len(m.events) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		out = append(out, m.events[i])
	}
	return out, nil
}

func (m *memStore) InsertUser(_ context.Context, user models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.ID = primitive.NewObjectID()
	m.users[user.ID.Hex()] = user
	return &user, nil
}

func (m *memStore) FindUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("user %s not found", id)
	}
	return &user, nil
}

func (m *memStore) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user %s not found", username)
}

func (m *memStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user %s not found", email)
}

func (m *memStore) FindUsersByRole(_ context.Context, role models.Role) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		if u.Role == role && !u.IsArchived {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) UpdateLastLogin(context.Context, string) error { return nil }
