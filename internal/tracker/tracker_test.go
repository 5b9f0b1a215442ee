package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/maintenance-tracker/internal/apperr"
	"github.com/ukydev/maintenance-tracker/internal/db"
	"github.com/ukydev/maintenance-tracker/internal/models"
	"github.com/ukydev/maintenance-tracker/internal/summary"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e models.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []models.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store      *memStore
	svc        *Service
	clock      *fakeClock
	published  *recordingPublisher
	employee   models.Actor
	other      models.Actor
	technician models.Actor
	manager    models.Actor
	techUser   models.User
}

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := newMemStore()
	clock := &fakeClock{t: start}
	published := &recordingPublisher{}

	tech, err := store.InsertUser(ctx, models.User{Username: "tess", Name: "Tess Tech", Role: models.RoleTechnician})
	require.NoError(t, err)
	require.NoError(t, store.InsertAsset(ctx, models.Asset{
		AssetCode:   "EQP-001",
		Name:        "Air Compressor Unit",
		Category:    models.CategoryEquipment,
		Location:    "Plant 1",
		HealthScore: 80,
		Status:      models.AssetOperational,
	}))

	svc := New(Deps{
		Requests:  store,
		Assets:    store,
		Schedules: store,
		Reports:   store,
		Users:     store,
		Counters:  store,
		Activity:  store,
		Tx:        store,
		Publisher: published,
		StatsTTL:  time.Minute,
		Clock:     clock.Now,
	})

	return &fixture{
		store:      store,
		svc:        svc,
		clock:      clock,
		published:  published,
		employee:   models.Actor{ID: "emp-1", Name: "Eve Employee", Role: models.RoleEmployee},
		other:      models.Actor{ID: "emp-2", Name: "Oscar Other", Role: models.RoleEmployee},
		technician: tech.Actor(),
		manager:    models.Actor{ID: "mgr-1", Name: "Mona Manager", Role: models.RoleManager},
		techUser:   *tech,
	}
}

func (f *fixture) submit(t *testing.T) *models.WorkRequest {
	t.Helper()
	req, err := f.svc.SubmitRequest(context.Background(), f.employee, models.SubmitRequestInput{
		AssetCode:       "EQP-001",
		WorkDescription: "Compressor makes grinding noise",
		Urgency:         models.UrgencyImmediately,
	})
	require.NoError(t, err)
	return req
}

// advance submits a request and moves it to the given status.
func (f *fixture) advance(t *testing.T, status models.RequestStatus) string {
	t.Helper()
	ctx := context.Background()
	id := f.submit(t).RequestID
	if status == models.StatusPending {
		return id
	}
	if status == models.StatusDenied {
		_, err := f.svc.DenyRequest(ctx, f.manager, id, "duplicate")
		require.NoError(t, err)
		return id
	}
	_, err := f.svc.ApproveRequest(ctx, f.manager, id, models.ApproveRequestInput{
		TechnicianID:  f.techUser.ID.Hex(),
		ScheduledDate: start.AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	if status == models.StatusScheduled {
		return id
	}
	_, err = f.svc.StartWork(ctx, f.technician, id)
	require.NoError(t, err)
	switch status {
	case models.StatusOngoing:
		return id
	case models.StatusCannotResolve:
		_, err = f.svc.MarkCannotResolve(ctx, f.technician, id, "part discontinued")
		require.NoError(t, err)
		return id
	}
	_, err = f.svc.ResolveWork(ctx, f.technician, id)
	require.NoError(t, err)
	if status == models.StatusResolved {
		return id
	}
	_, err = f.svc.ConfirmCompletion(ctx, f.employee, id, "works again")
	require.NoError(t, err)
	_, err = f.svc.CloseRequest(ctx, f.manager, id)
	require.NoError(t, err)
	return id
}

func TestRequestLifecycle_HappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.submit(t)
	assert.Equal(t, "REQ-1001", req.RequestID)
	assert.Equal(t, "TSWR-24-001", req.TSWRNo)
	assert.Equal(t, models.StatusPending, req.Status)
	assert.Equal(t, "Air Compressor Unit", req.AssetName)

	approved, err := f.svc.ApproveRequest(ctx, f.manager, req.RequestID, models.ApproveRequestInput{
		TechnicianID:  f.techUser.ID.Hex(),
		ScheduledDate: start.AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, approved.Status)
	assert.Equal(t, f.techUser.ID.Hex(), approved.AssignedTo)
	assert.Equal(t, int64(1), approved.Version)

	_, err = f.svc.StartWork(ctx, f.technician, req.RequestID)
	require.NoError(t, err)
	_, err = f.svc.ResolveWork(ctx, f.technician, req.RequestID)
	require.NoError(t, err)
	confirmed, err := f.svc.ConfirmCompletion(ctx, f.employee, req.RequestID, "works again")
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, confirmed.Status)

	f.clock.Set(time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC))
	closed, err := f.svc.CloseRequest(ctx, f.manager, req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, closed.Status)
	require.NotNil(t, closed.TurnaroundTime)
	assert.Equal(t, 60, *closed.TurnaroundTime)
	assert.Equal(t, int64(5), closed.Version)

	stored, err := f.store.FindRequestByID(ctx, req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, *closed, *stored)

	assert.Equal(t, []models.EventType{
		models.EventRequestSubmitted,
		models.EventRequestApproved,
		models.EventWorkStarted,
		models.EventWorkResolved,
		models.EventCompletionConfirmed,
		models.EventRequestClosed,
	}, f.published.types())
}

func TestSubmitRequest_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitRequest(ctx, f.employee, models.SubmitRequestInput{AssetCode: "EQP-404", WorkDescription: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.SubmitRequest(ctx, f.employee, models.SubmitRequestInput{AssetCode: "EQP-001", WorkDescription: "  "})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = f.svc.SubmitRequest(ctx, models.Actor{ID: "x", Role: "guest"}, models.SubmitRequestInput{AssetCode: "EQP-001", WorkDescription: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)

	// Rejected submissions do not consume numbers.
	assert.Equal(t, "REQ-1001", f.submit(t).RequestID)
	assert.Equal(t, "REQ-1002", f.submit(t).RequestID)
}

func TestApproveRequest_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := models.ApproveRequestInput{TechnicianID: f.techUser.ID.Hex(), ScheduledDate: start.AddDate(0, 0, 1)}

	t.Run("already scheduled", func(t *testing.T) {
		id := f.advance(t, models.StatusScheduled)
		_, err := f.svc.ApproveRequest(ctx, f.manager, id, in)
		assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
	})

	t.Run("unknown technician", func(t *testing.T) {
		id := f.advance(t, models.StatusPending)
		_, err := f.svc.ApproveRequest(ctx, f.manager, id, models.ApproveRequestInput{TechnicianID: "64b7f0000000000000000000", ScheduledDate: in.ScheduledDate})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("role is checked before the technician", func(t *testing.T) {
		id := f.advance(t, models.StatusPending)
		_, err := f.svc.ApproveRequest(ctx, f.employee, id, models.ApproveRequestInput{TechnicianID: "64b7f0000000000000000000", ScheduledDate: in.ScheduledDate})
		assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
	})

	t.Run("assignee is not a technician", func(t *testing.T) {
		emp, err := f.store.InsertUser(ctx, models.User{Username: "emp", Role: models.RoleEmployee})
		require.NoError(t, err)
		id := f.advance(t, models.StatusPending)
		_, err = f.svc.ApproveRequest(ctx, f.manager, id, models.ApproveRequestInput{TechnicianID: emp.ID.Hex(), ScheduledDate: in.ScheduledDate})
		assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	})

	t.Run("unknown request", func(t *testing.T) {
		_, err := f.svc.ApproveRequest(ctx, f.manager, "REQ-9999", in)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestFailedTransitionLeavesRequestUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.advance(t, models.StatusPending)
	before, err := f.store.FindRequestByID(ctx, id)
	require.NoError(t, err)

	_, err = f.svc.DenyRequest(ctx, f.manager, id, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	_, err = f.svc.StartWork(ctx, f.technician, id)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	after, err := f.store.FindRequestByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, *before, *after)
}

func TestConfirmCompletion_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.advance(t, models.StatusResolved)

	_, err := f.svc.ConfirmCompletion(ctx, f.other, id, "looks fine")
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)

	_, err = f.svc.CloseRequest(ctx, f.manager, id)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition, "close needs a confirmation")

	_, err = f.svc.ConfirmCompletion(ctx, f.manager, id, "checked on site")
	require.NoError(t, err)
	_, err = f.svc.ConfirmCompletion(ctx, f.employee, id, "again")
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestClosedRequestIsFixedPoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.advance(t, models.StatusClosed)
	in := models.ApproveRequestInput{TechnicianID: f.techUser.ID.Hex(), ScheduledDate: start}

	ops := map[string]func() error{
		"approve": func() error { _, err := f.svc.ApproveRequest(ctx, f.manager, id, in); return err },
		"deny":    func() error { _, err := f.svc.DenyRequest(ctx, f.manager, id, "no"); return err },
		"start":   func() error { _, err := f.svc.StartWork(ctx, f.technician, id); return err },
		"resolve": func() error { _, err := f.svc.ResolveWork(ctx, f.technician, id); return err },
		"cannot":  func() error { _, err := f.svc.MarkCannotResolve(ctx, f.technician, id, "x"); return err },
		"confirm": func() error { _, err := f.svc.ConfirmCompletion(ctx, f.employee, id, "x"); return err },
		"close":   func() error { _, err := f.svc.CloseRequest(ctx, f.manager, id); return err },
		"employee approve": func() error {
			_, err := f.svc.ApproveRequest(ctx, f.employee, id, in)
			return err
		},
		"service report": func() error {
			_, err := f.svc.CreateServiceReport(ctx, f.technician, reportInput(id))
			return err
		},
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, op(), apperr.ErrInvariantViolation)
		})
	}
}

func TestConcurrentApproveAndDeny_ExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		id := f.advance(t, models.StatusPending)
		in := models.ApproveRequestInput{TechnicianID: f.techUser.ID.Hex(), ScheduledDate: start.AddDate(0, 0, 1)}

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = f.svc.ApproveRequest(ctx, f.manager, id, in)
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = f.svc.DenyRequest(ctx, f.manager, id, "not needed")
		}()
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
		}
		assert.Equal(t, 1, wins)
	}
}

type MockRequestCollection struct {
	mock.Mock
}

func (m *MockRequestCollection) InsertRequest(ctx context.Context, req models.WorkRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockRequestCollection) FindRequestByID(ctx context.Context, requestID string) (*models.WorkRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkRequest), args.Error(1)
}

func (m *MockRequestCollection) FindRequests(ctx context.Context, filter db.RequestFilter) ([]models.WorkRequest, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.WorkRequest), args.Error(1)
}

func (m *MockRequestCollection) UpdateRequest(ctx context.Context, req models.WorkRequest, status models.RequestStatus, version int64) error {
	return m.Called(ctx, req, status, version).Error(0)
}

func (m *MockRequestCollection) CountRequestsByStatus(ctx context.Context) (map[models.RequestStatus]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[models.RequestStatus]int64), args.Error(1)
}

func (m *MockRequestCollection) AverageTurnaroundHours(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func TestTransition_LostRace(t *testing.T) {
	ctx := context.Background()
	resolved := &models.WorkRequest{RequestID: "REQ-1001", Status: models.StatusResolved, SubmittedBy: "emp-1", Version: 3}
	manager := models.Actor{ID: "mgr-1", Role: models.RoleManager}

	tests := []struct {
		name     string
		latest   models.RequestStatus
		expected error
	}{
		{"closed by the winner", models.StatusClosed, apperr.ErrInvariantViolation},
		{"changed otherwise", models.StatusResolved, apperr.ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requests := new(MockRequestCollection)
			latest := *resolved
			latest.Status = tt.latest
			requests.On("FindRequestByID", ctx, "REQ-1001").Return(resolved, nil).Once()
			requests.On("UpdateRequest", ctx, mock.AnythingOfType("models.WorkRequest"), models.StatusResolved, int64(3)).Return(db.ErrConflict)
			requests.On("FindRequestByID", ctx, "REQ-1001").Return(&latest, nil).Once()

			svc := New(Deps{Requests: requests, Clock: func() time.Time { return start }})
			_, err := svc.ConfirmCompletion(ctx, manager, "REQ-1001", "ok")

			assert.ErrorIs(t, err, tt.expected)
			requests.AssertExpectations(t)
		})
	}
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t)
	f.published.err = errors.New("broker unavailable")

	req := f.submit(t)
	stored, err := f.store.FindRequestByID(context.Background(), req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestGetAndListRequests_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.advance(t, models.StatusScheduled)
	otherReq, err := f.svc.SubmitRequest(ctx, f.other, models.SubmitRequestInput{AssetCode: "EQP-001", WorkDescription: "Leaking valve"})
	require.NoError(t, err)

	_, err = f.svc.GetRequest(ctx, f.employee, otherReq.RequestID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	got, err := f.svc.GetRequest(ctx, f.technician, mine)
	require.NoError(t, err)
	assert.Equal(t, mine, got.RequestID)

	own, err := f.svc.ListRequests(ctx, f.employee, "")
	require.NoError(t, err)
	assert.Len(t, own, 1)

	assigned, err := f.svc.ListRequests(ctx, f.technician, "")
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, mine, assigned[0].RequestID)

	all, err := f.svc.ListRequests(ctx, f.manager, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := f.svc.ListRequests(ctx, f.manager, models.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, otherReq.RequestID, pending[0].RequestID)

	_, err = f.svc.ListRequests(ctx, f.manager, "bogus")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestSummarizeAsset_Disabled(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SummarizeAsset(context.Background(), f.employee, "EQP-001")
	assert.ErrorIs(t, err, summary.ErrDisabled)
}
