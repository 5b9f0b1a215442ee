package tracker

import (
	"context"

	"github.com/patrickmn/go-cache"
	"github.com/ukydev/maintenance-tracker/internal/models"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

// DashboardStats summarises requests, assets and technicians. The result
// is cached until the next write or the cache TTL.
func (s *Service) DashboardStats(ctx context.Context, actor models.Actor) (*models.DashboardStats, error) {
	if err := authorize(actor, models.ActionViewStats); err != nil {
		return nil, err
	}
	if cached, ok := s.stats.Get(statsKey); ok {
		stats := cached.(models.DashboardStats)
		return &stats, nil
	}

	byStatus, err := s.requests.CountRequestsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byAsset, err := s.assets.CountAssetsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	technicians, err := s.users.FindUsersByRole(ctx, models.RoleTechnician)
	if err != nil {
		return nil, err
	}
	avg, err := s.requests.AverageTurnaroundHours(ctx)
	if err != nil {
		return nil, err
	}

	stats := models.DashboardStats{
		Requests: models.RequestCounts{
			Pending:       byStatus[models.StatusPending],
			Scheduled:     byStatus[models.StatusScheduled],
			Ongoing:       byStatus[models.StatusOngoing],
			Resolved:      byStatus[models.StatusResolved],
			Closed:        byStatus[models.StatusClosed],
			Denied:        byStatus[models.StatusDenied],
			CannotResolve: byStatus[models.StatusCannotResolve],
		},
		Assets: models.AssetCounts{
			Operational:      byAsset[models.AssetOperational],
			UnderMaintenance: byAsset[models.AssetUnderMaintenance],
			OutOfService:     byAsset[models.AssetOutOfService],
		},
		Technicians:        int64(len(technicians)),
		AvgTurnaroundHours: avg,
	}
	for _, n := range byStatus {
		stats.Requests.Total += n
	}
	for _, n := range byAsset {
		stats.Assets.Total += n
	}

	s.stats.Set(statsKey, stats, cache.DefaultExpiration)
	return &stats, nil
}

// ListTechnicians lists active technicians for assignment.
func (s *Service) ListTechnicians(ctx context.Context, actor models.Actor) ([]models.User, error) {
	if err := authorize(actor, models.ActionViewTechnicians); err != nil {
		return nil, err
	}
	return s.users.FindUsersByRole(ctx, models.RoleTechnician)
}

// ListActivity returns the most recent events, newest first.
func (s *Service) ListActivity(ctx context.Context, actor models.Actor, limit int64) ([]models.Event, error) {
	if err := authorize(actor, models.ActionViewActivity); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	return s.activity.FindEvents(ctx, limit)
}
