package tracker

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/maintenance-tracker/internal/apperr"
	"github.com/ukydev/maintenance-tracker/internal/events"
	"github.com/ukydev/maintenance-tracker/internal/models"
)

const (
	defaultHealthScore      = 100
	defaultDepreciationRate = 10
)

// CreateAsset registers an asset under a unique code.
func (s *Service) CreateAsset(ctx context.Context, actor models.Actor, in models.CreateAssetInput) (*models.Asset, error) {
	if err := authorize(actor, models.ActionManageAssets); err != nil {
		return nil, err
	}
	asset, err := newAsset(in)
	if err != nil {
		return nil, err
	}
	now := s.now()
	asset.CreatedAt = now
	asset.UpdatedAt = now
	if err := s.assets.InsertAsset(ctx, asset); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"asset": asset.AssetCode, "category": asset.Category}).Info("Asset created")
	event := events.New(models.EventAssetCreated, asset.AssetCode, actor, now)
	event.Details = asset.Name
	s.announce(ctx, event)
	return &asset, nil
}

func newAsset(in models.CreateAssetInput) (models.Asset, error) {
	asset := models.Asset{
		AssetCode:          strings.TrimSpace(in.AssetCode),
		Name:               strings.TrimSpace(in.Name),
		Category:           in.Category,
		Location:           strings.TrimSpace(in.Location),
		PurchaseDate:       in.PurchaseDate,
		PurchaseCost:       in.PurchaseCost,
		DepreciationRate:   defaultDepreciationRate,
		CurrentValue:       in.PurchaseCost,
		HealthScore:        defaultHealthScore,
		Status:             models.AssetOperational,
		MaintenanceHistory: []models.MaintenanceRecord{},
	}
	switch {
	case asset.AssetCode == "":
		return asset, apperr.InvalidInput("asset code is required")
	case asset.Name == "":
		return asset, apperr.InvalidInput("asset name is required")
	case !models.IsValidAssetCategory(in.Category):
		return asset, apperr.InvalidInput("unknown category %q", in.Category)
	case in.PurchaseCost < 0:
		return asset, apperr.InvalidInput("purchase cost cannot be negative")
	}
	if in.Status != "" {
		if !models.IsValidAssetStatus(in.Status) {
			return asset, apperr.InvalidInput("unknown asset status %q", in.Status)
		}
		asset.Status = in.Status
	}
	if in.HealthScore != nil {
		if err := validateHealth(*in.HealthScore); err != nil {
			return asset, err
		}
		asset.HealthScore = *in.HealthScore
	}
	if in.DepreciationRate != nil {
		if *in.DepreciationRate < 0 || *in.DepreciationRate > 100 {
			return asset, apperr.InvalidInput("depreciation rate must be between 0 and 100")
		}
		asset.DepreciationRate = *in.DepreciationRate
	}
	if in.CurrentValue != nil {
		if *in.CurrentValue < 0 {
			return asset, apperr.InvalidInput("current value cannot be negative")
		}
		asset.CurrentValue = *in.CurrentValue
	}
	return asset, nil
}

func validateHealth(score int) error {
	if score < 0 || score > 100 {
		return apperr.InvalidInput("health score must be between 0 and 100, got %d", score)
	}
	return nil
}

// AdjustHealthScore stores an externally assessed health score.
func (s *Service) AdjustHealthScore(ctx context.Context, actor models.Actor, code string, score int) (*models.Asset, error) {
	if err := authorize(actor, models.ActionManageAssets); err != nil {
		return nil, err
	}
	if err := validateHealth(score); err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.assets.SetHealthScore(ctx, code, score, now); err != nil {
		return nil, err
	}
	asset, err := s.assets.FindAssetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"asset": code, "health_score": score}).Info("Asset health adjusted")
	event := events.New(models.EventAssetHealthAdjusted, code, actor, now)
	event.Details = fmt.Sprintf("health score %d", score)
	s.announce(ctx, event)
	return asset, nil
}

// GetAsset returns one asset with its maintenance history.
func (s *Service) GetAsset(ctx context.Context, actor models.Actor, code string) (*models.Asset, error) {
	if err := authorize(actor, models.ActionViewAssets); err != nil {
		return nil, err
	}
	return s.assets.FindAssetByCode(ctx, code)
}

// ListAssets lists every asset by code.
func (s *Service) ListAssets(ctx context.Context, actor models.Actor) ([]models.Asset, error) {
	if err := authorize(actor, models.ActionViewAssets); err != nil {
		return nil, err
	}
	return s.assets.FindAssets(ctx)
}

// SummarizeAsset asks the summary service for a condition summary.
func (s *Service) SummarizeAsset(ctx context.Context, actor models.Actor, code string) (string, error) {
	if err := authorize(actor, models.ActionSummarizeAsset); err != nil {
		return "", err
	}
	asset, err := s.assets.FindAssetByCode(ctx, code)
	if err != nil {
		return "", err
	}
	return s.summarizer.Summarize(ctx, *asset)
}
