package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/maintenance-tracker/internal/apperr"
	"github.com/ukydev/maintenance-tracker/internal/db"
	"github.com/ukydev/maintenance-tracker/internal/events"
	"github.com/ukydev/maintenance-tracker/internal/export"
	"github.com/ukydev/maintenance-tracker/internal/ledger"
	"github.com/ukydev/maintenance-tracker/internal/models"
	"github.com/ukydev/maintenance-tracker/internal/recurrence"
)

const defaultEstimatedDuration = 60

// CreatePMSchedule registers an active preventive maintenance schedule.
func (s *Service) CreatePMSchedule(ctx context.Context, actor models.Actor, in models.CreatePMScheduleInput) (*models.PMSchedule, error) {
	if err := authorize(actor, models.ActionManagePMSchedules); err != nil {
		return nil, err
	}
	asset, err := s.assets.FindAssetByCode(ctx, strings.TrimSpace(in.AssetCode))
	if err != nil {
		return nil, err
	}
	description := strings.TrimSpace(in.Description)
	switch {
	case description == "":
		return nil, apperr.InvalidInput("description is required")
	case !recurrence.IsValidFrequency(in.Frequency):
		return nil, apperr.InvalidInput("unknown frequency %q", in.Frequency)
	case in.NextDueDate.IsZero():
		return nil, apperr.InvalidInput("next due date is required")
	case in.EstimatedDuration < 0:
		return nil, apperr.InvalidInput("estimated duration cannot be negative")
	}
	duration := in.EstimatedDuration
	if duration == 0 {
		duration = defaultEstimatedDuration
	}

	var technician *models.User
	if in.TechnicianID != "" {
		technician, err = s.users.FindUserByID(ctx, in.TechnicianID)
		if err != nil {
			return nil, err
		}
		if technician.Role != models.RoleTechnician || technician.IsArchived {
			return nil, apperr.InvalidInput("user %s is not an active technician", in.TechnicianID)
		}
	}

	seq, err := s.counters.Next(ctx, db.SeqSchedules)
	if err != nil {
		return nil, err
	}
	now := s.now()
	tasks := in.Tasks
	if tasks == nil {
		tasks = []string{}
	}
	schedule := models.PMSchedule{
		ScheduleID:        fmt.Sprintf("PM-%04d", seq),
		AssetID:           asset.ID.Hex(),
		AssetCode:         asset.AssetCode,
		AssetName:         asset.Name,
		Description:       description,
		Frequency:         in.Frequency,
		NextDueDate:       in.NextDueDate,
		Tasks:             tasks,
		EstimatedDuration: duration,
		IsActive:          true,
		CreatedBy:         actor.ID,
		CreatedByName:     actor.Name,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if technician != nil {
		schedule.AssignedTo = technician.ID.Hex()
		schedule.AssignedToName = technician.Name
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.schedules.InsertSchedule(ctx, schedule); err != nil {
			return err
		}
		return s.moveAssetDueDate(ctx, *asset, now, schedule.NextDueDate)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"schedule": schedule.ScheduleID, "asset": asset.AssetCode}).Info("PM schedule created")
	event := events.New(models.EventPMScheduleCreated, schedule.ScheduleID, actor, now)
	event.Details = fmt.Sprintf("%s, due %s", schedule.Frequency, schedule.NextDueDate.Format(time.DateOnly))
	s.announce(ctx, event)
	return &schedule, nil
}

// CompletePMSchedule records a completion now and advances the due date.
// The asset's next scheduled maintenance moves with it in the same
// transaction.
func (s *Service) CompletePMSchedule(ctx context.Context, actor models.Actor, scheduleID string) (*models.PMSchedule, error) {
	if err := authorize(actor, models.ActionCompletePMSchedule); err != nil {
		return nil, err
	}
	current, err := s.schedules.FindScheduleByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	next, err := recurrence.Complete(*current, now)
	if err != nil {
		return nil, err
	}
	asset, err := s.assets.FindAssetByCode(ctx, current.AssetCode)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.schedules.UpdateSchedule(ctx, next, current.Version); err != nil {
			return err
		}
		return s.moveAssetDueDate(ctx, *asset, now, next.NextDueDate)
	})
	if err != nil {
		return nil, scheduleConflict(scheduleID, err)
	}
	next.Version = current.Version + 1

	log.WithFields(log.Fields{
		"schedule": scheduleID,
		"next_due": next.NextDueDate.Format(time.DateOnly),
		"actor":    actor.ID,
	}).Info("PM schedule completed")
	event := events.New(models.EventPMScheduleCompleted, scheduleID, actor, now)
	event.Details = "next due " + next.NextDueDate.Format(time.DateOnly)
	s.announce(ctx, event)
	return &next, nil
}

// DeactivatePMSchedule stops a schedule from being completed again.
func (s *Service) DeactivatePMSchedule(ctx context.Context, actor models.Actor, scheduleID string) (*models.PMSchedule, error) {
	if err := authorize(actor, models.ActionManagePMSchedules); err != nil {
		return nil, err
	}
	current, err := s.schedules.FindScheduleByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	next, err := recurrence.Deactivate(*current, now)
	if err != nil {
		return nil, err
	}
	if err := s.schedules.UpdateSchedule(ctx, next, current.Version); err != nil {
		return nil, scheduleConflict(scheduleID, err)
	}
	next.Version = current.Version + 1

	log.WithField("schedule", scheduleID).Info("PM schedule deactivated")
	s.announce(ctx, events.New(models.EventPMScheduleDisabled, scheduleID, actor, now))
	return &next, nil
}

// ListPMSchedules lists schedules by next due date.
func (s *Service) ListPMSchedules(ctx context.Context, actor models.Actor, filter db.ScheduleFilter) ([]models.PMSchedule, error) {
	if err := authorize(actor, models.ActionViewPMSchedules); err != nil {
		return nil, err
	}
	return s.schedules.FindSchedules(ctx, filter)
}

// ScheduleCalendar renders active schedules' due dates as iCalendar text.
func (s *Service) ScheduleCalendar(ctx context.Context, actor models.Actor) (string, error) {
	schedules, err := s.ListPMSchedules(ctx, actor, db.ScheduleFilter{ActiveOnly: true})
	if err != nil {
		return "", err
	}
	return export.ScheduleCalendar(schedules, s.now()), nil
}

func (s *Service) moveAssetDueDate(ctx context.Context, asset models.Asset, at, due time.Time) error {
	next, changed := ledger.NextScheduled(asset, at, due)
	if !changed {
		return nil
	}
	return s.assets.SetNextScheduledMaintenance(ctx, asset.AssetCode, next, at)
}

func scheduleConflict(scheduleID string, err error) error {
	if errors.Is(err, db.ErrConflict) {
		return apperr.InvalidTransition("schedule %s was changed by another operation", scheduleID)
	}
	return err
}
