package tracker

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/maintenance-tracker/internal/apperr"
	"github.com/ukydev/maintenance-tracker/internal/db"
	"github.com/ukydev/maintenance-tracker/internal/events"
	"github.com/ukydev/maintenance-tracker/internal/lifecycle"
	"github.com/ukydev/maintenance-tracker/internal/models"
)

type step func(req models.WorkRequest, now time.Time) (models.WorkRequest, error)

// SubmitRequest files a new pending request against an existing asset.
func (s *Service) SubmitRequest(ctx context.Context, actor models.Actor, in models.SubmitRequestInput) (*models.WorkRequest, error) {
	if err := authorize(actor, models.ActionSubmitRequest); err != nil {
		return nil, err
	}
	asset, err := s.assets.FindAssetByCode(ctx, strings.TrimSpace(in.AssetCode))
	if err != nil {
		return nil, err
	}
	now := s.now()

	// Validate before a number is taken so rejected input leaves no gap.
	if _, err := lifecycle.Submit(actor, *asset, in, lifecycle.Identity{RequestID: "-", TSWRNo: "-"}, now); err != nil {
		return nil, err
	}
	seq, err := s.counters.Next(ctx, db.SeqRequests)
	if err != nil {
		return nil, err
	}
	req, err := lifecycle.Submit(actor, *asset, in, lifecycle.Identity{
		RequestID: requestNumber(seq),
		TSWRNo:    tswrNumber(seq, now),
	}, now)
	if err != nil {
		return nil, err
	}
	if err := s.requests.InsertRequest(ctx, req); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"request": req.RequestID,
		"asset":   req.AssetCode,
		"actor":   actor.ID,
	}).Info("Request submitted")
	event := events.New(models.EventRequestSubmitted, req.RequestID, actor, now)
	event.ToStatus = string(req.Status)
	event.Details = req.WorkDescription
	s.announce(ctx, event)
	return &req, nil
}

// ApproveRequest schedules a pending request and assigns a technician.
func (s *Service) ApproveRequest(ctx context.Context, actor models.Actor, requestID string, in models.ApproveRequestInput) (*models.WorkRequest, error) {
	var technician models.User
	var techErr error
	if in.TechnicianID != "" {
		found, err := s.users.FindUserByID(ctx, in.TechnicianID)
		switch {
		case err == nil:
			technician = *found
		case errors.Is(err, apperr.ErrNotFound):
			techErr = apperr.NotFound("technician %s not found", in.TechnicianID)
		default:
			return nil, err
		}
	}

	return s.transition(ctx, actor, requestID, models.EventRequestApproved, func(req models.WorkRequest, now time.Time) (models.WorkRequest, error) {
		if techErr != nil {
			if err := lifecycle.Check(req, actor, models.ActionApproveRequest, models.StatusScheduled); err != nil {
				return req, err
			}
			return req, techErr
		}
		return lifecycle.Approve(req, actor, technician, in, now)
	})
}

// DenyRequest rejects a pending request.
func (s *Service) DenyRequest(ctx context.Context, actor models.Actor, requestID, reason string) (*models.WorkRequest, error) {
	return s.transition(ctx, actor, requestID, models.EventRequestDenied, func(req models.WorkRequest, now time.Time) (models.WorkRequest, error) {
		return lifecycle.Deny(req, actor, reason, now)
	})
}

// StartWork moves a scheduled request to ongoing.
func (s *Service) StartWork(ctx context.Context, actor models.Actor, requestID string) (*models.WorkRequest, error) {
	return s.transition(ctx, actor, requestID, models.EventWorkStarted, func(req models.WorkRequest, now time.Time) (models.WorkRequest, error) {
		return lifecycle.Start(req, actor, now)
	})
}

// ResolveWork marks ongoing work as resolved.
func (s *Service) ResolveWork(ctx context.Context, actor models.Actor, requestID string) (*models.WorkRequest, error) {
	return s.transition(ctx, actor, requestID, models.EventWorkResolved, func(req models.WorkRequest, now time.Time) (models.WorkRequest, error) {
		return lifecycle.Resolve(req, actor, now)
	})
}

// MarkCannotResolve ends ongoing work that could not be fixed.
func (s *Service) MarkCannotResolve(ctx context.Context, actor models.Actor, requestID, reason string) (*models.WorkRequest, error) {
	return s.transition(ctx, actor, requestID, models.EventWorkCannotResolve, func(req models.WorkRequest, now time.Time) (models.WorkRequest, error) {
		return lifecycle.CannotResolve(req, actor, reason, now)
	})
}

// ConfirmCompletion records the requester's feedback on resolved work.
func (s *Service) ConfirmCompletion(ctx context.Context, actor models.Actor, requestID, feedback string) (*models.WorkRequest, error) {
	return s.transition(ctx, actor, requestID, models.EventCompletionConfirmed, func(req models.WorkRequest, now time.Time) (models.WorkRequest, error) {
		return lifecycle.Confirm(req, actor, feedback, now)
	})
}

// CloseRequest closes a confirmed request and stamps its turnaround.
func (s *Service) CloseRequest(ctx context.Context, actor models.Actor, requestID string) (*models.WorkRequest, error) {
	return s.transition(ctx, actor, requestID, models.EventRequestClosed, func(req models.WorkRequest, now time.Time) (models.WorkRequest, error) {
		return lifecycle.Close(req, actor, now)
	})
}

// transition loads a request, applies one lifecycle step and writes the
// result only if the request is still in the state the step saw.
func (s *Service) transition(ctx context.Context, actor models.Actor, requestID string, eventType models.EventType, apply step) (*models.WorkRequest, error) {
	current, err := s.requests.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	next, err := apply(*current, now)
	if err != nil {
		log.WithFields(log.Fields{
			"request": requestID,
			"status":  current.Status,
			"actor":   actor.ID,
			"kind":    apperr.Kind(err),
		}).Info("Transition rejected")
		return nil, err
	}
	if err := s.requests.UpdateRequest(ctx, next, current.Status, current.Version); err != nil {
		return nil, s.requestConflict(ctx, requestID, err)
	}
	next.Version = current.Version + 1

	log.WithFields(log.Fields{
		"request": requestID,
		"from":    current.Status,
		"to":      next.Status,
		"actor":   actor.ID,
	}).Info("Request updated")
	event := events.New(eventType, requestID, actor, now)
	event.FromStatus = string(current.Status)
	event.ToStatus = string(next.Status)
	event.Details = transitionDetails(eventType, next)
	s.announce(ctx, event)
	return &next, nil
}

func transitionDetails(eventType models.EventType, req models.WorkRequest) string {
	switch eventType {
	case models.EventRequestApproved:
		return "assigned to " + req.AssignedToName
	case models.EventRequestDenied:
		return req.DenialReason
	case models.EventWorkCannotResolve:
		return req.CannotResolveReason
	case models.EventCompletionConfirmed:
		return req.RequesterFeedback
	default:
		return ""
	}
}

// GetRequest returns a request the actor is allowed to see.
func (s *Service) GetRequest(ctx context.Context, actor models.Actor, requestID string) (*models.WorkRequest, error) {
	req, err := s.requests.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.VisibleTo(actor) {
		return nil, apperr.NotFound("request %s not found", requestID)
	}
	return req, nil
}

// ListRequests lists the requests visible to the actor, newest first:
// managers see all, technicians their assignments and own submissions,
// everyone else their own submissions.
func (s *Service) ListRequests(ctx context.Context, actor models.Actor, status models.RequestStatus) ([]models.WorkRequest, error) {
	if status != "" && !models.IsValidRequestStatus(status) {
		return nil, apperr.InvalidInput("unknown status %q", status)
	}
	filter := db.RequestFilter{Status: status}
	switch actor.Role {
	case models.RoleManager:
	case models.RoleTechnician:
		filter.SubmittedBy = actor.ID
		filter.AssignedTo = actor.ID
	default:
		filter.SubmittedBy = actor.ID
	}
	return s.requests.FindRequests(ctx, filter)
}
