// Package lifecycle is the work-request state machine. Each transition takes
// the current request by value and returns the next one, or an error and
// the request untouched.
//
// Guards run in a fixed order: a closed request rejects everything
// (InvariantViolation), then the actor's role (NotAuthorized), then the
// current status (InvalidTransition), then the input (InvalidInput).
package lifecycle

import (
	"strings"
	"time"

	"github.com/ukydev/maintenance-tracker/internal/apperr"
	"github.com/ukydev/maintenance-tracker/internal/metrics"
	"github.com/ukydev/maintenance-tracker/internal/models"
)

var transitions = map[models.RequestStatus][]models.RequestStatus{
	models.StatusPending:   {models.StatusScheduled, models.StatusDenied},
	models.StatusScheduled: {models.StatusOngoing},
	models.StatusOngoing:   {models.StatusResolved, models.StatusCannotResolve},
	models.StatusResolved:  {models.StatusClosed},
}

// CanTransition reports whether the status graph has an edge from -> to.
func CanTransition(from, to models.RequestStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves the status.
func IsTerminal(s models.RequestStatus) bool {
	return len(transitions[s]) == 0
}

// Identity is the pair of unique numbers assigned at submission.
type Identity struct {
	RequestID string
	TSWRNo    string
}

// Submit creates a pending request against an existing asset.
func Submit(actor models.Actor, asset models.Asset, in models.SubmitRequestInput, id Identity, now time.Time) (models.WorkRequest, error) {
	if !actor.Can(models.ActionSubmitRequest) {
		return models.WorkRequest{}, apperr.NotAuthorized("role %q cannot submit requests", actor.Role)
	}
	if id.RequestID == "" || id.TSWRNo == "" {
		return models.WorkRequest{}, apperr.InvalidInput("request id and tswr number are required")
	}
	description := strings.TrimSpace(in.WorkDescription)
	if description == "" {
		return models.WorkRequest{}, apperr.InvalidInput("work description is required")
	}
	urgency := in.Urgency
	if urgency == "" {
		urgency = models.UrgencyStandstill
	}
	if !models.IsValidUrgency(urgency) {
		return models.WorkRequest{}, apperr.InvalidInput("unknown urgency %q", in.Urgency)
	}

	return models.WorkRequest{
		RequestID:         id.RequestID,
		TSWRNo:            id.TSWRNo,
		AssetID:           asset.ID.Hex(),
		AssetCode:         asset.AssetCode,
		AssetName:         asset.Name,
		Location:          asset.Location,
		WorkDescription:   description,
		Urgency:           urgency,
		DisruptsOperation: in.DisruptsOperation,
		AttachmentURL:     strings.TrimSpace(in.AttachmentURL),
		Status:            models.StatusPending,
		SubmittedBy:       actor.ID,
		SubmittedByName:   actor.Name,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Approve schedules a pending request and assigns a technician.
func Approve(req models.WorkRequest, actor models.Actor, technician models.User, in models.ApproveRequestInput, now time.Time) (models.WorkRequest, error) {
	if err := guard(req, actor, models.ActionApproveRequest, models.StatusScheduled); err != nil {
		return req, err
	}
	if technician.ID.IsZero() {
		return req, apperr.InvalidInput("a technician is required")
	}
	if technician.Role != models.RoleTechnician || technician.IsArchived {
		return req, apperr.InvalidInput("user %s is not an active technician", technician.ID.Hex())
	}
	if in.ScheduledDate.IsZero() {
		return req, apperr.InvalidInput("scheduled date is required")
	}
	if in.Urgency != nil && !models.IsValidUrgency(*in.Urgency) {
		return req, apperr.InvalidInput("unknown urgency %q", *in.Urgency)
	}

	next := req
	next.Status = models.StatusScheduled
	next.ApprovedBy = actor.ID
	next.ApprovedByName = actor.Name
	next.ApprovedAt = timePtr(now)
	next.AssignedTo = technician.ID.Hex()
	next.AssignedToName = technician.Name
	next.ScheduledDate = timePtr(in.ScheduledDate)
	if in.Urgency != nil {
		next.Urgency = *in.Urgency
	}
	next.UpdatedAt = now
	return next, nil
}

// Deny rejects a pending request with a reason.
func Deny(req models.WorkRequest, actor models.Actor, reason string, now time.Time) (models.WorkRequest, error) {
	if err := guard(req, actor, models.ActionDenyRequest, models.StatusDenied); err != nil {
		return req, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return req, apperr.InvalidInput("denial reason is required")
	}

	next := req
	next.Status = models.StatusDenied
	next.ApprovedBy = actor.ID
	next.ApprovedByName = actor.Name
	next.ApprovedAt = timePtr(now)
	next.DenialReason = reason
	next.UpdatedAt = now
	return next, nil
}

// Start moves scheduled work to ongoing.
func Start(req models.WorkRequest, actor models.Actor, now time.Time) (models.WorkRequest, error) {
	if err := guard(req, actor, models.ActionStartWork, models.StatusOngoing); err != nil {
		return req, err
	}

	next := req
	next.Status = models.StatusOngoing
	next.StartedAt = timePtr(now)
	next.UpdatedAt = now
	return next, nil
}

// Resolve marks ongoing work as resolved.
func Resolve(req models.WorkRequest, actor models.Actor, now time.Time) (models.WorkRequest, error) {
	if err := guard(req, actor, models.ActionResolveWork, models.StatusResolved); err != nil {
		return req, err
	}

	next := req
	next.Status = models.StatusResolved
	next.ResolvedAt = timePtr(now)
	next.UpdatedAt = now
	return next, nil
}

// CannotResolve ends ongoing work that could not be fixed.
func CannotResolve(req models.WorkRequest, actor models.Actor, reason string, now time.Time) (models.WorkRequest, error) {
	if err := guard(req, actor, models.ActionMarkCannotResolve, models.StatusCannotResolve); err != nil {
		return req, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return req, apperr.InvalidInput("a reason is required")
	}

	next := req
	next.Status = models.StatusCannotResolve
	next.CannotResolveReason = reason
	next.UpdatedAt = now
	return next, nil
}

// Confirm records the requester's feedback on resolved work. The status
// does not change; confirmation is what allows Close.
func Confirm(req models.WorkRequest, actor models.Actor, feedback string, now time.Time) (models.WorkRequest, error) {
	if req.IsClosed() {
		return req, closedErr(req)
	}
	if !actor.Can(models.ActionConfirmCompletion) {
		return req, apperr.NotAuthorized("role %q cannot confirm completion", actor.Role)
	}
	if actor.Role != models.RoleManager && actor.ID != req.SubmittedBy {
		return req, apperr.NotAuthorized("only the requester or a manager can confirm %s", req.RequestID)
	}
	if req.Status != models.StatusResolved {
		return req, apperr.InvalidTransition("cannot confirm %s in status %s", req.RequestID, req.Status)
	}
	if req.RequesterConfirmedAt != nil {
		return req, apperr.InvalidTransition("%s is already confirmed", req.RequestID)
	}
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return req, apperr.InvalidInput("feedback is required")
	}

	next := req
	next.RequesterFeedback = feedback
	next.RequesterConfirmedAt = timePtr(now)
	next.UpdatedAt = now
	return next, nil
}

// Close finalises a confirmed, resolved request and stamps its turnaround.
func Close(req models.WorkRequest, actor models.Actor, now time.Time) (models.WorkRequest, error) {
	if err := guard(req, actor, models.ActionCloseRequest, models.StatusClosed); err != nil {
		return req, err
	}
	if req.RequesterConfirmedAt == nil {
		return req, apperr.InvalidTransition("%s has not been confirmed by the requester", req.RequestID)
	}
	hours, err := metrics.TurnaroundHours(req.CreatedAt, now)
	if err != nil {
		return req, err
	}

	next := req
	next.Status = models.StatusClosed
	next.ClosedAt = timePtr(now)
	next.ClosedBy = actor.ID
	next.ClosedByName = actor.Name
	next.TurnaroundTime = &hours
	next.UpdatedAt = now
	return next, nil
}

// AttachServiceReport links a freshly filed service report to the request.
// Reports are filed while or after the work happens, and only once.
func AttachServiceReport(req models.WorkRequest, actor models.Actor, reportID string, now time.Time) (models.WorkRequest, error) {
	if req.IsClosed() {
		return req, closedErr(req)
	}
	if !actor.Can(models.ActionCreateServiceReport) {
		return req, apperr.NotAuthorized("role %q cannot file service reports", actor.Role)
	}
	switch req.Status {
	case models.StatusOngoing, models.StatusResolved, models.StatusCannotResolve:
	default:
		return req, apperr.InvalidTransition("cannot file a service report for %s in status %s", req.RequestID, req.Status)
	}
	if req.ServiceReportID != "" {
		return req, apperr.InvalidTransition("%s already has service report %s", req.RequestID, req.ServiceReportID)
	}

	next := req
	next.ServiceReportID = reportID
	next.UpdatedAt = now
	return next, nil
}

// Check runs the closed, role and status guards of a transition without
// applying it.
func Check(req models.WorkRequest, actor models.Actor, action models.Action, to models.RequestStatus) error {
	return guard(req, actor, action, to)
}

func guard(req models.WorkRequest, actor models.Actor, action models.Action, to models.RequestStatus) error {
	if req.IsClosed() {
		return closedErr(req)
	}
	if !actor.Can(action) {
		return apperr.NotAuthorized("role %q cannot %s", actor.Role, action)
	}
	if !CanTransition(req.Status, to) {
		return apperr.InvalidTransition("%s cannot move from %s to %s", req.RequestID, req.Status, to)
	}
	return nil
}

func closedErr(req models.WorkRequest) error {
	return apperr.InvariantViolation("%s is closed and can no longer change", req.RequestID)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
