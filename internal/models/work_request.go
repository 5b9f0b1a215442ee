package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestStatus is the lifecycle state of a work request.
type RequestStatus string

const (
	StatusPending       RequestStatus = "pending"
	StatusDenied        RequestStatus = "denied"
	StatusScheduled     RequestStatus = "scheduled"
	StatusOngoing       RequestStatus = "ongoing"
	StatusCannotResolve RequestStatus = "cannot_resolve"
	StatusResolved      RequestStatus = "resolved"
	StatusClosed        RequestStatus = "closed"
)

// RequestStatuses lists every status in lifecycle order.
var RequestStatuses = []RequestStatus{
	StatusPending, StatusDenied, StatusScheduled, StatusOngoing,
	StatusCannotResolve, StatusResolved, StatusClosed,
}

// IsValidRequestStatus checks if a status is one of the known states.
func IsValidRequestStatus(s RequestStatus) bool {
	for _, known := range RequestStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Urgency categorises how quickly a request needs attention.
type Urgency string

const (
	UrgencyStandstill        Urgency = "standstill"
	UrgencyImmediately       Urgency = "immediately"
	UrgencyOnOccasion        Urgency = "on_occasion"
	UrgencyDuringMaintenance Urgency = "during_maintenance"
)

// IsValidUrgency checks if an urgency value is valid
func IsValidUrgency(u Urgency) bool {
	switch u {
	case UrgencyStandstill, UrgencyImmediately, UrgencyOnOccasion, UrgencyDuringMaintenance:
		return true
	default:
		return false
	}
}

// WorkRequest is one submitted service need (a TSWR form).
type WorkRequest struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID         string             `bson:"request_id" json:"request_id"`
	TSWRNo            string             `bson:"tswr_no" json:"tswr_no"`
	AssetID           string             `bson:"asset_id" json:"asset_id"`
	AssetCode         string             `bson:"asset_code" json:"asset_code"`
	AssetName         string             `bson:"asset_name" json:"asset_name"`
	Location          string             `bson:"location" json:"location"`
	WorkDescription   string             `bson:"work_description" json:"work_description"`
	Urgency           Urgency            `bson:"urgency" json:"urgency"`
	DisruptsOperation bool               `bson:"disrupts_operation" json:"disrupts_operation"`
	AttachmentURL     string             `bson:"attachment_url,omitempty" json:"attachment_url,omitempty"`
	Status            RequestStatus      `bson:"status" json:"status"`

	SubmittedBy     string `bson:"submitted_by" json:"submitted_by"`
	SubmittedByName string `bson:"submitted_by_name" json:"submitted_by_name"`

	DenialReason        string     `bson:"denial_reason,omitempty" json:"denial_reason,omitempty"`
	ApprovedBy          string     `bson:"approved_by,omitempty" json:"approved_by,omitempty"`
	ApprovedByName      string     `bson:"approved_by_name,omitempty" json:"approved_by_name,omitempty"`
	ApprovedAt          *time.Time `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	AssignedTo          string     `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	AssignedToName      string     `bson:"assigned_to_name,omitempty" json:"assigned_to_name,omitempty"`
	ScheduledDate       *time.Time `bson:"scheduled_date,omitempty" json:"scheduled_date,omitempty"`
	StartedAt           *time.Time `bson:"started_at,omitempty" json:"started_at,omitempty"`
	ResolvedAt          *time.Time `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
	CannotResolveReason string     `bson:"cannot_resolve_reason,omitempty" json:"cannot_resolve_reason,omitempty"`

	RequesterFeedback    string     `bson:"requester_feedback,omitempty" json:"requester_feedback,omitempty"`
	RequesterConfirmedAt *time.Time `bson:"requester_confirmed_at,omitempty" json:"requester_confirmed_at,omitempty"`

	ClosedAt       *time.Time `bson:"closed_at,omitempty" json:"closed_at,omitempty"`
	ClosedBy       string     `bson:"closed_by,omitempty" json:"closed_by,omitempty"`
	ClosedByName   string     `bson:"closed_by_name,omitempty" json:"closed_by_name,omitempty"`
	TurnaroundTime *int       `bson:"turnaround_time,omitempty" json:"turnaround_time,omitempty"` // hours

	ServiceReportID string `bson:"service_report_id,omitempty" json:"service_report_id,omitempty"`

	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsClosed reports whether the request has reached its immutable state.
func (r *WorkRequest) IsClosed() bool {
	return r.Status == StatusClosed
}

// VisibleTo reports whether the actor may see the request: employees see
// their own submissions, technicians their assignments, managers everything.
func (r *WorkRequest) VisibleTo(actor Actor) bool {
	switch actor.Role {
	case RoleManager:
		return true
	case RoleTechnician:
		return r.AssignedTo == actor.ID || r.SubmittedBy == actor.ID
	default:
		return r.SubmittedBy == actor.ID
	}
}

// SubmitRequestInput carries the fields an employee fills in.
type SubmitRequestInput struct {
	AssetCode         string  `json:"asset_code"`
	WorkDescription   string  `json:"work_description"`
	Urgency           Urgency `json:"urgency"`
	DisruptsOperation bool    `json:"disrupts_operation"`
	AttachmentURL     string  `json:"attachment_url,omitempty"`
}

// ApproveRequestInput carries the scheduling decision of a manager.
type ApproveRequestInput struct {
	TechnicianID  string    `json:"technician_id"`
	ScheduledDate time.Time `json:"scheduled_date"`
	Urgency       *Urgency  `json:"urgency,omitempty"`
}
