package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventType names a committed change worth telling others about.
type EventType string

const (
	EventRequestSubmitted     EventType = "request.submitted"
	EventRequestApproved      EventType = "request.approved"
	EventRequestDenied        EventType = "request.denied"
	EventWorkStarted          EventType = "request.started"
	EventWorkResolved         EventType = "request.resolved"
	EventWorkCannotResolve    EventType = "request.cannot_resolve"
	EventCompletionConfirmed  EventType = "request.confirmed"
	EventRequestClosed        EventType = "request.closed"
	EventServiceReportCreated EventType = "service_report.created"
	EventAssetCreated         EventType = "asset.created"
	EventAssetHealthAdjusted  EventType = "asset.health_adjusted"
	EventPMScheduleCreated    EventType = "pm_schedule.created"
	EventPMScheduleCompleted  EventType = "pm_schedule.completed"
	EventPMScheduleDisabled   EventType = "pm_schedule.deactivated"
)

// Event is an activity-log entry for one committed operation.
type Event struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	EventID    string             `bson:"event_id" json:"event_id"`
	Type       EventType          `bson:"type" json:"type"`
	Subject    string             `bson:"subject" json:"subject"` // request, report, asset or schedule id
	ActorID    string             `bson:"actor_id" json:"actor_id"`
	ActorName  string             `bson:"actor_name" json:"actor_name"`
	ActorRole  Role               `bson:"actor_role" json:"actor_role"`
	FromStatus string             `bson:"from_status,omitempty" json:"from_status,omitempty"`
	ToStatus   string             `bson:"to_status,omitempty" json:"to_status,omitempty"`
	Details    string             `bson:"details,omitempty" json:"details,omitempty"`
	OccurredAt time.Time          `bson:"occurred_at" json:"occurred_at"`
}

// DashboardStats summarises the state of requests and assets for managers.
type DashboardStats struct {
	Requests           RequestCounts `json:"requests"`
	Assets             AssetCounts   `json:"assets"`
	Technicians        int64         `json:"technicians"`
	AvgTurnaroundHours float64       `json:"avg_turnaround_hours"`
}

// RequestCounts breaks requests down by status.
type RequestCounts struct {
	Total         int64 `json:"total"`
	Pending       int64 `json:"pending"`
	Scheduled     int64 `json:"scheduled"`
	Ongoing       int64 `json:"ongoing"`
	Resolved      int64 `json:"resolved"`
	Closed        int64 `json:"closed"`
	Denied        int64 `json:"denied"`
	CannotResolve int64 `json:"cannot_resolve"`
}

// AssetCounts breaks assets down by operational status.
type AssetCounts struct {
	Total            int64 `json:"total"`
	Operational      int64 `json:"operational"`
	UnderMaintenance int64 `json:"under_maintenance"`
	OutOfService     int64 `json:"out_of_service"`
}
