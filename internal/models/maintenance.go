package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Frequency is the cadence of a preventive maintenance schedule.
type Frequency string

const (
	FrequencyDaily      Frequency = "daily"
	FrequencyWeekly     Frequency = "weekly"
	FrequencyMonthly    Frequency = "monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencySemiAnnual Frequency = "semi_annual"
	FrequencyAnnual     Frequency = "annual"
)

// PMSchedule is a recurring preventive maintenance obligation on one asset.
type PMSchedule struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ScheduleID        string             `bson:"schedule_id" json:"schedule_id"`
	AssetID           string             `bson:"asset_id" json:"asset_id"`
	AssetCode         string             `bson:"asset_code" json:"asset_code"`
	AssetName         string             `bson:"asset_name" json:"asset_name"`
	Description       string             `bson:"description" json:"description"`
	Frequency         Frequency          `bson:"frequency" json:"frequency"`
	NextDueDate       time.Time          `bson:"next_due_date" json:"next_due_date"`
	LastCompletedDate *time.Time         `bson:"last_completed_date,omitempty" json:"last_completed_date,omitempty"`
	AssignedTo        string             `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	AssignedToName    string             `bson:"assigned_to_name,omitempty" json:"assigned_to_name,omitempty"`
	Tasks             []string           `bson:"tasks" json:"tasks"`
	EstimatedDuration int                `bson:"estimated_duration" json:"estimated_duration"` // minutes
	IsActive          bool               `bson:"is_active" json:"is_active"`
	CreatedBy         string             `bson:"created_by" json:"created_by"`
	CreatedByName     string             `bson:"created_by_name" json:"created_by_name"`
	Version           int64              `bson:"version" json:"version"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

// CreatePMScheduleInput carries the fields of a new PM schedule.
type CreatePMScheduleInput struct {
	AssetCode         string    `json:"asset_code"`
	Description       string    `json:"description"`
	Frequency         Frequency `json:"frequency"`
	NextDueDate       time.Time `json:"next_due_date"`
	TechnicianID      string    `json:"technician_id,omitempty"`
	Tasks             []string  `json:"tasks"`
	EstimatedDuration int       `json:"estimated_duration,omitempty"`
}
