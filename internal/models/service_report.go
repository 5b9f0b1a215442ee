package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServiceType tells whether the work was planned or reactive.
type ServiceType string

const (
	ServicePlanned   ServiceType = "planned"
	ServiceUnplanned ServiceType = "unplanned"
)

// PartUsed is one parts/materials line item on a service report.
type PartUsed struct {
	PartName string  `bson:"part_name" json:"part_name"`
	PartNo   string  `bson:"part_no,omitempty" json:"part_no,omitempty"`
	Quantity float64 `bson:"quantity" json:"quantity"`
	Cost     float64 `bson:"cost" json:"cost"` // unit cost
}

// ServiceReport is a technician's record of work performed on one request.
// It is immutable once created.
type ServiceReport struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReportID        string             `bson:"report_id" json:"report_id"`
	TSWRNo          string             `bson:"tswr_no" json:"tswr_no"`
	RequestID       string             `bson:"request_id" json:"request_id"`
	AssetID         string             `bson:"asset_id" json:"asset_id"`
	AssetCode       string             `bson:"asset_code" json:"asset_code"`
	AssetName       string             `bson:"asset_name" json:"asset_name"`
	Location        string             `bson:"location" json:"location"`
	WorkDescription string             `bson:"work_description" json:"work_description"`
	Remarks         string             `bson:"remarks,omitempty" json:"remarks,omitempty"`
	Urgency         Urgency            `bson:"urgency" json:"urgency"`
	WorkStartTime   time.Time          `bson:"work_start_time" json:"work_start_time"`
	WorkEndTime     time.Time          `bson:"work_end_time" json:"work_end_time"`
	ManHours        float64            `bson:"man_hours" json:"man_hours"`
	LaborCost       float64            `bson:"labor_cost" json:"labor_cost"`
	PartsMaterials  []PartUsed         `bson:"parts_materials" json:"parts_materials"`
	TotalPartsCost  float64            `bson:"total_parts_cost" json:"total_parts_cost"`
	ServiceType     ServiceType        `bson:"service_type" json:"service_type"`
	HoursDown       float64            `bson:"hours_down" json:"hours_down"`
	ReportFindings  string             `bson:"report_findings" json:"report_findings"`
	ServiceDate     time.Time          `bson:"service_date" json:"service_date"`
	PreparedBy      string             `bson:"prepared_by" json:"prepared_by"`
	PreparedByName  string             `bson:"prepared_by_name" json:"prepared_by_name"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

// ServiceReportInput carries what a technician files after doing the work.
type ServiceReportInput struct {
	RequestID       string      `json:"request_id"`
	WorkDescription string      `json:"work_description"`
	Remarks         string      `json:"remarks,omitempty"`
	WorkStartTime   time.Time   `json:"work_start_time"`
	WorkEndTime     time.Time   `json:"work_end_time"`
	LaborCost       float64     `json:"labor_cost"`
	PartsMaterials  []PartUsed  `json:"parts_materials"`
	ServiceType     ServiceType `json:"service_type"`
	HoursDown       float64     `json:"hours_down"`
	ReportFindings  string      `json:"report_findings"`
	ServiceDate     *time.Time  `json:"service_date,omitempty"`
}

// IsValidServiceType checks if a service type is valid
func IsValidServiceType(t ServiceType) bool {
	return t == ServicePlanned || t == ServiceUnplanned
}
