package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssetCategory groups registered assets.
type AssetCategory string

const (
	CategoryEquipment AssetCategory = "equipment"
	CategoryMachine   AssetCategory = "machine"
	CategoryFurniture AssetCategory = "furniture"
)

// AssetStatus is the operational status of an asset.
type AssetStatus string

const (
	AssetOperational      AssetStatus = "operational"
	AssetUnderMaintenance AssetStatus = "under_maintenance"
	AssetOutOfService     AssetStatus = "out_of_service"
)

// MaintenanceType classifies a maintenance history entry.
type MaintenanceType string

const (
	MaintenancePreventive MaintenanceType = "preventive"
	MaintenanceCorrective MaintenanceType = "corrective"
	MaintenanceEmergency  MaintenanceType = "emergency"
)

// Asset represents a registered piece of equipment, machine or furniture.
type Asset struct {
	ID                       primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	AssetCode                string              `bson:"asset_code" json:"asset_code"`
	Name                     string              `bson:"name" json:"name"`
	Category                 AssetCategory       `bson:"category" json:"category"`
	Location                 string              `bson:"location" json:"location"`
	PurchaseDate             time.Time           `bson:"purchase_date" json:"purchase_date"`
	PurchaseCost             float64             `bson:"purchase_cost" json:"purchase_cost"`
	DepreciationRate         float64             `bson:"depreciation_rate" json:"depreciation_rate"` // percent per year
	CurrentValue             float64             `bson:"current_value" json:"current_value"`
	HealthScore              int                 `bson:"health_score" json:"health_score"` // 0-100
	Status                   AssetStatus         `bson:"status" json:"status"`
	MaintenanceHistory       []MaintenanceRecord `bson:"maintenance_history" json:"maintenance_history"`
	LastMaintenanceDate      *time.Time          `bson:"last_maintenance_date,omitempty" json:"last_maintenance_date,omitempty"`
	NextScheduledMaintenance *time.Time          `bson:"next_scheduled_maintenance,omitempty" json:"next_scheduled_maintenance,omitempty"`
	CreatedAt                time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt                time.Time           `bson:"updated_at" json:"updated_at"`
}

// MaintenanceRecord is one append-only entry in an asset's history.
type MaintenanceRecord struct {
	Date            time.Time       `bson:"date" json:"date"`
	Type            MaintenanceType `bson:"type" json:"type"`
	Description     string          `bson:"description" json:"description"`
	TechnicianName  string          `bson:"technician_name" json:"technician_name"`
	Cost            float64         `bson:"cost" json:"cost"`
	PartsReplaced   []string        `bson:"parts_replaced,omitempty" json:"parts_replaced,omitempty"`
	ServiceReportID string          `bson:"service_report_id,omitempty" json:"service_report_id,omitempty"`
}

// CreateAssetInput carries the fields a manager registers an asset with.
type CreateAssetInput struct {
	AssetCode        string        `json:"asset_code"`
	Name             string        `json:"name"`
	Category         AssetCategory `json:"category"`
	Location         string        `json:"location"`
	PurchaseDate     time.Time     `json:"purchase_date"`
	PurchaseCost     float64       `json:"purchase_cost"`
	DepreciationRate *float64      `json:"depreciation_rate,omitempty"`
	CurrentValue     *float64      `json:"current_value,omitempty"`
	HealthScore      *int          `json:"health_score,omitempty"`
	Status           AssetStatus   `json:"status,omitempty"`
}

// IsValidAssetCategory checks if a category is valid
func IsValidAssetCategory(c AssetCategory) bool {
	switch c {
	case CategoryEquipment, CategoryMachine, CategoryFurniture:
		return true
	default:
		return false
	}
}

// IsValidAssetStatus checks if an asset status is valid
func IsValidAssetStatus(s AssetStatus) bool {
	switch s {
	case AssetOperational, AssetUnderMaintenance, AssetOutOfService:
		return true
	default:
		return false
	}
}
