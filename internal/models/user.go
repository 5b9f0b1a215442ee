package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents user roles in the system
type Role string

const (
	RoleEmployee   Role = "employee"
	RoleTechnician Role = "technician"
	RoleManager    Role = "manager"
)

// Action names an operation guarded by role.
type Action string

const (
	ActionSubmitRequest       Action = "submit_request"
	ActionApproveRequest      Action = "approve_request"
	ActionDenyRequest         Action = "deny_request"
	ActionStartWork           Action = "start_work"
	ActionResolveWork         Action = "resolve_work"
	ActionMarkCannotResolve   Action = "mark_cannot_resolve"
	ActionConfirmCompletion   Action = "confirm_completion"
	ActionCloseRequest        Action = "close_request"
	ActionCreateServiceReport Action = "create_service_report"
	ActionCompletePMSchedule  Action = "complete_pm_schedule"
	ActionManageAssets        Action = "manage_assets"
	ActionManagePMSchedules   Action = "manage_pm_schedules"
	ActionViewStats           Action = "view_stats"
	ActionViewTechnicians     Action = "view_technicians"
	ActionViewActivity        Action = "view_activity"
	ActionExportReports       Action = "export_reports"
	ActionViewAssets          Action = "view_assets"
	ActionViewPMSchedules     Action = "view_pm_schedules"
	ActionViewServiceReports  Action = "view_service_reports"
	ActionSummarizeAsset      Action = "summarize_asset"
)

// User represents a user in the system
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	Name         string             `bson:"name" json:"name"`
	IsArchived   bool               `bson:"is_archived" json:"is_archived"`
	ArchivedAt   *time.Time         `bson:"archived_at,omitempty" json:"archived_at,omitempty"`
	LastLogin    *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// Actor returns the acting identity of the user.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID.Hex(), Name: u.Name, Role: u.Role}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Claims represents JWT claims
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	Exp      int64  `json:"exp"`
}

// Actor returns the acting identity carried by the token.
func (c *Claims) Actor() Actor {
	return Actor{ID: c.UserID, Name: c.Name, Role: c.Role}
}

// Actor is the authenticated caller of an operation. It is always passed
// explicitly; nothing in the core reads a session.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Can reports whether the actor's role allows the action.
func (a Actor) Can(action Action) bool {
	return CanPerform(a.Role, action)
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleEmployee, RoleTechnician, RoleManager:
		return true
	default:
		return false
	}
}

// CanPerform is the role guard: it checks if a role may perform an action.
// Ownership rules (such as who may confirm a request) are enforced by the
// request lifecycle, not here.
func CanPerform(role Role, action Action) bool {
	switch action {
	case ActionSubmitRequest, ActionConfirmCompletion,
		ActionViewAssets, ActionViewPMSchedules, ActionViewServiceReports, ActionSummarizeAsset:
		return IsValidRole(role)
	case ActionStartWork, ActionResolveWork, ActionMarkCannotResolve,
		ActionCreateServiceReport, ActionCompletePMSchedule:
		return role == RoleTechnician || role == RoleManager
	case ActionApproveRequest, ActionDenyRequest, ActionCloseRequest,
		ActionManageAssets, ActionManagePMSchedules, ActionViewStats,
		ActionViewTechnicians, ActionViewActivity, ActionExportReports:
		return role == RoleManager
	default:
		return false
	}
}
