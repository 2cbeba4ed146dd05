package audit

import (
	"time"

	"github.com/google/uuid"
)

// Status records the outcome of the audited action.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFail    Status = "fail"
	StatusInfo    Status = "info"
)

// Action taxonomy. Every state-changing operation in the API maps to exactly
// one of these.
const (
	ActionLoginSuccess      = "login_success"
	ActionLoginFail         = "login_fail"
	ActionOTPRequest        = "otp_request"
	ActionOTPVerify         = "otp_verify"
	ActionEmployeeCreate    = "employee_create"
	ActionEmployeeUpdate    = "employee_update"
	ActionEmployeeDelete    = "employee_delete"
	ActionPolicyCreate      = "policy_create"
	ActionPolicyUpdate      = "policy_update"
	ActionPolicyDelete      = "policy_delete"
	ActionPolicyStatus      = "policy_status_change"
	ActionPolicyAcknowledge = "policy_acknowledge"
	ActionHTTPError         = "http_error"
)

// Resource types referenced by audit events.
const (
	ResourcePolicy   = "Policy"
	ResourceEmployee = "Employee"
	ResourceAuth     = "Auth"
	ResourceOTP      = "OTP"
	ResourceHTTP     = "HTTP"
)

// Event is one append-only audit trail entry: who did what, to which
// resource, with what outcome. Actor fields stay empty for unauthenticated
// actions; the event is recorded regardless.
type Event struct {
	ID           uuid.UUID      `json:"id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resourceType,omitempty"`
	ResourceID   string         `json:"resourceId,omitempty"`
	Status       Status         `json:"status"`
	Message      string         `json:"message,omitempty"`
	ActorID      string         `json:"actorId,omitempty"`
	ActorEmail   string         `json:"actorEmail,omitempty"`
	ActorRole    string         `json:"actorRole,omitempty"`
	IP           string         `json:"ip,omitempty"`
	UserAgent    string         `json:"userAgent,omitempty"`
	Method       string         `json:"method,omitempty"`
	Route        string         `json:"route,omitempty"`
	Meta         map[string]any `json:"meta,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// Filters narrow an audit query. Empty fields match everything; set fields
// are exact-match and AND-combined.
type Filters struct {
	Action       string
	ResourceType string
	ActorEmail   string
	IP           string
	Status       Status
}

// Page is one page of a newest-first audit query.
type Page struct {
	Items    []Event `json:"items"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
	Total    int     `json:"total"`
}
