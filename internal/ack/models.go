package ack

import "time"

// Status of one acknowledgment record.
type Status string

const (
	StatusPending      Status = "Pending"
	StatusAcknowledged Status = "Acknowledged"
)

// Record tracks one (policy, employee) pair. Exactly one record may exist per
// pair; the storage layer enforces the uniqueness, not application checks.
type Record struct {
	PolicyID       string     `json:"policyId"`
	EmployeeID     string     `json:"employeeId"`
	Status         Status     `json:"status"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
