package policy

import "time"

// Status is the publication state of a policy document.
type Status string

const (
	StatusDraft     Status = "Draft"
	StatusPublished Status = "Published"
)

// ParseStatus validates a status string. Anything outside the two lifecycle
// states is rejected at the boundary.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusDraft, StatusPublished:
		return Status(s), true
	}
	return "", false
}

// Policy is one internal policy document. PolicyID is externally assigned and
// immutable after creation.
type Policy struct {
	PolicyID    string     `json:"policyId"`
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Version     string     `json:"version"`
	CreatedBy   string     `json:"createdBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}
