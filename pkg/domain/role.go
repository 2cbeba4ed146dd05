package domain

// Role classifies an account for authorization and compliance tracking.
// This is a domain primitive that enforces validity at parse time.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleEmployee Role = "Employee"
	RoleManager  Role = "Manager"
)

// ParseRole validates and returns a Role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleEmployee, RoleManager:
		return Role(s), true
	}
	return "", false
}
