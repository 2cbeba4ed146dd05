package roster

import (
	"time"

	"complyd/pkg/domain"
)

// Employee is one roster entry. IDs are externally assigned (badge numbers
// like "EMP001"), not generated here.
type Employee struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Phone        string
	Address      string
	Role         domain.Role
	CreatedAt    time.Time
}
