// Package service implements roster operations: employee CRUD for admins and
// the eligible-roster view consumed by policy fan-out and compliance counting.
package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"complyd/internal/audit"
	"complyd/internal/roster"
	"complyd/pkg/domain"
	dErrors "complyd/pkg/domain-errors"
	"complyd/pkg/email"
	"complyd/pkg/platform/sentinel"
	"complyd/pkg/requestcontext"
)

// Auditor is the slice of the audit recorder this service needs.
type Auditor interface {
	Record(ctx context.Context, event audit.Event)
}

// Service owns roster mutations. The welcome mail is a side-channel: failures
// are invisible to the API caller.
type Service struct {
	store roster.Store
	audit Auditor
	mail  email.Sender
}

func New(store roster.Store, auditor Auditor, mail email.Sender) *Service {
	return &Service{store: store, audit: auditor, mail: mail}
}

// CreateEmployeeInput carries the fields for a new roster entry. All fields
// are required.
type CreateEmployeeInput struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
	Address   string
	Role      string
}

func (s *Service) Create(ctx context.Context, input CreateEmployeeInput) (*roster.Employee, error) {
	if err := validateCreate(input); err != nil {
		s.recordOutcome(ctx, audit.ActionEmployeeCreate, input.ID, err)
		return nil, err
	}

	role, _ := domain.ParseRole(input.Role)

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		err = dErrors.Wrap(dErrors.CodeInternal, "failed to hash password", err)
		s.recordOutcome(ctx, audit.ActionEmployeeCreate, input.ID, err)
		return nil, err
	}

	employee := &roster.Employee{
		ID:           input.ID,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: string(hash),
		Phone:        input.Phone,
		Address:      input.Address,
		Role:         role,
		CreatedAt:    requestcontext.Now(ctx),
	}

	if err := s.store.Create(ctx, employee); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			err = dErrors.New(dErrors.CodeConflict, "employee id or email already exists")
		} else {
			err = dErrors.Wrap(dErrors.CodeInternal, "failed to create employee", err)
		}
		s.recordOutcome(ctx, audit.ActionEmployeeCreate, input.ID, err)
		return nil, err
	}

	s.recordOutcome(ctx, audit.ActionEmployeeCreate, employee.ID, nil)
	s.sendWelcome(employee)

	return employee, nil
}

func (s *Service) Get(ctx context.Context, employeeID string) (*roster.Employee, error) {
	employee, err := s.store.Get(ctx, employeeID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "employee not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to fetch employee", err)
	}
	return employee, nil
}

func (s *Service) List(ctx context.Context) ([]*roster.Employee, error) {
	employees, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list employees", err)
	}
	return employees, nil
}

// Eligible returns the roster entries that count toward compliance: roles
// Employee and Manager, never Admin.
func (s *Service) Eligible(ctx context.Context) ([]*roster.Employee, error) {
	employees, err := s.store.ListByRoles(ctx, domain.RoleEmployee, domain.RoleManager)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list eligible employees", err)
	}
	return employees, nil
}

// EligibleIDs is Eligible reduced to IDs, the shape fan-out and compliance
// counting consume.
func (s *Service) EligibleIDs(ctx context.Context) ([]string, error) {
	employees, err := s.Eligible(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(employees))
	for _, employee := range employees {
		ids = append(ids, employee.ID)
	}
	return ids, nil
}

// UpdateEmployeeInput carries optional field changes. Nil pointers leave the
// stored value untouched; the employee ID itself is immutable.
type UpdateEmployeeInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	Phone     *string
	Address   *string
	Role      *string
}

func (s *Service) Update(ctx context.Context, employeeID string, input UpdateEmployeeInput) (*roster.Employee, error) {
	employee, err := s.store.Get(ctx, employeeID)
	if errors.Is(err, sentinel.ErrNotFound) {
		err = dErrors.New(dErrors.CodeNotFound, "employee not found")
		s.recordOutcome(ctx, audit.ActionEmployeeUpdate, employeeID, err)
		return nil, err
	}
	if err != nil {
		err = dErrors.Wrap(dErrors.CodeInternal, "failed to fetch employee", err)
		s.recordOutcome(ctx, audit.ActionEmployeeUpdate, employeeID, err)
		return nil, err
	}

	if err := applyUpdate(employee, input); err != nil {
		s.recordOutcome(ctx, audit.ActionEmployeeUpdate, employeeID, err)
		return nil, err
	}

	if err := s.store.Update(ctx, employee); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			err = dErrors.New(dErrors.CodeConflict, "email already in use")
		} else {
			err = dErrors.Wrap(dErrors.CodeInternal, "failed to update employee", err)
		}
		s.recordOutcome(ctx, audit.ActionEmployeeUpdate, employeeID, err)
		return nil, err
	}

	s.recordOutcome(ctx, audit.ActionEmployeeUpdate, employeeID, nil)
	return employee, nil
}

func (s *Service) Delete(ctx context.Context, employeeID string) error {
	err := s.store.Delete(ctx, employeeID)
	if errors.Is(err, sentinel.ErrNotFound) {
		err = dErrors.New(dErrors.CodeNotFound, "employee not found")
		s.recordOutcome(ctx, audit.ActionEmployeeDelete, employeeID, err)
		return err
	}
	if err != nil {
		err = dErrors.Wrap(dErrors.CodeInternal, "failed to delete employee", err)
		s.recordOutcome(ctx, audit.ActionEmployeeDelete, employeeID, err)
		return err
	}

	s.recordOutcome(ctx, audit.ActionEmployeeDelete, employeeID, nil)
	return nil
}

func validateCreate(input CreateEmployeeInput) error {
	missing := missingFields(map[string]string{
		"id":        input.ID,
		"firstName": input.FirstName,
		"lastName":  input.LastName,
		"email":     input.Email,
		"password":  input.Password,
		"phone":     input.Phone,
		"address":   input.Address,
		"role":      input.Role,
	})
	if len(missing) > 0 {
		return dErrors.Newf(dErrors.CodeBadRequest, "missing fields: %v", missing)
	}
	if _, ok := domain.ParseRole(input.Role); !ok {
		return dErrors.Newf(dErrors.CodeBadRequest, "invalid role: %s", input.Role)
	}
	return nil
}

func applyUpdate(employee *roster.Employee, input UpdateEmployeeInput) error {
	if input.Role != nil {
		role, ok := domain.ParseRole(*input.Role)
		if !ok {
			return dErrors.Newf(dErrors.CodeBadRequest, "invalid role: %s", *input.Role)
		}
		employee.Role = role
	}
	if input.FirstName != nil {
		employee.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		employee.LastName = *input.LastName
	}
	if input.Email != nil {
		if *input.Email == "" {
			return dErrors.New(dErrors.CodeBadRequest, "email must not be empty")
		}
		employee.Email = *input.Email
	}
	if input.Phone != nil {
		employee.Phone = *input.Phone
	}
	if input.Address != nil {
		employee.Address = *input.Address
	}
	if input.Password != nil {
		if *input.Password == "" {
			return dErrors.New(dErrors.CodeBadRequest, "password must not be empty")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return dErrors.Wrap(dErrors.CodeInternal, "failed to hash password", err)
		}
		employee.PasswordHash = string(hash)
	}
	return nil
}

func missingFields(fields map[string]string) []string {
	var missing []string
	// Stable order for error messages.
	for _, name := range []string{"id", "firstName", "lastName", "email", "password", "phone", "address", "role"} {
		if value, ok := fields[name]; ok && value == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// sendWelcome fires the welcome mail without holding up the response. The
// store write already happened; a mail failure is logged by the sender layer
// and otherwise ignored.
func (s *Service) sendWelcome(employee *roster.Employee) {
	msg := email.Message{
		To:      employee.Email,
		Subject: "Welcome to the team!",
		Body: fmt.Sprintf(
			"Hello %s %s,\n\nYour account is ready.\n\nEmployee ID: %s\nLogin email: %s\n\nUse the password-reset flow to set your password on first login.\n",
			employee.FirstName, employee.LastName, employee.ID, employee.Email,
		),
	}
	go func() {
		_ = s.mail.Send(context.Background(), msg)
	}()
}

func (s *Service) recordOutcome(ctx context.Context, action, resourceID string, err error) {
	event := audit.Event{
		Action:       action,
		ResourceType: audit.ResourceEmployee,
		ResourceID:   resourceID,
		Status:       audit.StatusSuccess,
	}
	if err != nil {
		event.Status = audit.StatusFail
		event.Message = err.Error()
	}
	s.audit.Record(ctx, event)
}
