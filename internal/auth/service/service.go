// Package service implements credential login and the email one-time-passcode
// flow. Both paths end in the same issued access token.
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"complyd/internal/audit"
	"complyd/internal/otp"
	"complyd/internal/roster"
	"complyd/pkg/domain"
	dErrors "complyd/pkg/domain-errors"
	"complyd/pkg/email"
	"complyd/pkg/platform/sentinel"
)

// Roster is the slice of the employee roster this service reads.
type Roster interface {
	GetByEmail(ctx context.Context, email string) (*roster.Employee, error)
}

// TokenIssuer mints access tokens for an authenticated actor.
type TokenIssuer interface {
	Issue(actor domain.Actor) (string, error)
}

// Auditor is the slice of the audit recorder this service needs.
type Auditor interface {
	Record(ctx context.Context, event audit.Event)
}

type Service struct {
	roster Roster
	tokens TokenIssuer
	codes  otp.Store
	mail   email.Sender
	audit  Auditor
	otpTTL time.Duration
}

func New(
	rosterStore Roster,
	tokens TokenIssuer,
	codes otp.Store,
	mail email.Sender,
	auditor Auditor,
	otpTTL time.Duration,
) *Service {
	return &Service{
		roster: rosterStore,
		tokens: tokens,
		codes:  codes,
		mail:   mail,
		audit:  auditor,
		otpTTL: otpTTL,
	}
}

// LoginResult carries the issued token and the identity it names.
type LoginResult struct {
	Token string      `json:"token"`
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// Login verifies an email and password pair. Unknown emails and wrong
// passwords produce the same error so the endpoint does not leak which
// addresses exist.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*LoginResult, error) {
	result, err := s.login(ctx, emailAddr, password)
	s.recordAuth(ctx, audit.ActionLoginSuccess, audit.ActionLoginFail, emailAddr, err)
	return result, err
}

func (s *Service) login(ctx context.Context, emailAddr, password string) (*LoginResult, error) {
	if emailAddr == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "email and password are required")
	}

	employee, err := s.roster.GetByEmail(ctx, emailAddr)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to look up employee", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(password)); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	return s.issueFor(employee)
}

// RequestOTP generates a six-digit code, stores it with a TTL, and emails it
// to the employee. The mail send is synchronous: a failure here means the
// caller would wait for a code that never arrives.
func (s *Service) RequestOTP(ctx context.Context, emailAddr string) error {
	err := s.requestOTP(ctx, emailAddr)

	event := audit.Event{
		Action:       audit.ActionOTPRequest,
		ResourceType: audit.ResourceOTP,
		ResourceID:   emailAddr,
		Status:       audit.StatusSuccess,
	}
	if err != nil {
		event.Status = audit.StatusFail
		event.Message = err.Error()
	}
	s.audit.Record(ctx, event)

	return err
}

func (s *Service) requestOTP(ctx context.Context, emailAddr string) error {
	if emailAddr == "" {
		return dErrors.New(dErrors.CodeBadRequest, "email is required")
	}

	employee, err := s.roster.GetByEmail(ctx, emailAddr)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "employee not found")
	}
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to look up employee", err)
	}

	code, err := generateCode()
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to generate code", err)
	}

	if err := s.codes.Put(ctx, employee.Email, code, s.otpTTL); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to store code", err)
	}

	firstName, _ := email.DeriveNameFromEmail(employee.Email)
	msg := email.Message{
		To:      employee.Email,
		Subject: "Your verification code",
		Body: fmt.Sprintf("Hi %s,\n\nYour verification code is %s. It expires in %d minutes.\n",
			firstName, code, int(s.otpTTL.Minutes())),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to send code", err)
	}
	return nil
}

// VerifyOTP consumes a code and, when it matches, issues an access token.
// The code is single-use.
func (s *Service) VerifyOTP(ctx context.Context, emailAddr, code string) (*LoginResult, error) {
	result, err := s.verifyOTP(ctx, emailAddr, code)
	s.recordAuth(ctx, audit.ActionOTPVerify, audit.ActionOTPVerify, emailAddr, err)
	return result, err
}

func (s *Service) verifyOTP(ctx context.Context, emailAddr, code string) (*LoginResult, error) {
	if emailAddr == "" || code == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "email and otp are required")
	}

	err := s.codes.Consume(ctx, emailAddr, code)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired code")
	}
	if errors.Is(err, sentinel.ErrExpired) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired code")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to verify code", err)
	}

	employee, err := s.roster.GetByEmail(ctx, emailAddr)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired code")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to look up employee", err)
	}

	return s.issueFor(employee)
}

func (s *Service) issueFor(employee *roster.Employee) (*LoginResult, error) {
	actor := domain.Actor{ID: employee.ID, Email: employee.Email, Role: employee.Role}
	signed, err := s.tokens.Issue(actor)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to issue token", err)
	}
	return &LoginResult{
		Token: signed,
		ID:    employee.ID,
		Email: employee.Email,
		Role:  employee.Role,
	}, nil
}

func (s *Service) recordAuth(ctx context.Context, successAction, failAction, emailAddr string, err error) {
	event := audit.Event{
		Action:       successAction,
		ResourceType: audit.ResourceAuth,
		ResourceID:   emailAddr,
		Status:       audit.StatusSuccess,
	}
	if err != nil {
		event.Action = failAction
		event.Status = audit.StatusFail
		event.Message = err.Error()
	}
	s.audit.Record(ctx, event)
}

// generateCode returns a uniformly random six-digit code with leading zeros
// preserved.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
