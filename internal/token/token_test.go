package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complyd/pkg/domain"
	dErrors "complyd/pkg/domain-errors"
)

func TestIssueAndValidate(t *testing.T) {
	svc := NewService("test-signing-key", "complyd", time.Hour)
	actor := domain.Actor{ID: "emp-1", Email: "pat@corp.example", Role: domain.RoleManager}

	signed, err := svc.Issue(actor)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	parsed, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, actor, parsed)
}

func TestValidateRejections(t *testing.T) {
	actor := domain.Actor{ID: "emp-1", Email: "pat@corp.example", Role: domain.RoleEmployee}

	t.Run("expired token", func(t *testing.T) {
		svc := NewService("test-signing-key", "complyd", -time.Minute)
		signed, err := svc.Issue(actor)
		require.NoError(t, err)

		_, err = svc.ValidateToken(signed)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("wrong signing key", func(t *testing.T) {
		issuer := NewService("key-one", "complyd", time.Hour)
		verifier := NewService("key-two", "complyd", time.Hour)

		signed, err := issuer.Issue(actor)
		require.NoError(t, err)

		_, err = verifier.ValidateToken(signed)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("garbage token", func(t *testing.T) {
		svc := NewService("test-signing-key", "complyd", time.Hour)
		_, err := svc.ValidateToken("not.a.token")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("unknown role in claims", func(t *testing.T) {
		svc := NewService("test-signing-key", "complyd", time.Hour)
		signed, err := svc.Issue(domain.Actor{ID: "emp-1", Email: "x@corp.example", Role: domain.Role("Owner")})
		require.NoError(t, err)

		_, err = svc.ValidateToken(signed)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
