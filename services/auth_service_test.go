package services

import (
	"testing"
	"time"

	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/apperr"
	"github.com/abdout/souq/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService(t *testing.T) {
	e := newEnv(t)
	svc := NewAuthService(e.users, "auth-secret", time.Hour)

	u, err := svc.Register("  Noor@Example.COM ", "pa55word", "Noor", "K", "0500")
	require.NoError(t, err)
	assert.Equal(t, "noor@example.com", u.Email)
	assert.Equal(t, entity.RoleUser, u.Role)
	assert.NotEqual(t, "pa55word", u.Password)

	_, err = svc.Register("noor@example.com", "x", "N", "K", "")
	requireKind(t, err, apperr.BadRequest)

	_, _, err = svc.Login("noor@example.com", "wrong")
	assert.True(t, IsInvalidCredentials(err))
	_, _, err = svc.Login("ghost@example.com", "pa55word")
	assert.True(t, IsInvalidCredentials(err))

	token, got, err := svc.Login("NOOR@example.com", "pa55word")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	claims, err := utils.ParseToken(token, "auth-secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Nil(t, claims.TenantID)

	_, err = svc.GetProfile(9999)
	requireKind(t, err, apperr.NotFound)
}
