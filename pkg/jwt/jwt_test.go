package jwt

import (
	"testing"
	"time"

	"clinic-booking/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "secret", AccessExpiry: time.Hour})

	token, tokenID, err := svc.GenerateAccessToken(Principal{Role: "doctor", Username: "ivanov", DoctorID: 3})
	require.NoError(t, err)
	require.NotEmpty(t, tokenID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "doctor", claims.Role)
	assert.Equal(t, int64(3), claims.DoctorID)
	assert.Equal(t, tokenID, claims.TokenID)
	assert.Equal(t, "doctor:3", claims.Subject)
	assert.Equal(t, "doctor:3", claims.Principal().Subject())
}

func TestAdminSubject(t *testing.T) {
	assert.Equal(t, "admin:root", Principal{Role: "admin", Username: "root"}.Subject())
}

func TestValidateRejectsForeignAndExpiredTokens(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "secret", AccessExpiry: time.Hour})
	other := NewJWTService(config.JWTConfig{Secret: "other", AccessExpiry: time.Hour})

	token, _, err := other.GenerateAccessToken(Principal{Role: "admin", Username: "admin"})
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewJWTService(config.JWTConfig{Secret: "secret", AccessExpiry: -time.Minute})
	token, _, err = expired.GenerateAccessToken(Principal{Role: "admin", Username: "admin"})
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
