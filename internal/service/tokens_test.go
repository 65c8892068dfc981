package service_test

import (
	"testing"
	"time"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenVerifier_RoundTrip(t *testing.T) {
	v := service.NewTokenVerifier("secret", time.Minute)

	token, err := v.Sign("user-1", "SMS-01")
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Sub)
	assert.Equal(t, "SMS-01", claims.OrgUnit)
}

func TestTokenVerifier_Rejects(t *testing.T) {
	v := service.NewTokenVerifier("secret", time.Minute)
	other := service.NewTokenVerifier("another-secret", time.Minute)
	expired := service.NewTokenVerifier("secret", -time.Minute)

	foreign, err := other.Sign("user-1", "")
	require.NoError(t, err)
	old, err := expired.Sign("user-1", "")
	require.NoError(t, err)
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, service.Claims{
		Sub:  "user-1",
		Type: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "contratos-bfa",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":       "not-a-token",
		"wrong secret":  foreign,
		"expired":       old,
		"refresh token": refresh,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(token)
			var unauthorized *domain.ErrUnauthorized
			assert.ErrorAs(t, err, &unauthorized)
		})
	}
}
