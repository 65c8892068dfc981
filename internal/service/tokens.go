package service

import (
	"fmt"
	"time"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "contratos-bfa"

// Claims are the access token claims. Sub is the user that owns drafts;
// OrgUnit is the managing unit the user acts for.
type Claims struct {
	Sub     string `json:"sub"`
	OrgUnit string `json:"orgUnit,omitempty"`
	Type    string `json:"type"`
	jwt.RegisteredClaims
}

// TokenVerifier validates HS256 access tokens issued by the identity service.
type TokenVerifier struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenVerifier creates a verifier for the shared secret. ttl is only
// used by Sign.
func NewTokenVerifier(secret string, ttl time.Duration) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), ttl: ttl}
}

// Verify parses and validates an access token.
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido ou expirado"}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido"}
	}
	if claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "Tipo de token inválido"}
	}
	if claims.Sub == "" {
		return nil, &domain.ErrUnauthorized{Message: "Token sem usuário"}
	}
	return claims, nil
}

// Sign issues an access token for subject. Used by tests and local tooling;
// production tokens come from the identity service.
func (v *TokenVerifier) Sign(subject, orgUnit string) (string, error) {
	now := time.Now()
	claims := Claims{
		Sub:     subject,
		OrgUnit: orgUnit,
		Type:    "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
			Issuer:    tokenIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
