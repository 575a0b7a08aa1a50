// Package auth validates caller identity tokens.
//
// Token issuance belongs to the external identity provider; this package
// only parses HS256 tokens and extracts the caller principal. GenerateToken
// exists for internal callers (the completion detector path) and tests.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/contenthub/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// ScopeInternal marks privileged service-to-service callers that may
// mutate records they do not own.
const ScopeInternal = "internal"

// Caller is the authenticated principal attached to a request.
type Caller struct {
	UserID string
	Scope  string
}

// IsInternal reports whether the caller holds the internal scope.
func (c Caller) IsInternal() bool {
	return c.Scope == ScopeInternal
}

// InternalCaller is the principal used by in-process components.
func InternalCaller() Caller {
	return Caller{Scope: ScopeInternal}
}

// Claims carries the registered claims plus the caller identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Scope  string `json:"scope,omitempty"`
}

func GenerateToken(userID, scope string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
		Scope:  scope,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates tokenString and returns the caller principal.
// Expired tokens map to common.ErrTokenExpired, everything else invalid
// maps to common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (Caller, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Caller{}, common.ErrTokenExpired
		}
		return Caller{}, common.ErrInvalidToken
	}

	if !token.Valid {
		return Caller{}, common.ErrInvalidToken
	}

	return Caller{UserID: claims.UserID, Scope: claims.Scope}, nil
}
