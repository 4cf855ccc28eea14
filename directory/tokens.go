package directory

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes. A token minted for one purpose never validates for
// another.
const (
	purposeEmailVerify   = "email_verify"
	purposePasswordReset = "password_reset"
)

var errTokenInvalid = errors.New("token invalid")

type purposeClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// tokenManager mints and checks HS256-signed single-purpose tokens bound to
// a user ID.
type tokenManager struct {
	secret []byte
	clock  func() time.Time
}

func newTokenManager(secret []byte, clock func() time.Time) *tokenManager {
	return &tokenManager{secret: secret, clock: clock}
}

func (m *tokenManager) mint(userID, purpose string, ttl time.Duration) (string, error) {
	now := m.clock()
	claims := purposeClaims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// check validates signature, expiry, and purpose, returning the bound user
// ID.
func (m *tokenManager) check(token, purpose string) (string, error) {
	var claims purposeClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errTokenInvalid
			}
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.clock),
	)
	if err != nil || !parsed.Valid {
		return "", errTokenInvalid
	}
	if claims.Purpose != purpose || claims.Subject == "" {
		return "", errTokenInvalid
	}
	return claims.Subject, nil
}
