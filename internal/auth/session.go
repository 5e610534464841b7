package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vms/internal/config"
	"vms/internal/model"
)

// Session is a minted token with its absolute expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// SessionIssuer mints signed, self-contained session tokens. The expiry
// window is a pure function of role (see internal/config); there is no
// server-side session table.
type SessionIssuer struct {
	cfg *config.Config
}

// NewSessionIssuer returns a SessionIssuer signing with the configured secret.
func NewSessionIssuer(cfg *config.Config) *SessionIssuer {
	return &SessionIssuer{cfg: cfg}
}

// Issue mints a token asserting (subject, role) until the role's window ends.
// The subject is the user's phone number.
func (i *SessionIssuer) Issue(subject string, role model.Role) (Session, error) {
	expiresAt := time.Now().Add(i.cfg.SessionDuration(role))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": string(role),
		"exp":  jwt.NewNumericDate(expiresAt),
	})

	signed, err := token.SignedString(i.cfg.JWTSecret)
	if err != nil {
		return Session{}, err
	}

	return Session{Token: signed, ExpiresAt: expiresAt}, nil
}

// SessionClaims is what downstream request handling gets out of a token.
type SessionClaims struct {
	Subject string
	Role    model.Role
}

// Validate parses, verifies the signature, and rejects expired tokens with no
// grace period. jwt.Parse enforces exp for us.
func (i *SessionIssuer) Validate(tokenString string) (SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.cfg.JWTSecret, nil
	})
	if err != nil || !token.Valid {
		return SessionClaims{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return SessionClaims{}, errors.New("invalid token claims")
	}

	subject, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)

	return SessionClaims{Subject: subject, Role: model.Role(role)}, nil
}
