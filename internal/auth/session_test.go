package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vms/internal/config"
	"vms/internal/model"
)

func testConfig(secret string) *config.Config {
	return &config.Config{
		JWTSecret: []byte(secret),
		SessionDurations: map[model.Role]time.Duration{
			model.RoleVisitor:  config.VisitorSessionDuration,
			model.RoleEmployee: config.EmployeeSessionDuration,
			model.RoleSecurity: config.SecuritySessionDuration,
			model.RoleAdmin:    config.AdminSessionDuration,
		},
	}
}

func TestSessionIssuer_RoleWindows(t *testing.T) {
	issuer := NewSessionIssuer(testConfig("test-secret"))

	tests := []struct {
		role     model.Role
		duration time.Duration
	}{
		{model.RoleVisitor, 5 * time.Minute},
		{model.RoleEmployee, 8 * time.Hour},
		{model.RoleSecurity, 8 * time.Hour},
		{model.RoleAdmin, 8 * time.Hour},
		{model.Role("intern"), 15 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			before := time.Now()
			session, err := issuer.Issue("+919876543210", tt.role)
			require.NoError(t, err)

			assert.WithinDuration(t, before.Add(tt.duration), session.ExpiresAt, 2*time.Second)
		})
	}
}

func TestSessionIssuer_ClaimsRoundTrip(t *testing.T) {
	issuer := NewSessionIssuer(testConfig("test-secret"))

	session, err := issuer.Issue("+919876543210", model.RoleSecurity)
	require.NoError(t, err)

	claims, err := issuer.Validate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "+919876543210", claims.Subject)
	assert.Equal(t, model.RoleSecurity, claims.Role)
}

func TestSessionIssuer_RejectsWrongSecret(t *testing.T) {
	issuer := NewSessionIssuer(testConfig("test-secret"))
	other := NewSessionIssuer(testConfig("another-secret"))

	session, err := other.Issue("+919876543210", model.RoleAdmin)
	require.NoError(t, err)

	_, err = issuer.Validate(session.Token)
	assert.Error(t, err)
}

func TestSessionIssuer_RejectsTamperedRole(t *testing.T) {
	issuer := NewSessionIssuer(testConfig("test-secret"))

	session, err := issuer.Issue("+919876543210", model.RoleVisitor)
	require.NoError(t, err)

	// Re-sign the same claims with a different key, as a forger would.
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "+919876543210",
		"role": string(model.RoleAdmin),
		"exp":  jwt.NewNumericDate(session.ExpiresAt),
	})
	forgedToken, err := forged.SignedString([]byte("attacker-key"))
	require.NoError(t, err)

	_, err = issuer.Validate(forgedToken)
	assert.Error(t, err)
}

func TestSessionIssuer_RejectsExpiredToken(t *testing.T) {
	cfg := testConfig("test-secret")
	cfg.SessionDurations = map[model.Role]time.Duration{
		model.RoleVisitor: -time.Minute,
	}
	issuer := NewSessionIssuer(cfg)

	session, err := issuer.Issue("+919876543210", model.RoleVisitor)
	require.NoError(t, err)

	_, err = issuer.Validate(session.Token)
	assert.Error(t, err)
}
