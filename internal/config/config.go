package config

import (
	"os"
	"time"

	"vms/internal/model"
)

// Session durations per role. The visitor window is narrow,
// enough for a single check-in transaction, while staff get a full shift.
const (
	VisitorSessionDuration  = 5 * time.Minute
	EmployeeSessionDuration = 8 * time.Hour
	SecuritySessionDuration = 8 * time.Hour
	AdminSessionDuration    = 8 * time.Hour
	DefaultSessionDuration  = 15 * time.Minute
)

// Config is the process-wide immutable configuration, built once at startup
// and injected into the components that need it.
type Config struct {
	Port         string
	DatabaseDSN  string
	JWTSecret    []byte
	FaceImageDir string

	// DefaultStaffPassword is assigned to staff accounts created by an admin;
	// the account is flagged to force a reset on first login.
	DefaultStaffPassword string

	SessionDurations map[model.Role]time.Duration
}

// Load reads configuration from the environment, falling back to development
// defaults the same way the rest of the stack does.
func Load() *Config {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only, DO NOT use in production
	}

	faceDir := os.Getenv("FACE_IMAGE_DIR")
	if faceDir == "" {
		faceDir = "storage/faces"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		Port:                 port,
		DatabaseDSN:          databaseDSN(),
		JWTSecret:            []byte(secret),
		FaceImageDir:         faceDir,
		DefaultStaffPassword: "admin123",
		SessionDurations: map[model.Role]time.Duration{
			model.RoleVisitor:  VisitorSessionDuration,
			model.RoleEmployee: EmployeeSessionDuration,
			model.RoleSecurity: SecuritySessionDuration,
			model.RoleAdmin:    AdminSessionDuration,
		},
	}
}

// SessionDuration returns the session validity window for a role. Roles
// outside the known set get the short default window.
func (c *Config) SessionDuration(role model.Role) time.Duration {
	if d, ok := c.SessionDurations[role]; ok {
		return d
	}
	return DefaultSessionDuration
}

func databaseDSN() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}

	host := getenvDefault("DB_HOST", "localhost")
	port := getenvDefault("DB_PORT", "5432")
	user := getenvDefault("DB_USER", "postgres")
	password := getenvDefault("DB_PASSWORD", "postgres")
	name := getenvDefault("DB_NAME", "postgres")
	sslMode := getenvDefault("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + password + "@" + host + ":" + port + "/" + name + "?sslmode=" + sslMode
}

func getenvDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
