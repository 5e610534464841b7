package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of identities the system knows about. Stored as
// plain text at the persistence edge, but code only ever deals in these
// constants.
type Role string

const (
	RoleVisitor  Role = "visitor"
	RoleEmployee Role = "employee"
	RoleSecurity Role = "security"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleVisitor, RoleEmployee, RoleSecurity, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether r is a password-authenticating role. Visitors
// authenticate via OTP or face, never password.
func (r Role) IsStaff() bool {
	return r == RoleEmployee || r == RoleSecurity || r == RoleAdmin
}

// Address is the structured postal address attached to every user.
// Persisted as a JSONB column rather than separate rows.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// User represents any person known to the system: visitors, employees,
// security staff and admins share one table, distinguished by Role.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FullName    string    `gorm:"type:varchar(255);index;not null" json:"full_name"`
	PhoneNumber string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone_number"`
	Email       *string   `gorm:"type:varchar(255);uniqueIndex" json:"email,omitempty"`
	// PasswordHash is set only for staff roles. Omitted from JSON entirely.
	PasswordHash string  `gorm:"type:varchar(255)" json:"-"`
	Address      Address `gorm:"serializer:json" json:"address"`
	Role         Role    `gorm:"type:varchar(20);not null;index;default:visitor" json:"role"`
	// IsVerified starts false for self-signups and true for staff-created or
	// staff-provisioned visitors.
	IsVerified            bool      `gorm:"default:false" json:"is_verified"`
	PasswordResetRequired bool      `gorm:"default:false" json:"password_reset_required"`
	FaceImagePath         *string   `gorm:"type:varchar(512)" json:"face_image_path,omitempty"`
	CalendarSynced        bool      `gorm:"default:false" json:"calendar_synced"`
	CalendarURL           *string   `gorm:"type:varchar(512)" json:"calendar_url,omitempty"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// OTPCode is the single outstanding one-time code for a phone number.
// Issuing a new code overwrites the previous row; verification deletes it.
type OTPCode struct {
	PhoneNumber string    `gorm:"type:varchar(20);primaryKey" json:"phone_number"`
	Code        string    `gorm:"type:varchar(8);not null" json:"code"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName keeps the short table name the original schema used.
func (OTPCode) TableName() string { return "otps" }
