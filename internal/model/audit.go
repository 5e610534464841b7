package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCheckIn        = "CHECK_IN"
	ActionCheckOut       = "CHECK_OUT"
	ActionUpdateStatus   = "UPDATE_STATUS"
	ActionCreateStaff    = "CREATE_STAFF"
	ActionUpdateUser     = "UPDATE_USER"
	ActionResetPassword  = "RESET_PASSWORD"
	ActionBlockSchedule  = "BLOCK_SCHEDULE"
	ActionStaffBooking   = "STAFF_BOOKING"
	ActionVisitorBooking = "VISITOR_BOOKING"
)

// AuditLog records who did what at the gate and in the admin console. Rows
// are written in the same transaction as the change they describe.
type AuditLog struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	// Subject is the phone number from the session claim; kept as text so
	// entries survive even if the user row is later amended.
	Subject    string    `gorm:"type:varchar(20);index" json:"subject"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string    `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
