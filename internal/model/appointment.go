package model

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentType distinguishes walk-ins from pre-planned visits.
type AppointmentType string

const (
	TypeWalkIn     AppointmentType = "walk_in"
	TypePrePlanned AppointmentType = "pre_planned"
)

// AppointmentStatus is the appointment state machine's vocabulary.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusAccepted  AppointmentStatus = "accepted"
	StatusRejected  AppointmentStatus = "rejected"
	StatusCheckedIn AppointmentStatus = "checked_in"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusBlocked   AppointmentStatus = "blocked"
)

// Valid reports whether s is a known appointment status.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusCheckedIn,
		StatusCompleted, StatusCancelled, StatusBlocked:
		return true
	}
	return false
}

// DefaultDurationMinutes is applied when a booking omits a duration.
const DefaultDurationMinutes = 60

// BlockedSlotPurpose is the synthetic purpose for employee schedule blocks.
const BlockedSlotPurpose = "Blocked Slot"

// Appointment is a scheduled or walk-in visit. VisitorID is nil only for
// blocked slots, which represent unavailable time with no visitor attached.
// HostName is free text, not a foreign key; host schedule lookups are a
// name match.
type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VisitorID       *uuid.UUID        `gorm:"type:uuid;index" json:"visitor_id,omitempty"`
	Visitor         *User             `gorm:"foreignKey:VisitorID" json:"-"`
	HostName        string            `gorm:"type:varchar(255);index;not null" json:"host_name"`
	Purpose         string            `gorm:"type:varchar(512)" json:"purpose"`
	Type            AppointmentType   `gorm:"type:varchar(20);not null;default:pre_planned" json:"appointment_type"`
	Status          AppointmentStatus `gorm:"type:varchar(20);not null;index;default:pending" json:"status"`
	ScheduledTime   time.Time         `gorm:"not null" json:"scheduled_time"`
	DurationMinutes int               `gorm:"not null;default:60" json:"duration_minutes"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	CheckInTime     *time.Time        `json:"check_in_time,omitempty"`
	CheckOutTime    *time.Time        `json:"check_out_time,omitempty"`
}
