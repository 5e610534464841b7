package service

import (
	"fmt"
	"regexp"
	"time"

	"vms/internal/apperr"
	"vms/internal/model"
)

// --- Shared request/response DTOs ---

type AddressPayload struct {
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	Pincode string `json:"pincode" binding:"required"`
}

type UserResponse struct {
	ID                    string        `json:"id"`
	FullName              string        `json:"full_name"`
	PhoneNumber           string        `json:"phone_number"`
	Email                 string        `json:"email,omitempty"`
	Address               model.Address `json:"address"`
	Role                  model.Role    `json:"role"`
	IsVerified            bool          `json:"is_verified"`
	PasswordResetRequired bool          `json:"password_reset_required"`
	FaceImagePath         string        `json:"face_image_path,omitempty"`
	CalendarSynced        bool          `json:"calendar_synced"`
	CalendarURL           string        `json:"calendar_url,omitempty"`
	CreatedAt             string        `json:"created_at"`
}

// LoginResponse carries the minted session plus the display fields every
// login surface shows.
type LoginResponse struct {
	AccessToken           string     `json:"access_token"`
	TokenType             string     `json:"token_type"`
	ExpiresAt             time.Time  `json:"expires_at"`
	UserID                string     `json:"user_id"`
	FullName              string     `json:"full_name"`
	Role                  model.Role `json:"role"`
	PasswordResetRequired bool       `json:"password_reset_required"`
}

// AppointmentResponse is the read-side shape of an appointment, enriched with
// the linked visitor's display name and phone when one is attached. Blocked
// slots surface those fields as absent.
type AppointmentResponse struct {
	ID              string                  `json:"id"`
	VisitorID       string                  `json:"visitor_id,omitempty"`
	VisitorName     string                  `json:"visitor_name,omitempty"`
	VisitorPhone    string                  `json:"visitor_phone,omitempty"`
	HostName        string                  `json:"host_name"`
	Purpose         string                  `json:"purpose"`
	Type            model.AppointmentType   `json:"appointment_type"`
	Status          model.AppointmentStatus `json:"status"`
	ScheduledTime   time.Time               `json:"scheduled_time"`
	DurationMinutes int                     `json:"duration_minutes"`
	CreatedAt       time.Time               `json:"created_at"`
	CheckInTime     *time.Time              `json:"check_in_time,omitempty"`
	CheckOutTime    *time.Time              `json:"check_out_time,omitempty"`
}

// --- Mapping helpers ---

func toUserResponse(u *model.User) *UserResponse {
	resp := &UserResponse{
		ID:                    u.ID.String(),
		FullName:              u.FullName,
		PhoneNumber:           u.PhoneNumber,
		Address:               u.Address,
		Role:                  u.Role,
		IsVerified:            u.IsVerified,
		PasswordResetRequired: u.PasswordResetRequired,
		CalendarSynced:        u.CalendarSynced,
		CreatedAt:             u.CreatedAt.Format(time.RFC3339),
	}
	if u.Email != nil {
		resp.Email = *u.Email
	}
	if u.FaceImagePath != nil {
		resp.FaceImagePath = *u.FaceImagePath
	}
	if u.CalendarURL != nil {
		resp.CalendarURL = *u.CalendarURL
	}
	return resp
}

func toAppointmentResponse(a *model.Appointment) *AppointmentResponse {
	resp := &AppointmentResponse{
		ID:              a.ID.String(),
		HostName:        a.HostName,
		Purpose:         a.Purpose,
		Type:            a.Type,
		Status:          a.Status,
		ScheduledTime:   a.ScheduledTime,
		DurationMinutes: a.DurationMinutes,
		CreatedAt:       a.CreatedAt,
		CheckInTime:     a.CheckInTime,
		CheckOutTime:    a.CheckOutTime,
	}
	if a.VisitorID != nil {
		resp.VisitorID = a.VisitorID.String()
	}
	if a.Visitor != nil {
		resp.VisitorName = a.Visitor.FullName
		resp.VisitorPhone = a.Visitor.PhoneNumber
	}
	return resp
}

func toAppointmentResponses(appts []model.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, *toAppointmentResponse(&appts[i]))
	}
	return out
}

// --- Field validation ---

var (
	phoneRegex   = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)
	pincodeRegex = regexp.MustCompile(`^\d{6}$`)
)

func validatePhone(phoneNumber string) error {
	if !phoneRegex.MatchString(phoneNumber) {
		return fmt.Errorf("%w: phone number must be E.164 (e.g., +919876543210)", apperr.ErrValidation)
	}
	return nil
}

func validateAddress(addr AddressPayload) error {
	if !pincodeRegex.MatchString(addr.Pincode) {
		return fmt.Errorf("%w: pincode must be exactly 6 digits", apperr.ErrValidation)
	}
	return nil
}

func toAddress(addr AddressPayload) model.Address {
	return model.Address{
		Street:  addr.Street,
		City:    addr.City,
		State:   addr.State,
		Pincode: addr.Pincode,
	}
}
