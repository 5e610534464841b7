package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when no identity matches the lookup key.
	ErrUserNotFound = errors.New("user not found")
	// ErrAppointmentNotFound is returned when no appointment matches the id.
	ErrAppointmentNotFound = errors.New("appointment not found")
	// ErrInvalidOTP is returned for a missing or mismatched one-time code.
	// The two cases answer identically to resist enumeration.
	ErrInvalidOTP = errors.New("invalid OTP")
	// ErrInvalidCredentials is returned uniformly for any failed staff login,
	// whether the account is missing, not a staff role, or the password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials or unauthorized role")
	// ErrPhoneRegistered is returned when a signup reuses a known phone number.
	ErrPhoneRegistered = errors.New("phone number already registered")
	// ErrEmailRegistered is returned when a create reuses a known email.
	ErrEmailRegistered = errors.New("email already registered")
	// ErrFaceNotEnrolled is returned on face login when the account has no
	// stored face reference.
	ErrFaceNotEnrolled = errors.New("face identity not enrolled")
	// ErrFaceImageRequired is returned on face login with an empty payload.
	ErrFaceImageRequired = errors.New("face image capture required")
	// ErrInvalidFaceImage is returned when an inline face payload cannot be
	// decoded or persisted.
	ErrInvalidFaceImage = errors.New("invalid face image data")
	// ErrVisitorIdentificationRequired is returned when a staff booking names
	// no visitor and carries no enrollment payload to create one.
	ErrVisitorIdentificationRequired = errors.New("visitor identification required")
	// ErrPastSchedule rejects bookings whose scheduled time already passed.
	ErrPastSchedule = errors.New("appointments can only be booked for future dates")
	// ErrNotAccepted guards the check-in transition.
	ErrNotAccepted = errors.New("appointment must be accepted before check-in")
	// ErrNotCheckedIn guards the check-out transition.
	ErrNotCheckedIn = errors.New("visitor is not checked in")
	// ErrInvalidRole is returned when a request names a role outside the
	// closed enumeration.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidStatus is returned when a request names an unknown status.
	ErrInvalidStatus = errors.New("invalid appointment status")
	// ErrValidation covers malformed input (phone format, pincode, payloads).
	ErrValidation = errors.New("validation failed")
)

// StatusCode maps a domain error to its HTTP status. Unknown errors are
// treated as internal.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrAppointmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPhoneRegistered),
		errors.Is(err, ErrEmailRegistered):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidOTP),
		errors.Is(err, ErrFaceNotEnrolled),
		errors.Is(err, ErrFaceImageRequired),
		errors.Is(err, ErrInvalidFaceImage),
		errors.Is(err, ErrVisitorIdentificationRequired),
		errors.Is(err, ErrPastSchedule),
		errors.Is(err, ErrNotAccepted),
		errors.Is(err, ErrNotCheckedIn),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
