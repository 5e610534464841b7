package service

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"strconv"

	"vms/internal/apperr"
	"vms/internal/auth"
	"vms/internal/repository"

	"gorm.io/gorm"
)

// OTPService issues and verifies single-use numeric codes bound to a phone
// number. Delivery is out of scope: the code is surfaced on the operator
// console, never sent externally.
type OTPService interface {
	// RequestCode issues a code for any phone, registered or not. Used by the
	// signup flow, where the identity does not exist yet.
	RequestCode(ctx context.Context, phoneNumber string) error
	// RequestLoginCode issues a code only for a registered phone.
	RequestLoginCode(ctx context.Context, phoneNumber string) error
	// VerifyLogin consumes the code and mints a session for the identity's role.
	VerifyLogin(ctx context.Context, phoneNumber, code string) (*LoginResponse, error)
}

type otpService struct {
	otps   repository.OTPRepository
	users  repository.UserRepository
	issuer *auth.SessionIssuer
}

// NewOTPService returns a new instance of OTPService
func NewOTPService(otps repository.OTPRepository, users repository.UserRepository, issuer *auth.SessionIssuer) OTPService {
	return &otpService{otps: otps, users: users, issuer: issuer}
}

func generateCode() string {
	return strconv.Itoa(1000 + rand.IntN(9000))
}

func (s *otpService) RequestCode(ctx context.Context, phoneNumber string) error {
	if err := validatePhone(phoneNumber); err != nil {
		return err
	}

	code := generateCode()
	if err := s.otps.Upsert(ctx, phoneNumber, code); err != nil {
		return err
	}

	// Mock delivery: surface the code to the operator.
	log.Printf("DEBUG: OTP for %s is %s", phoneNumber, code)
	return nil
}

func (s *otpService) RequestLoginCode(ctx context.Context, phoneNumber string) error {
	if _, err := s.users.GetByPhone(ctx, phoneNumber); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrUserNotFound
		}
		return err
	}
	return s.RequestCode(ctx, phoneNumber)
}

func (s *otpService) VerifyLogin(ctx context.Context, phoneNumber, code string) (*LoginResponse, error) {
	entry, err := s.otps.GetByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// "no code issued" and "wrong code" answer identically.
			return nil, apperr.ErrInvalidOTP
		}
		return nil, err
	}
	if entry.Code != code {
		return nil, apperr.ErrInvalidOTP
	}

	user, err := s.users.GetByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, err
	}

	// Single use: the conditional delete commits before the session is
	// minted, so a concurrent verification of the same code loses here.
	consumed, err := s.otps.Consume(ctx, phoneNumber, code)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, apperr.ErrInvalidOTP
	}

	session, err := s.issuer.Issue(user.PhoneNumber, user.Role)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken: session.Token,
		TokenType:   "bearer",
		ExpiresAt:   session.ExpiresAt,
		UserID:      user.ID.String(),
		FullName:    user.FullName,
		Role:        user.Role,
	}, nil
}
