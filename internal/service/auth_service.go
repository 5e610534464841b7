package service

import (
	"context"
	"errors"

	"vms/internal/apperr"
	"vms/internal/auth"
	"vms/internal/repository"

	"gorm.io/gorm"
)

// --- DTOs ---

type StaffLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type FaceLoginRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	FaceImage   string `json:"face_image"`
}

type PasswordResetRequest struct {
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// AuthService covers the non-OTP authentication surfaces: visitor signup,
// staff password login, face login, and password reset.
type AuthService interface {
	Signup(ctx context.Context, enrollment VisitorEnrollment) (*UserResponse, error)
	StaffLogin(ctx context.Context, req StaffLoginRequest) (*LoginResponse, error)
	FaceLogin(ctx context.Context, req FaceLoginRequest) (*LoginResponse, error)
	ResetPassword(ctx context.Context, req PasswordResetRequest) error
}

type authService struct {
	users    repository.UserRepository
	resolver VisitorResolver
	matcher  FaceMatcher
	issuer   *auth.SessionIssuer
}

// NewAuthService returns a new instance of AuthService
func NewAuthService(users repository.UserRepository, resolver VisitorResolver, matcher FaceMatcher, issuer *auth.SessionIssuer) AuthService {
	return &authService{users: users, resolver: resolver, matcher: matcher, issuer: issuer}
}

func (s *authService) Signup(ctx context.Context, enrollment VisitorEnrollment) (*UserResponse, error) {
	visitor, err := s.resolver.CreateVisitor(ctx, enrollment)
	if err != nil {
		return nil, err
	}
	return toUserResponse(visitor), nil
}

// StaffLogin authenticates a password-bearing staff account. Unknown email,
// non-staff role and wrong password all answer identically so the response
// never reveals which check tripped.
func (s *authService) StaffLogin(ctx context.Context, req StaffLoginRequest) (*LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.Role.IsStaff() || user.PasswordHash == "" {
		return nil, apperr.ErrInvalidCredentials
	}
	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, apperr.ErrInvalidCredentials
	}

	session, err := s.issuer.Issue(user.PhoneNumber, user.Role)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken:           session.Token,
		TokenType:             "bearer",
		ExpiresAt:             session.ExpiresAt,
		UserID:                user.ID.String(),
		FullName:              user.FullName,
		Role:                  user.Role,
		PasswordResetRequired: user.PasswordResetRequired,
	}, nil
}

func (s *authService) FaceLogin(ctx context.Context, req FaceLoginRequest) (*LoginResponse, error) {
	user, err := s.users.GetByPhone(ctx, req.PhoneNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, err
	}

	if user.FaceImagePath == nil {
		return nil, apperr.ErrFaceNotEnrolled
	}
	if req.FaceImage == "" {
		return nil, apperr.ErrFaceImageRequired
	}

	matched, err := s.matcher.Match(*user.FaceImagePath, req.FaceImage)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, apperr.ErrInvalidCredentials
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

func (s *authService) ResetPassword(ctx context.Context, req PasswordResetRequest) error {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrUserNotFound
		}
		return err
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.PasswordResetRequired = false
	return s.users.Update(ctx, user)
}
