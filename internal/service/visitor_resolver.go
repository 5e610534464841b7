package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"vms/internal/apperr"
	"vms/internal/facestore"
	"vms/internal/model"
	"vms/internal/repository"

	"gorm.io/gorm"
)

// VisitorEnrollment is the inline identity payload accompanying a signup or
// a staff booking for a visitor the system has never seen.
type VisitorEnrollment struct {
	FullName    string         `json:"full_name" binding:"required"`
	PhoneNumber string         `json:"phone_number" binding:"required"`
	Email       string         `json:"email,omitempty"`
	Address     AddressPayload `json:"address" binding:"required"`
	// FaceImage is an optional browser data URL.
	FaceImage string `json:"face_image,omitempty"`
}

// VisitorResolver owns visitor identity provisioning. Self-signup is
// create-only; staff booking is find-or-create. The two paths also differ in
// the verified flag and in how a face-storage failure is treated.
type VisitorResolver interface {
	// ResolveOrCreate returns the visitor registered under phoneNumber,
	// provisioning one from enrollment when absent. A missing enrollment for
	// an unknown phone fails; a face-storage failure does not (the face
	// reference is best-effort on this path, the identity is not).
	ResolveOrCreate(ctx context.Context, phoneNumber string, enrollment *VisitorEnrollment) (*model.User, error)
	// CreateVisitor provisions an unverified visitor for self-signup. Fails
	// if the phone is already registered; a face-storage failure is fatal.
	CreateVisitor(ctx context.Context, enrollment VisitorEnrollment) (*model.User, error)
}

type visitorResolver struct {
	users repository.UserRepository
	faces facestore.Store
}

// NewVisitorResolver returns a new instance of VisitorResolver
func NewVisitorResolver(users repository.UserRepository, faces facestore.Store) VisitorResolver {
	return &visitorResolver{users: users, faces: faces}
}

func (r *visitorResolver) ResolveOrCreate(ctx context.Context, phoneNumber string, enrollment *VisitorEnrollment) (*model.User, error) {
	if phoneNumber == "" && enrollment != nil {
		phoneNumber = enrollment.PhoneNumber
	}

	existing, err := r.users.GetByPhone(ctx, phoneNumber)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if enrollment == nil {
		return nil, apperr.ErrVisitorIdentificationRequired
	}
	if err := r.validateEnrollment(*enrollment); err != nil {
		return nil, err
	}

	var facePath *string
	if enrollment.FaceImage != "" {
		path, saveErr := r.faces.Save("visitor", enrollment.PhoneNumber, enrollment.FaceImage)
		if saveErr != nil {
			// Booking proceeds without the face reference.
			log.Printf("Error saving visitor face image: %v", saveErr)
		} else {
			facePath = &path
		}
	}

	visitor := r.newVisitor(*enrollment, facePath)
	visitor.IsVerified = true // provisioned by staff
	if err := r.users.Create(ctx, visitor); err != nil {
		return nil, fmt.Errorf("create visitor: %w", err)
	}
	return visitor, nil
}

func (r *visitorResolver) CreateVisitor(ctx context.Context, enrollment VisitorEnrollment) (*model.User, error) {
	if err := r.validateEnrollment(enrollment); err != nil {
		return nil, err
	}

	if _, err := r.users.GetByPhone(ctx, enrollment.PhoneNumber); err == nil {
		return nil, apperr.ErrPhoneRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var facePath *string
	if enrollment.FaceImage != "" {
		path, saveErr := r.faces.Save("", enrollment.PhoneNumber, enrollment.FaceImage)
		if saveErr != nil {
			// Signup promises a complete, verifiable profile; abort.
			return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidFaceImage, saveErr)
		}
		facePath = &path
	}

	visitor := r.newVisitor(enrollment, facePath)
	if err := r.users.Create(ctx, visitor); err != nil {
		return nil, fmt.Errorf("create visitor: %w", err)
	}
	return visitor, nil
}

func (r *visitorResolver) validateEnrollment(enrollment VisitorEnrollment) error {
	if err := validatePhone(enrollment.PhoneNumber); err != nil {
		return err
	}
	return validateAddress(enrollment.Address)
}

func (r *visitorResolver) newVisitor(enrollment VisitorEnrollment, facePath *string) *model.User {
	visitor := &model.User{
		FullName:      enrollment.FullName,
		PhoneNumber:   enrollment.PhoneNumber,
		Address:       toAddress(enrollment.Address),
		Role:          model.RoleVisitor,
		FaceImagePath: facePath,
	}
	if enrollment.Email != "" {
		visitor.Email = &enrollment.Email
	}
	return visitor
}
