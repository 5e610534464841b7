package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"vms/internal/apperr"
	"vms/internal/auth"
	"vms/internal/facestore"
	"vms/internal/model"
	"vms/internal/repository"

	"gorm.io/gorm"
)

// --- DTOs ---

type CreateStaffRequest struct {
	FullName    string         `json:"full_name" binding:"required"`
	PhoneNumber string         `json:"phone_number" binding:"required"`
	Email       string         `json:"email" binding:"required,email"`
	Address     AddressPayload `json:"address" binding:"required"`
	Role        model.Role     `json:"role"`
	FaceImage   string         `json:"face_image,omitempty"`
}

type UpdateUserRequest struct {
	FullName    string          `json:"full_name,omitempty"`
	PhoneNumber string          `json:"phone_number,omitempty"`
	Email       string          `json:"email,omitempty"`
	Role        model.Role      `json:"role,omitempty"`
	Address     *AddressPayload `json:"address,omitempty"`
	FaceImage   string          `json:"face_image,omitempty"`
}

type UserSummary struct {
	ID            string `json:"id"`
	FullName      string `json:"full_name"`
	PhoneNumber   string `json:"phone_number"`
	Email         string `json:"email,omitempty"`
	Role          string `json:"role,omitempty"`
	FaceImagePath string `json:"face_image_path,omitempty"`
}

type SystemStats struct {
	TotalVisitors         int64 `json:"total_visitors"`
	TotalEmployees        int64 `json:"total_employees"`
	PendingAppointments   int64 `json:"pending_appointments"`
	CompletedAppointments int64 `json:"completed_appointments"`
	TotalAppointments     int64 `json:"total_appointments"`
}

// AdminService covers staff provisioning, directory listings, aggregate
// reporting and the appointment export.
type AdminService interface {
	// CreateStaff provisions an employee/security/admin account with the
	// default password and a forced reset on first login.
	CreateStaff(ctx context.Context, actorPhone string, req CreateStaffRequest) (*UserResponse, error)
	ListByRole(ctx context.Context, role model.Role) ([]UserSummary, error)
	ListAllStaff(ctx context.Context) ([]UserSummary, error)
	UpdateUser(ctx context.Context, actorPhone, id string, req UpdateUserRequest) (*UserResponse, error)
	Stats(ctx context.Context) (*SystemStats, error)
	// ExportAppointmentsCSV streams every appointment as CSV rows to w.
	ExportAppointmentsCSV(ctx context.Context, w io.Writer) error
	ListAuditLog(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error)
}

type adminService struct {
	users  repository.UserRepository
	appts  repository.AppointmentRepository
	audits repository.AuditRepository
	faces  facestore.Store
	txm    repository.TransactionManager

	defaultStaffPassword string
}

// NewAdminService returns a new instance of AdminService
func NewAdminService(
	users repository.UserRepository,
	appts repository.AppointmentRepository,
	audits repository.AuditRepository,
	faces facestore.Store,
	txm repository.TransactionManager,
	defaultStaffPassword string,
) AdminService {
	return &adminService{
		users:                users,
		appts:                appts,
		audits:               audits,
		faces:                faces,
		txm:                  txm,
		defaultStaffPassword: defaultStaffPassword,
	}
}

func (s *adminService) CreateStaff(ctx context.Context, actorPhone string, req CreateStaffRequest) (*UserResponse, error) {
	role := req.Role
	if role == "" {
		role = model.RoleEmployee
	}
	if !role.Valid() {
		return nil, apperr.ErrInvalidRole
	}
	if err := validatePhone(req.PhoneNumber); err != nil {
		return nil, err
	}
	if err := validateAddress(req.Address); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByPhone(ctx, req.PhoneNumber); err == nil {
		return nil, apperr.ErrPhoneRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperr.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(s.defaultStaffPassword)
	if err != nil {
		return nil, err
	}

	var facePath *string
	if req.FaceImage != "" {
		path, saveErr := s.faces.Save("staff", req.PhoneNumber, req.FaceImage)
		if saveErr != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidFaceImage, saveErr)
		}
		facePath = &path
	}

	email := req.Email
	user := &model.User{
		FullName:              req.FullName,
		PhoneNumber:           req.PhoneNumber,
		Email:                 &email,
		PasswordHash:          hash,
		Address:               toAddress(req.Address),
		Role:                  role,
		IsVerified:            true,
		PasswordResetRequired: true,
		FaceImagePath:         facePath,
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.Create(txCtx, user); err != nil {
			return fmt.Errorf("create staff user: %w", err)
		}
		details, _ := json.Marshal(map[string]interface{}{"role": role})
		return s.audits.Create(txCtx, &model.AuditLog{
			Subject:    actorPhone,
			Action:     model.ActionCreateStaff,
			EntityID:   user.ID.String(),
			EntityName: user.FullName,
			Details:    string(details),
		})
	})
	if err != nil {
		return nil, err
	}

	return toUserResponse(user), nil
}

func (s *adminService) ListByRole(ctx context.Context, role model.Role) ([]UserSummary, error) {
	if !role.Valid() {
		return nil, apperr.ErrInvalidRole
	}
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	return toSummaries(users, role != model.RoleVisitor), nil
}

func (s *adminService) ListAllStaff(ctx context.Context) ([]UserSummary, error) {
	users, err := s.users.ListStaff(ctx)
	if err != nil {
		return nil, err
	}
	return toSummaries(users, true), nil
}

func (s *adminService) UpdateUser(ctx context.Context, actorPhone, id string, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, err
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.PhoneNumber != "" && req.PhoneNumber != user.PhoneNumber {
		if err := validatePhone(req.PhoneNumber); err != nil {
			return nil, err
		}
		if _, err := s.users.GetByPhone(ctx, req.PhoneNumber); err == nil {
			return nil, apperr.ErrPhoneRegistered
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.PhoneNumber = req.PhoneNumber
	}
	if req.Email != "" {
		email := req.Email
		user.Email = &email
	}
	if req.Role != "" {
		if !req.Role.Valid() {
			return nil, apperr.ErrInvalidRole
		}
		user.Role = req.Role
	}
	if req.Address != nil {
		// Partial address update: only supplied fields overwrite.
		if req.Address.Street != "" {
			user.Address.Street = req.Address.Street
		}
		if req.Address.City != "" {
			user.Address.City = req.Address.City
		}
		if req.Address.State != "" {
			user.Address.State = req.Address.State
		}
		if req.Address.Pincode != "" {
			if !pincodeRegex.MatchString(req.Address.Pincode) {
				return nil, fmt.Errorf("%w: pincode must be exactly 6 digits", apperr.ErrValidation)
			}
			user.Address.Pincode = req.Address.Pincode
		}
	}
	if req.FaceImage != "" {
		path, saveErr := s.faces.Save("staff", user.PhoneNumber, req.FaceImage)
		if saveErr != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidFaceImage, saveErr)
		}
		user.FaceImagePath = &path
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.Update(txCtx, user); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		return s.audits.Create(txCtx, &model.AuditLog{
			Subject:    actorPhone,
			Action:     model.ActionUpdateUser,
			EntityID:   user.ID.String(),
			EntityName: user.FullName,
			Details:    "{}",
		})
	})
	if err != nil {
		return nil, err
	}

	return toUserResponse(user), nil
}

func (s *adminService) Stats(ctx context.Context) (*SystemStats, error) {
	stats := &SystemStats{}

	var err error
	if stats.TotalVisitors, err = s.users.CountByRole(ctx, model.RoleVisitor); err != nil {
		return nil, err
	}
	if stats.TotalEmployees, err = s.users.CountByRole(ctx, model.RoleEmployee); err != nil {
		return nil, err
	}
	if stats.PendingAppointments, err = s.appts.CountByStatus(ctx, model.StatusPending); err != nil {
		return nil, err
	}
	if stats.CompletedAppointments, err = s.appts.CountByStatus(ctx, model.StatusCompleted); err != nil {
		return nil, err
	}
	if stats.TotalAppointments, err = s.appts.CountAll(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *adminService) ExportAppointmentsCSV(ctx context.Context, w io.Writer) error {
	appts, err := s.appts.ListAll(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	header := []string{"ID", "Visitor ID", "Host Name", "Purpose", "Type", "Scheduled Time", "Duration (mins)", "Status", "Created At"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for i := range appts {
		a := &appts[i]
		visitorID := ""
		if a.VisitorID != nil {
			visitorID = a.VisitorID.String()
		}
		row := []string{
			a.ID.String(),
			visitorID,
			a.HostName,
			a.Purpose,
			string(a.Type),
			a.ScheduledTime.Format("2006-01-02 15:04:05"),
			strconv.Itoa(a.DurationMinutes),
			string(a.Status),
			a.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func (s *adminService) ListAuditLog(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.audits.List(ctx, limit, (page-1)*limit)
}

func toSummaries(users []model.User, includeStaffFields bool) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for i := range users {
		u := &users[i]
		summary := UserSummary{
			ID:          u.ID.String(),
			FullName:    u.FullName,
			PhoneNumber: u.PhoneNumber,
		}
		if u.Email != nil {
			summary.Email = *u.Email
		}
		if includeStaffFields {
			summary.Role = string(u.Role)
			if u.FaceImagePath != nil {
				summary.FaceImagePath = *u.FaceImagePath
			}
		}
		out = append(out, summary)
	}
	return out
}
