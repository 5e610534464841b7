package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vms/internal/apperr"
	"vms/internal/model"
	"vms/internal/repository"

	"gorm.io/gorm"
)

// --- DTOs ---

type BookingRequest struct {
	HostName        string                `json:"host_name" binding:"required"`
	Purpose         string                `json:"purpose"`
	Type            model.AppointmentType `json:"appointment_type" binding:"required,oneof=walk_in pre_planned"`
	ScheduledTime   time.Time             `json:"scheduled_time" binding:"required"`
	DurationMinutes int                   `json:"duration_minutes"`
}

// StaffBookingRequest names an existing visitor by id or carries an inline
// enrollment for a brand-new one.
type StaffBookingRequest struct {
	BookingRequest
	VisitorID   string             `json:"visitor_id,omitempty"`
	VisitorInfo *VisitorEnrollment `json:"visitor_info,omitempty"`
}

type BlockScheduleRequest struct {
	Purpose         string    `json:"purpose"`
	ScheduledTime   time.Time `json:"scheduled_time" binding:"required"`
	DurationMinutes int       `json:"duration_minutes"`
}

type VisitorProfileResponse struct {
	Profile struct {
		FullName    string        `json:"full_name"`
		PhoneNumber string        `json:"phone_number"`
		Email       string        `json:"email,omitempty"`
		IsVerified  bool          `json:"is_verified"`
		Address     model.Address `json:"address"`
		Role        model.Role    `json:"role"`
	} `json:"profile"`
	AppointmentHistory []AppointmentResponse `json:"appointment_history"`
}

type IdentityCheckResponse struct {
	FullName   string `json:"full_name"`
	IsVerified bool   `json:"is_verified"`
	HasFaceID  bool   `json:"has_face_id"`
}

// GateNotifier receives lifecycle events for live security-console feeds.
// Nil-safe from the service's side: wiring it is optional.
type GateNotifier interface {
	Publish(payload []byte)
}

// AppointmentService drives the appointment state machine and its role-gated
// operations.
type AppointmentService interface {
	// CreateVisitorBooking books for the authenticated visitor; status pending.
	CreateVisitorBooking(ctx context.Context, visitorPhone string, req BookingRequest) (*AppointmentResponse, error)
	// CreateStaffBooking books on behalf of a visitor, provisioning the
	// identity when needed; status accepted (staff bookings are pre-approved).
	CreateStaffBooking(ctx context.Context, employeePhone string, req StaffBookingRequest) (*AppointmentResponse, error)
	// BlockSchedule reserves the employee's own time with no visitor attached.
	BlockSchedule(ctx context.Context, employeePhone string, req BlockScheduleRequest) (*AppointmentResponse, error)

	ListForVisitor(ctx context.Context, visitorPhone string) ([]AppointmentResponse, error)
	HostSchedule(ctx context.Context, hostName string) ([]AppointmentResponse, error)
	EmployeeSchedule(ctx context.Context, employeePhone string) ([]AppointmentResponse, error)
	DailyAppointments(ctx context.Context) ([]AppointmentResponse, error)
	RecentActivity(ctx context.Context) ([]AppointmentResponse, error)
	ListAll(ctx context.Context) ([]AppointmentResponse, error)

	// SetStatus overwrites the status with no prior-state guard. Check-in and
	// check-out are separate, guarded operations.
	SetStatus(ctx context.Context, actorPhone, id string, status model.AppointmentStatus) (*AppointmentResponse, error)
	SetDuration(ctx context.Context, id string, minutes int) (*AppointmentResponse, error)
	CheckIn(ctx context.Context, actorPhone, id string) error
	CheckOut(ctx context.Context, actorPhone, id string) error

	VisitorProfile(ctx context.Context, phoneNumber string) (*VisitorProfileResponse, error)
	VerifyIdentity(ctx context.Context, phoneNumber string) (*IdentityCheckResponse, error)
	SyncCalendar(ctx context.Context, employeePhone, calendarURL string) error
}

type appointmentService struct {
	appts    repository.AppointmentRepository
	users    repository.UserRepository
	audits   repository.AuditRepository
	resolver VisitorResolver
	txm      repository.TransactionManager
	notifier GateNotifier
}

// NewAppointmentService returns a new instance of AppointmentService.
// notifier may be nil.
func NewAppointmentService(
	appts repository.AppointmentRepository,
	users repository.UserRepository,
	audits repository.AuditRepository,
	resolver VisitorResolver,
	txm repository.TransactionManager,
	notifier GateNotifier,
) AppointmentService {
	return &appointmentService{
		appts:    appts,
		users:    users,
		audits:   audits,
		resolver: resolver,
		txm:      txm,
		notifier: notifier,
	}
}

// guardFutureSchedule normalizes the input to UTC and rejects times already
// in the past. Offset-aware and naive inputs compare in the same reference.
func guardFutureSchedule(scheduled time.Time) error {
	if scheduled.UTC().Before(time.Now().UTC()) {
		return apperr.ErrPastSchedule
	}
	return nil
}

func (s *appointmentService) lookupByPhone(ctx context.Context, phoneNumber string) (*model.User, error) {
	user, err := s.users.GetByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *appointmentService) CreateVisitorBooking(ctx context.Context, visitorPhone string, req BookingRequest) (*AppointmentResponse, error) {
	if err := guardFutureSchedule(req.ScheduledTime); err != nil {
		return nil, err
	}

	visitor, err := s.lookupByPhone(ctx, visitorPhone)
	if err != nil {
		return nil, err
	}

	appt := &model.Appointment{
		VisitorID:       &visitor.ID,
		Visitor:         visitor,
		HostName:        req.HostName,
		Purpose:         req.Purpose,
		Type:            req.Type,
		Status:          model.StatusPending,
		ScheduledTime:   req.ScheduledTime,
		DurationMinutes: durationOrDefault(req.DurationMinutes),
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.appts.Create(txCtx, appt); err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		return s.audit(txCtx, visitorPhone, model.ActionVisitorBooking, appt, nil)
	})
	if err != nil {
		return nil, err
	}

	return toAppointmentResponse(appt), nil
}

func (s *appointmentService) CreateStaffBooking(ctx context.Context, employeePhone string, req StaffBookingRequest) (*AppointmentResponse, error) {
	if err := guardFutureSchedule(req.ScheduledTime); err != nil {
		return nil, err
	}

	var appt *model.Appointment
	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		visitor, err := s.resolveBookingVisitor(txCtx, req)
		if err != nil {
			return err
		}

		appt = &model.Appointment{
			VisitorID:       &visitor.ID,
			Visitor:         visitor,
			HostName:        req.HostName,
			Purpose:         req.Purpose,
			Type:            req.Type,
			Status:          model.StatusAccepted, // staff bookings are pre-approved
			ScheduledTime:   req.ScheduledTime,
			DurationMinutes: durationOrDefault(req.DurationMinutes),
		}
		if err := s.appts.Create(txCtx, appt); err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		return s.audit(txCtx, employeePhone, model.ActionStaffBooking, appt, map[string]interface{}{
			"visitor_phone": visitor.PhoneNumber,
		})
	})
	if err != nil {
		return nil, err
	}

	return toAppointmentResponse(appt), nil
}

// resolveBookingVisitor turns the request's visitor reference into a concrete
// identity within the booking's transaction, so the appointment never points
// at a visitor row that was not committed.
func (s *appointmentService) resolveBookingVisitor(ctx context.Context, req StaffBookingRequest) (*model.User, error) {
	if req.VisitorID != "" {
		visitor, err := s.users.GetByID(ctx, req.VisitorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.ErrVisitorIdentificationRequired
			}
			return nil, err
		}
		return visitor, nil
	}
	return s.resolver.ResolveOrCreate(ctx, "", req.VisitorInfo)
}

func (s *appointmentService) BlockSchedule(ctx context.Context, employeePhone string, req BlockScheduleRequest) (*AppointmentResponse, error) {
	employee, err := s.lookupByPhone(ctx, employeePhone)
	if err != nil {
		return nil, err
	}

	purpose := req.Purpose
	if purpose == "" {
		purpose = model.BlockedSlotPurpose
	}

	// Blocks are exempt from the future-schedule guard: back-dating a block
	// is harmless and the original behavior allows it.
	appt := &model.Appointment{
		HostName:        employee.FullName,
		Purpose:         purpose,
		Type:            model.TypePrePlanned,
		Status:          model.StatusBlocked,
		ScheduledTime:   req.ScheduledTime,
		DurationMinutes: durationOrDefault(req.DurationMinutes),
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.appts.Create(txCtx, appt); err != nil {
			return fmt.Errorf("create blocked slot: %w", err)
		}
		return s.audit(txCtx, employeePhone, model.ActionBlockSchedule, appt, nil)
	})
	if err != nil {
		return nil, err
	}

	return toAppointmentResponse(appt), nil
}

func (s *appointmentService) ListForVisitor(ctx context.Context, visitorPhone string) ([]AppointmentResponse, error) {
	visitor, err := s.lookupByPhone(ctx, visitorPhone)
	if err != nil {
		return nil, err
	}
	appts, err := s.appts.ListByVisitor(ctx, visitor.ID)
	if err != nil {
		return nil, err
	}
	return toAppointmentResponses(appts), nil
}

func (s *appointmentService) HostSchedule(ctx context.Context, hostName string) ([]AppointmentResponse, error) {
	appts, err := s.appts.ListByHost(ctx, hostName, model.StatusCancelled, model.StatusRejected)
	if err != nil {
		return nil, err
	}
	return toAppointmentResponses(appts), nil
}

func (s *appointmentService) EmployeeSchedule(ctx context.Context, employeePhone string) ([]AppointmentResponse, error) {
	employee, err := s.lookupByPhone(ctx, employeePhone)
	if err != nil {
		return nil, err
	}
	// Host linkage is by display name, so duplicate names share a schedule.
	appts, err := s.appts.ListByHost(ctx, employee.FullName)
	if err != nil {
		return nil, err
	}
	return toAppointmentResponses(appts), nil
}

func (s *appointmentService) DailyAppointments(ctx context.Context) ([]AppointmentResponse, error) {
	appts, err := s.appts.ListByStatuses(ctx, []model.AppointmentStatus{
		model.StatusAccepted, model.StatusCheckedIn, model.StatusCompleted,
	})
	if err != nil {
		return nil, err
	}
	return toAppointmentResponses(appts), nil
}

func (s *appointmentService) RecentActivity(ctx context.Context) ([]AppointmentResponse, error) {
	appts, err := s.appts.ListRecent(ctx, []model.AppointmentStatus{
		model.StatusCheckedIn, model.StatusCompleted, model.StatusRejected,
	}, 10)
	if err != nil {
		return nil, err
	}
	return toAppointmentResponses(appts), nil
}

func (s *appointmentService) ListAll(ctx context.Context) ([]AppointmentResponse, error) {
	appts, err := s.appts.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toAppointmentResponses(appts), nil
}

func (s *appointmentService) SetStatus(ctx context.Context, actorPhone, id string, status model.AppointmentStatus) (*AppointmentResponse, error) {
	if !status.Valid() {
		return nil, apperr.ErrInvalidStatus
	}

	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.appts.SetStatus(txCtx, id, status); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrAppointmentNotFound
			}
			return err
		}
		return s.auditByID(txCtx, actorPhone, model.ActionUpdateStatus, id, map[string]interface{}{
			"status": status,
		})
	})
	if err != nil {
		return nil, err
	}

	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publishEvent("status_update", appt)
	return toAppointmentResponse(appt), nil
}

func (s *appointmentService) SetDuration(ctx context.Context, id string, minutes int) (*AppointmentResponse, error) {
	if minutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", apperr.ErrValidation)
	}

	if err := s.appts.SetDuration(ctx, id, minutes); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrAppointmentNotFound
		}
		return nil, err
	}

	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAppointmentResponse(appt), nil
}

// CheckIn moves accepted → checked_in. The conditional update makes exactly
// one of two concurrent check-ins win; the loser sees the guard failure.
func (s *appointmentService) CheckIn(ctx context.Context, actorPhone, id string) error {
	return s.transition(ctx, actorPhone, id,
		model.StatusAccepted, model.StatusCheckedIn, "check_in_time",
		model.ActionCheckIn, apperr.ErrNotAccepted)
}

// CheckOut moves checked_in → completed.
func (s *appointmentService) CheckOut(ctx context.Context, actorPhone, id string) error {
	return s.transition(ctx, actorPhone, id,
		model.StatusCheckedIn, model.StatusCompleted, "check_out_time",
		model.ActionCheckOut, apperr.ErrNotCheckedIn)
}

func (s *appointmentService) transition(
	ctx context.Context,
	actorPhone, id string,
	from, to model.AppointmentStatus,
	timestampColumn, action string,
	guardErr error,
) error {
	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		moved, err := s.appts.Transition(txCtx, id, from, to, timestampColumn, time.Now().UTC())
		if err != nil {
			return err
		}
		if !moved {
			if _, getErr := s.appts.GetByID(txCtx, id); getErr != nil {
				if errors.Is(getErr, gorm.ErrRecordNotFound) {
					return apperr.ErrAppointmentNotFound
				}
				return getErr
			}
			return guardErr
		}
		return s.auditByID(txCtx, actorPhone, action, id, nil)
	})
	if err != nil {
		return err
	}

	if appt, getErr := s.appts.GetByID(ctx, id); getErr == nil {
		s.publishEvent(string(to), appt)
	}
	return nil
}

func (s *appointmentService) VisitorProfile(ctx context.Context, phoneNumber string) (*VisitorProfileResponse, error) {
	user, err := s.lookupByPhone(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}

	history, err := s.appts.ListByVisitor(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	resp := &VisitorProfileResponse{AppointmentHistory: toAppointmentResponses(history)}
	resp.Profile.FullName = user.FullName
	resp.Profile.PhoneNumber = user.PhoneNumber
	resp.Profile.IsVerified = user.IsVerified
	resp.Profile.Address = user.Address
	resp.Profile.Role = user.Role
	if user.Email != nil {
		resp.Profile.Email = *user.Email
	}
	return resp, nil
}

func (s *appointmentService) VerifyIdentity(ctx context.Context, phoneNumber string) (*IdentityCheckResponse, error) {
	user, err := s.lookupByPhone(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}
	return &IdentityCheckResponse{
		FullName:   user.FullName,
		IsVerified: user.IsVerified,
		HasFaceID:  user.FaceImagePath != nil,
	}, nil
}

func (s *appointmentService) SyncCalendar(ctx context.Context, employeePhone, calendarURL string) error {
	employee, err := s.lookupByPhone(ctx, employeePhone)
	if err != nil {
		return err
	}

	employee.CalendarSynced = true
	if calendarURL != "" {
		employee.CalendarURL = &calendarURL
	}
	return s.users.Update(ctx, employee)
}

// --- helpers ---

func durationOrDefault(minutes int) int {
	if minutes <= 0 {
		return model.DefaultDurationMinutes
	}
	return minutes
}

func (s *appointmentService) audit(ctx context.Context, subject, action string, appt *model.Appointment, extra map[string]interface{}) error {
	details := map[string]interface{}{
		"host_name":      appt.HostName,
		"scheduled_time": appt.ScheduledTime,
	}
	for k, v := range extra {
		details[k] = v
	}
	payload, _ := json.Marshal(details)

	return s.audits.Create(ctx, &model.AuditLog{
		Subject:    subject,
		Action:     action,
		EntityID:   appt.ID.String(),
		EntityName: appt.HostName,
		Details:    string(payload),
	})
}

func (s *appointmentService) auditByID(ctx context.Context, subject, action, id string, extra map[string]interface{}) error {
	payload, _ := json.Marshal(extra)
	return s.audits.Create(ctx, &model.AuditLog{
		Subject:  subject,
		Action:   action,
		EntityID: id,
		Details:  string(payload),
	})
}

func (s *appointmentService) publishEvent(eventType string, appt *model.Appointment) {
	if s.notifier == nil {
		return
	}

	event := map[string]interface{}{
		"event":          eventType,
		"appointment_id": appt.ID.String(),
		"host_name":      appt.HostName,
		"status":         appt.Status,
		"at":             time.Now().UTC(),
	}
	if appt.Visitor != nil {
		event["visitor_name"] = appt.Visitor.FullName
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	s.notifier.Publish(payload)
}
