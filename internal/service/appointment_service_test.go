package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"vms/internal/apperr"
	"vms/internal/model"
)

func newAppointmentService(
	appts *MockAppointmentRepository,
	users *MockUserRepository,
	audits *MockAuditRepository,
	resolver *MockVisitorResolver,
	notifier GateNotifier,
) AppointmentService {
	return NewAppointmentService(appts, users, audits, resolver, stubTxManager{}, notifier)
}

func TestAppointmentService_CreateVisitorBooking(t *testing.T) {
	visitor := &model.User{ID: uuid.New(), FullName: "Asha Rao", PhoneNumber: "+919876543210", Role: model.RoleVisitor}
	future := time.Now().Add(24 * time.Hour)

	t.Run("books a pending appointment with the default duration", func(t *testing.T) {
		mockAppts := new(MockAppointmentRepository)
		mockUsers := new(MockUserRepository)
		mockAudits := new(MockAuditRepository)
		mockUsers.On("GetByPhone", mock.Anything, visitor.PhoneNumber).Return(visitor, nil)
		mockAppts.On("Create", mock.Anything, mock.MatchedBy(func(a *model.Appointment) bool {
			return a.Status == model.StatusPending &&
				a.DurationMinutes == model.DefaultDurationMinutes &&
				a.VisitorID != nil && *a.VisitorID == visitor.ID
		})).Return(nil)
		mockAudits.On("Create", mock.Anything, mock.MatchedBy(func(e *model.AuditLog) bool {
			return e.Action == model.ActionVisitorBooking && e.Subject == visitor.PhoneNumber
		})).Return(nil)

		svc := newAppointmentService(mockAppts, mockUsers, mockAudits, new(MockVisitorResolver), nil)
		resp, err := svc.CreateVisitorBooking(context.Background(), visitor.PhoneNumber, BookingRequest{
			HostName:      "Ravi Kumar",
			Purpose:       "Interview",
			Type:          model.TypePrePlanned,
			ScheduledTime: future,
		})

		assert.NoError(t, err)
		assert.Equal(t, model.StatusPending, resp.Status)
		assert.Equal(t, "Asha Rao", resp.VisitorName)
		assert.Equal(t, visitor.PhoneNumber, resp.VisitorPhone)
		mockAppts.AssertExpectations(t)
		mockAudits.AssertExpectations(t)
	})

	t.Run("rejects a past schedule", func(t *testing.T) {
		mockAppts := new(MockAppointmentRepository)
		svc := newAppointmentService(mockAppts, new(MockUserRepository), new(MockAuditRepository), new(MockVisitorResolver), nil)

		_, err := svc.CreateVisitorBooking(context.Background(), visitor.PhoneNumber, BookingRequest{
			HostName:      "Ravi Kumar",
			Type:          model.TypePrePlanned,
			ScheduledTime: time.Now().Add(-time.Hour),
		})

		assert.ErrorIs(t, err, apperr.ErrPastSchedule)
		mockAppts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown visitor phone", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("GetByPhone", mock.Anything, "+911111111111").Return(nil, gorm.ErrRecordNotFound)

		svc := newAppointmentService(new(MockAppointmentRepository), mockUsers, new(MockAuditRepository), new(MockVisitorResolver), nil)
		_, err := svc.CreateVisitorBooking(context.Background(), "+911111111111", BookingRequest{
			HostName:      "Ravi Kumar",
			Type:          model.TypeWalkIn,
			ScheduledTime: future,
		})

		assert.ErrorIs(t, err, apperr.ErrUserNotFound)
	})
}

func TestAppointmentService_CreateStaffBooking(t *testing.T) {
	visitor := &model.User{ID: uuid.New(), FullName: "Asha Rao", PhoneNumber: "+919876543210", Role: model.RoleVisitor}
	future := time.Now().Add(24 * time.Hour)

	t.Run("staff bookings start accepted", func(t *testing.T) {
		mockAppts := new(MockAppointmentRepository)
		mockAudits := new(MockAuditRepository)
		mockResolver := new(MockVisitorResolver)
		mockResolver.On("ResolveOrCreate", mock.Anything, "", mock.AnythingOfType("*service.VisitorEnrollment")).Return(visitor, nil)
		mockAppts.On("Create", mock.Anything, mock.MatchedBy(func(a *model.Appointment) bool {
			return a.Status == model.StatusAccepted
		})).Return(nil)
		mockAudits.On("Create", mock.Anything, mock.MatchedBy(func(e *model.AuditLog) bool {
			return e.Action == model.ActionStaffBooking
		})).Return(nil)

		svc := newAppointmentService(mockAppts, new(MockUserRepository), mockAudits, mockResolver, nil)
		enrollment := sampleEnrollment()
		resp, err := svc.CreateStaffBooking(context.Background(), "+919812345678", StaffBookingRequest{
			BookingRequest: BookingRequest{HostName: "Ravi Kumar", Type: model.TypeWalkIn, ScheduledTime: future},
			VisitorInfo:    &enrollment,
		})

		assert.NoError(t, err)
		assert.Equal(t, model.StatusAccepted, resp.Status)
		mockResolver.AssertExpectations(t)
		mockAppts.AssertExpectations(t)
	})

	t.Run("dangling visitor id", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("GetByID", mock.Anything, "missing-id").Return(nil, gorm.ErrRecordNotFound)

		svc := newAppointmentService(new(MockAppointmentRepository), mockUsers, new(MockAuditRepository), new(MockVisitorResolver), nil)
		_, err := svc.CreateStaffBooking(context.Background(), "+919812345678", StaffBookingRequest{
			BookingRequest: BookingRequest{HostName: "Ravi Kumar", Type: model.TypeWalkIn, ScheduledTime: future},
			VisitorID:      "missing-id",
		})

		assert.ErrorIs(t, err, apperr.ErrVisitorIdentificationRequired)
	})

	t.Run("booking the same phone twice reuses one identity", func(t *testing.T) {
		mockAppts := new(MockAppointmentRepository)
		mockAudits := new(MockAuditRepository)
		mockResolver := new(MockVisitorResolver)
		mockResolver.On("ResolveOrCreate", mock.Anything, "", mock.Anything).Return(visitor, nil).Twice()
		mockAppts.On("Create", mock.Anything, mock.MatchedBy(func(a *model.Appointment) bool {
			return a.VisitorID != nil && *a.VisitorID == visitor.ID
		})).Return(nil).Twice()
		mockAudits.On("Create", mock.Anything, mock.Anything).Return(nil).Twice()

		svc := newAppointmentService(mockAppts, new(MockUserRepository), mockAudits, mockResolver, nil)
		enrollment := sampleEnrollment()
		req := StaffBookingRequest{
			BookingRequest: BookingRequest{HostName: "Ravi Kumar", Type: model.TypeWalkIn, ScheduledTime: future},
			VisitorInfo:    &enrollment,
		}
		_, err1 := svc.CreateStaffBooking(context.Background(), "+919812345678", req)
		_, err2 := svc.CreateStaffBooking(context.Background(), "+919812345678", req)

		assert.NoError(t, err1)
		assert.NoError(t, err2)
		mockAppts.AssertExpectations(t)
	})
}

func TestAppointmentService_BlockSchedule(t *testing.T) {
	employee := &model.User{ID: uuid.New(), FullName: "Ravi Kumar", PhoneNumber: "+919812345678", Role: model.RoleEmployee}

	mockAppts := new(MockAppointmentRepository)
	mockUsers := new(MockUserRepository)
	mockAudits := new(MockAuditRepository)
	mockUsers.On("GetByPhone", mock.Anything, employee.PhoneNumber).Return(employee, nil)
	mockAppts.On("Create", mock.Anything, mock.MatchedBy(func(a *model.Appointment) bool {
		return a.Status == model.StatusBlocked &&
			a.VisitorID == nil &&
			a.HostName == employee.FullName &&
			a.Purpose == model.BlockedSlotPurpose &&
			a.DurationMinutes == model.DefaultDurationMinutes
	})).Return(nil)
	mockAudits.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newAppointmentService(mockAppts, mockUsers, mockAudits, new(MockVisitorResolver), nil)
	// A block in the past is allowed.
	resp, err := svc.BlockSchedule(context.Background(), employee.PhoneNumber, BlockScheduleRequest{
		ScheduledTime: time.Now().Add(-2 * time.Hour),
	})

	assert.NoError(t, err)
	assert.Equal(t, model.StatusBlocked, resp.Status)
	assert.Empty(t, resp.VisitorID)
	mockAppts.AssertExpectations(t)
}

func TestAppointmentService_CheckIn(t *testing.T) {
	id := uuid.New()
	stored := &model.Appointment{ID: id, HostName: "Ravi Kumar", Status: model.StatusCheckedIn}

	t.Run("accepted appointment checks in once", func(t *testing.T) {
		mockAppts := new(MockAppointmentRepository)
		mockAudits := new(MockAuditRepository)
		notifier := &recordingNotifier{}
		mockAppts.On("Transition", mock.Anything, id.String(), model.StatusAccepted, model.StatusCheckedIn,
			"check_in_time", mock.AnythingOfType("time.Time")).Return(true, nil)
		mockAudits.On("Create", mock.Anything, mock.MatchedBy(func(e *model.AuditLog) bool {
			return e.Action == model.ActionCheckIn && e.EntityID == id.String()
		})).Return(nil)
		mockAppts.On("GetByID", mock.Anything, id.String()).Return(stored, nil)

		svc := newAppointmentService(mockAppts, new(MockUserRepository), mockAudits, new(MockVisitorResolver), notifier)
		err := svc.CheckIn(context.Background(), "+919800000000", id.String())

		assert.NoError(t, err)
		assert.Len(t, notifier.payloads, 1)
		var event map[string]interface{}
		assert.NoError(t, json.Unmarshal(notifier.payloads[0], &event))
		assert.Equal(t, string(model.StatusCheckedIn), event["event"])
		mockAppts.AssertExpectations(t)
		mockAudits.AssertExpectations(t)
	})

	t.Run("second check-in loses the guard", func(t *testing.T) {
		mockAppts := new(MockAppointmentRepository)
		mockAppts.On("Transition", mock.Anything, id.String(), model.StatusAccepted, model.StatusCheckedIn,
			"check_in_time", mock.AnythingOfType("time.Time")).Return(false, nil)
		mockAppts.On("GetByID", mock.Anything, id.String()).Return(stored, nil)

		svc := newAppointmentService(mockAppts, new(MockUserRepository), new(MockAuditRepository), new(MockVisitorResolver), nil)
		err := svc.CheckIn(context.Background(), "+919800000000", id.String())

		assert.ErrorIs(t, err, apperr.ErrNotAccepted)
	})

	t.Run("unknown appointment", func(t *testing.T) {
		mockAppts := new(MockAppointmentRepository)
		mockAppts.On("Transition", mock.Anything, id.String(), model.StatusAccepted, model.StatusCheckedIn,
			"check_in_time", mock.AnythingOfType("time.Time")).Return(false, nil)
		mockAppts.On("GetByID", mock.Anything, id.String()).Return(nil, gorm.ErrRecordNotFound)

		svc := newAppointmentService(mockAppts, new(MockUserRepository), new(MockAuditRepository), new(MockVisitorResolver), nil)
		err := svc.CheckIn(context.Background(), "+919800000000", id.String())

		assert.ErrorIs(t, err, apperr.ErrAppointmentNotFound)
	})
}

func TestAppointmentService_CheckOut_RequiresCheckedIn(t *testing.T) {
	id := uuid.New()
	pending := &model.Appointment{ID: id, Status: model.StatusPending}

	mockAppts := new(MockAppointmentRepository)
	mockAppts.On("Transition", mock.Anything, id.String(), model.StatusCheckedIn, model.StatusCompleted,
		"check_out_time", mock.AnythingOfType("time.Time")).Return(false, nil)
	mockAppts.On("GetByID", mock.Anything, id.String()).Return(pending, nil)

	svc := newAppointmentService(mockAppts, new(MockUserRepository), new(MockAuditRepository), new(MockVisitorResolver), nil)
	err := svc.CheckOut(context.Background(), "+919800000000", id.String())

	assert.ErrorIs(t, err, apperr.ErrNotCheckedIn)
}

func TestAppointmentService_SetStatus(t *testing.T) {
	id := uuid.New()

	t.Run("rejects an unknown status", func(t *testing.T) {
		svc := newAppointmentService(new(MockAppointmentRepository), new(MockUserRepository), new(MockAuditRepository), new(MockVisitorResolver), nil)
		_, err := svc.SetStatus(context.Background(), "+919800000000", id.String(), model.AppointmentStatus("teleported"))
		assert.ErrorIs(t, err, apperr.ErrInvalidStatus)
	})

	t.Run("overwrites without a prior-state guard", func(t *testing.T) {
		updated := &model.Appointment{ID: id, HostName: "Ravi Kumar", Status: model.StatusRejected}

		mockAppts := new(MockAppointmentRepository)
		mockAudits := new(MockAuditRepository)
		notifier := &recordingNotifier{}
		mockAppts.On("SetStatus", mock.Anything, id.String(), model.StatusRejected).Return(nil)
		mockAudits.On("Create", mock.Anything, mock.Anything).Return(nil)
		mockAppts.On("GetByID", mock.Anything, id.String()).Return(updated, nil)

		svc := newAppointmentService(mockAppts, new(MockUserRepository), mockAudits, new(MockVisitorResolver), notifier)
		resp, err := svc.SetStatus(context.Background(), "+919800000000", id.String(), model.StatusRejected)

		assert.NoError(t, err)
		assert.Equal(t, model.StatusRejected, resp.Status)
		assert.Len(t, notifier.payloads, 1)
	})

	t.Run("unknown appointment", func(t *testing.T) {
		mockAppts := new(MockAppointmentRepository)
		mockAppts.On("SetStatus", mock.Anything, id.String(), model.StatusAccepted).Return(gorm.ErrRecordNotFound)

		svc := newAppointmentService(mockAppts, new(MockUserRepository), new(MockAuditRepository), new(MockVisitorResolver), nil)
		_, err := svc.SetStatus(context.Background(), "+919800000000", id.String(), model.StatusAccepted)

		assert.ErrorIs(t, err, apperr.ErrAppointmentNotFound)
	})
}

func TestAppointmentService_SetDuration_RejectsNonPositive(t *testing.T) {
	svc := newAppointmentService(new(MockAppointmentRepository), new(MockUserRepository), new(MockAuditRepository), new(MockVisitorResolver), nil)
	_, err := svc.SetDuration(context.Background(), uuid.New().String(), 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAppointmentService_HostSchedule_HidesCancelledAndRejected(t *testing.T) {
	mockAppts := new(MockAppointmentRepository)
	mockAppts.On("ListByHost", mock.Anything, "Ravi Kumar",
		[]model.AppointmentStatus{model.StatusCancelled, model.StatusRejected}).
		Return([]model.Appointment{{ID: uuid.New(), HostName: "Ravi Kumar", Status: model.StatusAccepted}}, nil)

	svc := newAppointmentService(mockAppts, new(MockUserRepository), new(MockAuditRepository), new(MockVisitorResolver), nil)
	appts, err := svc.HostSchedule(context.Background(), "Ravi Kumar")

	assert.NoError(t, err)
	assert.Len(t, appts, 1)
	mockAppts.AssertExpectations(t)
}

func TestAppointmentService_RecentActivity(t *testing.T) {
	mockAppts := new(MockAppointmentRepository)
	mockAppts.On("ListRecent", mock.Anything,
		[]model.AppointmentStatus{model.StatusCheckedIn, model.StatusCompleted, model.StatusRejected}, 10).
		Return([]model.Appointment{}, nil)

	svc := newAppointmentService(mockAppts, new(MockUserRepository), new(MockAuditRepository), new(MockVisitorResolver), nil)
	appts, err := svc.RecentActivity(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, appts)
	mockAppts.AssertExpectations(t)
}

func TestAppointmentService_VerifyIdentity(t *testing.T) {
	facePath := "storage/faces/visitor_+919876543210_1234.jpg"
	user := &model.User{
		ID:            uuid.New(),
		FullName:      "Asha Rao",
		PhoneNumber:   "+919876543210",
		Role:          model.RoleVisitor,
		IsVerified:    true,
		FaceImagePath: &facePath,
	}

	mockUsers := new(MockUserRepository)
	mockUsers.On("GetByPhone", mock.Anything, user.PhoneNumber).Return(user, nil)

	svc := newAppointmentService(new(MockAppointmentRepository), mockUsers, new(MockAuditRepository), new(MockVisitorResolver), nil)
	resp, err := svc.VerifyIdentity(context.Background(), user.PhoneNumber)

	assert.NoError(t, err)
	assert.Equal(t, "Asha Rao", resp.FullName)
	assert.True(t, resp.IsVerified)
	assert.True(t, resp.HasFaceID)
}
