package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"vms/internal/auth"
	"vms/internal/config"
	"vms/internal/model"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByPhone(ctx context.Context, phoneNumber string) (*model.User, error) {
	args := m.Called(ctx, phoneNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) ListStaff(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockOTPRepository is a mock implementation of repository.OTPRepository.
type MockOTPRepository struct {
	mock.Mock
}

func (m *MockOTPRepository) Upsert(ctx context.Context, phoneNumber, code string) error {
	args := m.Called(ctx, phoneNumber, code)
	return args.Error(0)
}

func (m *MockOTPRepository) GetByPhone(ctx context.Context, phoneNumber string) (*model.OTPCode, error) {
	args := m.Called(ctx, phoneNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OTPCode), args.Error(1)
}

func (m *MockOTPRepository) Consume(ctx context.Context, phoneNumber, code string) (bool, error) {
	args := m.Called(ctx, phoneNumber, code)
	return args.Bool(0), args.Error(1)
}

// MockAppointmentRepository is a mock implementation of repository.AppointmentRepository.
type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	args := m.Called(ctx, appt)
	return args.Error(0)
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListByVisitor(ctx context.Context, visitorID uuid.UUID) ([]model.Appointment, error) {
	args := m.Called(ctx, visitorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListByHost(ctx context.Context, hostName string, exclude ...model.AppointmentStatus) ([]model.Appointment, error) {
	args := m.Called(ctx, hostName, exclude)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListByStatuses(ctx context.Context, statuses []model.AppointmentStatus) ([]model.Appointment, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListRecent(ctx context.Context, statuses []model.AppointmentStatus, limit int) ([]model.Appointment, error) {
	args := m.Called(ctx, statuses, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListAll(ctx context.Context) ([]model.Appointment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) SetStatus(ctx context.Context, id string, status model.AppointmentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockAppointmentRepository) SetDuration(ctx context.Context, id string, minutes int) error {
	args := m.Called(ctx, id, minutes)
	return args.Error(0)
}

func (m *MockAppointmentRepository) Transition(ctx context.Context, id string, from, to model.AppointmentStatus, timestampColumn string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, from, to, timestampColumn, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockAppointmentRepository) CountByStatus(ctx context.Context, status model.AppointmentStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAppointmentRepository) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuditRepository is a mock implementation of repository.AuditRepository.
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, limit, offset int) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.AuditLog), args.Get(1).(int64), args.Error(2)
}

// MockFaceStore is a mock implementation of facestore.Store.
type MockFaceStore struct {
	mock.Mock
}

func (m *MockFaceStore) Save(prefix, phoneNumber, dataURL string) (string, error) {
	args := m.Called(prefix, phoneNumber, dataURL)
	return args.String(0), args.Error(1)
}

func (m *MockFaceStore) Exists(path string) bool {
	args := m.Called(path)
	return args.Bool(0)
}

// MockVisitorResolver is a mock implementation of VisitorResolver.
type MockVisitorResolver struct {
	mock.Mock
}

func (m *MockVisitorResolver) ResolveOrCreate(ctx context.Context, phoneNumber string, enrollment *VisitorEnrollment) (*model.User, error) {
	args := m.Called(ctx, phoneNumber, enrollment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockVisitorResolver) CreateVisitor(ctx context.Context, enrollment VisitorEnrollment) (*model.User, error) {
	args := m.Called(ctx, enrollment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockFaceMatcher is a mock implementation of FaceMatcher.
type MockFaceMatcher struct {
	mock.Mock
}

func (m *MockFaceMatcher) Match(referencePath, capturedImage string) (bool, error) {
	args := m.Called(referencePath, capturedImage)
	return args.Bool(0), args.Error(1)
}

// stubTxManager runs the function directly, with no real transaction.
type stubTxManager struct{}

func (stubTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// recordingNotifier captures published gate events.
type recordingNotifier struct {
	payloads [][]byte
}

func (n *recordingNotifier) Publish(payload []byte) {
	n.payloads = append(n.payloads, payload)
}

func testIssuer() *auth.SessionIssuer {
	return auth.NewSessionIssuer(&config.Config{
		JWTSecret: []byte("test-secret"),
		SessionDurations: map[model.Role]time.Duration{
			model.RoleVisitor:  config.VisitorSessionDuration,
			model.RoleEmployee: config.EmployeeSessionDuration,
			model.RoleSecurity: config.SecuritySessionDuration,
			model.RoleAdmin:    config.AdminSessionDuration,
		},
	})
}
