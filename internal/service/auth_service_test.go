package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"vms/internal/apperr"
	"vms/internal/auth"
	"vms/internal/model"
)

func staffUser(role model.Role, password string) *model.User {
	hash, _ := auth.HashPassword(password)
	email := "staff@vms.com"
	return &model.User{
		ID:           uuid.New(),
		FullName:     "Ravi Kumar",
		PhoneNumber:  "+919812345678",
		Email:        &email,
		PasswordHash: hash,
		Role:         role,
		IsVerified:   true,
	}
}

func TestAuthService_StaffLogin(t *testing.T) {
	tests := []struct {
		name          string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			password: "secret-pass",
			setupMock: func(m *MockUserRepository) {
				m.On("GetByEmail", mock.Anything, "staff@vms.com").Return(staffUser(model.RoleEmployee, "secret-pass"), nil)
			},
		},
		{
			name:     "unknown email",
			password: "secret-pass",
			setupMock: func(m *MockUserRepository) {
				m.On("GetByEmail", mock.Anything, "staff@vms.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperr.ErrInvalidCredentials,
		},
		{
			name:     "visitor accounts cannot use the password path",
			password: "secret-pass",
			setupMock: func(m *MockUserRepository) {
				m.On("GetByEmail", mock.Anything, "staff@vms.com").Return(staffUser(model.RoleVisitor, "secret-pass"), nil)
			},
			expectedError: apperr.ErrInvalidCredentials,
		},
		{
			name:     "staff account without a password hash",
			password: "secret-pass",
			setupMock: func(m *MockUserRepository) {
				user := staffUser(model.RoleEmployee, "secret-pass")
				user.PasswordHash = ""
				m.On("GetByEmail", mock.Anything, "staff@vms.com").Return(user, nil)
			},
			expectedError: apperr.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			password: "not-the-password",
			setupMock: func(m *MockUserRepository) {
				m.On("GetByEmail", mock.Anything, "staff@vms.com").Return(staffUser(model.RoleEmployee, "secret-pass"), nil)
			},
			expectedError: apperr.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := new(MockUserRepository)
			tt.setupMock(mockUsers)

			svc := NewAuthService(mockUsers, new(MockVisitorResolver), new(MockFaceMatcher), testIssuer())
			resp, err := svc.StaffLogin(context.Background(), StaffLoginRequest{Email: "staff@vms.com", Password: tt.password})

			if tt.expectedError != nil {
				// Every failure mode answers with the same error.
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, resp)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, resp.AccessToken)
				assert.Equal(t, model.RoleEmployee, resp.Role)
			}
			mockUsers.AssertExpectations(t)
		})
	}
}

func TestAuthService_FaceLogin(t *testing.T) {
	facePath := "storage/faces/+919812345678_1234.jpg"

	tests := []struct {
		name          string
		faceImage     string
		setupMock     func(*MockUserRepository, *MockFaceMatcher)
		expectedError error
	}{
		{
			name:      "successful match",
			faceImage: "data:image/jpeg;base64,Zm9v",
			setupMock: func(mUsers *MockUserRepository, mMatch *MockFaceMatcher) {
				user := staffUser(model.RoleEmployee, "x")
				user.FaceImagePath = &facePath
				mUsers.On("GetByPhone", mock.Anything, "+919812345678").Return(user, nil)
				mMatch.On("Match", facePath, "data:image/jpeg;base64,Zm9v").Return(true, nil)
			},
		},
		{
			name:      "unknown phone",
			faceImage: "data:image/jpeg;base64,Zm9v",
			setupMock: func(mUsers *MockUserRepository, mMatch *MockFaceMatcher) {
				mUsers.On("GetByPhone", mock.Anything, "+919812345678").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperr.ErrUserNotFound,
		},
		{
			name:      "no enrolled face",
			faceImage: "data:image/jpeg;base64,Zm9v",
			setupMock: func(mUsers *MockUserRepository, mMatch *MockFaceMatcher) {
				mUsers.On("GetByPhone", mock.Anything, "+919812345678").Return(staffUser(model.RoleEmployee, "x"), nil)
			},
			expectedError: apperr.ErrFaceNotEnrolled,
		},
		{
			name:      "missing capture",
			faceImage: "",
			setupMock: func(mUsers *MockUserRepository, mMatch *MockFaceMatcher) {
				user := staffUser(model.RoleEmployee, "x")
				user.FaceImagePath = &facePath
				mUsers.On("GetByPhone", mock.Anything, "+919812345678").Return(user, nil)
			},
			expectedError: apperr.ErrFaceImageRequired,
		},
		{
			name:      "matcher rejects the capture",
			faceImage: "data:image/jpeg;base64,Zm9v",
			setupMock: func(mUsers *MockUserRepository, mMatch *MockFaceMatcher) {
				user := staffUser(model.RoleEmployee, "x")
				user.FaceImagePath = &facePath
				mUsers.On("GetByPhone", mock.Anything, "+919812345678").Return(user, nil)
				mMatch.On("Match", facePath, "data:image/jpeg;base64,Zm9v").Return(false, nil)
			},
			expectedError: apperr.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := new(MockUserRepository)
			mockMatcher := new(MockFaceMatcher)
			tt.setupMock(mockUsers, mockMatcher)

			svc := NewAuthService(mockUsers, new(MockVisitorResolver), mockMatcher, testIssuer())
			resp, err := svc.FaceLogin(context.Background(), FaceLoginRequest{PhoneNumber: "+919812345678", FaceImage: tt.faceImage})

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, resp)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, resp.AccessToken)
			}
			mockUsers.AssertExpectations(t)
			mockMatcher.AssertExpectations(t)
		})
	}
}

func TestAuthService_ResetPassword(t *testing.T) {
	user := staffUser(model.RoleEmployee, "admin123")
	user.PasswordResetRequired = true

	mockUsers := new(MockUserRepository)
	mockUsers.On("GetByEmail", mock.Anything, "staff@vms.com").Return(user, nil)
	mockUsers.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return !u.PasswordResetRequired && auth.VerifyPassword("brand-new-pass", u.PasswordHash)
	})).Return(nil)

	svc := NewAuthService(mockUsers, new(MockVisitorResolver), new(MockFaceMatcher), testIssuer())
	err := svc.ResetPassword(context.Background(), PasswordResetRequest{Email: "staff@vms.com", NewPassword: "brand-new-pass"})

	assert.NoError(t, err)
	mockUsers.AssertExpectations(t)
}

func TestAuthService_ResetPassword_UnknownEmail(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockUsers.On("GetByEmail", mock.Anything, "ghost@vms.com").Return(nil, gorm.ErrRecordNotFound)

	svc := NewAuthService(mockUsers, new(MockVisitorResolver), new(MockFaceMatcher), testIssuer())
	err := svc.ResetPassword(context.Background(), PasswordResetRequest{Email: "ghost@vms.com", NewPassword: "whatever"})

	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}
