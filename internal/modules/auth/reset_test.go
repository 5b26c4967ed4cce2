package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"finledger/internal/domain"
)

func TestService_RequestReset_Success(t *testing.T) {
	userRepo := new(mockUserRepo)
	codeRepo := new(mockResetCodeRepo)
	mailer := new(mockMailer)

	userRepo.On("GetByEmail", mock.Anything, "user@example.com").
		Return(&domain.User{ID: 7, Email: "user@example.com"}, nil)

	var stored *domain.PasswordResetCode
	codeRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.PasswordResetCode)
	}).Return(nil)

	var mailedCode string
	mailer.On("SendResetCode", mock.Anything, "user@example.com", mock.Anything).
		Run(func(args mock.Arguments) {
			mailedCode = args.String(2)
		}).Return(nil)

	service := newTestService(userRepo, new(mockRefreshTokenRepo), codeRepo, new(mockJWTService), mailer)

	err := service.RequestReset(context.Background(), "  User@Example.com ")

	assert.NoError(t, err)
	assert.Regexp(t, `^\d{6}$`, mailedCode)
	// only the peppered hash is persisted, never the code itself
	assert.NotEqual(t, mailedCode, stored.CodeHash)
	assert.Equal(t, hashWithPepper(mailedCode, "test-reset-pepper"), stored.CodeHash)
	assert.Equal(t, int64(7), stored.UserID)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), stored.ExpiresAt, 5*time.Second)

	mailer.AssertExpectations(t)
}

func TestService_RequestReset_UnknownEmail(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

	codeRepo := new(mockResetCodeRepo)
	mailer := new(mockMailer)

	service := newTestService(userRepo, new(mockRefreshTokenRepo), codeRepo, new(mockJWTService), mailer)

	err := service.RequestReset(context.Background(), "nobody@example.com")

	assert.ErrorIs(t, err, ErrUserNotFound)
	codeRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mailer.AssertNotCalled(t, "SendResetCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_RequestReset_MailDeliveryFails(t *testing.T) {
	userRepo := new(mockUserRepo)
	codeRepo := new(mockResetCodeRepo)
	mailer := new(mockMailer)

	userRepo.On("GetByEmail", mock.Anything, "user@example.com").
		Return(&domain.User{ID: 7, Email: "user@example.com"}, nil)
	codeRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	mailer.On("SendResetCode", mock.Anything, "user@example.com", mock.Anything).
		Return(errors.New("smtp: connection refused"))

	service := newTestService(userRepo, new(mockRefreshTokenRepo), codeRepo, new(mockJWTService), mailer)

	err := service.RequestReset(context.Background(), "user@example.com")

	// the row is already durable; delivery failure is still a hard error
	assert.ErrorIs(t, err, ErrMailDelivery)
	codeRepo.AssertExpectations(t)
}

func TestService_VerifyResetCode_Valid(t *testing.T) {
	userRepo := new(mockUserRepo)
	codeRepo := new(mockResetCodeRepo)

	userRepo.On("GetByEmail", mock.Anything, "user@example.com").
		Return(&domain.User{ID: 7, Email: "user@example.com"}, nil)
	codeRepo.On("FindLatestByUserAndHash", mock.Anything, int64(7), hashWithPepper("123456", "test-reset-pepper")).
		Return(&domain.PasswordResetCode{ID: 1, UserID: 7, ExpiresAt: time.Now().Add(10 * time.Minute)}, nil)

	service := newTestService(userRepo, new(mockRefreshTokenRepo), codeRepo, new(mockJWTService), new(mockMailer))

	valid, err := service.VerifyResetCode(context.Background(), "user@example.com", "123456")

	assert.NoError(t, err)
	assert.True(t, valid)
}

func TestService_VerifyResetCode_WrongCode(t *testing.T) {
	userRepo := new(mockUserRepo)
	codeRepo := new(mockResetCodeRepo)

	userRepo.On("GetByEmail", mock.Anything, "user@example.com").
		Return(&domain.User{ID: 7, Email: "user@example.com"}, nil)
	codeRepo.On("FindLatestByUserAndHash", mock.Anything, int64(7), mock.Anything).
		Return(nil, gorm.ErrRecordNotFound)

	service := newTestService(userRepo, new(mockRefreshTokenRepo), codeRepo, new(mockJWTService), new(mockMailer))

	valid, err := service.VerifyResetCode(context.Background(), "user@example.com", "654321")

	assert.NoError(t, err)
	assert.False(t, valid)
}

func TestService_VerifyResetCode_Expired(t *testing.T) {
	userRepo := new(mockUserRepo)
	codeRepo := new(mockResetCodeRepo)

	userRepo.On("GetByEmail", mock.Anything, "user@example.com").
		Return(&domain.User{ID: 7, Email: "user@example.com"}, nil)
	codeRepo.On("FindLatestByUserAndHash", mock.Anything, int64(7), mock.Anything).
		Return(&domain.PasswordResetCode{ID: 1, UserID: 7, ExpiresAt: time.Now().Add(-time.Minute)}, nil)

	service := newTestService(userRepo, new(mockRefreshTokenRepo), codeRepo, new(mockJWTService), new(mockMailer))

	valid, err := service.VerifyResetCode(context.Background(), "user@example.com", "123456")

	assert.NoError(t, err)
	assert.False(t, valid)
}

func TestService_VerifyResetCode_MalformedCode(t *testing.T) {
	userRepo := new(mockUserRepo)
	codeRepo := new(mockResetCodeRepo)

	service := newTestService(userRepo, new(mockRefreshTokenRepo), codeRepo, new(mockJWTService), new(mockMailer))

	for _, code := range []string{"12345", "1234567", "12a456", ""} {
		valid, err := service.VerifyResetCode(context.Background(), "user@example.com", code)
		assert.NoError(t, err)
		assert.False(t, valid)
	}

	// rejected before any lookup happens
	userRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	codeRepo.AssertNotCalled(t, "FindLatestByUserAndHash", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_VerifyResetCode_UnknownEmail(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

	service := newTestService(userRepo, new(mockRefreshTokenRepo), new(mockResetCodeRepo), new(mockJWTService), new(mockMailer))

	_, err := service.VerifyResetCode(context.Background(), "nobody@example.com", "123456")

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_ConfirmReset_MalformedCode(t *testing.T) {
	service := newTestService(new(mockUserRepo), new(mockRefreshTokenRepo), new(mockResetCodeRepo), new(mockJWTService), new(mockMailer))

	err := service.ConfirmReset(context.Background(), "user@example.com", "not-a-code", "newpassword1")

	assert.ErrorIs(t, err, ErrInvalidResetCode)
}

func TestGenerateResetCode_Format(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := generateResetCode()
		assert.NoError(t, err)
		assert.Regexp(t, `^\d{6}$`, code)
		seen[code] = true
	}
	// 50 draws from a million-value space collapsing to one value would
	// mean the generator is broken
	assert.Greater(t, len(seen), 1)
}
