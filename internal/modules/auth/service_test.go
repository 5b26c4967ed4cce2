package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"finledger/internal/domain"
)

// Mock User Repository implementing the interface
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) UpdatePasswordHash(tx *gorm.DB, userID int64, hash string) error {
	args := m.Called(tx, userID, hash)
	return args.Error(0)
}

func (m *mockUserRepo) DB() *gorm.DB {
	return &gorm.DB{} // dummy; transactional paths are covered in e2e
}

// Mock Refresh Token Repository
type mockRefreshTokenRepo struct {
	mock.Mock
}

func (m *mockRefreshTokenRepo) Create(ctx context.Context, t *domain.RefreshToken) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockRefreshTokenRepo) GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepo) Revoke(ctx context.Context, id int64, replacedByID *int64) error {
	args := m.Called(ctx, id, replacedByID)
	return args.Error(0)
}

func (m *mockRefreshTokenRepo) RevokeAllByUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// Mock Reset Code Repository
type mockResetCodeRepo struct {
	mock.Mock
}

func (m *mockResetCodeRepo) Create(ctx context.Context, c *domain.PasswordResetCode) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockResetCodeRepo) FindLatestByUserAndHash(ctx context.Context, userID int64, codeHash string) (*domain.PasswordResetCode, error) {
	args := m.Called(ctx, userID, codeHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PasswordResetCode), args.Error(1)
}

// Mock JWT service
type mockJWTService struct {
	mock.Mock
}

func (m *mockJWTService) GenerateToken(userID int64, superuser bool) (string, error) {
	args := m.Called(userID, superuser)
	return args.String(0), args.Error(1)
}

// Mock Mailer
type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendResetCode(ctx context.Context, email, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}

func newTestService(users *mockUserRepo, refresh *mockRefreshTokenRepo, codes *mockResetCodeRepo, jwt *mockJWTService, mailer *mockMailer) *Service {
	return NewService(
		users, refresh, codes, jwt, mailer,
		"test-refresh-pepper", 7*24*time.Hour,
		"test-reset-pepper", 15*time.Minute,
		5*time.Second,
	)
}

func TestService_Register_Success(t *testing.T) {
	userRepo := new(mockUserRepo)
	refreshRepo := new(mockRefreshTokenRepo)
	codeRepo := new(mockResetCodeRepo)
	jwtSvc := new(mockJWTService)
	mailer := new(mockMailer)

	var stored *domain.User
	userRepo.On("ExistsByEmail", mock.Anything, "Test@Example.com").Return(false, nil)
	userRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.User)
		stored.ID = 1
	}).Return(nil)

	service := newTestService(userRepo, refreshRepo, codeRepo, jwtSvc, mailer)

	user, err := service.Register(context.Background(), RegisterRequest{
		Email:     "Test@Example.com",
		Password:  "securepass123",
		FirstName: "Test",
		Phone:     "+77001234567",
		Birthday:  "1995-05-05",
		Country:   "KZ",
	})

	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "test@example.com", user.Email)
	// the hash verifies against the raw password and never equals it
	assert.NotEqual(t, "securepass123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("securepass123")))
	// nothing password-shaped leaves the service
	assert.Empty(t, user.PasswordHash)

	userRepo.AssertExpectations(t)
}

func TestService_Register_EmailExists(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("ExistsByEmail", mock.Anything, "exists@example.com").Return(true, nil)

	service := newTestService(userRepo, new(mockRefreshTokenRepo), new(mockResetCodeRepo), new(mockJWTService), new(mockMailer))

	_, err := service.Register(context.Background(), RegisterRequest{
		Email:    "exists@example.com",
		Password: "securepass123",
	})

	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestService_Login_Success(t *testing.T) {
	userRepo := new(mockUserRepo)
	refreshRepo := new(mockRefreshTokenRepo)
	jwtSvc := new(mockJWTService)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	existing := &domain.User{
		ID:           10,
		Email:        "user@example.com",
		PasswordHash: string(hashed),
	}

	userRepo.On("GetByEmail", mock.Anything, "user@example.com").Return(existing, nil)
	jwtSvc.On("GenerateToken", int64(10), false).Return("login-token", nil)

	var created *domain.RefreshToken
	refreshRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.RefreshToken)
	}).Return(nil)

	service := newTestService(userRepo, refreshRepo, new(mockResetCodeRepo), jwtSvc, new(mockMailer))

	result, err := service.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "password123",
	})

	assert.NoError(t, err)
	assert.Equal(t, "login-token", result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	// only the peppered hash hits the registry, never the raw token
	assert.NotEqual(t, result.RefreshToken, created.TokenHash)
	assert.NotEmpty(t, created.JTI)
	assert.True(t, created.ExpiresAt.After(time.Now()))

	refreshRepo.AssertExpectations(t)
}

func TestService_Login_WrongPassword(t *testing.T) {
	userRepo := new(mockUserRepo)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	userRepo.On("GetByEmail", mock.Anything, "user@example.com").
		Return(&domain.User{ID: 10, Email: "user@example.com", PasswordHash: string(hashed)}, nil)

	service := newTestService(userRepo, new(mockRefreshTokenRepo), new(mockResetCodeRepo), new(mockJWTService), new(mockMailer))

	_, err := service.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "wrong-password",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_UnknownEmail(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

	service := newTestService(userRepo, new(mockRefreshTokenRepo), new(mockResetCodeRepo), new(mockJWTService), new(mockMailer))

	_, err := service.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever123",
	})

	// unknown email and wrong password are indistinguishable
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Logout_SingleToken(t *testing.T) {
	refreshRepo := new(mockRefreshTokenRepo)
	refreshRepo.On("GetByHash", mock.Anything, mock.Anything).
		Return(&domain.RefreshToken{ID: 42, UserID: 10}, nil)
	refreshRepo.On("Revoke", mock.Anything, int64(42), (*int64)(nil)).Return(nil)

	service := newTestService(new(mockUserRepo), refreshRepo, new(mockResetCodeRepo), new(mockJWTService), new(mockMailer))

	err := service.Logout(context.Background(), 10, "some-refresh-token")

	assert.NoError(t, err)
	refreshRepo.AssertExpectations(t)
}

func TestService_Logout_UnknownTokenIsNoop(t *testing.T) {
	refreshRepo := new(mockRefreshTokenRepo)
	refreshRepo.On("GetByHash", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)

	service := newTestService(new(mockUserRepo), refreshRepo, new(mockResetCodeRepo), new(mockJWTService), new(mockMailer))

	err := service.Logout(context.Background(), 10, "already-gone")

	assert.NoError(t, err)
	refreshRepo.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Logout_AllSessions(t *testing.T) {
	refreshRepo := new(mockRefreshTokenRepo)
	refreshRepo.On("RevokeAllByUser", mock.Anything, int64(10)).Return(nil)

	service := newTestService(new(mockUserRepo), refreshRepo, new(mockResetCodeRepo), new(mockJWTService), new(mockMailer))

	err := service.Logout(context.Background(), 10, "")

	assert.NoError(t, err)
	refreshRepo.AssertExpectations(t)
}

func TestService_UpdateProfile_PartialFields(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("GetByID", mock.Anything, int64(5)).Return(&domain.User{
		ID:      5,
		Email:   "user@example.com",
		Phone:   "+10000000000",
		Country: "CO",
	}, nil)

	var updated *domain.User
	userRepo.On("Update", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		updated = args.Get(1).(*domain.User)
	}).Return(nil)

	service := newTestService(userRepo, new(mockRefreshTokenRepo), new(mockResetCodeRepo), new(mockJWTService), new(mockMailer))

	user, err := service.UpdateProfile(context.Background(), 5, UpdateProfileRequest{
		FirstName: "Nelson",
		Country:   "MX",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Nelson", updated.FirstName)
	assert.Equal(t, "MX", updated.Country)
	// untouched fields survive a partial update
	assert.Equal(t, "+10000000000", updated.Phone)
	assert.Empty(t, user.PasswordHash)
}
