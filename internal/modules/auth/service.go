package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"finledger/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

type jwtService interface {
	GenerateToken(userID int64, superuser bool) (string, error)
}

// Service contains the business logic for credentials, token pairs and
// the password-reset flow.
type Service struct {
	users         UserRepositoryInterface
	refreshTokens RefreshTokenRepositoryInterface
	resetCodes    ResetCodeRepositoryInterface
	jwt           jwtService
	mailer        Mailer

	refreshTokenPepper string
	refreshTTL         time.Duration
	resetCodePepper    string
	resetCodeTTL       time.Duration
	mailTimeout        time.Duration
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type LoginResult struct {
	User *domain.User
	TokenPair
}

func NewService(
	users UserRepositoryInterface,
	refreshTokens RefreshTokenRepositoryInterface,
	resetCodes ResetCodeRepositoryInterface,
	jwt jwtService,
	mailer Mailer,
	refreshTokenPepper string,
	refreshTTL time.Duration,
	resetCodePepper string,
	resetCodeTTL time.Duration,
	mailTimeout time.Duration,
) *Service {
	return &Service{
		users:              users,
		refreshTokens:      refreshTokens,
		resetCodes:         resetCodes,
		jwt:                jwt,
		mailer:             mailer,
		refreshTokenPepper: refreshTokenPepper,
		refreshTTL:         refreshTTL,
		resetCodePepper:    resetCodePepper,
		resetCodeTTL:       resetCodeTTL,
		mailTimeout:        mailTimeout,
	}
}

// Register creates a credential. The raw password exists only long
// enough to be bcrypt-hashed. A concurrent duplicate registration that
// slips past the pre-check is caught by the unique index on email.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if err := s.validateEmailUnique(ctx, req.Email); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hashedPassword,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Birthday:     req.Birthday,
		Country:      req.Country,
	}

	if err := s.users.Create(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrEmailAlreadyExists
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// Login verifies credentials and issues a fresh token pair. Unknown
// email and wrong password produce the same error so the response does
// not enumerate accounts.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &LoginResult{User: user, TokenPair: *pair}, nil
}

// issuePair mints an access token and a new outstanding refresh token.
func (s *Service) issuePair(ctx context.Context, user *domain.User) (*TokenPair, error) {
	accessToken, err := s.jwt.GenerateToken(user.ID, user.IsSuperuser)
	if err != nil {
		return nil, err
	}

	raw, hash, err := generateOpaqueRefreshToken(s.refreshTokenPepper)
	if err != nil {
		return nil, err
	}

	if err := s.refreshTokens.Create(ctx, &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: hash,
		JTI:       uuid.NewString(),
		ExpiresAt: time.Now().Add(s.refreshTTL),
	}); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: raw}, nil
}

// Refresh rotates a refresh token: the presented token is revoked in
// the same transaction that records its successor, so there is never a
// moment when both are rotatable. Of concurrent rotations of one token
// exactly one wins; the rest see the revocation mark and fail.
func (s *Service) Refresh(ctx context.Context, refreshRaw string) (*TokenPair, error) {
	now := time.Now()
	hash := hashWithPepper(refreshRaw, s.refreshTokenPepper)
	var result *TokenPair

	err := s.users.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current domain.RefreshToken
		q := tx.Where("token_hash = ?", hash)
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidRefreshToken
			}
			return err
		}

		if current.IsExpired(now) || current.IsRevoked() {
			return ErrInvalidRefreshToken
		}

		var user domain.User
		if err := tx.Table("users").Where("id = ?", current.UserID).First(&user).Error; err != nil {
			return err
		}

		accessToken, err := s.jwt.GenerateToken(user.ID, user.IsSuperuser)
		if err != nil {
			return err
		}
		newRaw, newHash, err := generateOpaqueRefreshToken(s.refreshTokenPepper)
		if err != nil {
			return err
		}

		successor := domain.RefreshToken{
			UserID:    current.UserID,
			TokenHash: newHash,
			JTI:       uuid.NewString(),
			ExpiresAt: now.Add(s.refreshTTL),
		}
		if err := tx.Create(&successor).Error; err != nil {
			return err
		}

		// The revoked_at IS NULL guard is the single-winner gate: a
		// concurrent rotation that lost the race updates zero rows.
		res := tx.Model(&domain.RefreshToken{}).
			Where("id = ? AND revoked_at IS NULL", current.ID).
			Updates(map[string]any{
				"revoked_at":     now,
				"replaced_by_id": successor.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidRefreshToken
		}

		result = &TokenPair{AccessToken: accessToken, RefreshToken: newRaw}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Logout revokes the presented refresh token, or every outstanding
// token of the caller when none is given. Idempotent: revoking an
// already-revoked or unknown token is a no-op.
func (s *Service) Logout(ctx context.Context, userID int64, refreshRaw string) error {
	if refreshRaw == "" {
		return s.refreshTokens.RevokeAllByUser(ctx, userID)
	}

	hash := hashWithPepper(refreshRaw, s.refreshTokenPepper)
	token, err := s.refreshTokens.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	return s.refreshTokens.Revoke(ctx, token.ID, nil)
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile mutates profile fields only; email, password and the
// superuser flag are untouchable here.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Birthday != "" {
		user.Birthday = req.Birthday
	}
	if req.Country != "" {
		user.Country = req.Country
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *Service) validateEmailUnique(ctx context.Context, email string) error {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailAlreadyExists
	}
	return nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func generateOpaqueRefreshToken(pepper string) (raw string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	hash = hashWithPepper(raw, pepper)
	return raw, hash, nil
}

func hashWithPepper(raw, pepper string) string {
	sum := sha256.Sum256([]byte(raw + pepper))
	return hex.EncodeToString(sum[:])
}
