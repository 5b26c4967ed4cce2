package auth

import (
	"context"

	"finledger/internal/domain"

	"gorm.io/gorm"
)

// UserRepositoryInterface — only the methods the auth service uses.
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, u *domain.User) error
	UpdatePasswordHash(tx *gorm.DB, userID int64, hash string) error
	DB() *gorm.DB // exposed for transaction boundaries
}

// RefreshTokenRepositoryInterface — the token registry.
type RefreshTokenRepositoryInterface interface {
	Create(ctx context.Context, t *domain.RefreshToken) error
	GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, id int64, replacedByID *int64) error
	RevokeAllByUser(ctx context.Context, userID int64) error
}

// ResetCodeRepositoryInterface — issued one-time codes.
type ResetCodeRepositoryInterface interface {
	Create(ctx context.Context, c *domain.PasswordResetCode) error
	FindLatestByUserAndHash(ctx context.Context, userID int64, codeHash string) (*domain.PasswordResetCode, error)
}
