package repository

import (
	"context"
	"strings"
	"time"

	"finledger/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	Email        string    `gorm:"column:email"`
	PasswordHash string    `gorm:"column:password_hash"`
	FirstName    *string   `gorm:"column:first_name"`
	LastName     *string   `gorm:"column:last_name"`
	Phone        string    `gorm:"column:phone"`
	Birthday     string    `gorm:"column:birthday"`
	Country      string    `gorm:"column:country"`
	AvatarURL    *string   `gorm:"column:avatar_url"`
	IsSuperuser  bool      `gorm:"column:is_superuser"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.User {
	var first, last, avatar string
	if m.FirstName != nil {
		first = *m.FirstName
	}
	if m.LastName != nil {
		last = *m.LastName
	}
	if m.AvatarURL != nil {
		avatar = *m.AvatarURL
	}

	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		FirstName:    first,
		LastName:     last,
		Phone:        m.Phone,
		Birthday:     m.Birthday,
		Country:      m.Country,
		AvatarURL:    avatar,
		IsSuperuser:  m.IsSuperuser,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	email := strings.TrimSpace(strings.ToLower(u.Email))

	var first, last, avatar *string
	if u.FirstName != "" {
		v := u.FirstName
		first = &v
	}
	if u.LastName != "" {
		v := u.LastName
		last = &v
	}
	if u.AvatarURL != "" {
		v := u.AvatarURL
		avatar = &v
	}

	return userModel{
		ID:           u.ID,
		Email:        email,
		PasswordHash: u.PasswordHash,
		FirstName:    first,
		LastName:     last,
		Phone:        u.Phone,
		Birthday:     u.Birthday,
		Country:      u.Country,
		AvatarURL:    avatar,
		IsSuperuser:  u.IsSuperuser,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(&userModel{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count)
	if tx.Error != nil {
		return false, tx.Error
	}
	return count > 0, nil
}

// Update persists profile fields only. Email, password hash and the
// superuser flag go through their own paths.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"first_name": nullable(u.FirstName),
			"last_name":  nullable(u.LastName),
			"phone":      u.Phone,
			"birthday":   u.Birthday,
			"country":    u.Country,
			"avatar_url": nullable(u.AvatarURL),
			"updated_at": time.Now().UTC(),
		}).Error
}

// UpdatePasswordHash runs against the given handle so it can join a
// larger transaction (confirm-reset).
func (r *UserRepository) UpdatePasswordHash(tx *gorm.DB, userID int64, hash string) error {
	return tx.Model(&userModel{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"password_hash": hash,
			"updated_at":    time.Now().UTC(),
		}).Error
}

func (r *UserRepository) DB() *gorm.DB { return r.db }

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
