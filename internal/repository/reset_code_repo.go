package repository

import (
	"context"
	"time"

	"finledger/internal/domain"

	"gorm.io/gorm"
)

// ResetCodeRepository stores password-reset codes. Each request
// inserts a fresh row; lookups take the newest matching row so older
// codes are orphaned rather than explicitly invalidated.
type ResetCodeRepository struct {
	db *gorm.DB
}

func NewResetCodeRepository(db *gorm.DB) *ResetCodeRepository {
	return &ResetCodeRepository{db: db}
}

func (r *ResetCodeRepository) Create(ctx context.Context, c *domain.PasswordResetCode) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// FindLatestByUserAndHash selects by explicit creation order, never by
// storage iteration order. The id tiebreak keeps rows created in the
// same instant deterministic.
func (r *ResetCodeRepository) FindLatestByUserAndHash(ctx context.Context, userID int64, codeHash string) (*domain.PasswordResetCode, error) {
	return FindLatestByUserAndHashTx(r.db.WithContext(ctx), userID, codeHash)
}

func FindLatestByUserAndHashTx(tx *gorm.DB, userID int64, codeHash string) (*domain.PasswordResetCode, error) {
	var c domain.PasswordResetCode
	err := tx.
		Where("user_id = ? AND code_hash = ?", userID, codeHash).
		Order("created_at DESC, id DESC").
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteByIDTx consumes a code. RowsAffected tells the caller whether
// it won the race: concurrent confirms on the same code see 0 here and
// must fail.
func DeleteByIDTx(tx *gorm.DB, id int64) (int64, error) {
	res := tx.Where("id = ?", id).Delete(&domain.PasswordResetCode{})
	return res.RowsAffected, res.Error
}

func (r *ResetCodeRepository) DeleteExpired(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	tx := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&domain.PasswordResetCode{})
	return tx.RowsAffected, tx.Error
}

func (r *ResetCodeRepository) DB() *gorm.DB { return r.db }
