package domain

import "time"

// RefreshToken is one outstanding long-lived session credential.
//
// Security notes:
// - We never store the raw token, only its SHA-256 hash (TokenHash).
// - RevokedAt is insert-only: once set it is never cleared, so the set
//   of revoked rows can only grow.
// - On refresh the presented token is revoked and ReplacedByID points
//   at its successor.
type RefreshToken struct {
	ID int64 `json:"id" gorm:"primaryKey"`

	UserID int64 `json:"user_id" gorm:"index;not null"`
	User   User  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	TokenHash string `json:"-" gorm:"size:64;uniqueIndex;not null"`
	JTI       string `json:"jti" gorm:"size:36;not null"`

	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"index;not null"`
	RevokedAt *time.Time `json:"revoked_at" gorm:"index"`

	ReplacedByID *int64 `json:"replaced_by_id" gorm:"index"`
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}
