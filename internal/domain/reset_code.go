package domain

import "time"

// PasswordResetCode is a single-use 6-digit code mailed to a user.
//
// Rows accumulate per user; lookups always take the newest matching
// row, so an older code becomes unreachable the moment a newer one is
// issued. A consumed code is deleted, which doubles as the
// single-winner gate for concurrent confirms. Only the peppered
// SHA-256 of the code is stored.
type PasswordResetCode struct {
	ID int64 `json:"id" gorm:"primaryKey"`

	UserID int64 `json:"user_id" gorm:"index;not null"`
	User   User  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	CodeHash string `json:"-" gorm:"size:64;index;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
}

// IsValid reports whether the code can still be used. Consumption is
// modeled by deletion, so a row that exists is unused by definition.
func (c *PasswordResetCode) IsValid(now time.Time) bool {
	return c.ExpiresAt.After(now)
}
