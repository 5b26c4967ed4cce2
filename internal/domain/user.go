package domain

import "time"

// User is the credential record every session and reset code hangs off.
//
// Email is the login key and is stored lower-cased. PasswordHash is
// write-only: handlers and services blank it before a user leaves the
// service layer. IsSuperuser is set by seeding/ops only and is never
// touched by profile updates.
type User struct {
	ID           int64  `json:"id" gorm:"primaryKey"`
	Email        string `json:"email" gorm:"uniqueIndex;not null" validate:"required,email"`
	PasswordHash string `json:"-" gorm:"not null"`

	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone"`
	Birthday  string `json:"birthday"` // YYYY-MM-DD
	Country   string `json:"country"`

	// AvatarURL is a reference only; the upload handler that fills it
	// lives outside this service.
	AvatarURL string `json:"avatar_url,omitempty"`

	IsSuperuser bool `json:"is_superuser" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
