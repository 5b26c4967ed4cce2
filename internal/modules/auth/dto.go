package auth

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone" validate:"required"`
	Birthday  string `json:"birthday" validate:"required,datetime=2006-01-02"`
	Country   string `json:"country" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh" validate:"required"`
}

// LogoutRequest: when the refresh token is omitted every outstanding
// session of the caller is revoked.
type LogoutRequest struct {
	RefreshToken string `json:"refresh"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Birthday  string `json:"birthday,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Country   string `json:"country,omitempty"`
}

type ResetRequestDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetVerifyDTO struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type ResetConfirmDTO struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// UserProfileResponse is what leaves the API; no password material.
type UserProfileResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone"`
	Birthday  string `json:"birthday"`
	Country   string `json:"country"`
	AvatarURL string `json:"avatar_url,omitempty"`
	CreatedAt string `json:"created_at"`
}
