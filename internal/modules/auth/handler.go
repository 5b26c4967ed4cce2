package auth

import (
	"errors"
	"net/http"

	"finledger/internal/domain"
	"finledger/internal/pkg/response"
	"finledger/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/password-reset/request", h.RequestReset)
		authGroup.POST("/password-reset/verify", h.VerifyResetCode)
		authGroup.POST("/password-reset/confirm", h.ConfirmReset)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.POST("/auth/logout", h.Logout)

	userGroup := protected.Group("/users")
	{
		userGroup.GET("/me", h.GetMe)
		userGroup.PUT("/me", h.UpdateProfile)
	}
}

// Register creates a new account.
// @Summary	Register a user
// @Tags	Auth
// @Param	request	body	RegisterRequest	true	"email, password (min 8), birthday, phone, country"
// @Success	201	{object}	map[string]interface{}
// @Failure	400	{object}	map[string]interface{} "validation error"
// @Failure	409	{object}	map[string]interface{} "email already registered"
// @Router	/auth/register [POST]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", errs)
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
			return
		}
		response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to register user")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": toProfileResponse(user)})
}

// Login issues an access/refresh token pair.
// @Summary	Login
// @Tags	Auth
// @Param	request	body	LoginRequest	true	"credentials"
// @Success	200	{object}	map[string]interface{} "access and refresh tokens"
// @Failure	401	{object}	map[string]interface{} "invalid email or password"
// @Router	/auth/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", errs)
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":    toProfileResponse(result.User),
		"access":  result.AccessToken,
		"refresh": result.RefreshToken,
	})
}

// Refresh exchanges a refresh token for a new pair. The presented
// token is revoked in the same step.
// @Summary	Rotate refresh token
// @Tags	Auth
// @Param	request	body	RefreshRequest	true	"refresh token"
// @Success	200	{object}	map[string]interface{} "new access and refresh tokens"
// @Failure	401	{object}	map[string]interface{} "expired, revoked or unknown token"
// @Router	/auth/refresh [POST]
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", errs)
		return
	}

	pair, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			response.Error(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Refresh token is invalid, expired or revoked")
			return
		}
		response.Error(c, http.StatusInternalServerError, "REFRESH_FAILED", "Failed to refresh session")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"access":  pair.AccessToken,
		"refresh": pair.RefreshToken,
	})
}

// Logout revokes the presented refresh token, or every session of the
// caller when the body carries none. Safe to repeat.
// @Summary	Logout
// @Tags	Auth
// @Security	BearerAuth
// @Param	request	body	LogoutRequest	false	"optional refresh token"
// @Success	200	{object}	map[string]interface{}
// @Failure	401	{object}	map[string]interface{}
// @Router	/auth/logout [POST]
func (h *Handler) Logout(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req LogoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
			return
		}
	}

	if err := h.service.Logout(c.Request.Context(), userID, req.RefreshToken); err != nil {
		response.Error(c, http.StatusInternalServerError, "LOGOUT_FAILED", "Failed to logout")
		return
	}

	scope := "single"
	if req.RefreshToken == "" {
		scope = "all"
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Logged out", "scope": scope})
}

// GetMe returns the authenticated user's profile.
// @Summary	Current user profile
// @Tags	Users
// @Security	BearerAuth
// @Success	200	{object}	map[string]interface{}
// @Failure	404	{object}	map[string]interface{}
// @Router	/users/me [GET]
func (h *Handler) GetMe(c *gin.Context) {
	userID := c.GetInt64("user_id")

	user, err := h.service.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": toProfileResponse(user)})
}

// UpdateProfile partially updates profile fields. Email, password and
// the superuser flag cannot be changed here.
// @Summary	Update profile
// @Tags	Users
// @Security	BearerAuth
// @Param	request	body	UpdateProfileRequest	true	"fields to update"
// @Success	200	{object}	map[string]interface{}
// @Failure	400	{object}	map[string]interface{}
// @Router	/users/me [PUT]
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", errs)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Could not update profile")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": toProfileResponse(user)})
}

// RequestReset mails a one-time 6-digit code to the account.
// @Summary	Request password reset code
// @Tags	Auth
// @Param	request	body	ResetRequestDTO	true	"account email"
// @Success	200	{object}	map[string]interface{} "code sent"
// @Failure	404	{object}	map[string]interface{} "no account with that email"
// @Failure	502	{object}	map[string]interface{} "mail delivery failed"
// @Router	/auth/password-reset/request [POST]
func (h *Handler) RequestReset(c *gin.Context) {
	var req ResetRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", errs)
		return
	}

	if err := h.service.RequestReset(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "No account with that email")
		case errors.Is(err, ErrMailDelivery):
			response.Error(c, http.StatusBadGateway, "DELIVERY_FAILED", "Could not deliver the reset code")
		default:
			response.Error(c, http.StatusInternalServerError, "RESET_REQUEST_FAILED", "Failed to request password reset")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "A reset code has been sent to the email"})
}

// VerifyResetCode checks a code without consuming it.
// @Summary	Verify reset code
// @Tags	Auth
// @Param	request	body	ResetVerifyDTO	true	"email and 6-digit code"
// @Success	200	{object}	map[string]interface{} "valid: true"
// @Failure	400	{object}	map[string]interface{} "valid: false"
// @Failure	404	{object}	map[string]interface{} "no account with that email"
// @Router	/auth/password-reset/verify [POST]
func (h *Handler) VerifyResetCode(c *gin.Context) {
	var req ResetVerifyDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", errs)
		return
	}

	valid, err := h.service.VerifyResetCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "No account with that email")
			return
		}
		response.Error(c, http.StatusInternalServerError, "RESET_VERIFY_FAILED", "Failed to verify reset code")
		return
	}

	if !valid {
		response.ErrorWithDetails(c, http.StatusBadRequest, "INVALID_RESET_CODE", "Reset code is invalid or expired", gin.H{"valid": false})
		return
	}

	response.Success(c, http.StatusOK, gin.H{"valid": true})
}

// ConfirmReset sets the new password, revokes every outstanding
// session and consumes the code, atomically.
// @Summary	Confirm password reset
// @Tags	Auth
// @Param	request	body	ResetConfirmDTO	true	"email, code, new password (min 8)"
// @Success	200	{object}	map[string]interface{} "password updated, sessions closed"
// @Failure	400	{object}	map[string]interface{} "invalid or expired code"
// @Failure	404	{object}	map[string]interface{} "no account with that email"
// @Router	/auth/password-reset/confirm [POST]
func (h *Handler) ConfirmReset(c *gin.Context) {
	var req ResetConfirmDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", errs)
		return
	}

	if err := h.service.ConfirmReset(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "No account with that email")
		case errors.Is(err, ErrInvalidResetCode):
			response.Error(c, http.StatusBadRequest, "INVALID_RESET_CODE", "Reset code is invalid or expired")
		default:
			response.Error(c, http.StatusInternalServerError, "RESET_CONFIRM_FAILED", "Failed to reset password")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Password updated and all sessions closed"})
}

func toProfileResponse(u *domain.User) UserProfileResponse {
	return UserProfileResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Birthday:  u.Birthday,
		Country:   u.Country,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt.Format("2006-01-02"),
	}
}
