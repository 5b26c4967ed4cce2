package admin

import (
	"net/http"

	"finledger/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects a group already guarded by JWTAuth and
// RequireSuperuser.
func (h *Handler) RegisterRoutes(superuser *gin.RouterGroup) {
	superuser.GET("/approve-signup/:token", h.ApproveSignup)
}

// ApproveSignup accepts a signup request identified by an opaque token.
// @Summary	Approve a signup request
// @Tags	Admin
// @Security	BearerAuth
// @Param	token	path	string	true	"signup request token"
// @Success	200	{object}	map[string]interface{} "request approved, code sent to applicant"
// @Failure	400	{object}	map[string]interface{} "delegated action failed"
// @Failure	403	{object}	map[string]interface{} "caller is not a superuser"
// @Router	/admin/approve-signup/{token} [GET]
func (h *Handler) ApproveSignup(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Missing signup token")
		return
	}

	if err := h.service.ApproveSignup(c.Request.Context(), token); err != nil {
		response.Error(c, http.StatusBadRequest, "APPROVAL_FAILED", err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Signup request approved and code sent to the applicant"})
}
