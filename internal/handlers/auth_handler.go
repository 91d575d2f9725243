package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prof-it/school-service/internal/services"
	"github.com/prof-it/school-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	service services.AuthService
}

func NewAuthHandler(service services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Register creates a new account. Non-admin accounts start unapproved.
func (h *AuthHandler) Register(c *gin.Context) {
	h.LogRequest(c, "Registering user")

	var req services.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// RegisterByAdmin creates a pre-approved account; admin only.
func (h *AuthHandler) RegisterByAdmin(c *gin.Context) {
	h.LogRequest(c, "Registering user by admin")

	var req services.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.RegisterByAdmin(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	h.LogRequest(c, "Logging in")

	var req services.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	h.LogRequest(c, "Requesting password reset")

	var req services.RequestPasswordResetRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.service.RequestPasswordReset(c.Request.Context(), req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "reset email sent"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	h.LogRequest(c, "Resetting password")

	var req services.ResetPasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// ApproveUser flips an account to approved; admin only.
func (h *AuthHandler) ApproveUser(c *gin.Context) {
	id := c.Param("userId")
	h.LogRequest(c, "Approving user", "target_id", id)

	user, err := h.service.ApproveUser(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// PendingUsers lists accounts awaiting approval; admin only.
func (h *AuthHandler) PendingUsers(c *gin.Context) {
	h.LogRequest(c, "Listing pending users")

	users, err := h.service.PendingUsers(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pending_users": users})
}
