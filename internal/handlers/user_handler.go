package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prof-it/school-service/internal/models"
	"github.com/prof-it/school-service/internal/services"
	"github.com/prof-it/school-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	service services.UserService
}

func NewUserHandler(service services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Getting user", "target_id", id)

	user, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetMe returns the authenticated user's own profile.
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized"})
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	h.LogRequest(c, "Listing users")

	role := c.Query("role")
	var approved *bool
	if v := c.Query("approved"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid approved filter",
				Details: "approved must be true or false",
			})
			return
		}
		approved = &parsed
	}

	page, size := parsePagination(c)

	resp, err := h.service.List(c.Request.Context(), role, approved, page, size)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Updating user", "target_id", id)

	// Non-admins may only edit themselves.
	userID, _ := GetUserIDFromContext(c)
	role, _ := GetUserRoleFromContext(c)
	if role != models.RoleAdmin && userID != id {
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Forbidden"})
		return
	}

	var req services.UpdateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Deleting user", "target_id", id)

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// parsePagination reads page/size query parameters with sane bounds.
func parsePagination(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}
