package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prof-it/school-service/internal/models"
	"github.com/prof-it/school-service/internal/services"
	"github.com/prof-it/school-service/internal/utils"
)

type AttendanceHandler struct {
	BaseHandler
	service services.AttendanceService
}

func NewAttendanceHandler(service services.AttendanceService, logger utils.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

func (h *AttendanceHandler) CreateAttendance(c *gin.Context) {
	h.LogRequest(c, "Recording attendance")

	var req services.CreateAttendanceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	attendance, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, attendance)
}

func (h *AttendanceHandler) GetAttendance(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Getting attendance", "attendance_id", id)

	attendance, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attendance)
}

func (h *AttendanceHandler) ListAttendances(c *gin.Context) {
	h.LogRequest(c, "Listing attendances")

	studentID := c.Query("student_id")

	// Students only see their own records.
	role, _ := GetUserRoleFromContext(c)
	if role == models.RoleStudent {
		userID, _ := GetUserIDFromContext(c)
		studentID = userID
	}

	page, size := parsePagination(c)

	resp, err := h.service.List(c.Request.Context(), studentID, c.Query("schedule_id"), page, size)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AttendanceHandler) UpdateAttendance(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Updating attendance", "attendance_id", id)

	var req services.UpdateAttendanceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	attendance, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attendance)
}

func (h *AttendanceHandler) DeleteAttendance(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Deleting attendance", "attendance_id", id)

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
