package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prof-it/school-service/internal/services"
	"github.com/prof-it/school-service/internal/utils"
)

type ScheduleHandler struct {
	BaseHandler
	service      services.ScheduleService
	availability services.AvailabilityService
}

func NewScheduleHandler(service services.ScheduleService, availability services.AvailabilityService, logger utils.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		BaseHandler:  NewBaseHandler(logger),
		service:      service,
		availability: availability,
	}
}

func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	h.LogRequest(c, "Creating schedule")

	var req services.CreateScheduleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	schedule, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, schedule)
}

func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Getting schedule", "schedule_id", id)

	schedule, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	h.LogRequest(c, "Listing schedules")

	page, size := parsePagination(c)

	resp, err := h.service.List(c.Request.Context(), c.Query("group_id"), c.Query("classroom_id"), page, size)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Updating schedule", "schedule_id", id)

	var req services.UpdateScheduleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	schedule, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Deleting schedule", "schedule_id", id)

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetClassroomAvailability resolves occupancy for one classroom.
func (h *ScheduleHandler) GetClassroomAvailability(c *gin.Context) {
	classroomID := c.Param("id")
	h.LogRequest(c, "Resolving classroom availability", "classroom_id", classroomID)

	view, refDate, ok := h.parseAvailabilityQuery(c)
	if !ok {
		return
	}

	resp, err := h.availability.ResolveClassroom(c.Request.Context(), classroomID, view, refDate)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetAllAvailability resolves occupancy for every classroom.
func (h *ScheduleHandler) GetAllAvailability(c *gin.Context) {
	h.LogRequest(c, "Resolving availability for all classrooms")

	view, refDate, ok := h.parseAvailabilityQuery(c)
	if !ok {
		return
	}

	resp, err := h.availability.ResolveAll(c.Request.Context(), view, refDate)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ScheduleHandler) parseAvailabilityQuery(c *gin.Context) (services.AvailabilityView, time.Time, bool) {
	view := services.AvailabilityView(c.DefaultQuery("view", string(services.ViewDay)))

	refDate := time.Now()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := parseReferenceDate(dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid date",
				Details: "date must be formatted YYYY-MM-DD or RFC 3339",
			})
			return "", time.Time{}, false
		}
		refDate = parsed
	}

	return view, refDate, true
}

// parseReferenceDate accepts a plain calendar date or a full RFC 3339
// timestamp.
func parseReferenceDate(value string) (time.Time, error) {
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed, nil
	}
	return time.Parse(time.RFC3339, value)
}
