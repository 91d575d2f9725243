package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prof-it/school-service/internal/services"
	"github.com/prof-it/school-service/internal/utils"
)

type ClassroomHandler struct {
	BaseHandler
	service services.ClassroomService
}

func NewClassroomHandler(service services.ClassroomService, logger utils.Logger) *ClassroomHandler {
	return &ClassroomHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

func (h *ClassroomHandler) CreateClassroom(c *gin.Context) {
	h.LogRequest(c, "Creating classroom")

	var req services.CreateClassroomRequest
	if !h.bindJSON(c, &req) {
		return
	}

	classroom, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, classroom)
}

func (h *ClassroomHandler) GetClassroom(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Getting classroom", "classroom_id", id)

	classroom, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, classroom)
}

func (h *ClassroomHandler) ListClassrooms(c *gin.Context) {
	h.LogRequest(c, "Listing classrooms")

	page, size := parsePagination(c)

	resp, err := h.service.List(c.Request.Context(), page, size)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ClassroomHandler) UpdateClassroom(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Updating classroom", "classroom_id", id)

	var req services.UpdateClassroomRequest
	if !h.bindJSON(c, &req) {
		return
	}

	classroom, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, classroom)
}

func (h *ClassroomHandler) DeleteClassroom(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Deleting classroom", "classroom_id", id)

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
