package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prof-it/school-service/internal/services"
	"github.com/prof-it/school-service/internal/utils"
)

type GroupHandler struct {
	BaseHandler
	service services.GroupService
}

func NewGroupHandler(service services.GroupService, logger utils.Logger) *GroupHandler {
	return &GroupHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

func (h *GroupHandler) CreateGroup(c *gin.Context) {
	h.LogRequest(c, "Creating group")

	var req services.CreateGroupRequest
	if !h.bindJSON(c, &req) {
		return
	}

	group, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, group)
}

func (h *GroupHandler) GetGroup(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Getting group", "group_id", id)

	group, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) ListGroups(c *gin.Context) {
	h.LogRequest(c, "Listing groups")

	page, size := parsePagination(c)

	resp, err := h.service.List(c.Request.Context(), c.Query("teacher_id"), c.Query("student_id"), page, size)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Updating group", "group_id", id)

	var req services.UpdateGroupRequest
	if !h.bindJSON(c, &req) {
		return
	}

	group, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Deleting group", "group_id", id)

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *GroupHandler) AddStudent(c *gin.Context) {
	groupID := c.Param("id")
	studentID := c.Param("student_id")
	h.LogRequest(c, "Adding student to group", "group_id", groupID, "student_id", studentID)

	if err := h.service.AddStudent(c.Request.Context(), groupID, studentID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "student added"})
}

func (h *GroupHandler) RemoveStudent(c *gin.Context) {
	groupID := c.Param("id")
	studentID := c.Param("student_id")
	h.LogRequest(c, "Removing student from group", "group_id", groupID, "student_id", studentID)

	if err := h.service.RemoveStudent(c.Request.Context(), groupID, studentID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
