package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prof-it/school-service/internal/models"
	"github.com/prof-it/school-service/internal/services"
	"github.com/prof-it/school-service/internal/utils"
)

type PaymentHandler struct {
	BaseHandler
	service services.PaymentService
}

func NewPaymentHandler(service services.PaymentService, logger utils.Logger) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	h.LogRequest(c, "Creating payment")

	var req services.CreatePaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	payment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Getting payment", "payment_id", id)

	payment, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	// Students only see their own payments.
	role, _ := GetUserRoleFromContext(c)
	if role == models.RoleStudent {
		userID, _ := GetUserIDFromContext(c)
		if payment.StudentID != userID {
			c.JSON(http.StatusNotFound, ErrorResponse{Message: "Resource not found"})
			return
		}
	}

	c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	h.LogRequest(c, "Listing payments")

	studentID := c.Query("student_id")

	role, _ := GetUserRoleFromContext(c)
	if role == models.RoleStudent {
		userID, _ := GetUserIDFromContext(c)
		studentID = userID
	}

	page, size := parsePagination(c)

	resp, err := h.service.List(c.Request.Context(), studentID, c.Query("status"), page, size)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Updating payment", "payment_id", id)

	var req services.UpdatePaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	payment, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Marking payment paid", "payment_id", id)

	payment, err := h.service.MarkPaid(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Deleting payment", "payment_id", id)

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SendDueReminders triggers payment-due notifications; admin only.
func (h *PaymentHandler) SendDueReminders(c *gin.Context) {
	h.LogRequest(c, "Sending payment due reminders")

	sent, err := h.service.SendDueReminders(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reminders_sent": sent})
}
