package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prof-it/school-service/internal/services"
	"github.com/prof-it/school-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	BaseHandler
	service services.ReportService
}

func NewReportHandler(service services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

func (h *ReportHandler) ExportPayments(c *gin.Context) {
	h.LogRequest(c, "Exporting payments report")

	data, err := h.service.ExportPayments(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendWorkbook(c, "payments", data)
}

func (h *ReportHandler) ExportAttendances(c *gin.Context) {
	h.LogRequest(c, "Exporting attendances report")

	data, err := h.service.ExportAttendances(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendWorkbook(c, "attendances", data)
}

func (h *ReportHandler) sendWorkbook(c *gin.Context, name string, data []byte) {
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
