package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "expenso/internal/errors"
	"expenso/internal/pagination"
	"expenso/internal/services"
)

// ReportHandler handles report workspace requests
type ReportHandler struct {
	reportService services.ReportServicer
	auditService  services.AuditServicer
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService services.ReportServicer, auditService services.AuditServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService, auditService: auditService}
}

// CreateReportRequest represents the report creation payload
type CreateReportRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CreateReport creates a report and its root category.
// @Summary     Create a report
// @Description Create an expense report; a root category with the same name is created with it
// @Tags        reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateReportRequest true "Report data"
// @Success     201 {object} models.Report "Report created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /reports [post]
func (h *ReportHandler) CreateReport(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	report, err := h.reportService.CreateReport(userID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "create", "report", report.ID, c.ClientIP(), nil)
	c.JSON(http.StatusCreated, gin.H{"report": report})
}

// ListReports lists reports the user owns or has a grant into.
// @Summary     List reports
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Report] "Reports"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /reports [get]
func (h *ReportHandler) ListReports(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	resp, err := h.reportService.ListReports(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetReport returns a single report with its root category.
// @Summary     Get a report
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Report ID"
// @Success     200 {object} models.Report "Report"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /reports/{id} [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reportID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.reportService.GetReport(p, reportID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// DeleteReport deletes a report and everything under it.
// @Summary     Delete a report
// @Description Owner-only; removes the category tree, expenses, approvals, grants and share links
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Report ID"
// @Success     200 {object} MessageResponse "Report deleted"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /reports/{id} [delete]
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reportID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.reportService.DeleteReport(userID, reportID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "delete", "report", reportID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"message": "Report deleted"})
}
