package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "expenso/internal/errors"
	"expenso/internal/models"
	"expenso/internal/pagination"
	"expenso/internal/services"
)

// ExpenseHandler handles expense lifecycle requests
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService services.ExpenseServicer, auditService services.AuditServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, auditService: auditService}
}

// SubmitExpenseRequest represents the expense submission payload
type SubmitExpenseRequest struct {
	Amount      int64  `json:"amount" binding:"required,min=1"`
	Description string `json:"description" binding:"required,min=1,max=500"`
	ReceiptRef  string `json:"receipt_ref" binding:"max=255"`
	GuestName   string `json:"guest_name" binding:"max=100"`
	GuestEmail  string `json:"guest_email" binding:"omitempty,email"`
}

// UpdateExpenseStatusRequest represents the status update payload
type UpdateExpenseStatusRequest struct {
	Status string `json:"status" binding:"required,expense_status"`
	Notes  string `json:"notes" binding:"max=500"`
}

func (h *ExpenseHandler) submit(c *gin.Context, categoryID uint) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SubmitExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expense, err := h.expenseService.Submit(p, categoryID, services.SubmitExpenseInput{
		Amount:      req.Amount,
		Description: req.Description,
		ReceiptRef:  req.ReceiptRef,
		GuestName:   req.GuestName,
		GuestEmail:  req.GuestEmail,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	if userID, ok := p.UserID(); ok {
		h.auditService.Log(userID, "create", "expense", expense.ID, c.ClientIP(), nil)
	}
	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// SubmitExpense submits an expense into a category.
// @Summary     Submit an expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Param       request body SubmitExpenseRequest true "Expense data"
// @Success     201 {object} models.Expense "Expense submitted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /categories/{id}/expenses [post]
func (h *ExpenseHandler) SubmitExpense(c *gin.Context) {
	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	h.submit(c, categoryID)
}

// ListCategoryExpenses lists the expenses of a single category.
// @Summary     List category expenses
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Expenses"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /categories/{id}/expenses [get]
func (h *ExpenseHandler) ListCategoryExpenses(c *gin.Context) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	resp, err := h.expenseService.ListCategoryExpenses(p, categoryID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetExpense returns a single expense.
// @Summary     Get an expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Expense ID"
// @Success     200 {object} models.Expense "Expense"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpense(p, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// ListApprovals returns the approval trail of an expense, oldest first.
// @Summary     List expense approvals
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Expense ID"
// @Success     200 {array} models.Approval "Approvals"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /expenses/{id}/approvals [get]
func (h *ExpenseHandler) ListApprovals(c *gin.Context) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	approvals, err := h.expenseService.ListApprovals(p, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"approvals": approvals})
}

func (h *ExpenseHandler) updateStatus(c *gin.Context) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateExpenseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expense, err := h.expenseService.UpdateStatus(p, expenseID, models.ExpenseStatus(req.Status), req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if userID, ok := p.UserID(); ok {
		h.auditService.Log(userID, "update", "expense", expense.ID, c.ClientIP(),
			map[string]interface{}{"status": string(expense.Status)})
	}
	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// UpdateExpenseStatus applies an approval transition to an expense.
// @Summary     Update expense status
// @Description The transition actually applied depends on the caller: a reviewer or guest requesting approval moves the expense to PENDING_ADMIN, not APPROVED
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Expense ID"
// @Param       request body UpdateExpenseStatusRequest true "Requested status"
// @Success     200 {object} models.Expense "Status updated"
// @Failure     400 {object} ErrorResponse "Unknown status"
// @Failure     403 {object} ErrorResponse "Transition not allowed"
// @Router      /expenses/{id}/status [put]
func (h *ExpenseHandler) UpdateExpenseStatus(c *gin.Context) {
	h.updateStatus(c)
}

// DeleteExpense removes an expense and its approval trail.
// @Summary     Delete an expense
// @Description Submitters may delete their own expense while it is still pending review; reviewers and admins may delete any expense they can act on
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Expense ID"
// @Success     200 {object} MessageResponse "Expense deleted"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(p, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	if userID, ok := p.UserID(); ok {
		h.auditService.Log(userID, "delete", "expense", expenseID, c.ClientIP(), nil)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted"})
}
