package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "expenso/internal/errors"
	"expenso/internal/middleware"
	"expenso/internal/models"
	"expenso/internal/pagination"
	"expenso/internal/services"
)

// GuestHandler handles share-link guest requests. Guests carry no JWT; the
// guest middleware resolves their token and every route here is scoped to
// the token's category.
type GuestHandler struct {
	categoryService services.CategoryServicer
	expenseService  services.ExpenseServicer
}

// NewGuestHandler creates a new GuestHandler
func NewGuestHandler(categoryService services.CategoryServicer, expenseService services.ExpenseServicer) *GuestHandler {
	return &GuestHandler{categoryService: categoryService, expenseService: expenseService}
}

func guestToken(c *gin.Context) (*models.GuestToken, error) {
	v, exists := c.Get(middleware.GuestTokenKey)
	if !exists {
		return nil, apperrors.ErrUnauthorized
	}
	token, ok := v.(*models.GuestToken)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	return token, nil
}

// GetCategory returns the category the share link is scoped to.
// @Summary     Get the shared category
// @Tags        guest
// @Produce     json
// @Param       X-Share-Token header string true "Share-link token"
// @Success     200 {object} models.Category "Category"
// @Failure     401 {object} ErrorResponse "Invalid or expired token"
// @Router      /guest/category [get]
func (h *GuestHandler) GetCategory(c *gin.Context) {
	token, err := guestToken(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.GetCategory(p, token.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category":         category,
		"permission_level": token.PermissionLevel,
	})
}

// ListExpenses lists the expenses of the shared category.
// @Summary     List shared-category expenses
// @Tags        guest
// @Produce     json
// @Param       X-Share-Token header string true "Share-link token"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Expenses"
// @Failure     401 {object} ErrorResponse "Invalid or expired token"
// @Router      /guest/expenses [get]
func (h *GuestHandler) ListExpenses(c *gin.Context) {
	token, err := guestToken(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	resp, err := h.expenseService.ListCategoryExpenses(p, token.CategoryID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SubmitExpense submits an expense into the shared category.
// @Summary     Submit an expense as a guest
// @Description Requires a SUBMIT_ONLY share link; guest name and email identify the submitter
// @Tags        guest
// @Accept      json
// @Produce     json
// @Param       X-Share-Token header string true "Share-link token"
// @Param       request body SubmitExpenseRequest true "Expense data"
// @Success     201 {object} models.Expense "Expense submitted"
// @Failure     401 {object} ErrorResponse "Invalid or expired token"
// @Failure     403 {object} ErrorResponse "Share link is review-only"
// @Router      /guest/expenses [post]
func (h *GuestHandler) SubmitExpense(c *gin.Context) {
	token, err := guestToken(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

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

	expense, err := h.expenseService.Submit(p, token.CategoryID, services.SubmitExpenseInput{
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

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// UpdateExpenseStatus lets a review-only guest act on a pending expense.
// @Summary     Update expense status as a guest
// @Description Requires a REVIEW_ONLY share link; guest approval always lands on PENDING_ADMIN
// @Tags        guest
// @Accept      json
// @Produce     json
// @Param       X-Share-Token header string true "Share-link token"
// @Param       id path int true "Expense ID"
// @Param       request body UpdateExpenseStatusRequest true "Requested status"
// @Success     200 {object} models.Expense "Status updated"
// @Failure     401 {object} ErrorResponse "Invalid or expired token"
// @Failure     403 {object} ErrorResponse "Transition not allowed"
// @Router      /guest/expenses/{id}/status [put]
func (h *GuestHandler) UpdateExpenseStatus(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}
