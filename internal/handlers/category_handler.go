package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "expenso/internal/errors"
	"expenso/internal/services"
)

// CategoryHandler handles category-tree requests
type CategoryHandler struct {
	categoryService services.CategoryServicer
	auditService    services.AuditServicer
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService services.CategoryServicer, auditService services.AuditServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, auditService: auditService}
}

// CreateSubcategoryRequest represents the subcategory creation payload
type CreateSubcategoryRequest struct {
	Name   string `json:"name" binding:"required,min=1,max=100"`
	Budget int64  `json:"budget" binding:"omitempty,min=0"`
}

// UpdateCategoryRequest represents the category update payload. Absent fields
// are left unchanged.
type UpdateCategoryRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=1,max=100"`
	Budget *int64  `json:"budget" binding:"omitempty,min=0"`
}

// CreateSubcategory creates a child category under the given parent.
// @Summary     Create a subcategory
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Parent category ID"
// @Param       request body CreateSubcategoryRequest true "Subcategory data"
// @Success     201 {object} models.Category "Subcategory created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Parent category not found"
// @Router      /categories/{id}/subcategories [post]
func (h *CategoryHandler) CreateSubcategory(c *gin.Context) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	parentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSubcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.CreateSubcategory(p, parentID, req.Name, req.Budget)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if userID, ok := p.UserID(); ok {
		h.auditService.Log(userID, "create", "category", category.ID, c.ClientIP(), nil)
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// GetCategory returns a category with its direct children.
// @Summary     Get a category
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Success     200 {object} models.Category "Category"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
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

	category, err := h.categoryService.GetCategory(p, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// UpdateCategory renames a category or changes its budget.
// @Summary     Update a category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Param       request body UpdateCategoryRequest true "Fields to update"
// @Success     200 {object} models.Category "Category updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
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

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.UpdateCategory(p, categoryID, req.Name, req.Budget)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if userID, ok := p.UserID(); ok {
		h.auditService.Log(userID, "update", "category", category.ID, c.ClientIP(), nil)
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory deletes a category and its subtree. Deleting the root
// category deletes the whole report and is restricted to the owner.
// @Summary     Delete a category
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Success     200 {object} services.DeleteCategoryResult "Deletion result"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
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

	result, err := h.categoryService.DeleteCategory(p, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if userID, ok := p.UserID(); ok {
		h.auditService.Log(userID, "delete", "category", categoryID, c.ClientIP(), nil)
	}
	c.JSON(http.StatusOK, result)
}
