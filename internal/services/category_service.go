package services

import (
	"errors"

	"gorm.io/gorm"

	"expenso/internal/authz"
	"expenso/internal/database"
	apperrors "expenso/internal/errors"
	"expenso/internal/models"
)

// categoryService handles category-tree business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateSubcategory creates a child category under parentID. The intended
// parent's existence is the first gate here — a dangling parent id is a
// plain NotFound, because the permission being probed is the caller's own
// access to that parent. Creating a root category is report creation and is
// not reachable through this path.
func (s *categoryService) CreateSubcategory(p authz.Principal, parentID uint, name string, budget int64) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if budget < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget cannot be negative")
	}

	var category *models.Category
	err := database.InTransaction(s.db, func(tx *gorm.DB) error {
		var parent models.Category
		if err := tx.First(&parent, parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.WithMessage(apperrors.ErrCategoryNotFound, "Parent category not found")
			}
			return err
		}

		acc, err := authz.Resolve(tx, p, parentID)
		if err != nil {
			return err
		}
		if !authz.Allowed(acc, authz.ActionCreateSubcategory) {
			return apperrors.ErrForbidden
		}

		category = &models.Category{
			ReportID: parent.ReportID,
			ParentID: &parent.ID,
			Name:     name,
			Budget:   budget,
		}
		return tx.Create(category).Error
	})
	if err != nil {
		return nil, wrapInternal(err)
	}
	return category, nil
}

// GetCategory retrieves a category with its children for any principal that
// can view it. Missing and inaccessible are the same answer.
func (s *categoryService) GetCategory(p authz.Principal, categoryID uint) (*models.Category, error) {
	acc, err := authz.Resolve(s.db, p, categoryID)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if !authz.Allowed(acc, authz.ActionViewCategory) {
		return nil, apperrors.ErrForbidden
	}

	var category models.Category
	if err := s.db.Preload("Children").First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrForbidden
		}
		return nil, wrapInternal(err)
	}
	return &category, nil
}

// UpdateCategory changes a category's name and/or budget. A REVIEWER may
// only edit categories strictly below their grant boundary; an ADMIN may
// edit at the boundary too.
func (s *categoryService) UpdateCategory(p authz.Principal, categoryID uint, name *string, budget *int64) (*models.Category, error) {
	if name != nil && *name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name cannot be empty")
	}
	if budget != nil && *budget < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget cannot be negative")
	}

	var category models.Category
	err := database.InTransaction(s.db, func(tx *gorm.DB) error {
		acc, err := authz.Resolve(tx, p, categoryID)
		if err != nil {
			return err
		}
		if !authz.Allowed(acc, authz.ActionEditCategory) {
			return apperrors.ErrForbidden
		}

		if err := tx.First(&category, categoryID).Error; err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if name != nil {
			updates["name"] = *name
		}
		if budget != nil {
			updates["budget"] = *budget
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&category).Updates(updates).Error
	})
	if err != nil {
		return nil, wrapInternal(err)
	}
	return &category, nil
}

// DeleteCategory removes a category subtree. Deleting a root category
// deletes the whole report and is reserved for the report owner. A REVIEWER
// may delete only an empty leaf strictly below their boundary; an ADMIN
// deletes any subtree at or below theirs.
func (s *categoryService) DeleteCategory(p authz.Principal, categoryID uint) (*DeleteCategoryResult, error) {
	result := &DeleteCategoryResult{}
	err := database.InTransaction(s.db, func(tx *gorm.DB) error {
		acc, err := authz.Resolve(tx, p, categoryID)
		if err != nil {
			return err
		}
		if acc == nil {
			return apperrors.ErrForbidden
		}

		var category models.Category
		if err := tx.First(&category, categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrForbidden
			}
			return err
		}
		result.ReportID = category.ReportID

		if category.IsRoot() {
			if !acc.IsOwner {
				return apperrors.ErrRootDeletionNotOwner
			}
			result.ReportDeleted = true
			return deleteReportCascade(tx, category.ReportID)
		}

		if !authz.Allowed(acc, authz.ActionDeleteCategory) {
			return apperrors.ErrForbidden
		}
		if acc.Role != models.RoleAdmin {
			var count int64
			if err := tx.Model(&models.Expense{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return apperrors.ErrCategoryHasExpenses
			}
			if err := tx.Model(&models.Category{}).Where("parent_id = ?", categoryID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return apperrors.ErrCategoryHasChildren
			}
		}

		levels, err := collectSubtreeLevels(tx, categoryID)
		if err != nil {
			return err
		}
		return deleteSubtree(tx, levels)
	})
	if err != nil {
		return nil, wrapInternal(err)
	}
	return result, nil
}
