package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"expenso/internal/authz"
	apperrors "expenso/internal/errors"
	"expenso/internal/models"
	"expenso/internal/services"
)

type mockCategoryService struct {
	createSubcategoryFn func(p authz.Principal, parentID uint, name string, budget int64) (*models.Category, error)
	getCategoryFn       func(p authz.Principal, categoryID uint) (*models.Category, error)
	updateCategoryFn    func(p authz.Principal, categoryID uint, name *string, budget *int64) (*models.Category, error)
	deleteCategoryFn    func(p authz.Principal, categoryID uint) (*services.DeleteCategoryResult, error)
}

func (m *mockCategoryService) CreateSubcategory(p authz.Principal, parentID uint, name string, budget int64) (*models.Category, error) {
	if m.createSubcategoryFn != nil {
		return m.createSubcategoryFn(p, parentID, name, budget)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) GetCategory(p authz.Principal, categoryID uint) (*models.Category, error) {
	if m.getCategoryFn != nil {
		return m.getCategoryFn(p, categoryID)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) UpdateCategory(p authz.Principal, categoryID uint, name *string, budget *int64) (*models.Category, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(p, categoryID, name, budget)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) DeleteCategory(p authz.Principal, categoryID uint) (*services.DeleteCategoryResult, error) {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(p, categoryID)
	}
	return &services.DeleteCategoryResult{}, nil
}

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	r := gin.New()
	r.POST("/categories/:id/subcategories", injectUserID(1), handler.CreateSubcategory)
	r.GET("/categories/:id", injectUserID(1), handler.GetCategory)
	r.PUT("/categories/:id", injectUserID(1), handler.UpdateCategory)
	r.DELETE("/categories/:id", injectUserID(1), handler.DeleteCategory)
	return r
}

func TestCategoryHandler_CreateSubcategory(t *testing.T) {
	t.Run("returns 201 with category envelope", func(t *testing.T) {
		svc := &mockCategoryService{
			createSubcategoryFn: func(_ authz.Principal, parentID uint, name string, budget int64) (*models.Category, error) {
				if parentID != 5 {
					t.Errorf("expected parent 5, got %d", parentID)
				}
				if budget != 10000 {
					t.Errorf("expected budget 10000, got %d", budget)
				}
				return &models.Category{Base: models.Base{ID: 6}, Name: name, Budget: budget}, nil
			},
		}
		handler := NewCategoryHandler(svc, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "POST", "/categories/5/subcategories", `{"name":"Meals","budget":10000}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		category := result["category"].(map[string]interface{})
		if category["name"] != "Meals" {
			t.Errorf("expected name Meals, got %v", category["name"])
		}
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		handler := NewCategoryHandler(&mockCategoryService{}, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "POST", "/categories/5/subcategories", `{"budget":100}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 404 when parent is missing", func(t *testing.T) {
		svc := &mockCategoryService{
			createSubcategoryFn: func(authz.Principal, uint, string, int64) (*models.Category, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		handler := NewCategoryHandler(svc, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "POST", "/categories/99/subcategories", `{"name":"Meals"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
	})
}

func TestCategoryHandler_UpdateCategory(t *testing.T) {
	t.Run("passes only present fields", func(t *testing.T) {
		svc := &mockCategoryService{
			updateCategoryFn: func(_ authz.Principal, _ uint, name *string, budget *int64) (*models.Category, error) {
				if name == nil || *name != "Renamed" {
					t.Errorf("expected name Renamed, got %v", name)
				}
				if budget != nil {
					t.Errorf("expected nil budget, got %d", *budget)
				}
				return &models.Category{Name: *name}, nil
			},
		}
		handler := NewCategoryHandler(svc, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "PUT", "/categories/5", `{"name":"Renamed"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 403 when the service denies", func(t *testing.T) {
		svc := &mockCategoryService{
			updateCategoryFn: func(authz.Principal, uint, *string, *int64) (*models.Category, error) {
				return nil, apperrors.ErrForbidden
			},
		}
		handler := NewCategoryHandler(svc, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "PUT", "/categories/5", `{"name":"Renamed"}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_DeleteCategory(t *testing.T) {
	t.Run("returns the deletion result directly", func(t *testing.T) {
		svc := &mockCategoryService{
			deleteCategoryFn: func(_ authz.Principal, categoryID uint) (*services.DeleteCategoryResult, error) {
				return &services.DeleteCategoryResult{ReportDeleted: true, ReportID: 3}, nil
			},
		}
		handler := NewCategoryHandler(svc, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "DELETE", "/categories/1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["report_deleted"] != true {
			t.Errorf("expected report_deleted true, got %v", result["report_deleted"])
		}
		if result["report_id"] != float64(3) {
			t.Errorf("expected report_id 3, got %v", result["report_id"])
		}
	})

	t.Run("returns 403 when expenses block deletion", func(t *testing.T) {
		svc := &mockCategoryService{
			deleteCategoryFn: func(authz.Principal, uint) (*services.DeleteCategoryResult, error) {
				return nil, apperrors.ErrCategoryHasExpenses
			},
		}
		handler := NewCategoryHandler(svc, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "DELETE", "/categories/1", "")

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_HAS_EXPENSES")
	})
}
