package services

import (
	"errors"

	"gorm.io/gorm"

	"expenso/internal/authz"
	"expenso/internal/database"
	apperrors "expenso/internal/errors"
	"expenso/internal/models"
	"expenso/internal/pagination"
)

// reportService handles report-workspace business logic.
type reportService struct {
	db *gorm.DB
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB) ReportServicer {
	return &reportService{db: db}
}

// CreateReport creates a report together with its root category in one
// transaction; a report without a root never becomes visible.
func (s *reportService) CreateReport(ownerID uint, name string) (*models.Report, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "report name is required")
	}

	report := &models.Report{Name: name, OwnerID: ownerID}
	err := database.InTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return err
		}
		root := &models.Category{
			ReportID: report.ID,
			Name:     name,
		}
		if err := tx.Create(root).Error; err != nil {
			return err
		}
		report.Categories = []models.Category{*root}
		return nil
	})
	if err != nil {
		return nil, wrapInternal(err)
	}
	return report, nil
}

// GetReport retrieves a report the principal can view. Access is resolved at
// the root category; a missing report is indistinguishable from an
// inaccessible one.
func (s *reportService) GetReport(p authz.Principal, reportID uint) (*models.Report, error) {
	var report models.Report
	if err := s.db.Preload("Categories", "parent_id IS NULL").First(&report, reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrForbidden
		}
		return nil, wrapInternal(err)
	}
	if len(report.Categories) == 0 {
		return nil, apperrors.ErrForbidden
	}

	acc, err := authz.Resolve(s.db, p, report.Categories[0].ID)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if !authz.Allowed(acc, authz.ActionViewCategory) {
		return nil, apperrors.ErrForbidden
	}
	return &report, nil
}

// ListReports returns reports the user owns plus reports shared with them
// through any permission grant.
func (s *reportService) ListReports(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Report], error) {
	page.Defaults()

	shared := s.db.Model(&models.Category{}).
		Select("categories.report_id").
		Joins("JOIN category_permissions ON category_permissions.category_id = categories.id").
		Where("category_permissions.user_id = ?", userID)

	base := s.db.Model(&models.Report{}).Where("owner_id = ? OR id IN (?)", userID, shared)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, wrapInternal(err)
	}

	var reports []models.Report
	if err := base.Scopes(pagination.Paginate(page)).Order("id").Find(&reports).Error; err != nil {
		return nil, wrapInternal(err)
	}

	result := pagination.NewPageResponse(reports, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// DeleteReport cascade-deletes a report. Only the owner may do this; any
// other caller — including admins granted at the root — gets Forbidden, as
// does a caller targeting a report that does not exist.
func (s *reportService) DeleteReport(userID, reportID uint) error {
	err := database.InTransaction(s.db, func(tx *gorm.DB) error {
		var report models.Report
		if err := tx.First(&report, reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrForbidden
			}
			return err
		}
		if report.OwnerID != userID {
			return apperrors.ErrForbidden
		}
		return deleteReportCascade(tx, reportID)
	})
	return wrapInternal(err)
}
