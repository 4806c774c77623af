package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"expenso/internal/authz"
	"expenso/internal/database"
	apperrors "expenso/internal/errors"
	"expenso/internal/models"
	"expenso/internal/token"
)

// permissionService handles grants and share links.
type permissionService struct {
	db *gorm.DB
}

// NewPermissionService creates a new PermissionServicer.
func NewPermissionService(db *gorm.DB) PermissionServicer {
	return &permissionService{db: db}
}

// requireManage resolves the principal at the category and checks the
// manage-permissions action. Runs on the caller's transaction so a
// concurrent revoke cannot race the guarded write.
func (s *permissionService) requireManage(tx *gorm.DB, p authz.Principal, categoryID uint) error {
	acc, err := authz.Resolve(tx, p, categoryID)
	if err != nil {
		return err
	}
	if !authz.Allowed(acc, authz.ActionManagePermissions) {
		return apperrors.ErrForbidden
	}
	return nil
}

// Grant upserts a permission row for (targetUserID, categoryID). Granting to
// the report owner is allowed and harmless: the resolver short-circuits on
// ownership before reading rows.
func (s *permissionService) Grant(p authz.Principal, categoryID, targetUserID uint, role models.Role) (*models.CategoryPermission, bool, error) {
	if !authz.ValidRole(role) {
		return nil, false, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown role")
	}

	var grant models.CategoryPermission
	var created bool
	err := database.InTransaction(s.db, func(tx *gorm.DB) error {
		if err := s.requireManage(tx, p, categoryID); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", targetUserID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperrors.ErrUserNotFound
		}

		err := tx.Where("user_id = ? AND category_id = ?", targetUserID, categoryID).First(&grant).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			grant = models.CategoryPermission{
				UserID:     targetUserID,
				CategoryID: categoryID,
				Role:       role,
			}
			created = true
			return tx.Create(&grant).Error
		case err != nil:
			return err
		default:
			grant.Role = role
			return tx.Model(&grant).Update("role", role).Error
		}
	})
	if err != nil {
		return nil, false, wrapInternal(err)
	}
	return &grant, created, nil
}

// Revoke deletes the grant for the exact (user, category) pair. The grant's
// absence is a plain NotFound: the caller has already proven admin access to
// the category named in the request.
func (s *permissionService) Revoke(p authz.Principal, categoryID, targetUserID uint) error {
	err := database.InTransaction(s.db, func(tx *gorm.DB) error {
		if err := s.requireManage(tx, p, categoryID); err != nil {
			return err
		}
		res := tx.Where("user_id = ? AND category_id = ?", targetUserID, categoryID).
			Delete(&models.CategoryPermission{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrPermissionNotFound
		}
		return nil
	})
	return wrapInternal(err)
}

// List returns the explicit grants on one category (not inherited ones).
func (s *permissionService) List(p authz.Principal, categoryID uint) ([]models.CategoryPermission, error) {
	if err := s.requireManage(s.db, p, categoryID); err != nil {
		return nil, wrapInternal(err)
	}
	var grants []models.CategoryPermission
	if err := s.db.Preload("User").Where("category_id = ?", categoryID).Find(&grants).Error; err != nil {
		return nil, wrapInternal(err)
	}
	return grants, nil
}

// CreateShareLink mints a guest token scoped to the category. An expiry, if
// given, must be strictly in the future.
func (s *permissionService) CreateShareLink(p authz.Principal, categoryID uint, level models.PermissionLevel, expiresAt *time.Time) (*models.GuestToken, error) {
	if level != models.LevelSubmitOnly && level != models.LevelReviewOnly {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown permission level")
	}
	if expiresAt != nil && !expiresAt.After(time.Now()) {
		return nil, apperrors.ErrExpiryNotFuture
	}

	secret, err := token.New()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	link := &models.GuestToken{
		Token:           secret,
		CategoryID:      categoryID,
		PermissionLevel: level,
		ExpiresAt:       expiresAt,
	}
	err = database.InTransaction(s.db, func(tx *gorm.DB) error {
		acc, err := authz.Resolve(tx, p, categoryID)
		if err != nil {
			return err
		}
		if !authz.Allowed(acc, authz.ActionManagePermissions) {
			return apperrors.ErrForbidden
		}
		if uid, ok := p.UserID(); ok {
			link.CreatedBy = uid
		}
		return tx.Create(link).Error
	})
	if err != nil {
		return nil, wrapInternal(err)
	}
	return link, nil
}

// ListShareLinks returns the share links on one category.
func (s *permissionService) ListShareLinks(p authz.Principal, categoryID uint) ([]models.GuestToken, error) {
	if err := s.requireManage(s.db, p, categoryID); err != nil {
		return nil, wrapInternal(err)
	}
	var links []models.GuestToken
	if err := s.db.Where("category_id = ?", categoryID).Find(&links).Error; err != nil {
		return nil, wrapInternal(err)
	}
	return links, nil
}

// RevokeShareLink deletes a share link on the given category. Like grant
// revocation, a missing link under a category the caller administers is a
// plain NotFound.
func (s *permissionService) RevokeShareLink(p authz.Principal, categoryID, linkID uint) error {
	err := database.InTransaction(s.db, func(tx *gorm.DB) error {
		if err := s.requireManage(tx, p, categoryID); err != nil {
			return err
		}
		res := tx.Where("id = ? AND category_id = ?", linkID, categoryID).Delete(&models.GuestToken{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrShareLinkNotFound
		}
		return nil
	})
	return wrapInternal(err)
}

// LookupGuestToken resolves a share-link secret. Expiry is checked against
// the wall clock here, on every use; the result is never cached across
// requests.
func (s *permissionService) LookupGuestToken(secret string) (*models.GuestToken, error) {
	var tok models.GuestToken
	if err := s.db.Where("token = ?", secret).First(&tok).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidShareToken
		}
		return nil, wrapInternal(err)
	}
	if tok.Expired(time.Now()) {
		return nil, apperrors.ErrInvalidShareToken
	}
	return &tok, nil
}
