package authz

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"expenso/internal/models"
)

// maxTreeDepth bounds the upward walk. The tree invariant forbids cycles;
// the bound turns a corrupted parent chain into an error instead of a loop.
const maxTreeDepth = 128

// Access is the result of resolving a principal against a target category.
type Access struct {
	// Role is the effective role at the target category.
	Role models.Role
	// BoundaryID is the category at which the role was granted: an explicit
	// permission row, the report root for owners, or the share-link category
	// for guests.
	BoundaryID uint
	// IsDirect is true when the target category is the boundary itself.
	// Structural REVIEWER actions are only allowed when it is false.
	IsDirect bool
	// IsGuest marks share-link principals.
	IsGuest bool
	// IsOwner marks the report owner's implicit root grant.
	IsOwner bool
	// Level is the share-link permission level; empty for members.
	Level models.PermissionLevel
}

// AncestorChain returns the category's ancestor chain, target first, root
// last, by iterative parent fetches. A missing target yields (nil, nil):
// callers must treat that identically to "no access". A parent chain that
// dead-ends or cycles is a data-integrity error.
func AncestorChain(db *gorm.DB, categoryID uint) ([]models.Category, error) {
	var chain []models.Category
	id := categoryID
	for depth := 0; depth < maxTreeDepth; depth++ {
		var cat models.Category
		if err := db.First(&cat, id).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			if len(chain) == 0 {
				return nil, nil
			}
			return nil, fmt.Errorf("broken parent chain at category %d", id)
		}
		chain = append(chain, cat)
		if cat.ParentID == nil {
			return chain, nil
		}
		id = *cat.ParentID
	}
	return nil, fmt.Errorf("category %d exceeds max tree depth", categoryID)
}

// Resolve computes the principal's effective access at the target category.
// A nil Access with a nil error means no access; a non-existent target is
// deliberately indistinguishable from an insufficient role.
//
// Members: the report owner holds an implicit ADMIN grant at the root.
// Otherwise the nearest explicit CategoryPermission row on the chain
// (inclusive of the target) wins. Guests: no walk for the grant — the token
// category is the sole boundary, and it must lie on the target's chain.
// Token expiry is checked against the wall clock at the moment of use.
func Resolve(db *gorm.DB, p Principal, categoryID uint) (*Access, error) {
	chain, err := AncestorChain(db, categoryID)
	if err != nil || chain == nil {
		return nil, err
	}
	target := chain[0]
	root := chain[len(chain)-1]

	if p.IsGuest() {
		tok := p.Token()
		if tok.Expired(time.Now()) {
			return nil, nil
		}
		for _, cat := range chain {
			if cat.ID == tok.CategoryID {
				return &Access{
					Role:       tok.Role(),
					BoundaryID: tok.CategoryID,
					IsDirect:   target.ID == tok.CategoryID,
					IsGuest:    true,
					Level:      tok.PermissionLevel,
				}, nil
			}
		}
		return nil, nil
	}

	userID, _ := p.UserID()

	var report models.Report
	if err := db.First(&report, target.ReportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if report.OwnerID == userID {
		return &Access{
			Role:       models.RoleAdmin,
			BoundaryID: root.ID,
			IsDirect:   target.ID == root.ID,
			IsOwner:    true,
		}, nil
	}

	ids := make([]uint, len(chain))
	for i, cat := range chain {
		ids[i] = cat.ID
	}
	var grants []models.CategoryPermission
	if err := db.Where("user_id = ? AND category_id IN ?", userID, ids).Find(&grants).Error; err != nil {
		return nil, err
	}
	byCategory := make(map[uint]models.Role, len(grants))
	for _, g := range grants {
		byCategory[g.CategoryID] = g.Role
	}
	for _, cat := range chain {
		if role, ok := byCategory[cat.ID]; ok {
			return &Access{
				Role:       role,
				BoundaryID: cat.ID,
				IsDirect:   cat.ID == target.ID,
			}, nil
		}
	}
	return nil, nil
}
