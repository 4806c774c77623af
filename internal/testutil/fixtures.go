package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"expenso/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestReport creates a report with its root category, the way the
// report service does.
func CreateTestReport(t *testing.T, db *gorm.DB, ownerID uint) (*models.Report, *models.Category) {
	t.Helper()

	report := &models.Report{
		Name:    fmt.Sprintf("Test Report %d", nextID()),
		OwnerID: ownerID,
	}
	if err := db.Create(report).Error; err != nil {
		t.Fatalf("failed to create test report: %v", err)
	}

	root := &models.Category{
		ReportID: report.ID,
		Name:     report.Name,
	}
	if err := db.Create(root).Error; err != nil {
		t.Fatalf("failed to create test root category: %v", err)
	}
	return report, root
}

// CreateTestCategory creates a category under the given parent.
func CreateTestCategory(t *testing.T, db *gorm.DB, parent *models.Category) *models.Category {
	t.Helper()

	category := &models.Category{
		ReportID: parent.ReportID,
		ParentID: &parent.ID,
		Name:     fmt.Sprintf("Test Category %d", nextID()),
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestPermission grants the given role on a category.
func CreateTestPermission(t *testing.T, db *gorm.DB, userID, categoryID uint, role models.Role) *models.CategoryPermission {
	t.Helper()

	perm := &models.CategoryPermission{
		UserID:     userID,
		CategoryID: categoryID,
		Role:       role,
	}
	if err := db.Create(perm).Error; err != nil {
		t.Fatalf("failed to create test permission: %v", err)
	}
	return perm
}

// CreateTestGuestToken creates a share link on a category with no expiry.
func CreateTestGuestToken(t *testing.T, db *gorm.DB, categoryID, createdBy uint, level models.PermissionLevel) *models.GuestToken {
	t.Helper()
	return CreateTestGuestTokenExpiring(t, db, categoryID, createdBy, level, nil)
}

// CreateTestGuestTokenExpiring creates a share link with the given expiry.
func CreateTestGuestTokenExpiring(t *testing.T, db *gorm.DB, categoryID, createdBy uint, level models.PermissionLevel, expiresAt *time.Time) *models.GuestToken {
	t.Helper()

	token := &models.GuestToken{
		Token:           fmt.Sprintf("test-token-%d", nextID()),
		CategoryID:      categoryID,
		PermissionLevel: level,
		CreatedBy:       createdBy,
		ExpiresAt:       expiresAt,
	}
	if err := db.Create(token).Error; err != nil {
		t.Fatalf("failed to create test guest token: %v", err)
	}
	return token
}

// CreateTestExpense creates a pending expense submitted by the given user.
func CreateTestExpense(t *testing.T, db *gorm.DB, category *models.Category, submitterID uint) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		CategoryID:  category.ID,
		ReportID:    category.ReportID,
		SubmitterID: &submitterID,
		Amount:      2500,
		Description: fmt.Sprintf("Test Expense %d", nextID()),
		Status:      models.StatusPendingReview,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestGuestExpense creates a pending expense submitted through a share link.
func CreateTestGuestExpense(t *testing.T, db *gorm.DB, category *models.Category) *models.Expense {
	t.Helper()

	n := nextID()
	expense := &models.Expense{
		CategoryID:  category.ID,
		ReportID:    category.ReportID,
		Amount:      2500,
		Description: fmt.Sprintf("Guest Expense %d", n),
		Status:      models.StatusPendingReview,
		GuestName:   fmt.Sprintf("Guest %d", n),
		GuestEmail:  fmt.Sprintf("guest%d@test.com", n),
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test guest expense: %v", err)
	}
	return expense
}
