// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("role", validateRole)
		_ = v.RegisterValidation("permission_level", validatePermissionLevel)
		_ = v.RegisterValidation("expense_status", validateExpenseStatus)
	}
}

func validateRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "ADMIN", "REVIEWER", "SUBMITTER":
		return true
	}
	return false
}

func validatePermissionLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "SUBMIT_ONLY", "REVIEW_ONLY":
		return true
	}
	return false
}

func validateExpenseStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "PENDING_REVIEW", "PENDING_ADMIN", "APPROVED", "DENIED", "REIMBURSED":
		return true
	}
	return false
}
