package authz

import "expenso/internal/models"

// roleRank orders roles for comparisons: ADMIN > REVIEWER > SUBMITTER.
// Unknown roles rank below everything.
var roleRank = map[models.Role]int{
	models.RoleSubmitter: 1,
	models.RoleReviewer:  2,
	models.RoleAdmin:     3,
}

// RoleAtLeast reports whether role meets or exceeds min.
func RoleAtLeast(role, min models.Role) bool {
	return roleRank[role] >= roleRank[min]
}

// ValidRole reports whether the value is one of the three known roles.
func ValidRole(role models.Role) bool {
	_, ok := roleRank[role]
	return ok
}
