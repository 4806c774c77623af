// Package authz contains the permission-resolution engine: the acting
// principal, the upward-walking resolver that finds a grant boundary, and
// the action gateway that maps (action, resolved access) to allow/deny.
package authz

import "expenso/internal/models"

// Principal is the acting party behind a request: an authenticated member
// or the anonymous holder of a share-link token. Modelling both as one type
// keeps the resolver and the expense state machine on a single code path.
type Principal struct {
	userID uint
	token  *models.GuestToken
}

// Member builds a principal for an authenticated user.
func Member(userID uint) Principal {
	return Principal{userID: userID}
}

// Guest builds a principal for a share-link holder.
func Guest(token *models.GuestToken) Principal {
	return Principal{token: token}
}

// IsGuest reports whether the principal is a share-link holder.
func (p Principal) IsGuest() bool { return p.token != nil }

// UserID returns the member's user ID. The second result is false for guests.
func (p Principal) UserID() (uint, bool) {
	if p.token != nil {
		return 0, false
	}
	return p.userID, true
}

// Token returns the guest token, or nil for members.
func (p Principal) Token() *models.GuestToken { return p.token }
