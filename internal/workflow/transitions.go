// Package workflow implements the expense approval state machine. The
// transition rules live in one lookup table keyed by (current status, actor
// class, decision) so the workflow is auditable and testable in isolation.
package workflow

import (
	"expenso/internal/authz"
	apperrors "expenso/internal/errors"
	"expenso/internal/models"
)

// ActorClass collapses resolved access into the three classes the state
// machine distinguishes. Submitter-level actors never reach the state
// machine; the gateway's minimum role for acting on expenses is REVIEWER.
type ActorClass int

const (
	// ActorGuest is a REVIEW_ONLY share-link holder.
	ActorGuest ActorClass = iota
	// ActorReviewer is a member whose effective role is REVIEWER.
	ActorReviewer
	// ActorAdmin is a member whose effective role is ADMIN (including the
	// report owner's implicit grant).
	ActorAdmin
)

// ClassOf derives the actor class from resolved access.
func ClassOf(acc *authz.Access) ActorClass {
	switch {
	case acc.IsGuest:
		return ActorGuest
	case acc.Role == models.RoleAdmin:
		return ActorAdmin
	default:
		return ActorReviewer
	}
}

// decision is the intent behind a requested target status.
type decision int

const (
	decisionApprove decision = iota
	decisionDeny
	decisionReimburse
)

// validStatuses is the closed set of expense states.
var validStatuses = map[models.ExpenseStatus]bool{
	models.StatusPendingReview: true,
	models.StatusPendingAdmin:  true,
	models.StatusApproved:      true,
	models.StatusDenied:        true,
	models.StatusReimbursed:    true,
}

// ValidStatus reports whether s is one of the five expense states.
func ValidStatus(s models.ExpenseStatus) bool { return validStatuses[s] }

// decisionFor maps a requested target status onto a decision. Requesting
// PENDING_ADMIN or APPROVED both mean "approve": the table decides where the
// approval actually lands, so a guest or reviewer asking for APPROVED still
// escalates to PENDING_ADMIN. PENDING_REVIEW is a valid enum value but never
// a legal target.
func decisionFor(requested models.ExpenseStatus) (decision, bool) {
	switch requested {
	case models.StatusPendingAdmin, models.StatusApproved:
		return decisionApprove, true
	case models.StatusDenied:
		return decisionDeny, true
	case models.StatusReimbursed:
		return decisionReimburse, true
	default:
		return 0, false
	}
}

// transitionKey identifies one row of the transition table.
type transitionKey struct {
	from  models.ExpenseStatus
	actor ActorClass
	dec   decision
}

// transitions is the complete state machine. Absent keys are illegal.
//
// A REVIEWER approval from PENDING_REVIEW escalates to PENDING_ADMIN, the
// same as the guest path: every non-admin approval is admin-ratified.
// DENIED and REIMBURSED have no outgoing rows.
var transitions = map[transitionKey]models.ExpenseStatus{
	{models.StatusPendingReview, ActorGuest, decisionApprove}:    models.StatusPendingAdmin,
	{models.StatusPendingReview, ActorGuest, decisionDeny}:       models.StatusDenied,
	{models.StatusPendingReview, ActorReviewer, decisionApprove}: models.StatusPendingAdmin,
	{models.StatusPendingReview, ActorReviewer, decisionDeny}:    models.StatusDenied,
	{models.StatusPendingReview, ActorAdmin, decisionApprove}:    models.StatusApproved,
	{models.StatusPendingReview, ActorAdmin, decisionDeny}:       models.StatusDenied,
	{models.StatusPendingAdmin, ActorAdmin, decisionApprove}:     models.StatusApproved,
	{models.StatusPendingAdmin, ActorAdmin, decisionDeny}:        models.StatusDenied,
	{models.StatusApproved, ActorAdmin, decisionReimburse}:       models.StatusReimbursed,
}

// Next returns the state the expense moves to when the actor requests the
// given target status. Unknown statuses are a bad request; legal statuses
// with no table row are forbidden for this actor/state combination.
func Next(current models.ExpenseStatus, actor ActorClass, requested models.ExpenseStatus) (models.ExpenseStatus, error) {
	if !ValidStatus(requested) {
		return "", apperrors.ErrInvalidExpenseStatus
	}
	dec, ok := decisionFor(requested)
	if !ok {
		return "", apperrors.ErrTransitionNotAllowed
	}
	next, ok := transitions[transitionKey{from: current, actor: actor, dec: dec}]
	if !ok {
		return "", apperrors.ErrTransitionNotAllowed
	}
	return next, nil
}
