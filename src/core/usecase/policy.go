package usecase

import (
	"fmt"

	"goblet/src/core/domain"
)

// requireMutate enforces the access policy on every state-changing entry
// point: admins may mutate any round, round-heads only their assigned round.
func requireMutate(actor domain.Actor, roundNumber int) error {
	if actor.CanMutate(roundNumber) {
		return nil
	}
	return domain.NewForbiddenError(fmt.Sprintf("actor %q may not mutate round %d", actor.Email, roundNumber))
}

// requireAdmin restricts an operation to the admin role.
func requireAdmin(actor domain.Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	return domain.NewForbiddenError("admin role required")
}
