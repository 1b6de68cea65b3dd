package domain

// Role represents an authenticated caller's role.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleRoundHead Role = "ROUND_HEAD"
)

// Actor carries the already-authenticated claims of a caller. Token issuance
// is an external collaborator; the core only consumes the resolved claims.
type Actor struct {
	Email string
	Role  Role
	// Round is the round number a round-head is assigned to. Zero for admins.
	Round int
}

// CanMutate is the access-policy predicate: admins may mutate any round, a
// round-head only the round assigned to them. Pure, no persistence.
func (a Actor) CanMutate(roundNumber int) bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleRoundHead:
		return a.Round == roundNumber
	}
	return false
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
