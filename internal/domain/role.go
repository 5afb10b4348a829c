package domain

import "time"

// Tier is the access level gating privileged operations.
type Tier int

const (
	TierNone      Tier = 0
	TierSupport   Tier = 1
	TierFullAdmin Tier = 2
)

// String renders the tier for logs and staff-facing text.
func (t Tier) String() string {
	switch t {
	case TierSupport:
		return "SUPPORT"
	case TierFullAdmin:
		return "FULL_ADMIN"
	default:
		return "NONE"
	}
}

// RoleAssignment grants an actor a staff tier. At most one assignment exists
// per actor id.
type RoleAssignment struct {
	ActorID   int64
	Tier      Tier
	GrantedBy int64
	GrantedAt time.Time
}
