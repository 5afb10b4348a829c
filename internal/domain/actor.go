package domain

import "time"

// Actor is any external identity interacting with the desk, customer or
// staff. The numeric id is the stable identity; username and full name are
// transport-supplied and mutable.
type Actor struct {
	ID        int64
	Username  string
	FullName  string
	CreatedAt time.Time
}

// DisplayName returns the best available human-readable label.
func (a Actor) DisplayName() string {
	if a.FullName != "" {
		return a.FullName
	}
	if a.Username != "" {
		return "@" + a.Username
	}
	return ""
}
