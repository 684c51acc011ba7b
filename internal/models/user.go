// Package models contains the core domain entities shared by services,
// repositories, and adapters. Timestamps are time.Time in UTC; strings are
// a presentation concern and live in the primary ports.
package models

import "time"

// Role values for directory users. Audiences select on these tags.
const (
	RoleWorker  = "worker"
	RoleLead    = "lead"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// ValidRole reports whether role is one of the known role tags.
func ValidRole(role string) bool {
	switch role {
	case RoleWorker, RoleLead, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// User is a directory entry. ChatID is empty until the user registered on
// the transport; such users are outside every audience.
type User struct {
	ID               int64
	ChatID           string
	DisplayName      string
	Role             string
	ExternalIdentity string
	CreatedAt        time.Time
}
