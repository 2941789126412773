package entities

import "github.com/google/uuid"

// Actor is the already-authenticated caller of a core operation.
type Actor struct {
	ID   uuid.UUID
	Role UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == UserRoleAdmin
}

// SystemActor marks transitions driven by background jobs.
var SystemActor = Actor{Role: UserRoleAdmin}
