package entity

import (
	"time"

	"github.com/uptpik/amanat/internal/domain/workflow"
)

// User is the identity record the engine consults for role resolution and
// disposition recipient checks. Credentials live outside this system.
type User struct {
	ID        int64         `json:"id"`
	FullName  string        `json:"full_name"`
	Email     string        `json:"email"`
	Username  string        `json:"username"`
	Role      workflow.Role `json:"role"`
	Position  string        `json:"position"`
	Active    bool          `json:"active"`
	CreatedAt time.Time     `json:"created_at"`
}

// Actor is the slice of a user the workflow engine actually consults:
// the id for attribution, the role for authorization.
type Actor struct {
	ID   int64         `json:"id"`
	Role workflow.Role `json:"role"`
}

// Actor derives the workflow actor from a user record
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}
