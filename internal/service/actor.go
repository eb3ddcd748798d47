package service

import (
	"github.com/google/uuid"

	"github.com/deppfellow/quiz-api/internal/errs"
	"github.com/deppfellow/quiz-api/internal/model/user"
)

// Actor is the authenticated caller of a service method.
type Actor struct {
	ID    uuid.UUID
	Admin bool
}

func ActorFromUser(u *user.User) Actor {
	return Actor{ID: u.ID, Admin: u.IsAdmin()}
}

// CanModify reports whether the actor owns the resource or is an admin.
func (a Actor) CanModify(ownerID *uuid.UUID) bool {
	return a.Admin || (ownerID != nil && *ownerID == a.ID)
}

func forbidden(what string) error {
	return errs.NewForbiddenError("You are not allowed to modify this "+what, true)
}
