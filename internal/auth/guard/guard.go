// Package guard holds the two authorization checks every protected operation uses.
package guard

import (
	authdomain "todo-backend/internal/auth/domain"
	"todo-backend/pkg/apperror"
)

// RequireIdentity fails with Unauthenticated when no user was resolved for the request.
func RequireIdentity(identity *authdomain.User) (*authdomain.User, error) {
	if identity == nil || identity.ID == "" {
		return nil, apperror.Unauthenticated("user not logged in")
	}
	return identity, nil
}

// RequireOwnership fails with Unauthorized unless identity owns the resource.
func RequireOwnership(identity *authdomain.User, ownerID string) error {
	if identity == nil || identity.ID == "" || identity.ID != ownerID {
		return apperror.Unauthorized("unauthorised request")
	}
	return nil
}
