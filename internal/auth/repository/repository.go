package repository

import (
	"context"
	"time"

	authdomain "todo-backend/internal/auth/domain"
	"todo-backend/pkg/apperror"
)

var (
	ErrDuplicateUser = apperror.Conflict("user already exists")
	ErrUserNotFound  = apperror.NotFound("user not found")
)

// ProfileChanges lists the profile columns to overwrite; nil fields are left alone.
type ProfileChanges struct {
	UserName *string
	FullName *string
	Email    *string
}

func (p ProfileChanges) Empty() bool {
	return p.UserName == nil && p.FullName == nil && p.Email == nil
}

// UserRepository persists users. Finders return (nil, nil) when nothing matches.
// Writers touch only the columns they name, so the stored password hash is
// never rewritten by a profile or session update.
type UserRepository interface {
	Create(ctx context.Context, user *authdomain.User) error
	FindByID(ctx context.Context, id string) (*authdomain.User, error)
	FindByUserName(ctx context.Context, userName string) (*authdomain.User, error)
	// FindByUserNameOrEmail matches either non-empty argument.
	FindByUserNameOrEmail(ctx context.Context, userName, email string) (*authdomain.User, error)
	FindAll(ctx context.Context) ([]*authdomain.User, error)

	UpdateProfile(ctx context.Context, id string, changes ProfileChanges) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetRefreshToken(ctx context.Context, id, token string, expiresAt time.Time) error
	ClearRefreshToken(ctx context.Context, id string) error
	// ClearExpiredRefreshTokens drops stored refresh tokens that expired before now
	// and returns how many sessions were cleared.
	ClearExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)

	Delete(ctx context.Context, id string) error
}
