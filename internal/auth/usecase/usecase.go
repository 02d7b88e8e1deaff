package usecase

import (
	"context"

	authdomain "todo-backend/internal/auth/domain"
	authdto "todo-backend/internal/auth/dto"
	"todo-backend/internal/auth/token"
)

// AuthUsecase owns the account and session lifecycle. Every method that
// returns a user returns its public projection.
type AuthUsecase interface {
	Register(ctx context.Context, req *authdto.RegisterRequest) (*authdomain.User, error)
	Login(ctx context.Context, req *authdto.LoginRequest) (*authdto.Session, error)
	Logout(ctx context.Context, identity *authdomain.User) (*authdomain.User, error)

	// RefreshSession rotates the session of identity. presentedRefreshToken must
	// be the refresh token currently stored for the user.
	RefreshSession(ctx context.Context, identity *authdomain.User, presentedRefreshToken string) (*authdto.Session, error)

	ChangePassword(ctx context.Context, identity *authdomain.User, req *authdto.ChangePasswordRequest) (*authdomain.User, error)
	UpdateProfile(ctx context.Context, identity *authdomain.User, req *authdto.UpdateProfileRequest) (*authdomain.User, error)
	DeleteAccount(ctx context.Context, identity *authdomain.User) (*authdomain.User, error)

	GetProfile(ctx context.Context, identity *authdomain.User) (*authdomain.User, error)
	ListUsers(ctx context.Context) ([]*authdomain.User, error)
	GetUserByName(ctx context.Context, userName string) (*authdomain.User, error)

	// ResolveIdentity finds the user behind the request credentials. It returns
	// an error describing why no identity could be resolved; callers that fail
	// open just log it.
	ResolveIdentity(ctx context.Context, accessToken, refreshToken string) (*authdomain.User, error)
}

// TokenService is the part of token.Service the usecase depends on.
type TokenService interface {
	IssueAccess(userID string) (token.Issued, error)
	IssueRefresh(userID string) (token.Issued, error)
	VerifyAccess(tokenString string) (*token.Claims, error)
	VerifyRefresh(tokenString string) (*token.Claims, error)
	Inspect(tokenString string) (*token.Claims, error)
}
