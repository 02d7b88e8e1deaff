package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"todo-backend/internal/auth/credential"
	authdomain "todo-backend/internal/auth/domain"
	authdto "todo-backend/internal/auth/dto"
	"todo-backend/internal/auth/guard"
	"todo-backend/internal/auth/repository"
	"todo-backend/pkg/apperror"
	"todo-backend/pkg/logging"
)

var (
	ErrNoCredentials      = errors.New("no session credentials presented")
	ErrUserGone           = errors.New("token subject no longer exists")
	ErrStaleRefreshToken  = errors.New("refresh token is not the active one")
	errSessionExpired     = apperror.SessionExpired("refresh token expired or used.")
	errUserNotFound       = apperror.NotFound("user not found.")
	errAllFieldsMandatory = apperror.InvalidInput("All fields are mandatory.")
)

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo repository.UserRepository
	hasher   credential.Hasher
	tokens   TokenService
	log      logging.Logger
	now      func() time.Time
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(userRepo repository.UserRepository, hasher credential.Hasher, tokens TokenService, log logging.Logger) AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		log:      log.With("component", "auth"),
		now:      time.Now,
	}
}

func (u *authUsecase) Register(ctx context.Context, req *authdto.RegisterRequest) (*authdomain.User, error) {
	userName := normalize(req.UserName)
	email := normalize(req.Email)
	fullName := strings.TrimSpace(req.FullName)

	if userName == "" || email == "" || fullName == "" || strings.TrimSpace(req.Password) == "" {
		return nil, errAllFieldsMandatory
	}

	existing, err := u.userRepo.FindByUserNameOrEmail(ctx, userName, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, repository.ErrDuplicateUser
	}

	hashedPassword, err := u.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &authdomain.User{
		UserName: userName,
		FullName: fullName,
		Email:    email,
		Password: hashedPassword,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	u.log.Info(ctx, "user registered", "user_id", user.ID)
	return public(user), nil
}

func (u *authUsecase) Login(ctx context.Context, req *authdto.LoginRequest) (*authdto.Session, error) {
	userName := normalize(req.UserName)
	email := normalize(req.Email)

	if userName == "" && email == "" {
		return nil, apperror.InvalidInput("userName or email is required.")
	}
	if req.Password == "" {
		return nil, apperror.InvalidInput("password is mandatory.")
	}

	user, err := u.userRepo.FindByUserNameOrEmail(ctx, userName, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errUserNotFound
	}

	if !u.hasher.Verify(req.Password, user.Password) {
		return nil, apperror.InvalidCredentials("Password incorrect.")
	}

	session, err := u.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	u.log.Info(ctx, "user logged in", "user_id", user.ID)
	return session, nil
}

func (u *authUsecase) Logout(ctx context.Context, identity *authdomain.User) (*authdomain.User, error) {
	identity, err := guard.RequireIdentity(identity)
	if err != nil {
		return nil, err
	}

	if err := u.userRepo.ClearRefreshToken(ctx, identity.ID); err != nil {
		return nil, err
	}

	u.log.Info(ctx, "user logged out", "user_id", identity.ID)

	user := public(identity)
	user.RefreshTokenExpiresAt = nil
	return user, nil
}

func (u *authUsecase) RefreshSession(ctx context.Context, identity *authdomain.User, presented string) (*authdto.Session, error) {
	if identity == nil || presented == "" {
		return nil, errSessionExpired
	}

	user, err := u.userRepo.FindByID(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.HasSession(u.now()) {
		return nil, errSessionExpired
	}

	if subtle.ConstantTimeCompare([]byte(presented), []byte(user.RefreshToken)) != 1 {
		args := []any{"user_id", user.ID}
		if claims, err := u.tokens.Inspect(presented); err == nil {
			args = append(args, "presented_subject", claims.UserID(), "presented_jti", claims.ID)
		}
		u.log.Warn(ctx, "refresh token mismatch", args...)
		return nil, errSessionExpired
	}

	claims, err := u.tokens.VerifyRefresh(presented)
	if err != nil || claims.UserID() != user.ID {
		return nil, errSessionExpired
	}

	return u.issueSession(ctx, user)
}

func (u *authUsecase) ChangePassword(ctx context.Context, identity *authdomain.User, req *authdto.ChangePasswordRequest) (*authdomain.User, error) {
	identity, err := guard.RequireIdentity(identity)
	if err != nil {
		return nil, err
	}

	if req.OldPassword == "" || strings.TrimSpace(req.NewPassword) == "" {
		return nil, apperror.InvalidInput("both new and old password is mandatory field.")
	}

	user, err := u.userRepo.FindByID(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errUserNotFound
	}

	if !u.hasher.Verify(req.OldPassword, user.Password) {
		return nil, apperror.InvalidCredentials("password is incorrect")
	}

	hashedPassword, err := u.hasher.Hash(req.NewPassword)
	if err != nil {
		return nil, err
	}
	if err := u.userRepo.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		return nil, err
	}

	u.log.Info(ctx, "password changed", "user_id", user.ID)
	return public(user), nil
}

func (u *authUsecase) UpdateProfile(ctx context.Context, identity *authdomain.User, req *authdto.UpdateProfileRequest) (*authdomain.User, error) {
	identity, err := guard.RequireIdentity(identity)
	if err != nil {
		return nil, err
	}

	var changes repository.ProfileChanges
	if v := normalize(req.UserName); v != "" {
		changes.UserName = &v
	}
	if v := strings.TrimSpace(req.FullName); v != "" {
		changes.FullName = &v
	}
	if v := normalize(req.Email); v != "" {
		changes.Email = &v
	}
	if changes.Empty() {
		return nil, apperror.InvalidInput("at least one field must be present")
	}

	if changes.UserName != nil {
		if err := u.ensureAvailable(ctx, identity.ID, *changes.UserName, ""); err != nil {
			return nil, err
		}
	}
	if changes.Email != nil {
		if err := u.ensureAvailable(ctx, identity.ID, "", *changes.Email); err != nil {
			return nil, err
		}
	}

	if err := u.userRepo.UpdateProfile(ctx, identity.ID, changes); err != nil {
		return nil, err
	}

	user, err := u.userRepo.FindByID(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errUserNotFound
	}
	return public(user), nil
}

func (u *authUsecase) ensureAvailable(ctx context.Context, selfID, userName, email string) error {
	other, err := u.userRepo.FindByUserNameOrEmail(ctx, userName, email)
	if err != nil {
		return err
	}
	if other != nil && other.ID != selfID {
		return repository.ErrDuplicateUser
	}
	return nil
}

func (u *authUsecase) DeleteAccount(ctx context.Context, identity *authdomain.User) (*authdomain.User, error) {
	identity, err := guard.RequireIdentity(identity)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.FindByID(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errUserNotFound
	}

	if err := u.userRepo.Delete(ctx, user.ID); err != nil {
		return nil, err
	}

	u.log.Info(ctx, "user deleted", "user_id", user.ID)
	return public(user), nil
}

func (u *authUsecase) GetProfile(ctx context.Context, identity *authdomain.User) (*authdomain.User, error) {
	identity, err := guard.RequireIdentity(identity)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.FindByID(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errUserNotFound
	}
	return public(user), nil
}

func (u *authUsecase) ListUsers(ctx context.Context) ([]*authdomain.User, error) {
	users, err := u.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*authdomain.User, 0, len(users))
	for _, user := range users {
		out = append(out, public(user))
	}
	return out, nil
}

func (u *authUsecase) GetUserByName(ctx context.Context, userName string) (*authdomain.User, error) {
	user, err := u.userRepo.FindByUserName(ctx, normalize(userName))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}
	return public(user), nil
}

func (u *authUsecase) ResolveIdentity(ctx context.Context, accessToken, refreshToken string) (*authdomain.User, error) {
	if accessToken == "" && refreshToken == "" {
		return nil, ErrNoCredentials
	}

	var accessErr error
	if accessToken != "" {
		user, err := u.resolveAccess(ctx, accessToken)
		if err == nil {
			return user, nil
		}
		accessErr = fmt.Errorf("access token: %w", err)
		if refreshToken == "" {
			return nil, accessErr
		}
	}

	user, err := u.resolveRefresh(ctx, refreshToken)
	if err != nil {
		return nil, errors.Join(accessErr, fmt.Errorf("refresh token: %w", err))
	}
	return user, nil
}

func (u *authUsecase) resolveAccess(ctx context.Context, accessToken string) (*authdomain.User, error) {
	claims, err := u.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, err
	}
	return u.loadSubject(ctx, claims.UserID())
}

func (u *authUsecase) resolveRefresh(ctx context.Context, refreshToken string) (*authdomain.User, error) {
	claims, err := u.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := u.loadSubject(ctx, claims.UserID())
	if err != nil {
		return nil, err
	}
	if !user.HasSession(u.now()) ||
		subtle.ConstantTimeCompare([]byte(refreshToken), []byte(user.RefreshToken)) != 1 {
		return nil, ErrStaleRefreshToken
	}
	return user, nil
}

func (u *authUsecase) loadSubject(ctx context.Context, userID string) (*authdomain.User, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserGone
	}
	return user, nil
}

// issueSession rotates the user's tokens and persists the new refresh token
// before the session is handed back.
func (u *authUsecase) issueSession(ctx context.Context, user *authdomain.User) (*authdto.Session, error) {
	access, err := u.tokens.IssueAccess(user.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := u.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}

	if err := u.userRepo.SetRefreshToken(ctx, user.ID, refresh.Token, refresh.ExpiresAt); err != nil {
		return nil, err
	}

	return &authdto.Session{
		User:         public(user),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// public strips credentials from a copy of user.
func public(user *authdomain.User) *authdomain.User {
	c := *user
	c.Password = ""
	c.RefreshToken = ""
	return &c
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
