package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"todo-backend/internal/auth/credential"
	authdomain "todo-backend/internal/auth/domain"
	authdto "todo-backend/internal/auth/dto"
	"todo-backend/internal/auth/repository"
	"todo-backend/internal/auth/token"
	"todo-backend/pkg/apperror"
	"todo-backend/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	uc     AuthUsecase
	repo   repository.UserRepository
	tokens *token.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithRepo(t, repository.NewMemoryUserRepository())
}

func newFixtureWithRepo(t *testing.T, repo repository.UserRepository) *fixture {
	t.Helper()
	tokens := token.NewService(token.Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	})
	uc := NewAuthUsecase(repo, credential.NewBcryptHasher(bcrypt.MinCost), tokens, logging.Nop())
	return &fixture{uc: uc, repo: repo, tokens: tokens}
}

func (f *fixture) register(t *testing.T, name, password string) *authdomain.User {
	t.Helper()
	u, err := f.uc.Register(context.Background(), &authdto.RegisterRequest{
		UserName: name,
		FullName: name + " Example",
		Email:    name + "@example.com",
		Password: password,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) login(t *testing.T, name, password string) *authdto.Session {
	t.Helper()
	s, err := f.uc.Login(context.Background(), &authdto.LoginRequest{UserName: name, Password: password})
	require.NoError(t, err)
	return s
}

func (f *fixture) stored(t *testing.T, id string) *authdomain.User {
	t.Helper()
	u, err := f.repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	u, err := f.uc.Register(context.Background(), &authdto.RegisterRequest{
		UserName: "  Alice ",
		FullName: "Alice Liddell",
		Email:    "Alice@Example.com",
		Password: "pw",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice", u.UserName)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Empty(t, u.Password)

	stored := f.stored(t, u.ID)
	assert.NotEqual(t, "pw", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("pw")))
}

func TestRegister_MissingFields(t *testing.T) {
	f := newFixture(t)

	for _, req := range []authdto.RegisterRequest{
		{FullName: "A", Email: "a@example.com", Password: "pw"},
		{UserName: "a", Email: "a@example.com", Password: "pw"},
		{UserName: "a", FullName: "A", Password: "pw"},
		{UserName: "a", FullName: "A", Email: "a@example.com", Password: "   "},
	} {
		_, err := f.uc.Register(context.Background(), &req)
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "pw")

	_, err := f.uc.Register(context.Background(), &authdto.RegisterRequest{
		UserName: "ALICE", FullName: "Other", Email: "other@example.com", Password: "pw",
	})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = f.uc.Register(context.Background(), &authdto.RegisterRequest{
		UserName: "other", FullName: "Other", Email: "alice@example.com", Password: "pw",
	})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestLogin_IssuesTokensForSameUser(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "pw")

	s := f.login(t, "alice", "pw")

	ac, err := f.tokens.VerifyAccess(s.AccessToken.Token)
	require.NoError(t, err)
	rc, err := f.tokens.VerifyRefresh(s.RefreshToken.Token)
	require.NoError(t, err)

	assert.Equal(t, alice.ID, ac.UserID())
	assert.Equal(t, alice.ID, rc.UserID())
	assert.Equal(t, s.RefreshToken.Token, f.stored(t, alice.ID).RefreshToken)
	assert.Empty(t, s.User.Password)
	assert.Empty(t, s.User.RefreshToken)
}

func TestLogin_ByEmail(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "pw")

	s, err := f.uc.Login(context.Background(), &authdto.LoginRequest{Email: "ALICE@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, s.User.ID)
}

func TestLogin_Failures(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "pw")

	_, err := f.uc.Login(context.Background(), &authdto.LoginRequest{UserName: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	assert.Empty(t, f.stored(t, alice.ID).RefreshToken, "failed login must not start a session")

	_, err = f.uc.Login(context.Background(), &authdto.LoginRequest{UserName: "nobody", Password: "pw"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.uc.Login(context.Background(), &authdto.LoginRequest{Password: "pw"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = f.uc.Login(context.Background(), &authdto.LoginRequest{UserName: "alice"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestRefreshSession_Rotates(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "pw")
	first := f.login(t, "alice", "pw")

	second, err := f.uc.RefreshSession(context.Background(), f.stored(t, alice.ID), first.RefreshToken.Token)
	require.NoError(t, err)

	assert.NotEqual(t, first.RefreshToken.Token, second.RefreshToken.Token)
	assert.NotEqual(t, first.AccessToken.Token, second.AccessToken.Token)
	assert.Equal(t, second.RefreshToken.Token, f.stored(t, alice.ID).RefreshToken)

	_, err = f.uc.RefreshSession(context.Background(), f.stored(t, alice.ID), first.RefreshToken.Token)
	assert.ErrorIs(t, err, apperror.ErrSessionExpired, "rotated-out token must be rejected")
}

func TestRefreshSession_Expired(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "pw")
	s := f.login(t, "alice", "pw")

	_, err := f.uc.RefreshSession(context.Background(), nil, s.RefreshToken.Token)
	assert.ErrorIs(t, err, apperror.ErrSessionExpired)

	_, err = f.uc.RefreshSession(context.Background(), alice, "")
	assert.ErrorIs(t, err, apperror.ErrSessionExpired)

	_, err = f.uc.Logout(context.Background(), alice)
	require.NoError(t, err)

	_, err = f.uc.RefreshSession(context.Background(), alice, s.RefreshToken.Token)
	assert.ErrorIs(t, err, apperror.ErrSessionExpired)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "pw")
	f.login(t, "alice", "pw")

	u, err := f.uc.Logout(context.Background(), f.stored(t, alice.ID))
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)
	assert.Empty(t, f.stored(t, alice.ID).RefreshToken)

	_, err = f.uc.Logout(context.Background(), nil)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "old")
	s := f.login(t, "alice", "old")

	_, err := f.uc.ChangePassword(context.Background(), alice, &authdto.ChangePasswordRequest{OldPassword: "nope", NewPassword: "new"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)

	_, err = f.uc.ChangePassword(context.Background(), alice, &authdto.ChangePasswordRequest{OldPassword: "old"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = f.uc.ChangePassword(context.Background(), nil, &authdto.ChangePasswordRequest{OldPassword: "old", NewPassword: "new"})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	u, err := f.uc.ChangePassword(context.Background(), alice, &authdto.ChangePasswordRequest{OldPassword: "old", NewPassword: "new"})
	require.NoError(t, err)
	assert.Empty(t, u.Password)

	_, err = f.uc.Login(context.Background(), &authdto.LoginRequest{UserName: "alice", Password: "old"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)

	// the current session survives a password change
	assert.Equal(t, s.RefreshToken.Token, f.stored(t, alice.ID).RefreshToken)
	f.login(t, "alice", "new")
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "pw")
	f.register(t, "bob", "pw")

	_, err := f.uc.UpdateProfile(context.Background(), alice, &authdto.UpdateProfileRequest{UserName: "  "})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = f.uc.UpdateProfile(context.Background(), alice, &authdto.UpdateProfileRequest{UserName: "BOB"})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = f.uc.UpdateProfile(context.Background(), alice, &authdto.UpdateProfileRequest{Email: "bob@example.com"})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	u, err := f.uc.UpdateProfile(context.Background(), alice, &authdto.UpdateProfileRequest{UserName: "Alice2", FullName: "Alice Two"})
	require.NoError(t, err)
	assert.Equal(t, "alice2", u.UserName)
	assert.Equal(t, "Alice Two", u.FullName)
	assert.Equal(t, "alice@example.com", u.Email)

	// password untouched by profile updates
	f.login(t, "alice2", "pw")

	// keeping one's own name is not a conflict
	_, err = f.uc.UpdateProfile(context.Background(), alice, &authdto.UpdateProfileRequest{UserName: "alice2"})
	assert.NoError(t, err)
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "pw")

	u, err := f.uc.DeleteAccount(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.UserName)

	_, err = f.uc.GetUserByName(context.Background(), "alice")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.uc.DeleteAccount(context.Background(), alice)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.uc.DeleteAccount(context.Background(), nil)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestQueries(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "pw")
	f.register(t, "bob", "pw")
	f.login(t, "alice", "pw")

	users, err := f.uc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)

	got, err := f.uc.GetUserByName(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	me, err := f.uc.GetProfile(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, me.ID)

	_, err = f.uc.GetProfile(context.Background(), nil)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	// projections never carry credentials
	for _, u := range append(users, got, me) {
		raw, err := json.Marshal(u)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "password")
		assert.NotContains(t, string(raw), "refreshToken")
		assert.NotContains(t, string(raw), "$2a$")
		assert.Empty(t, u.Password)
		assert.Empty(t, u.RefreshToken)
	}
}

func TestResolveIdentity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice", "pw")
	first := f.login(t, "alice", "pw")

	u, err := f.uc.ResolveIdentity(ctx, first.AccessToken.Token, "")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)

	u, err = f.uc.ResolveIdentity(ctx, "", first.RefreshToken.Token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)

	u, err = f.uc.ResolveIdentity(ctx, "garbage", first.RefreshToken.Token)
	require.NoError(t, err, "falls back to the refresh token")
	assert.Equal(t, alice.ID, u.ID)

	_, err = f.uc.ResolveIdentity(ctx, "", "")
	assert.ErrorIs(t, err, ErrNoCredentials)

	_, err = f.uc.ResolveIdentity(ctx, "garbage", "")
	assert.ErrorIs(t, err, token.ErrTokenInvalid)

	// an access token presented as refresh token is rejected
	_, err = f.uc.ResolveIdentity(ctx, "", first.AccessToken.Token)
	assert.Error(t, err)

	f.login(t, "alice", "pw")
	_, err = f.uc.ResolveIdentity(ctx, "", first.RefreshToken.Token)
	assert.ErrorIs(t, err, ErrStaleRefreshToken)

	_, err = f.uc.DeleteAccount(ctx, alice)
	require.NoError(t, err)
	_, err = f.uc.ResolveIdentity(ctx, first.AccessToken.Token, "")
	assert.ErrorIs(t, err, ErrUserGone)
}

type failingRefreshRepo struct {
	repository.UserRepository
}

func (failingRefreshRepo) SetRefreshToken(context.Context, string, string, time.Time) error {
	return errors.New("write failed")
}

func TestLogin_SurfacesPersistenceFailure(t *testing.T) {
	f := newFixtureWithRepo(t, failingRefreshRepo{repository.NewMemoryUserRepository()})
	f.register(t, "alice", "pw")

	s, err := f.uc.Login(context.Background(), &authdto.LoginRequest{UserName: "alice", Password: "pw"})
	assert.Nil(t, s)
	assert.ErrorContains(t, err, "write failed")
}
