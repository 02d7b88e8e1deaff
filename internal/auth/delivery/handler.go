package delivery

import (
	"errors"
	"io"
	"net/http"
	"time"

	authdto "todo-backend/internal/auth/dto"
	"todo-backend/internal/auth/usecase"
	"todo-backend/pkg/apperror"
	"todo-backend/pkg/cookie"
	"todo-backend/pkg/logging"
	"todo-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

var errInvalidBody = apperror.InvalidInput("invalid request body")

// AuthHandler serves the /users endpoints.
type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	cookies     *cookie.Manager
	log         logging.Logger
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, cookies *cookie.Manager, log logging.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		cookies:     cookies,
		log:         log,
	}
}

// Register
// POST /api/v1/users/register-user
func (h *AuthHandler) Register(c *gin.Context) {
	var req authdto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, h.log, errInvalidBody)
		return
	}

	user, err := h.authUsecase.Register(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, user, "User registered successfully.")
}

// Login sets both session cookies.
// POST /api/v1/users/login-user
func (h *AuthHandler) Login(c *gin.Context) {
	var req authdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, h.log, errInvalidBody)
		return
	}

	session, err := h.authUsecase.Login(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	h.setSessionCookies(c, session)
	response.Success(c, http.StatusOK, session.User, "user logged in.")
}

// Logout
// POST /api/v1/users/logout-user
func (h *AuthHandler) Logout(c *gin.Context) {
	identity, _ := CurrentUser(c)

	user, err := h.authUsecase.Logout(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	h.cookies.ClearSession(c)
	response.Success(c, http.StatusOK, user, "user logged out.")
}

// RefreshToken rotates the session. The presented refresh token comes from
// the cookie or, for non-browser clients, the JSON body.
// POST /api/v1/users/refresh-access-token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	identity, _ := CurrentUser(c)

	presented := h.cookies.Get(c, cookie.RefreshTokenName)
	if presented == "" {
		var req authdto.RefreshTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			response.Error(c, h.log, errInvalidBody)
			return
		}
		presented = req.RefreshToken
	}

	session, err := h.authUsecase.RefreshSession(c.Request.Context(), identity, presented)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	h.setSessionCookies(c, session)
	response.Success(c, http.StatusOK, session.User, "user refreshed successfully.")
}

// ChangePassword
// PATCH /api/v1/users/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	identity, _ := CurrentUser(c)

	var req authdto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, h.log, errInvalidBody)
		return
	}

	user, err := h.authUsecase.ChangePassword(c.Request.Context(), identity, &req)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, user, "password changed successfully.")
}

// UpdateUser
// PATCH /api/v1/users/update-user
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	identity, _ := CurrentUser(c)

	var req authdto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, h.log, errInvalidBody)
		return
	}

	user, err := h.authUsecase.UpdateProfile(c.Request.Context(), identity, &req)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, user, "user updated successfully.")
}

// GetCurrentUser
// GET /api/v1/users/get-current-user
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	identity, _ := CurrentUser(c)

	user, err := h.authUsecase.GetProfile(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, user, "current user fetched successfully.")
}

// GetAllUsers
// GET /api/v1/users/get-all-users
func (h *AuthHandler) GetAllUsers(c *gin.Context) {
	users, err := h.authUsecase.ListUsers(c.Request.Context())
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, users, "fetched all users successfully.")
}

// GetUser
// GET /api/v1/users/get-user/:userName
func (h *AuthHandler) GetUser(c *gin.Context) {
	user, err := h.authUsecase.GetUserByName(c.Request.Context(), c.Param("userName"))
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, user, "user fetched successfully.")
}

// DeleteUser also clears the session cookies.
// DELETE /api/v1/users/delete-user
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	identity, _ := CurrentUser(c)

	user, err := h.authUsecase.DeleteAccount(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	h.cookies.ClearSession(c)
	response.Success(c, http.StatusOK, user, "user deleted successfully.")
}

func (h *AuthHandler) setSessionCookies(c *gin.Context, s *authdto.Session) {
	now := time.Now()
	h.cookies.SetSession(c,
		s.AccessToken.Token, s.AccessToken.ExpiresAt.Sub(now),
		s.RefreshToken.Token, s.RefreshToken.ExpiresAt.Sub(now),
	)
}
