package dto

import (
	authdomain "todo-backend/internal/auth/domain"
	"todo-backend/internal/auth/token"
)

type RegisterRequest struct {
	UserName string `json:"userName"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest identifies the account by userName or email.
type LoginRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// UpdateProfileRequest treats blank fields as not supplied.
type UpdateProfileRequest struct {
	UserName string `json:"userName"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Session is the result of a login or a refresh. Tokens travel to the
// client as cookies only.
type Session struct {
	User         *authdomain.User
	AccessToken  token.Issued
	RefreshToken token.Issued
}
