package domain

import "time"

type User struct {
	ID        string `json:"id" gorm:"primaryKey"`
	UserName  string `json:"userName" gorm:"uniqueIndex;not null"`
	FullName  string `json:"fullName" gorm:"not null"`
	Email     string `json:"email" gorm:"uniqueIndex;not null"`
	Password  string `json:"-" gorm:"not null"` // bcrypt hash, never serialised
	// RefreshToken is the single active refresh token; empty when logged out.
	RefreshToken          string     `json:"-"`
	RefreshTokenExpiresAt *time.Time `json:"-" gorm:"index"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// HasSession reports whether the user holds a refresh token that has not expired at now.
func (u *User) HasSession(now time.Time) bool {
	if u.RefreshToken == "" {
		return false
	}
	return u.RefreshTokenExpiresAt == nil || now.Before(*u.RefreshTokenExpiresAt)
}
