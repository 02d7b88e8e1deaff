package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	authdomain "todo-backend/internal/auth/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// userRepository implements UserRepository on top of gorm
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of userRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) Create(ctx context.Context, user *authdomain.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translate("create user", err)
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*authdomain.User, error) {
	return r.first("find user by id", r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *userRepository) FindByUserName(ctx context.Context, userName string) (*authdomain.User, error) {
	return r.first("find user by name", r.db.WithContext(ctx).Where("user_name = ?", userName))
}

func (r *userRepository) FindByUserNameOrEmail(ctx context.Context, userName, email string) (*authdomain.User, error) {
	q := r.db.WithContext(ctx)
	switch {
	case userName != "" && email != "":
		q = q.Where("user_name = ? OR email = ?", userName, email)
	case userName != "":
		q = q.Where("user_name = ?", userName)
	case email != "":
		q = q.Where("email = ?", email)
	default:
		return nil, nil
	}
	return r.first("find user by name or email", q)
}

func (r *userRepository) first(op string, q *gorm.DB) (*authdomain.User, error) {
	var user authdomain.User
	err := q.First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

func (r *userRepository) FindAll(ctx context.Context) ([]*authdomain.User, error) {
	var users []*authdomain.User
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, changes ProfileChanges) error {
	fields := map[string]interface{}{}
	if changes.UserName != nil {
		fields["user_name"] = *changes.UserName
	}
	if changes.FullName != nil {
		fields["full_name"] = *changes.FullName
	}
	if changes.Email != nil {
		fields["email"] = *changes.Email
	}
	if len(fields) == 0 {
		return nil
	}
	return r.updateColumns(ctx, "update profile", id, fields)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateColumns(ctx, "update password", id, map[string]interface{}{
		"password": passwordHash,
	})
}

func (r *userRepository) SetRefreshToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	return r.updateColumns(ctx, "set refresh token", id, map[string]interface{}{
		"refresh_token":            token,
		"refresh_token_expires_at": expiresAt,
	})
}

func (r *userRepository) ClearRefreshToken(ctx context.Context, id string) error {
	return r.updateColumns(ctx, "clear refresh token", id, map[string]interface{}{
		"refresh_token":            "",
		"refresh_token_expires_at": nil,
	})
}

func (r *userRepository) updateColumns(ctx context.Context, op, id string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()

	res := r.db.WithContext(ctx).Model(&authdomain.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) ClearExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&authdomain.User{}).
		Where("refresh_token <> '' AND refresh_token_expires_at < ?", now).
		Updates(map[string]interface{}{
			"refresh_token":            "",
			"refresh_token_expires_at": nil,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("clear expired refresh tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&authdomain.User{})
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// translate maps unique-index violations to ErrDuplicateUser. It relies on
// the gorm connection being opened with TranslateError.
func translate(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateUser
	}
	return fmt.Errorf("%s: %w", op, err)
}
