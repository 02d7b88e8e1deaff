package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todo-backend/internal/todo/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormTodoRepository implements TodoRepository using GORM
type gormTodoRepository struct {
	db *gorm.DB
}

// NewGormTodoRepository creates a new GORM-based TodoRepository
func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

func (r *gormTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	if todo.ID == "" {
		todo.ID = uuid.New().String()
	}
	now := time.Now()
	todo.CreatedAt = now
	todo.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(todo).Error; err != nil {
		return fmt.Errorf("create todo: %w", err)
	}
	return nil
}

func (r *gormTodoRepository) FindByID(ctx context.Context, id string) (*domain.Todo, error) {
	var todo domain.Todo
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&todo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find todo: %w", err)
	}
	return &todo, nil
}

func (r *gormTodoRepository) FindByUserID(ctx context.Context, userID string, filter ListFilter) ([]*domain.Todo, int64, error) {
	var todos []*domain.Todo
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Todo{}).Where("user_id = ?", userID)
	if filter.Done != nil {
		query = query.Where("done = ?", *filter.Done)
	}
	query = query.Session(&gorm.Session{})

	// Count total
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count todos: %w", err)
	}

	page := query.Order("created_at DESC")
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		page = page.Offset(filter.Offset)
	}
	if err := page.Find(&todos).Error; err != nil {
		return nil, 0, fmt.Errorf("list todos: %w", err)
	}

	return todos, total, nil
}

func (r *gormTodoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	todo.UpdatedAt = time.Now()

	res := r.db.WithContext(ctx).Model(&domain.Todo{}).Where("id = ?", todo.ID).
		Updates(map[string]interface{}{
			"content":    todo.Content,
			"done":       todo.Done,
			"updated_at": todo.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update todo: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTodoNotFound
	}
	return nil
}

func (r *gormTodoRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&domain.Todo{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete todo: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTodoNotFound
	}
	return nil
}
