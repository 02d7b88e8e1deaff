package repository

import (
	"context"

	"todo-backend/internal/todo/domain"
	"todo-backend/pkg/apperror"
)

var ErrTodoNotFound = apperror.NotFound("todo not found.")

// ListFilter narrows FindByUserID. Limit <= 0 means no limit.
type ListFilter struct {
	Done   *bool
	Limit  int
	Offset int
}

// TodoRepository defines the interface for todo data access
type TodoRepository interface {
	// Create creates a new todo
	Create(ctx context.Context, todo *domain.Todo) error

	// FindByID returns (nil, nil) when the todo does not exist
	FindByID(ctx context.Context, id string) (*domain.Todo, error)

	// FindByUserID returns a page of the user's todos, newest first, plus the total count
	FindByUserID(ctx context.Context, userID string, filter ListFilter) ([]*domain.Todo, int64, error)

	// Update writes the mutable fields (content, done)
	Update(ctx context.Context, todo *domain.Todo) error

	Delete(ctx context.Context, id string) error
}
