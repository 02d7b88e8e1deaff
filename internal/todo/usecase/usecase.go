package usecase

import (
	"context"

	authdomain "todo-backend/internal/auth/domain"
	"todo-backend/internal/todo/domain"
)

// ListOptions filters and pages GetTodos. Zero Limit selects the default page size.
type ListOptions struct {
	Done   *bool
	Limit  int
	Offset int
}

// UpdateTodoRequest carries the fields a PATCH may change; nil means unchanged.
type UpdateTodoRequest struct {
	TodoContent *string `json:"todoContent"`
	Done        *bool   `json:"done"`
}

// SearchResult is a todo matched by SearchTodos. Lower Score is a closer match.
type SearchResult struct {
	Todo  *domain.Todo `json:"todo"`
	Score int          `json:"score"`
}

// UserFinder resolves todo owners for the public projection.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*authdomain.User, error)
}

// TodoUsecase defines the interface for todo business logic
type TodoUsecase interface {
	AddTodo(ctx context.Context, identity *authdomain.User, content string) (*domain.Todo, error)
	GetTodos(ctx context.Context, identity *authdomain.User, opts ListOptions) ([]*domain.TodoView, int64, error)
	GetTodo(ctx context.Context, todoID string) (*domain.TodoView, error)
	UpdateTodo(ctx context.Context, identity *authdomain.User, todoID string, req UpdateTodoRequest) (*domain.Todo, error)
	DeleteTodo(ctx context.Context, identity *authdomain.User, todoID string) (*domain.Todo, error)
	SearchTodos(ctx context.Context, identity *authdomain.User, query string) ([]SearchResult, error)
}
