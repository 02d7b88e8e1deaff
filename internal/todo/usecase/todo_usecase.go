package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	authdomain "todo-backend/internal/auth/domain"
	"todo-backend/internal/auth/guard"
	"todo-backend/internal/todo/domain"
	"todo-backend/internal/todo/repository"
	"todo-backend/pkg/apperror"
	"todo-backend/pkg/fuzzy"
	"todo-backend/pkg/logging"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

var (
	ErrTodoRequired  = apperror.InvalidInput("todo is mandatory.")
	ErrNoSuchTodo    = apperror.NotFound("no such todo.")
	ErrNothingToSave = apperror.InvalidInput("nothing to update.")
	ErrQueryRequired = apperror.InvalidInput("search query is mandatory.")
)

// todoUsecase implements TodoUsecase interface
type todoUsecase struct {
	todoRepo repository.TodoRepository
	users    UserFinder
	log      logging.Logger
}

// NewTodoUsecase creates a new instance of todoUsecase
func NewTodoUsecase(todoRepo repository.TodoRepository, users UserFinder, log logging.Logger) TodoUsecase {
	return &todoUsecase{
		todoRepo: todoRepo,
		users:    users,
		log:      log.With("component", "todo"),
	}
}

func (u *todoUsecase) AddTodo(ctx context.Context, identity *authdomain.User, content string) (*domain.Todo, error) {
	user, err := guard.RequireIdentity(identity)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrTodoRequired
	}

	todo := &domain.Todo{
		Content: content,
		UserID:  user.ID,
	}
	if err := u.todoRepo.Create(ctx, todo); err != nil {
		return nil, err
	}

	u.log.Debug(ctx, "todo created", "todo_id", todo.ID, "user_id", user.ID)
	return todo, nil
}

func (u *todoUsecase) GetTodos(ctx context.Context, identity *authdomain.User, opts ListOptions) ([]*domain.TodoView, int64, error) {
	user, err := guard.RequireIdentity(identity)
	if err != nil {
		return nil, 0, err
	}

	if opts.Limit <= 0 {
		opts.Limit = DefaultPageSize
	}
	if opts.Limit > MaxPageSize {
		opts.Limit = MaxPageSize
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	todos, total, err := u.todoRepo.FindByUserID(ctx, user.ID, repository.ListFilter{
		Done:   opts.Done,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
	if err != nil {
		return nil, 0, err
	}

	views := make([]*domain.TodoView, 0, len(todos))
	for _, t := range todos {
		views = append(views, domain.NewTodoView(t, user.UserName))
	}
	return views, total, nil
}

func (u *todoUsecase) GetTodo(ctx context.Context, todoID string) (*domain.TodoView, error) {
	todo, err := u.find(ctx, todoID)
	if err != nil {
		return nil, err
	}

	owner, err := u.users.FindByID(ctx, todo.UserID)
	if err != nil {
		return nil, fmt.Errorf("load todo owner: %w", err)
	}

	var userName string
	if owner != nil {
		userName = owner.UserName
	}
	return domain.NewTodoView(todo, userName), nil
}

func (u *todoUsecase) UpdateTodo(ctx context.Context, identity *authdomain.User, todoID string, req UpdateTodoRequest) (*domain.Todo, error) {
	todo, err := u.owned(ctx, identity, todoID)
	if err != nil {
		return nil, err
	}

	if req.TodoContent == nil && req.Done == nil {
		return nil, ErrNothingToSave
	}
	if req.TodoContent != nil {
		content := strings.TrimSpace(*req.TodoContent)
		if content == "" {
			return nil, ErrTodoRequired
		}
		todo.Content = content
	}
	if req.Done != nil {
		todo.Done = *req.Done
	}

	if err := u.todoRepo.Update(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

func (u *todoUsecase) DeleteTodo(ctx context.Context, identity *authdomain.User, todoID string) (*domain.Todo, error) {
	todo, err := u.owned(ctx, identity, todoID)
	if err != nil {
		return nil, err
	}

	if err := u.todoRepo.Delete(ctx, todo.ID); err != nil {
		return nil, err
	}

	u.log.Debug(ctx, "todo deleted", "todo_id", todo.ID, "user_id", todo.UserID)
	return todo, nil
}

func (u *todoUsecase) SearchTodos(ctx context.Context, identity *authdomain.User, query string) ([]SearchResult, error) {
	user, err := guard.RequireIdentity(identity)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrQueryRequired
	}

	todos, _, err := u.todoRepo.FindByUserID(ctx, user.ID, repository.ListFilter{})
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0)
	for _, t := range todos {
		if score, ok := fuzzy.Score(query, t.Content); ok {
			results = append(results, SearchResult{Todo: t, Score: score})
		}
	}

	// closest first, newest first among equals
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score < results[j].Score
		}
		return results[i].Todo.CreatedAt.After(results[j].Todo.CreatedAt)
	})
	return results, nil
}

// find loads a todo, mapping absence to ErrNoSuchTodo.
func (u *todoUsecase) find(ctx context.Context, todoID string) (*domain.Todo, error) {
	if strings.TrimSpace(todoID) == "" {
		return nil, ErrNoSuchTodo
	}
	todo, err := u.todoRepo.FindByID(ctx, todoID)
	if err != nil {
		return nil, err
	}
	if todo == nil {
		return nil, ErrNoSuchTodo
	}
	return todo, nil
}

// owned loads a todo the identity may modify. Existence is checked before ownership.
func (u *todoUsecase) owned(ctx context.Context, identity *authdomain.User, todoID string) (*domain.Todo, error) {
	user, err := guard.RequireIdentity(identity)
	if err != nil {
		return nil, err
	}
	todo, err := u.find(ctx, todoID)
	if err != nil {
		return nil, err
	}
	if err := guard.RequireOwnership(user, todo.UserID); err != nil {
		u.log.Warn(ctx, "todo ownership denied", "todo_id", todo.ID, "user_id", user.ID)
		return nil, err
	}
	return todo, nil
}
