package repository

import (
	"context"
	"sync"
	"time"

	"todo-backend/internal/todo/domain"

	"github.com/google/uuid"
)

type memoryTodoRepository struct {
	mu    sync.RWMutex
	todos map[string]*domain.Todo
	order []string // ids in insertion order
}

func NewMemoryTodoRepository() TodoRepository {
	return &memoryTodoRepository{todos: make(map[string]*domain.Todo)}
}

func (r *memoryTodoRepository) Create(_ context.Context, todo *domain.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if todo.ID == "" {
		todo.ID = uuid.New().String()
	}
	now := time.Now()
	todo.CreatedAt = now
	todo.UpdatedAt = now

	c := *todo
	r.todos[todo.ID] = &c
	r.order = append(r.order, todo.ID)
	return nil
}

func (r *memoryTodoRepository) FindByID(_ context.Context, id string) (*domain.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.todos[id]
	if !ok {
		return nil, nil
	}
	c := *t
	return &c, nil
}

func (r *memoryTodoRepository) FindByUserID(_ context.Context, userID string, filter ListFilter) ([]*domain.Todo, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// newest first
	var matched []*domain.Todo
	for i := len(r.order) - 1; i >= 0; i-- {
		t := r.todos[r.order[i]]
		if t.UserID != userID {
			continue
		}
		if filter.Done != nil && t.Done != *filter.Done {
			continue
		}
		c := *t
		matched = append(matched, &c)
	}

	total := int64(len(matched))
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []*domain.Todo{}, total, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *memoryTodoRepository) Update(_ context.Context, todo *domain.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.todos[todo.ID]
	if !ok {
		return ErrTodoNotFound
	}
	todo.UpdatedAt = time.Now()
	t.Content = todo.Content
	t.Done = todo.Done
	t.UpdatedAt = todo.UpdatedAt
	return nil
}

func (r *memoryTodoRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.todos[id]; !ok {
		return ErrTodoNotFound
	}
	delete(r.todos, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
