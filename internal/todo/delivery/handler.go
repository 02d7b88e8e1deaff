package delivery

import (
	"net/http"
	"strconv"

	authdelivery "todo-backend/internal/auth/delivery"
	"todo-backend/internal/todo/usecase"
	"todo-backend/pkg/apperror"
	"todo-backend/pkg/logging"
	"todo-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

var errInvalidBody = apperror.InvalidInput("invalid request body")

// TodoHandler handles todo-related HTTP requests
type TodoHandler struct {
	todoUsecase usecase.TodoUsecase
	log         logging.Logger
}

// NewTodoHandler creates a new TodoHandler
func NewTodoHandler(todoUsecase usecase.TodoUsecase, log logging.Logger) *TodoHandler {
	return &TodoHandler{
		todoUsecase: todoUsecase,
		log:         log,
	}
}

// AddTodoRequest represents the request body for creating a todo
type AddTodoRequest struct {
	TodoContent string `json:"todoContent"`
}

// TodoList is the page returned by GetTodos.
type TodoList struct {
	Todos  any   `json:"todos"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// AddTodo
// POST /api/v1/todos/add-todo
func (h *TodoHandler) AddTodo(c *gin.Context) {
	identity, _ := authdelivery.CurrentUser(c)

	var req AddTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, h.log, errInvalidBody)
		return
	}

	todo, err := h.todoUsecase.AddTodo(c.Request.Context(), identity, req.TodoContent)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, todo, "todo added successfully.")
}

// GetTodos returns the caller's todos, newest first
// GET /api/v1/todos/get-all-todos?done=false&limit=50&offset=0
func (h *TodoHandler) GetTodos(c *gin.Context) {
	identity, _ := authdelivery.CurrentUser(c)

	opts, err := listOptions(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	todos, total, err := h.todoUsecase.GetTodos(c.Request.Context(), identity, opts)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, TodoList{
		Todos:  todos,
		Total:  total,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	}, "all todos fetched")
}

// GetTodo
// GET /api/v1/todos/get-todo/:todoID
func (h *TodoHandler) GetTodo(c *gin.Context) {
	todo, err := h.todoUsecase.GetTodo(c.Request.Context(), c.Param("todoID"))
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, todo, "todo fetched successfully.")
}

// SearchTodos
// GET /api/v1/todos/search-todos?q=milk
func (h *TodoHandler) SearchTodos(c *gin.Context) {
	identity, _ := authdelivery.CurrentUser(c)

	results, err := h.todoUsecase.SearchTodos(c.Request.Context(), identity, c.Query("q"))
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, results, "todos searched successfully.")
}

// UpdateTodo
// PATCH /api/v1/todos/update-todo/:todoID
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	identity, _ := authdelivery.CurrentUser(c)

	var req usecase.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, h.log, errInvalidBody)
		return
	}

	todo, err := h.todoUsecase.UpdateTodo(c.Request.Context(), identity, c.Param("todoID"), req)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, todo, "todo updated successfully.")
}

// DeleteTodo
// DELETE /api/v1/todos/delete-todo/:todoID
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	identity, _ := authdelivery.CurrentUser(c)

	todo, err := h.todoUsecase.DeleteTodo(c.Request.Context(), identity, c.Param("todoID"))
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, todo, "todo deleted successfully.")
}

func listOptions(c *gin.Context) (usecase.ListOptions, error) {
	var opts usecase.ListOptions

	if v := c.Query("done"); v != "" {
		done, err := strconv.ParseBool(v)
		if err != nil {
			return opts, apperror.InvalidInput("done must be true or false")
		}
		opts.Done = &done
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(usecase.DefaultPageSize)))
	if err != nil || limit < 0 {
		return opts, apperror.InvalidInput("limit must be a non-negative integer")
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		return opts, apperror.InvalidInput("offset must be a non-negative integer")
	}

	opts.Limit = min(limit, usecase.MaxPageSize)
	if opts.Limit == 0 {
		opts.Limit = usecase.DefaultPageSize
	}
	opts.Offset = offset
	return opts, nil
}
