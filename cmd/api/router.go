package api

import (
	"net/http"

	authDelivery "todo-backend/internal/auth/delivery"
	todoDelivery "todo-backend/internal/todo/delivery"
	"todo-backend/pkg/logging"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authHandler *authDelivery.AuthHandler, todoHandler *todoDelivery.TodoHandler, log logging.Logger) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		v1 := api.Group("/v1")

		// User routes. Protected handlers reject anonymous callers through
		// the usecase; refresh-access-token answers with a session error.
		users := v1.Group("/users")
		{
			users.POST("/register-user", authHandler.Register)
			users.POST("/login-user", authHandler.Login)
			users.GET("/get-all-users", authHandler.GetAllUsers)
			users.GET("/get-user/:userName", authHandler.GetUser)
			users.POST("/refresh-access-token", authHandler.RefreshToken)
			users.POST("/logout-user", authHandler.Logout)
			users.PATCH("/change-password", authHandler.ChangePassword)
			users.PATCH("/update-user", authHandler.UpdateUser)
			users.GET("/get-current-user", authHandler.GetCurrentUser)
			users.DELETE("/delete-user", authHandler.DeleteUser)
		}

		todos := v1.Group("/todos")
		{
			todos.GET("/get-todo/:todoID", todoHandler.GetTodo)

			protected := todos.Group("")
			protected.Use(authDelivery.RequireAuth(log))
			{
				protected.POST("/add-todo", todoHandler.AddTodo)
				protected.GET("/get-all-todos", todoHandler.GetTodos)
				protected.GET("/search-todos", todoHandler.SearchTodos)
				protected.PATCH("/update-todo/:todoID", todoHandler.UpdateTodo)
				protected.DELETE("/delete-todo/:todoID", todoHandler.DeleteTodo)
			}
		}
	}
}
