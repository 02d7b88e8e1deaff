package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	authDelivery "todo-backend/internal/auth/delivery"
	authUsecase "todo-backend/internal/auth/usecase"
	todoDelivery "todo-backend/internal/todo/delivery"
	todoUsecase "todo-backend/internal/todo/usecase"
	"todo-backend/pkg/config"
	"todo-backend/pkg/cookie"
	"todo-backend/pkg/logging"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

type Handler struct {
	authUsecase authUsecase.AuthUsecase
	config      *config.Config
	cookies     *cookie.Manager
	log         logging.Logger
	authHandler *authDelivery.AuthHandler
	todoHandler *todoDelivery.TodoHandler
}

func NewHandler(authUc authUsecase.AuthUsecase, todoUc todoUsecase.TodoUsecase, cfg *config.Config, log logging.Logger) *Handler {
	cookies := cookie.NewManager(cfg.Cookie)

	return &Handler{
		authUsecase: authUc,
		config:      cfg,
		cookies:     cookies,
		log:         log,
		authHandler: authDelivery.NewAuthHandler(authUc, cookies, log),
		todoHandler: todoDelivery.NewTodoHandler(todoUc, log),
	}
}

// Router builds the gin engine with CORS, session resolution and all routes.
func (h *Handler) Router() *gin.Engine {
	if h.config.GinMode != "" {
		gin.SetMode(h.config.GinMode)
	}
	r := gin.Default()

	r.Use(corsMiddleware(h.config.CORSOrigin))
	r.Use(authDelivery.SessionMiddleware(h.authUsecase, h.cookies, h.log))

	SetupRoutes(r, h.authHandler, h.todoHandler, h.log)
	return r
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (h *Handler) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.log.Info(ctx, "server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	h.log.Info(context.Background(), "server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// corsMiddleware reflects the allowed origin with credentials so the
// browser sends the session cookies. An empty allowed origin reflects any origin.
func corsMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		switch {
		case allowedOrigin != "":
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		case origin != "":
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Add("Vary", "Origin")

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
