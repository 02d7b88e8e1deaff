package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	api "todo-backend/cmd/api"
	"todo-backend/internal/auth/credential"
	authdomain "todo-backend/internal/auth/domain"
	authRepo "todo-backend/internal/auth/repository"
	"todo-backend/internal/auth/scheduler"
	"todo-backend/internal/auth/token"
	authUsecase "todo-backend/internal/auth/usecase"
	tododomain "todo-backend/internal/todo/domain"
	todoRepo "todo-backend/internal/todo/repository"
	todoUsecase "todo-backend/internal/todo/usecase"
	"todo-backend/pkg/config"
	"todo-backend/pkg/database"
	"todo-backend/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logging.New(os.Stderr, "text", "error").Error(ctx, "server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	// Initialize repositories (dependency injection)
	var (
		userRepo       authRepo.UserRepository
		todoRepository todoRepo.TodoRepository
	)
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		log.Warn(ctx, "using in-memory storage, data is lost on restart")
		userRepo = authRepo.NewMemoryUserRepository()
		todoRepository = todoRepo.NewMemoryTodoRepository()
	default:
		db, err := database.NewPostgresConnection(cfg)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		// Auto-migrate database schemas
		if err := db.WithContext(ctx).AutoMigrate(&authdomain.User{}, &tododomain.Todo{}); err != nil {
			return err
		}
		userRepo = authRepo.NewUserRepository(db)
		todoRepository = todoRepo.NewGormTodoRepository(db)
	}

	tokens := token.NewService(token.Config{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenExpiry,
		RefreshTTL:    cfg.RefreshTokenExpiry,
		Issuer:        "todo-backend",
	})

	// Initialize use cases
	authUc := authUsecase.NewAuthUsecase(userRepo, credential.NewBcryptHasher(cfg.BcryptCost), tokens, log)
	todoUc := todoUsecase.NewTodoUsecase(todoRepository, userRepo, log)

	sweeper := scheduler.NewSessionSweeper(userRepo, cfg.SessionSweepInterval, log)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	handler := api.NewHandler(authUc, todoUc, cfg, log)
	return handler.Start(ctx, ":"+cfg.Port)
}
