package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/johnquangdev/meeting-taskflow/pkg/validator"

	"github.com/johnquangdev/meeting-taskflow/internal/adapter/handler"
	"github.com/johnquangdev/meeting-taskflow/internal/adapter/repository"
	"github.com/johnquangdev/meeting-taskflow/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-taskflow/internal/infrastructure/database"
	httpmw "github.com/johnquangdev/meeting-taskflow/internal/infrastructure/http/middleware"
	syncfeed "github.com/johnquangdev/meeting-taskflow/internal/infrastructure/sync"
	assignmentUsecase "github.com/johnquangdev/meeting-taskflow/internal/usecase/assignment"
	meetingUsecase "github.com/johnquangdev/meeting-taskflow/internal/usecase/meeting"
	notificationUsecase "github.com/johnquangdev/meeting-taskflow/internal/usecase/notification"
	"github.com/johnquangdev/meeting-taskflow/internal/usecase/notify"
	"github.com/johnquangdev/meeting-taskflow/internal/usecase/resolver"
	teamUsecase "github.com/johnquangdev/meeting-taskflow/internal/usecase/team"
	"github.com/johnquangdev/meeting-taskflow/pkg/config"
	"github.com/johnquangdev/meeting-taskflow/pkg/jwt"
	"github.com/johnquangdev/meeting-taskflow/pkg/retry"
	"github.com/johnquangdev/meeting-taskflow/pkg/summarizer"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Set-Cookie", "Cookie"},
		AllowCredentials: true,
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run migrations only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Applying migrations (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping migrations; use sql-migrate for schema migrations in CI/CD/production")
	}

	// Initialize Redis and the cross-process change feed
	log.Println("📦 Connecting to Redis...")
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	log.Println("📡 Initializing change feed and sync hub...")
	feed := syncfeed.NewRedisFeed(redisClient, logger)
	hub := syncfeed.NewHub(feed, cfg.Sync.BatchWindow, logger)
	defer hub.Close()

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	meetingRepo := repository.NewMeetingRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Retry policy shared by all storage writers
	policy := retry.Policy{
		MaxAttempts:     cfg.Retry.MaxAttempts,
		InitialInterval: cfg.Retry.InitialInterval,
		MaxElapsed:      cfg.Retry.MaxElapsed,
	}

	// Initialize notification dispatcher
	log.Println("🔔 Initializing notification dispatcher...")
	dispatcher := notify.NewDispatcher(notificationRepo, feed, policy, logger)
	defer dispatcher.Wait()

	// Initialize summarizer client
	log.Println("🤖 Initializing summarizer client...")
	summarizerClient := summarizer.NewHTTPClient(&cfg.Summarizer)

	// Initialize services
	log.Println("🧩 Initializing services...")
	speakerResolver := resolver.New(cfg.Resolver.Threshold)
	assignmentService := assignmentUsecase.NewService(
		taskRepo, meetingRepo, teamRepo, speakerResolver, dispatcher, feed, policy, logger)
	meetingService := meetingUsecase.NewService(
		meetingRepo, taskRepo, teamRepo, summarizerClient, assignmentService, dispatcher, feed, policy, logger)
	teamService := teamUsecase.NewService(teamRepo, dispatcher, feed, policy, logger)
	notificationService := notificationUsecase.NewService(notificationRepo)

	// Initialize JWT manager
	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry)

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	meetingHandler := handler.NewMeetingHandler(meetingService, logger)
	taskHandler := handler.NewTaskHandler(assignmentService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger)
	teamHandler := handler.NewTeamHandler(teamService, logger)
	streamHandler := handler.NewStreamHandler(hub, meetingService, teamService, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	authEchoMW := httpmw.EchoAuth(jwtManager)
	router := handler.NewRouter(cfg, meetingHandler, taskHandler, notificationHandler, teamHandler, streamHandler, authEchoMW)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
