package main

import (
	"context"
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"

	"github.com/sprintr-app/sprintr-api/internal/config"
	"github.com/sprintr-app/sprintr-api/internal/constants"
	"github.com/sprintr-app/sprintr-api/internal/database"
	"github.com/sprintr-app/sprintr-api/internal/email"
	"github.com/sprintr-app/sprintr-api/internal/handlers"
	"github.com/sprintr-app/sprintr-api/internal/middleware"
	"github.com/sprintr-app/sprintr-api/internal/repository"
	"github.com/sprintr-app/sprintr-api/internal/services"
	"github.com/sprintr-app/sprintr-api/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,                        // Redis pool size
		"tcp",                     // network type
		redisAddr,                 // Redis address from config
		"",                        // username (empty for default user)
		"",                        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   isProduction, // true in production (HTTPS), false in development
		SameSite: 2,            // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionName, store))

	// Object storage for workspace, project and attachment images
	var images storage.ImageStore
	if cfg.MinioAccessKey != "" {
		store, err := storage.NewImageStore(context.Background(), storage.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
			Bucket:    cfg.MinioBucket,
			PublicURL: cfg.MinioPublicURL,
		})
		if err != nil {
			log.Fatalf("Failed to initialize image storage: %v", err)
		}
		images = store
	}

	// Email delivery
	var mailer email.Mailer
	if functionMailer := email.NewFunctionMailer(email.Config{
		FunctionURL: cfg.MailFunctionURL,
		Token:       cfg.MailFunctionToken,
	}); functionMailer.IsConfigured() {
		mailer = functionMailer
	}

	// Repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	historyRepo := repository.NewTaskHistoryRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	authService := services.NewAuthService(userRepo)
	taskService := services.NewTaskService(taskRepo, historyRepo)
	notifier := services.NewNotifier(memberRepo, notificationRepo, mailer, cfg.AppBaseURL)

	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	workspaceHandler := handlers.NewWorkspaceHandler(images)
	memberHandler := handlers.NewMemberHandler(memberRepo)
	projectHandler := handlers.NewProjectHandler(images)
	taskHandler := handlers.NewTaskHandler(taskService, aiService, notifier, taskRepo, historyRepo, memberRepo, images)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Sprintr API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Workspace routes (protected)
		workspaces := api.Group("/workspaces")
		workspaces.Use(middleware.RequireAuth())
		{
			workspaces.POST("", workspaceHandler.CreateWorkspace)
			workspaces.GET("", workspaceHandler.ListWorkspaces)

			// The info and join endpoints only need authentication, not
			// membership, so the join screen can show the workspace.
			workspaces.GET("/:id/info", workspaceHandler.GetWorkspaceInfo)
			workspaces.POST("/:id/join", workspaceHandler.JoinWorkspace)

			member := workspaces.Group("/:id")
			member.Use(middleware.RequireWorkspaceAccess(memberRepo))
			{
				member.GET("", workspaceHandler.GetWorkspace)
				member.PATCH("", middleware.RequireWorkspaceAdmin(), workspaceHandler.UpdateWorkspace)
				member.DELETE("", workspaceHandler.DeleteWorkspace)
				member.POST("/reset-invite-code", middleware.RequireWorkspaceAdmin(), workspaceHandler.ResetInviteCode)
				member.GET("/analytics", workspaceHandler.GetAnalytics)
				member.GET("/tasks", workspaceHandler.ListWorkspaceTasks)

				member.GET("/members", memberHandler.ListMembers)
				member.PATCH("/members/:memberId", memberHandler.UpdateMemberRole)
				member.DELETE("/members/:memberId", memberHandler.RemoveMember)

				member.GET("/projects", projectHandler.ListProjects)
				member.POST("/projects", projectHandler.CreateProject)
				member.GET("/projects/:projectId", projectHandler.GetProject)
				member.PATCH("/projects/:projectId", projectHandler.UpdateProject)
				member.DELETE("/projects/:projectId", projectHandler.DeleteProject)
			}
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/bulk-update", taskHandler.BulkUpdate)
			tasks.POST("/suggest", taskHandler.SuggestTasks)
			tasks.GET("/:id", middleware.RequireTaskAccess(taskRepo, memberRepo), taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequireTaskAccess(taskRepo, memberRepo), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireTaskAccess(taskRepo, memberRepo), taskHandler.DeleteTask)
			tasks.GET("/:id/comments", middleware.RequireTaskAccess(taskRepo, memberRepo), taskHandler.ListComments)
			tasks.POST("/:id/comments", middleware.RequireTaskAccess(taskRepo, memberRepo), taskHandler.CreateComment)
			tasks.GET("/:id/history", middleware.RequireTaskAccess(taskRepo, memberRepo), taskHandler.ListHistory)
		}

		// Notification routes (protected)
		notifications := api.Group("/notifications")
		notifications.Use(middleware.RequireAuth())
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.PATCH("/read", notificationHandler.MarkAllRead)
			notifications.PATCH("/:id/read", notificationHandler.MarkRead)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
