package main

import (
	"log"

	"github.com/calentasker/calentasker-api/internal/config"
	"github.com/calentasker/calentasker-api/internal/database"
	"github.com/calentasker/calentasker-api/internal/handlers"
	"github.com/calentasker/calentasker-api/internal/middleware"
	"github.com/calentasker/calentasker-api/internal/repository"
	"github.com/calentasker/calentasker-api/internal/services"
	"github.com/calentasker/calentasker-api/internal/storage"
	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
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
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction, // true in production (HTTPS), false in development
		SameSite: 2,            // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions("calentasker_session", store))

	// Initialize repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	// Initialize file storage
	fileStore := storage.NewLocalFileStore(cfg.UploadDir)

	// Initialize services
	userService := services.NewUserService(userRepo)
	groupService := services.NewGroupService(groupRepo, userRepo)
	taskService := services.NewTaskService(taskRepo, groupRepo)
	commentService := services.NewCommentService(commentRepo, taskRepo, groupRepo)
	attachmentService := services.NewAttachmentService(attachmentRepo, taskRepo, groupRepo, fileStore)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService, fileStore)
	groupHandler := handlers.NewGroupHandler(groupService)
	taskHandler := handlers.NewTaskHandler(taskService)
	commentHandler := handlers.NewCommentHandler(commentService)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Calentasker API is running",
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

		// User routes (protected)
		users := api.Group("/users")
		users.Use(middleware.RequireAuth())
		{
			users.GET("/:id", userHandler.GetUser)
			users.PATCH("/:id", userHandler.UpdateUser)
			users.POST("/:id/profile-picture", userHandler.UploadProfilePicture)
		}

		// Group routes (protected)
		groups := api.Group("/groups")
		groups.Use(middleware.RequireAuth())
		{
			groups.POST("", groupHandler.CreateGroup)
			groups.GET("", groupHandler.ListGroups)
			groups.GET("/mine", groupHandler.ListMyGroups)
			groups.GET("/:id", groupHandler.GetGroup)
			groups.PATCH("/:id", groupHandler.UpdateGroup)
			groups.DELETE("/:id", groupHandler.DeleteGroup)
			groups.POST("/:id/members", groupHandler.AddMember)
			groups.DELETE("/:id/members/:user_id", groupHandler.RemoveMember)
			groups.POST("/:id/transfer-leadership", groupHandler.TransferLeadership)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/assign", taskHandler.AssignTask)
			tasks.POST("/:id/unassign", taskHandler.UnassignTask)
			tasks.POST("/:id/comments", commentHandler.CreateComment)
			tasks.GET("/:id/comments", commentHandler.ListComments)
			tasks.POST("/:id/attachments", attachmentHandler.UploadAttachment)
			tasks.GET("/:id/attachments", attachmentHandler.ListAttachments)
		}

		// Comment routes (protected)
		comments := api.Group("/comments")
		comments.Use(middleware.RequireAuth())
		{
			comments.PATCH("/:id", commentHandler.UpdateComment)
			comments.DELETE("/:id", commentHandler.DeleteComment)
		}

		// Attachment routes (protected)
		attachments := api.Group("/attachments")
		attachments.Use(middleware.RequireAuth())
		{
			attachments.DELETE("/:id", attachmentHandler.DeleteAttachment)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
