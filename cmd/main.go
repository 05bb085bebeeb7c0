package main

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/arzan03/campus-connect/internal/apperr"
	"github.com/arzan03/campus-connect/internal/config"
	"github.com/arzan03/campus-connect/internal/db"
	"github.com/arzan03/campus-connect/internal/handlers"
	"github.com/arzan03/campus-connect/internal/logger"
	"github.com/arzan03/campus-connect/internal/middleware"
	"github.com/arzan03/campus-connect/internal/models"
	"github.com/arzan03/campus-connect/internal/notify"
	"github.com/arzan03/campus-connect/internal/services"
	"github.com/arzan03/campus-connect/internal/storage"
	"github.com/arzan03/campus-connect/internal/store/mongodb"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.App.Env)

	// Connect to MongoDB
	database, err := db.Connect(cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("MongoDB connection failed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("failed to create indexes")
	}
	cancel()

	// Initialize MinIO
	images, err := storage.NewImageStore(cfg.Minio)
	if err != nil {
		log.Fatal().Err(err).Msg("MinIO connection failed")
	}

	// Stores
	users := mongodb.NewUserStore(database)
	otps := mongodb.NewOTPStore(database)
	issues := mongodb.NewIssueStore(database)
	comments := mongodb.NewCommentStore(database)

	// Mail goes out on a small worker pool so handlers never block on SMTP.
	mail := notify.NewDispatcher(notify.NewMailer(cfg.SMTP), 2)
	defer mail.Close()

	// Services
	authService := services.NewAuthService(users, otps, mail, cfg.JWT.Secret)
	issueService := services.NewIssueService(issues, users, comments, images)
	adminService := services.NewAdminService(users, issues)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.IsProduction())
	issueHandler := handlers.NewIssueHandler(issueService, images)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Initialize Fiber
	app := fiber.New(fiber.Config{
		ErrorHandler: apperr.Handler(cfg.IsProduction()),
		BodyLimit:    storage.MaxImageSize + 1<<20,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	authenticated := middleware.Authenticate(cfg.JWT.Secret, users)
	authorityOnly := middleware.RequireRoles(models.RoleAuthority)

	app.Get("/api/health", handlers.Health)
	app.Get("/uploads/issue-images/:object", issueHandler.ServeImage)

	// Auth Routes
	auth := app.Group("/api/auth")
	auth.Post("/send-otp", authHandler.SendOTP)
	auth.Post("/verify-otp", authHandler.VerifyOTP)
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", authenticated, authHandler.Me)
	auth.Put("/profile", authenticated, authHandler.UpdateProfile)

	// Issue Routes
	issueRoutes := app.Group("/api/issues", authenticated)
	issueRoutes.Post("/", issueHandler.Create)
	issueRoutes.Get("/", issueHandler.List)
	issueRoutes.Get("/my-issues", issueHandler.ListMine)
	issueRoutes.Get("/:id", issueHandler.Get)
	issueRoutes.Put("/:id/status", authorityOnly, issueHandler.UpdateStatus)
	issueRoutes.Delete("/:id", authorityOnly, issueHandler.Delete)
	issueRoutes.Post("/:id/comments", issueHandler.AddComment)
	// Legacy standalone comments sub-resource, kept for old clients.
	issueRoutes.Get("/:id/comments", issueHandler.ListComments)
	app.Delete("/api/comments/:id", authenticated, issueHandler.DeleteComment)

	// Admin Routes
	admin := app.Group("/api/admin", authenticated, authorityOnly)
	admin.Get("/analytics", adminHandler.Analytics)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Delete("/users/:id", adminHandler.DeleteUser)

	log.Fatal().Err(app.Listen(":" + cfg.App.Port)).Msg("server stopped")
}
