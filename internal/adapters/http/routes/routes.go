package routes

import (
	"smartcart-auth/internal/adapters/http/handlers"
	"smartcart-auth/internal/adapters/http/middleware"
	"smartcart-auth/internal/adapters/persistence/repositories"
	"smartcart-auth/internal/config"
	"smartcart-auth/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	tokenRepo := repositories.NewAccessTokenRepository(db)
	resetCodeRepo := repositories.NewResetCodeRepository(db)

	// Initialize services
	mailService := services.NewMailService(cfg)
	authService := services.NewAuthService(userRepo, tokenRepo, mailService, cfg)
	userService := services.NewUserService(userRepo, resetCodeRepo, tokenRepo, mailService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// The authenticator runs on every API request, public routes
	// included; it establishes identity but never rejects
	apiV1 := app.Group("/api/v1", middleware.RequestAuthenticator(cfg, userRepo, tokenRepo))

	// Auth routes
	auth := apiV1.Group("/auth")
	auth.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	auth.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	auth.Post("/refresh-token", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/me", middleware.RequireAuth(), authHandler.Me)

	// User routes
	users := apiV1.Group("/users")
	users.Patch("/changePassword", middleware.RequireAuth(), userHandler.ChangePassword)
	users.Patch("/forgetPassword", middleware.StrictRateLimiter(), userHandler.ForgetPassword)
	users.Patch("/resetPassword", middleware.StrictRateLimiter(), userHandler.ResetPassword)
	users.Get("/", middleware.AdminOnly(), userHandler.ListUsers)
	users.Delete("/:username", middleware.AdminOnly(), userHandler.DeleteUser)
}
