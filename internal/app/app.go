package app

import (
	"fmt"

	"travelbuddy_backend/database"
	"travelbuddy_backend/internal/auth"
	"travelbuddy_backend/internal/config"
	"travelbuddy_backend/internal/email"
	"travelbuddy_backend/internal/handlers"
	"travelbuddy_backend/internal/logger"
	"travelbuddy_backend/internal/middleware"
	"travelbuddy_backend/internal/models"
	"travelbuddy_backend/internal/repositories"
	"travelbuddy_backend/internal/routes"
	"travelbuddy_backend/internal/services"
	"travelbuddy_backend/internal/services/payments"
	"travelbuddy_backend/internal/validator"
	"travelbuddy_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)
	apperrors.SetDebug(cfg.Server.Env == "development")

	// An unverified payments config must never reach traffic.
	if err := cfg.Payments.Validate(); err != nil {
		logger.Fatal("Invalid payments configuration", "error", err)
	}

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.Migrate(gormDB); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	auth.SetTokenManager(tokenManager)

	serviceContainer := initializeServices(cfg, gormDB, tokenManager)
	appHandlers := initializeHandlers(serviceContainer)

	ginRouter := initializeGinRouter()
	routes.RegisterRoutes(ginRouter, appHandlers)
	return ginRouter
}

func initializeServices(cfg *config.Config, gormDB *gorm.DB, tokenManager *auth.TokenManager) *services.ServiceContainer {
	var emailProvider email.Provider
	if cfg.Email.SMTPHost != "" {
		emailProvider = email.NewSMTPProvider(&email.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		})
	} else {
		logger.Warn("SMTP is not configured, outbound mail is disabled")
		emailProvider = &MockEmailProvider{}
	}

	userRepo := repositories.NewUserRepository(gormDB)
	planRepo := repositories.NewTravelPlanRepository(gormDB)
	reviewRepo := repositories.NewReviewRepository(gormDB)
	paymentRepo := repositories.NewPaymentRepository(gormDB)

	gateway := payments.NewSSLCommerzService(&cfg.Payments)

	return &services.ServiceContainer{
		AuthService:       services.NewAuthService(userRepo, tokenManager, cfg.JWT.TTL),
		UserService:       services.NewUserService(userRepo),
		TravelPlanService: services.NewTravelPlanService(planRepo, userRepo, emailProvider),
		ReviewService:     services.NewReviewService(reviewRepo, planRepo, userRepo),
		PaymentService:    services.NewPaymentService(paymentRepo, userRepo, gateway, &cfg.Payments, emailProvider),
		DashboardService:  services.NewDashboardService(planRepo, reviewRepo),
		EmailProvider:     emailProvider,
	}
}

func initializeHandlers(container *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		Auth:       handlers.NewAuthHandler(baseHandler, container.AuthService),
		User:       handlers.NewUserHandler(baseHandler, container.UserService),
		TravelPlan: handlers.NewTravelPlanHandler(baseHandler, container.TravelPlanService),
		Review:     handlers.NewReviewHandler(baseHandler, container.ReviewService),
		Payment:    handlers.NewPaymentHandler(baseHandler, container.PaymentService),
		Dashboard:  handlers.NewDashboardHandler(baseHandler, container.DashboardService),
	}
}

func initializeGinRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	return router
}

func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := cfg.FirstAdminEmail
	adminPassword := cfg.FirstAdminPassword

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).
		Where("email = ?", adminEmail).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}
	if count > 0 {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}

	logger.Warn("No admin user found. Creating first admin...", "email", adminEmail)
	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Email:        adminEmail,
		PasswordHash: hash,
		FullName:     "Administrator",
		Role:         models.UserRoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}
