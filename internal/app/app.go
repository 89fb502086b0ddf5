package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Prathmesh125/reviewsystem/internal/ai"
	"github.com/Prathmesh125/reviewsystem/internal/config"
	"github.com/Prathmesh125/reviewsystem/internal/email"
	"github.com/Prathmesh125/reviewsystem/internal/handlers"
	"github.com/Prathmesh125/reviewsystem/internal/logger"
	"github.com/Prathmesh125/reviewsystem/internal/middleware"
	"github.com/Prathmesh125/reviewsystem/internal/models"
	"github.com/Prathmesh125/reviewsystem/internal/payment"
	"github.com/Prathmesh125/reviewsystem/internal/plans"
	"github.com/Prathmesh125/reviewsystem/internal/repositories"
	"github.com/Prathmesh125/reviewsystem/internal/routes"
	"github.com/Prathmesh125/reviewsystem/internal/services"
	"github.com/Prathmesh125/reviewsystem/internal/validator"
	"github.com/Prathmesh125/reviewsystem/internal/workers"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

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

	if err := AutoMigrate(gormDB); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ginRouter, container := SetupRouter(cfg, gormDB)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	startWorkers(workerCtx, cfg, gormDB, container)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// AutoMigrate creates or updates the schema for every model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Business{},
		&models.Customer{},
		&models.Subscription{},
		&models.PaymentTransaction{},
		&models.UsageRecord{},
		&models.Review{},
		&models.AIGeneration{},
		&models.QRCode{},
		&models.QRScan{},
	)
}

// SetupRouter wires repositories, services, and handlers into a gin engine.
// Split out from Run so tests can build a fully wired router over their own DB.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, *services.ServiceContainer) {
	container := initializeServices(cfg)
	appHandlers := initializeHandlers(cfg, container)

	ginRouter := initializeGinRouter(gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter, container
}

func initializeServices(cfg *config.Config) *services.ServiceContainer {
	catalog := plans.NewCatalog()

	var mailer email.Provider
	if cfg.Email.SMTPHost != "" {
		smtp, err := email.NewSMTPProvider(email.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		})
		if err != nil {
			logger.Fatal("Invalid email configuration", "error", err)
		}
		mailer = smtp
	} else {
		logger.Warn("SMTP is not configured, email notifications disabled")
		mailer = email.NoopProvider{}
	}

	var primary ai.Enhancer
	if cfg.AI.APIKey != "" {
		primary = ai.NewOpenAIEnhancer(
			cfg.AI.APIKey,
			cfg.AI.Model,
			cfg.AI.BaseURL,
			time.Duration(cfg.AI.TimeoutSeconds)*time.Second,
		)
	} else {
		logger.Warn("AI API key is not configured, using local enhancement only")
	}
	enhancer := ai.NewResolver(primary)

	paymentClient := payment.NewClient(
		cfg.Payment.MerchantLogin,
		cfg.Payment.Password1,
		cfg.Payment.Password2,
		cfg.Payment.BaseURL,
	)

	userRepo := repositories.NewUserRepository()
	businessRepo := repositories.NewBusinessRepository()
	subscriptionRepo := repositories.NewSubscriptionRepository()
	usageRepo := repositories.NewUsageRepository()
	reviewRepo := repositories.NewReviewRepository()
	qrRepo := repositories.NewQRCodeRepository()

	entitlementService := services.NewEntitlementService(catalog, subscriptionRepo, usageRepo)

	return &services.ServiceContainer{
		AuthService:         services.NewAuthService(userRepo),
		BusinessService:     services.NewBusinessService(businessRepo),
		EntitlementService:  entitlementService,
		SubscriptionService: services.NewSubscriptionService(catalog, subscriptionRepo, paymentClient, cfg.Payment.Currency),
		ReviewService:       services.NewReviewService(reviewRepo, businessRepo, userRepo, entitlementService, enhancer, mailer),
		QRCodeService:       services.NewQRCodeService(qrRepo, businessRepo, entitlementService, cfg.QR.PublicBaseURL),
		AnalyticsService:    services.NewAnalyticsService(reviewRepo, qrRepo, businessRepo, entitlementService),
		EmailProvider:       mailer,
	}
}

func initializeHandlers(cfg *config.Config, container *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)
	catalog := plans.NewCatalog()

	return &handlers.AppHandlers{
		AuthHandler:     handlers.NewAuthHandler(baseHandler, container.AuthService),
		BusinessHandler: handlers.NewBusinessHandler(baseHandler, container.BusinessService, container.ReviewService),
		SubscriptionHandler: handlers.NewSubscriptionHandler(
			baseHandler,
			catalog,
			container.SubscriptionService,
			container.EntitlementService,
			container.BusinessService,
		),
		ReviewHandler:    handlers.NewReviewHandler(baseHandler, container.ReviewService),
		QRCodeHandler:    handlers.NewQRCodeHandler(baseHandler, container.QRCodeService),
		AnalyticsHandler: handlers.NewAnalyticsHandler(baseHandler, container.AnalyticsService),
		AdminHandler: handlers.NewAdminHandler(
			baseHandler,
			container.ReviewService,
			container.SubscriptionService,
			container.AnalyticsService,
		),
	}
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}

func startWorkers(ctx context.Context, cfg *config.Config, gormDB *gorm.DB, container *services.ServiceContainer) {
	interval := time.Duration(cfg.Worker.ExpirySweepHours) * time.Hour
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	worker := workers.NewSubscriptionWorker(
		gormDB,
		container.SubscriptionService,
		repositories.NewUserRepository(),
		container.EmailProvider,
		plans.NewCatalog(),
		interval,
	)
	worker.Start(ctx)
	logger.Info("Subscription worker started", "interval", interval.String())
}

func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := cfg.FirstAdminEmail
	adminPassword := cfg.FirstAdminPassword

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	var adminUser models.User
	result := db.Where("email = ?", adminEmail).First(&adminUser)
	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	newAdmin := &models.User{
		Email:        adminEmail,
		PasswordHash: string(hashedPassword),
		Name:         "Administrator",
		Role:         models.UserRoleAdmin,
		Status:       models.UserStatusActive,
	}
	if err := db.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("Created first admin user", "email", adminEmail)
	return nil
}
