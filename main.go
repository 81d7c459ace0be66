package main

import (
	"log"
	"time"

	"eduplatform/config"
	"eduplatform/handlers"
	"eduplatform/middleware"
	"eduplatform/models"
	"eduplatform/routes"
	"eduplatform/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Expert{},
		&models.Subject{},
		&models.Lesson{},
		&models.Quiz{},
		&models.Question{},
		&models.UserAnswer{},
		&models.QuizAttempt{},
		&models.TokenTransaction{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Theme{},
		&models.ThemePurchase{},
		&models.EmailVerificationCode{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize services
	ledgerService := services.NewLedgerService(db)
	rewardPolicy := services.NewRewardPolicy(cfg.Economy)

	var generator services.Generator = services.NewOpenRouterClient(cfg.OpenRouterKey, cfg.OpenRouterModel, cfg.OpenRouterURL)

	var emailSender services.EmailSender
	if cfg.SendGridKey != "" {
		emailSender = services.NewSendGridEmailSender(cfg.SendGridKey, cfg.AppName, cfg.FromEmail)
	} else {
		emailSender = services.NewConsoleEmailSender()
	}

	authService := services.NewAuthService(db, ledgerService, redisClient, cfg.JWTSecret, cfg.Economy.InitialTokens)
	oauthService := services.NewOAuthService(db, ledgerService, authService,
		cfg.GithubClientID, cfg.GithubClientSecret,
		cfg.GoogleClientID, cfg.GoogleClientSecret,
		cfg.OAuthRedirectBase, cfg.Economy.InitialTokens)
	verificationService := services.NewVerificationService(db, emailSender, cfg.AppName,
		time.Duration(cfg.Economy.VerificationCodeTTLMinutes)*time.Minute)
	quizService := services.NewQuizService(db, ledgerService, rewardPolicy)
	lessonService := services.NewLessonService(db, ledgerService, rewardPolicy, generator)
	catalogService := services.NewCatalogService(db)
	rewardService := services.NewRewardService(db, ledgerService, rewardPolicy)
	themeService := services.NewThemeService(db, ledgerService, rewardPolicy)
	expertService := services.NewExpertService(db, ledgerService, rewardPolicy, generator)
	userService := services.NewUserService(db, ledgerService, redisClient)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, oauthService, verificationService)
	lessonHandler := handlers.NewLessonHandler(lessonService, catalogService)
	quizHandler := handlers.NewQuizHandler(quizService)
	rewardHandler := handlers.NewRewardHandler(rewardService, ledgerService, userService)
	themeHandler := handlers.NewThemeHandler(themeService)
	expertHandler := handlers.NewExpertHandler(expertService)
	familyHandler := handlers.NewFamilyHandler(userService)
	adminHandler := handlers.NewAdminHandler(userService, catalogService)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS(cfg.AllowedOrigins...))

	// Setup routes
	routes.SetupRoutes(router,
		authHandler, lessonHandler, quizHandler, rewardHandler,
		themeHandler, expertHandler, familyHandler, adminHandler,
		cfg.JWTSecret)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.BindAddress + ":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
