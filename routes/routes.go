package routes

import (
	"net/http"

	"eduplatform/handlers"
	"eduplatform/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	lessonHandler *handlers.LessonHandler,
	quizHandler *handlers.QuizHandler,
	rewardHandler *handlers.RewardHandler,
	themeHandler *handlers.ThemeHandler,
	expertHandler *handlers.ExpertHandler,
	familyHandler *handlers.FamilyHandler,
	adminHandler *handlers.AdminHandler,
	jwtSecret string,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/verify/send", authHandler.SendVerificationCode)
			auth.POST("/verify/confirm", authHandler.VerifyEmail)
			auth.GET("/oauth/:provider", authHandler.OAuthRedirect)
			auth.GET("/oauth/:provider/callback", authHandler.OAuthCallback)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			// User profile
			protected.GET("/auth/profile", authHandler.GetProfile)
			protected.POST("/auth/password", authHandler.ChangePassword)
			protected.POST("/auth/oauth/:provider/link", authHandler.OAuthLink)

			// Subjects and lessons
			protected.GET("/subjects", lessonHandler.Subjects)
			protected.GET("/subjects/:id/lessons", lessonHandler.ListBySubject)
			lessons := protected.Group("/lessons")
			{
				lessons.POST("", lessonHandler.CreateLesson)
				lessons.GET("/:id", lessonHandler.GetLesson)
			}

			// Quiz routes
			quizzes := protected.Group("/quizzes")
			{
				quizzes.GET("/:id", quizHandler.GetQuiz)
				quizzes.POST("/submit", quizHandler.SubmitQuiz)
				quizzes.GET("/:id/attempts", quizHandler.Attempts)
			}

			// Rewards and tokens
			rewards := protected.Group("/rewards")
			{
				rewards.POST("/daily", rewardHandler.ClaimDaily)
				rewards.GET("/daily", rewardHandler.DailyStatus)
				rewards.GET("/achievements", rewardHandler.Achievements)
				rewards.GET("/transactions", rewardHandler.Transactions)
			}
			protected.GET("/leaderboard", rewardHandler.Leaderboard)

			// Theme marketplace
			themes := protected.Group("/themes")
			{
				themes.GET("", themeHandler.Market)
				themes.POST("", themeHandler.CreateTheme)
				themes.POST("/:id/purchase", themeHandler.Purchase)
				themes.POST("/builtin", themeHandler.ApplyBuiltin)
			}

			// Experts
			experts := protected.Group("/experts")
			{
				experts.GET("", expertHandler.List)
				experts.POST("/:id/select", expertHandler.Select)
				experts.POST("/chat", expertHandler.Chat)
			}

			// Parent and teacher views
			protected.GET("/children", familyHandler.Children)
			protected.GET("/children/:id/progress", familyHandler.ChildProgress)
			protected.POST("/children/:id", familyHandler.LinkChild)

			// Admin routes
			admin := protected.Group("/admin")
			admin.Use(middleware.AdminMiddleware())
			{
				admin.GET("/users", adminHandler.ListUsers)
				admin.PUT("/users/:id/tokens", adminHandler.SetBalance)
				admin.PUT("/users/:id/role", adminHandler.SetRole)
				admin.DELETE("/users/:id", adminHandler.DeleteUser)

				admin.POST("/subjects", adminHandler.CreateSubject)
				admin.PUT("/subjects/:id", adminHandler.UpdateSubject)
				admin.DELETE("/subjects/:id", adminHandler.DeleteSubject)

				admin.POST("/achievements", adminHandler.CreateAchievement)
				admin.DELETE("/achievements/:id", adminHandler.DeleteAchievement)

				admin.GET("/themes/pending", themeHandler.Pending)
				admin.POST("/themes/:id/approve", themeHandler.Approve)
				admin.POST("/themes/:id/reject", themeHandler.Reject)

				admin.POST("/experts", expertHandler.Create)
				admin.DELETE("/experts/:id", expertHandler.Delete)
			}
		}
	}
}
