package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	Port        string
	BindAddress string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	RedisHost   string
	RedisPort   string
	JWTSecret   string

	SendGridKey string
	FromEmail   string
	AppName     string

	GithubClientID     string
	GithubClientSecret string
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectBase  string

	OpenRouterKey   string
	OpenRouterModel string
	OpenRouterURL   string

	AllowedOrigins []string

	Economy Economy
}

// Economy holds the token/rating rules. AdminPaysLessonCost resolves the
// disagreement between the two legacy lesson routes: when false,
// administrators create lessons for free.
type Economy struct {
	InitialTokens          int
	DailyTokens            int
	LessonCost             int
	CorrectAnswerReward    int
	ExpertChatCost         int
	RatingPerCorrect       int
	PerfectQuizRatingBonus int
	AdminPaysLessonCost    bool

	// DailyRewardMode is "interval" (24h since last claim) or "cutoff"
	// (once per calendar day, after DailyRewardCutoff in DailyRewardTZ).
	DailyRewardMode   string
	DailyRewardCutoff string
	DailyRewardTZ     string

	VerificationCodeTTLMinutes int

	ThemeCreatorShare float64
	ThemeMinPrice     int
	ThemeMaxPrice     int
}

func Load() *Config {
	// Missing .env is fine; env vars may come from the environment.
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		BindAddress: getEnv("BIND_ADDRESS", "localhost"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "eduplatform"),
		DBPassword:  getEnv("DB_PASSWORD", "eduplatform123"),
		DBName:      getEnv("DB_NAME", "eduplatform"),
		RedisHost:   getEnv("REDIS_HOST", "localhost"),
		RedisPort:   getEnv("REDIS_PORT", "6379"),
		JWTSecret:   getEnv("JWT_SECRET", "your-secret-key-change-in-production"),

		SendGridKey: getEnv("SENDGRID_API_KEY", ""),
		FromEmail:   getEnv("FROM_EMAIL", "noreply@eduplatform.local"),
		AppName:     getEnv("APP_NAME", "EduPlatform"),

		GithubClientID:     getEnv("GITHUB_CLIENT_ID", ""),
		GithubClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectBase:  getEnv("OAUTH_REDIRECT_BASE", "http://localhost:8080"),

		OpenRouterKey:   getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel: getEnv("OPENROUTER_MODEL", "x-ai/grok-4.1-fast:free"),
		OpenRouterURL:   getEnv("OPENROUTER_URL", "https://openrouter.ai/api/v1"),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "")),

		Economy: Economy{
			InitialTokens:          getEnvInt("INITIAL_TOKENS", 100),
			DailyTokens:            getEnvInt("DAILY_TOKENS", 20),
			LessonCost:             getEnvInt("LESSON_COST", 10),
			CorrectAnswerReward:    getEnvInt("CORRECT_ANSWER_REWARD", 2),
			ExpertChatCost:         getEnvInt("EXPERT_CHAT_COST", 2),
			RatingPerCorrect:       getEnvInt("RATING_PER_CORRECT", 10),
			PerfectQuizRatingBonus: getEnvInt("PERFECT_QUIZ_RATING_BONUS", 50),
			AdminPaysLessonCost:    getEnvBool("ADMIN_PAYS_LESSON_COST", false),

			DailyRewardMode:   getEnv("DAILY_REWARD_MODE", "interval"),
			DailyRewardCutoff: getEnv("DAILY_REWARD_CUTOFF", "14:15"),
			DailyRewardTZ:     getEnv("DAILY_REWARD_TZ", "Europe/Moscow"),

			VerificationCodeTTLMinutes: getEnvInt("VERIFICATION_CODE_TTL_MINUTES", 10),

			ThemeCreatorShare: 0.8,
			ThemeMinPrice:     20,
			ThemeMaxPrice:     300,
		},
	}
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func InitRedis(cfg *Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	return client
}
