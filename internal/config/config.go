package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI        string
	DBName          string
	Port            string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	UploadDir string

	KhaltiBaseURL   string
	KhaltiSecretKey string
	PaymentReturn   string
	PaymentWebsite  string

	AdminEmail    string
	AdminPassword string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:        getEnvOrDefault("MONGO_URI", ""),
		DBName:          getEnvOrDefault("DB_NAME", "gostore"),
		Port:            getEnvOrDefault("PORT", "8080"),
		JWTSecret:       getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:  getDurationEnv("ACCESS_TOKEN_TTL", 20, time.Minute),
		RefreshTokenTTL: getDurationEnv("REFRESH_TOKEN_TTL", 7, 24*time.Hour),

		UploadDir: getEnvOrDefault("UPLOAD_DIR", "./upload"),

		KhaltiBaseURL:   getEnvOrDefault("KHALTI_BASE_URL", "https://dev.khalti.com/api/v2"),
		KhaltiSecretKey: getEnvOrDefault("KHALTI_SECRET_KEY", ""),
		PaymentReturn:   getEnvOrDefault("PAYMENT_RETURN_URL", "http://localhost:3000/success"),
		PaymentWebsite:  getEnvOrDefault("PAYMENT_WEBSITE_URL", "http://localhost:3000"),

		AdminEmail:    getEnvOrDefault("ADMIN_EMAIL", "admin12@gmail.com"),
		AdminPassword: getEnvOrDefault("ADMIN_PASSWORD", "admin"),

		SMTPHost: getEnvOrDefault("SMTP_HOST", ""),
		SMTPPort: getEnvOrDefault("SMTP_PORT", "587"),
		SMTPUser: getEnvOrDefault("SMTP_USER", ""),
		SMTPPass: getEnvOrDefault("SMTP_PASS", ""),
		SMTPFrom: getEnvOrDefault("SMTP_FROM", ""),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
