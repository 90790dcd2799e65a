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
	MongoURI             string
	DBName               string
	JWTSecret            string
	AccessTokenTTL       time.Duration
	SessionTTL           time.Duration
	StripeSecretKey      string
	CloudinaryCloudName  string
	CloudinaryAPIKey     string
	CloudinaryAPISecret  string
	CloudinaryBaseFolder string
	RedisAddr            string
	FrontendURL          string
}

// CloudinaryConfigured reports whether every credential needed for uploads is
// present. When false the image bridge degrades to passthrough.
func (c Config) CloudinaryConfigured() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:             getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017/mehryaan"),
		DBName:               getEnvOrDefault("DB_NAME", "mehryaan"),
		JWTSecret:            getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:       getDurationEnv("ACCESS_TOKEN_TTL_DAYS", 30, 24*time.Hour),
		SessionTTL:           getDurationEnv("SESSION_TTL_DAYS", 7, 24*time.Hour),
		StripeSecretKey:      getEnvOrDefault("STRIPE_SECRET_KEY", ""),
		CloudinaryCloudName:  getEnvOrDefault("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:     getEnvOrDefault("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret:  getEnvOrDefault("CLOUDINARY_API_SECRET", ""),
		CloudinaryBaseFolder: getEnvOrDefault("CLOUDINARY_ORDERS_FOLDER", "orders"),
		RedisAddr:            getEnvOrDefault("REDIS_ADDR", ""),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
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
