package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	// Server настройки
	Port string
	Host string
	Env  string

	// MongoDB настройки
	MongoURI     string
	DatabaseName string
	MongoTimeout int

	// JWT настройки
	JWTSecret     string
	JWTExpiration int

	// Firebase настройки (push-уведомления)
	FirebaseKey string

	// Amap API (карты в мобильном клиенте)
	AmapKey string

	// Загрузка файлов
	UploadDir     string
	MaxUploadSize int64

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   int // секунды

	// CORS
	AllowedOrigins []string
}

func Load() *Config {
	config := &Config{
		Port:          getEnv("PORT", "8080"),
		Host:          getEnv("HOST", "0.0.0.0"),
		Env:           getEnv("ENV", "development"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DatabaseName:  getEnv("DATABASE_NAME", "campus_findu"),
		MongoTimeout:  getEnvAsInt("MONGO_TIMEOUT", 10),
		JWTSecret:     getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiration: getEnvAsInt("JWT_EXPIRATION", 24), // часы
		FirebaseKey:   getEnv("FIREBASE_KEY", ""),
		AmapKey:       getEnv("AMAP_KEY", ""),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadSize: int64(getEnvAsInt("MAX_UPLOAD_SIZE_MB", 5)) << 20,

		RateLimitEnabled:  getEnv("RATE_LIMIT_ENABLED", "true") == "true",
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvAsInt("RATE_LIMIT_WINDOW", 60),

		AllowedOrigins: []string{getEnv("ALLOWED_ORIGIN", "*")},
	}

	if config.Env == "production" && config.JWTSecret == "your-secret-key" {
		log.Println("WARNING: using default JWT secret in production")
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
