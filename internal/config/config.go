package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// InsecureDefaultSecret is the fallback signing secret used when JWT_SECRET is
// unset. Shipping with it is a deployment risk; startup logs a warning.
const InsecureDefaultSecret = "manna-dev-secret-change-me"

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret   string
	TokenExpiry time.Duration

	// Uploads
	UploadDir     string
	UploadBaseURL string

	// Notifications
	NATSURL string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	// Optional .env for local development; real env vars win.
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "manna_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:   getEnv("JWT_SECRET", InsecureDefaultSecret),
		TokenExpiry: parseDuration(getEnv("TOKEN_EXPIRY", "168h"), 168*time.Hour),

		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		UploadBaseURL: getEnv("UPLOAD_BASE_URL", "/uploads"),

		NATSURL: getEnv("NATS_URL", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

// DatabaseConfigured reports whether a real database connection is configured.
// Without one the server runs in demo mode: the public content listing serves
// a single seeded item and nothing persists.
func (c *Config) DatabaseConfigured() bool {
	return c.DBPassword != ""
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
