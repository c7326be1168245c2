package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LoginMaxAttempts int
	LoginLockout     time.Duration

	AllowAdminRegistration bool
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

// Load reads a .env file when one exists, then the process environment.
// A missing signing secret is fatal for the caller.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return fromEnv()
}

func fromEnv() (*Config, error) {
	secret := strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if secret == "" {
		return nil, ErrMissingJWTSecret
	}

	cfg := &Config{
		APIPort:                getEnv("API_PORT", getEnv("PORT", "8080")),
		JWTKey:                 []byte(secret),
		JWTExp:                 time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
		DBHost:                 getEnv("DB_HOST", "localhost"),
		DBPort:                 getEnv("DB_PORT", "5432"),
		DBUser:                 getEnv("DB_USER", "user"),
		DBPassword:             getEnv("DB_PASSWORD", "password"),
		DBName:                 getEnv("DB_NAME", "todo_db"),
		DBSslMode:              getEnv("DB_SSLMODE", "disable"),
		DBMaxOpenConns:         getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:         getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetime:      time.Duration(getEnvAsInt("DB_CONN_MAX_LIFETIME", 300)) * time.Second,
		RedisAddr:              getEnv("REDIS_ADDR", ""),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		RedisDB:                getEnvAsInt("REDIS_DB", 0),
		LoginMaxAttempts:       getEnvAsInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginLockout:           time.Duration(getEnvAsInt("LOGIN_LOCKOUT_MINUTES", 15)) * time.Minute,
		AllowAdminRegistration: getEnvAsBool("ALLOW_ADMIN_REGISTRATION", true),
	}

	if cfg.JWTExp <= 0 {
		cfg.JWTExp = 24 * time.Hour
	}

	cfg.DBConnStr = getEnv("DATABASE_URL", "")
	if cfg.DBConnStr == "" {
		cfg.DBConnStr = "host=" + cfg.DBHost +
			" port=" + cfg.DBPort +
			" user=" + cfg.DBUser +
			" password=" + cfg.DBPassword +
			" dbname=" + cfg.DBName +
			" sslmode=" + cfg.DBSslMode
	}

	return cfg, nil
}

// LoginThrottleEnabled reports whether failed logins are tracked in Redis.
func (c *Config) LoginThrottleEnabled() bool {
	return c.RedisAddr != "" && c.LoginMaxAttempts > 0
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
