package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	OAuth2Google OAuth2GoogleConfig
	Storage      StorageConfig
	LeavePolicy  LeavePolicyConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

type StorageConfig struct {
	Type     string
	BasePath string
	BaseURL  string
}

// LeavePolicyConfig holds the tunable leave policy rules. Injected into the
// lifecycle services so tests can vary them.
type LeavePolicyConfig struct {
	// MaxDayIncrease caps how many working days a resubmission may add on top
	// of the original request.
	MaxDayIncrease int
	// CertificateAfterDays is the medical-leave length beyond which a
	// certificate must be attached.
	CertificateAfterDays int
	// MinReasonLength is the minimum accepted reason length.
	MinReasonLength int
	// MinNoticeDays is the minimum notice before the start date for
	// non-emergency leave types.
	MinNoticeDays int
}

func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "leave-backend"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// OAuth2 Google configuration
	config.OAuth2Google = OAuth2GoogleConfig{
		ClientID:     getEnv("CLIENT_ID", ""),
		ClientSecret: getEnv("CLIENT_SECRET", ""),
		RedirectURL:  getEnv("REDIRECT_URL", ""),
		Scopes:       getEnvSlice("SCOPES"),
	}

	// Storage configuration
	config.Storage = StorageConfig{
		Type:     getEnv("STORAGE_TYPE", "local"),
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/uploads"),
	}

	// Leave policy configuration
	maxDayIncrease, err := strconv.Atoi(getEnv("LEAVE_MAX_DAY_INCREASE", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEAVE_MAX_DAY_INCREASE: %w", err)
	}
	certificateAfterDays, err := strconv.Atoi(getEnv("LEAVE_CERTIFICATE_AFTER_DAYS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEAVE_CERTIFICATE_AFTER_DAYS: %w", err)
	}
	minReasonLength, err := strconv.Atoi(getEnv("LEAVE_MIN_REASON_LENGTH", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEAVE_MIN_REASON_LENGTH: %w", err)
	}
	minNoticeDays, err := strconv.Atoi(getEnv("LEAVE_MIN_NOTICE_DAYS", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEAVE_MIN_NOTICE_DAYS: %w", err)
	}

	config.LeavePolicy = LeavePolicyConfig{
		MaxDayIncrease:       maxDayIncrease,
		CertificateAfterDays: certificateAfterDays,
		MinReasonLength:      minReasonLength,
		MinNoticeDays:        minNoticeDays,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.LeavePolicy.MaxDayIncrease < 0 {
		return fmt.Errorf("LEAVE_MAX_DAY_INCREASE must not be negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	return strings.Split(value, ",")
}
