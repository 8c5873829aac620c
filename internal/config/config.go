package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	LDAP     LDAPConfig
	AI       AIConfig
	SMTP     SMTPConfig
	Upload   UploadConfig
	Admin    AdminConfig
	Cookie   CookieConfig
}

// CookieConfig holds auth cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// LDAPConfig holds directory server configuration.
// Enabled=false disables the directory strategy entirely, leaving local
// password accounts as the only way in.
type LDAPConfig struct {
	Enabled        bool
	URL            string
	SearchBase     string
	SearchFilter   string
	TimeoutSeconds int
}

// AIConfig holds the vLLM inference endpoint configuration
type AIConfig struct {
	Enabled        bool
	BaseURL        string
	Model          string
	APIKey         string
	TimeoutSeconds int
}

// SMTPConfig holds outbound mail configuration
type SMTPConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// UploadConfig holds evidence file upload configuration
type UploadConfig struct {
	Dir          string
	MaxSizeBytes int64
}

// AdminConfig holds the bootstrap administrator account
type AdminConfig struct {
	Username string
	Email    string
	Password string
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: loadDatabaseConfig(),
		JWT:      loadJWTConfig(),
		LDAP:     loadLDAPConfig(),
		AI:       loadAIConfig(),
		SMTP:     loadSMTPConfig(),
		Upload:   loadUploadConfig(),
		Admin:    loadAdminConfig(),
		Cookie:   loadCookieConfig(),
	}

	log.Printf("Configuration loaded [MODE: %s]", appMode)
	return config, nil
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		User:     getEnv("DB_USER", "root"),
		Password: getEnv("DB_PASS", ""),
		DBName:   getEnv("DB_NAME", "amana_grc"),
	}
}

func loadJWTConfig() JWTConfig {
	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))

	return JWTConfig{
		Secret:           getEnv("JWT_SECRET", "change-me"),
		RefreshSecret:    getEnv("JWT_REFRESH_SECRET", "change-me-too"),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
	}
}

func loadLDAPConfig() LDAPConfig {
	enabled, _ := strconv.ParseBool(getEnv("LDAP_ENABLED", "false"))
	timeout, _ := strconv.Atoi(getEnv("LDAP_TIMEOUT_SECONDS", "5"))

	return LDAPConfig{
		Enabled:        enabled,
		URL:            getEnv("LDAP_URL", "ldap://localhost:389"),
		SearchBase:     getEnv("LDAP_SEARCH_BASE", "ou=people,dc=example,dc=com"),
		SearchFilter:   getEnv("LDAP_SEARCH_FILTER", "(uid={username})"),
		TimeoutSeconds: timeout,
	}
}

func loadAIConfig() AIConfig {
	enabled, _ := strconv.ParseBool(getEnv("AI_ENABLED", "false"))
	timeout, _ := strconv.Atoi(getEnv("AI_TIMEOUT_SECONDS", "30"))

	return AIConfig{
		Enabled:        enabled,
		BaseURL:        getEnv("VLLM_BASE_URL", "http://localhost:8000/v1"),
		Model:          getEnv("VLLM_MODEL", "Qwen/Qwen2.5-7B-Instruct"),
		APIKey:         getEnv("VLLM_API_KEY", ""),
		TimeoutSeconds: timeout,
	}
}

func loadSMTPConfig() SMTPConfig {
	enabled, _ := strconv.ParseBool(getEnv("SMTP_ENABLED", "false"))

	return SMTPConfig{
		Enabled:  enabled,
		Host:     getEnv("SMTP_HOST", "localhost"),
		Port:     getEnv("SMTP_PORT", "587"),
		Username: getEnv("SMTP_USER", ""),
		Password: getEnv("SMTP_PASS", ""),
		From:     getEnv("SMTP_FROM", "grc@example.com"),
	}
}

func loadUploadConfig() UploadConfig {
	maxSize, _ := strconv.ParseInt(getEnv("UPLOAD_MAX_SIZE_BYTES", "52428800"), 10, 64)

	return UploadConfig{
		Dir:          getEnv("UPLOAD_DIR", "./uploads"),
		MaxSizeBytes: maxSize,
	}
}

func loadAdminConfig() AdminConfig {
	return AdminConfig{
		Username: getEnv("ADMIN_USERNAME", "admin"),
		Email:    getEnv("ADMIN_EMAIL", "admin@example.com"),
		Password: getEnv("ADMIN_PASSWORD", ""),
	}
}

func loadCookieConfig() CookieConfig {
	secure, _ := strconv.ParseBool(getEnv("COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" && c.IsDev() {
		return "*"
	}
	return origins
}
