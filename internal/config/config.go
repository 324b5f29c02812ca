package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr        string
	DatabaseURL string
	APIKey      string
	TokenSecret string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	CORSOrigin  string

	// First-run admin account for the hosted backend
	AdminEmail    string
	AdminName     string
	AdminPassword string

	// Persistence backends
	RedisURL string
	DataDir  string

	// Search
	MeiliURL       string
	MeiliMasterKey string

	// SMTP Configuration
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	MigrationsDir string
}

func Load() Config {
	return Config{
		Addr:        getenv("API_ADDR", ":8791"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		APIKey:      os.Getenv("JURIDICO_API_KEY"),
		TokenSecret: getenv("JURIDICO_TOKEN_SECRET", "juridico-dev-secret"),
		AccessTTL:   time.Duration(getenvInt("JURIDICO_ACCESS_TTL_SECONDS", 900)) * time.Second,
		RefreshTTL:  time.Duration(getenvInt("JURIDICO_REFRESH_TTL_SECONDS", 2592000)) * time.Second,
		CORSOrigin:  getenv("JURIDICO_CORS_ORIGIN", "*"),
		// Admin bootstrap is optional; without it the profiles table must be
		// provisioned out of band before anyone can log in.
		AdminEmail:    getenv("JURIDICO_ADMIN_EMAIL", ""),
		AdminName:     getenv("JURIDICO_ADMIN_NAME", "Administrador"),
		AdminPassword: getenv("JURIDICO_ADMIN_PASSWORD", ""),
		RedisURL:    getenv("REDIS_URL", "redis://localhost:6379/0"),
		// DataDir is empty by default: the directory backend only becomes
		// active after an explicit grant via the settings endpoint.
		DataDir:        getenv("JURIDICO_DATA_DIR", ""),
		MeiliURL:       getenv("MEILI_URL", ""),
		MeiliMasterKey: getenv("MEILI_MASTER_KEY", ""),
		// SMTP - empty by default, credential mail disabled if not configured
		SMTPHost:      getenv("SMTP_HOST", ""),
		SMTPPort:      getenv("SMTP_PORT", "587"),
		SMTPUsername:  getenv("SMTP_USERNAME", ""),
		SMTPPassword:  getenv("SMTP_PASSWORD", ""),
		SMTPFrom:      getenv("SMTP_FROM", ""),
		SMTPFromName:  getenv("SMTP_FROM_NAME", "Controle Juridico"),
		MigrationsDir: getenv("JURIDICO_MIGRATIONS_DIR", "./db/migrations"),
	}
}

// Validate checks the mandatory hosted-backend credentials. Their absence is a
// fatal configuration error; everything else has a workable default.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("JURIDICO_API_KEY is required")
	}
	return nil
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
