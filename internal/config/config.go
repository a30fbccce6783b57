package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Payroll  PayrollConfig
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
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// PayrollConfig holds engine tuning and remittance settings.
type PayrollConfig struct {
	// Workers bounds the calculation worker pool per run.
	Workers int
	// LookupTimeout bounds rate-table and attendance reads per employee.
	LookupTimeout time.Duration
	// AgencyDueDays maps agency code to the due day-of-month in the month
	// following the period, e.g. SSS=10, PHILHEALTH=15, HDMF=20.
	AgencyDueDays map[string]int
}

func Load() (*Config, error) {
	// Missing .env is fine in containerized deployments; env vars win.
	_ = godotenv.Load()

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
		Name:     getEnv("DB_NAME", "payroll_engine"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Payroll engine configuration
	workers, err := strconv.Atoi(getEnv("PAYROLL_WORKERS", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_WORKERS: %w", err)
	}
	lookupTimeout, err := time.ParseDuration(getEnv("PAYROLL_LOOKUP_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_LOOKUP_TIMEOUT: %w", err)
	}
	dueDays, err := parseAgencyDueDays(getEnv("PAYROLL_AGENCY_DUE_DAYS", "SSS:10,PHILHEALTH:15,HDMF:20,BIR:10"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_AGENCY_DUE_DAYS: %w", err)
	}

	config.Payroll = PayrollConfig{
		Workers:       workers,
		LookupTimeout: lookupTimeout,
		AgencyDueDays: dueDays,
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
	if c.Payroll.Workers < 1 {
		return fmt.Errorf("PAYROLL_WORKERS must be at least 1")
	}
	if len(c.Payroll.AgencyDueDays) == 0 {
		return fmt.Errorf("PAYROLL_AGENCY_DUE_DAYS is required")
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

// parseAgencyDueDays parses "SSS:10,PHILHEALTH:15" into a map.
func parseAgencyDueDays(raw string) (map[string]int, error) {
	result := make(map[string]int)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed entry %q", pair)
		}
		day, err := strconv.Atoi(parts[1])
		if err != nil || day < 1 || day > 28 {
			return nil, fmt.Errorf("due day for %s must be 1-28", parts[0])
		}
		result[strings.ToUpper(strings.TrimSpace(parts[0]))] = day
	}
	return result, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
