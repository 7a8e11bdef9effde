package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Session   SessionConfig
	Payment   PaymentConfig
	Admin     AdminConfig
	Ticketing TicketingConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

type DatabaseConfig struct {
	URL      string // Full database URL
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type SessionConfig struct {
	Secret string
}

type PaymentConfig struct {
	SecretKey   string
	PublicKey   string
	Environment string // "test" or "live"
	ReturnURL   string
}

type AdminConfig struct {
	// Argon2id hash of the admin API key checked by the admin middleware
	KeyHash string
}

type TicketingConfig struct {
	// Enabled gates the whole ticketing surface; injected once at startup
	Enabled bool
	// CartTTLMinutes bounds how long a session cart stays valid
	CartTTLMinutes int
	// OrderExpiryMinutes bounds how long a pending order holds inventory
	OrderExpiryMinutes int
	Currency           string
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "localhost"),
			Env:  getEnv("ENV", "development"),
		},
		Database: parseDatabaseConfig(),
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "your-secret-key-change-in-production"),
		},
		Payment: PaymentConfig{
			SecretKey:   getEnv("PAYMENT_SECRET_KEY", ""),
			PublicKey:   getEnv("PAYMENT_PUBLIC_KEY", ""),
			Environment: getEnv("PAYMENT_ENVIRONMENT", "test"),
			ReturnURL:   getEnv("PAYMENT_RETURN_URL", "http://localhost:8080/orders"),
		},
		Admin: AdminConfig{
			KeyHash: getEnv("ADMIN_KEY_HASH", ""),
		},
		Ticketing: TicketingConfig{
			Enabled:            getEnvAsBool("TICKETING_ENABLED", true),
			CartTTLMinutes:     getEnvAsInt("CART_TTL_MINUTES", 15),
			OrderExpiryMinutes: getEnvAsInt("ORDER_EXPIRY_MINUTES", 30),
			Currency:           getEnv("CURRENCY", "CAD"),
		},
	}

	return config, nil
}

func parseDatabaseConfig() DatabaseConfig {
	// Check if DATABASE_URL is provided
	databaseURL := getEnv("DATABASE_URL", "")
	if databaseURL != "" {
		return parseDatabaseURL(databaseURL)
	}

	// Fall back to individual environment variables
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "community_tickets"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func parseDatabaseURL(databaseURL string) DatabaseConfig {
	config := DatabaseConfig{
		URL: databaseURL,
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		// If parsing fails, return the URL as-is
		return config
	}

	config.Host = u.Hostname()
	if u.Port() != "" {
		config.Port, _ = strconv.Atoi(u.Port())
	} else {
		config.Port = 5432 // Default PostgreSQL port
	}

	if u.User != nil {
		config.User = u.User.Username()
		config.Password, _ = u.User.Password()
	}

	// Remove leading slash from path to get database name
	config.DBName = strings.TrimPrefix(u.Path, "/")

	config.SSLMode = u.Query().Get("sslmode")
	if config.SSLMode == "" {
		config.SSLMode = "disable"
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
