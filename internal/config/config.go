package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Blockchain BlockchainConfig
	Registry   RegistryConfig
	Auth       AuthConfig
	Relay      RelayConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

// DSN returns the keyword/value connection string used by lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// BlockchainConfig holds the treasury chain settings
type BlockchainConfig struct {
	RPCURL              string
	TreasuryPrivateKey  string
	ConfirmationTimeout time.Duration
}

// RegistryConfig holds the deploy-time registry values used on first boot
type RegistryConfig struct {
	OwnerAddress string
	ContractURI  string
	BaseURI      string
}

// AuthConfig holds wallet login settings
type AuthConfig struct {
	LoginMaxSkew time.Duration
}

// RelayConfig holds the event relay job settings
type RelayConfig struct {
	Interval time.Duration
	Channel  string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvAsInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			DBName:     getEnv("DB_NAME", "token_registry"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "token_registry.db"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		},
		Blockchain: BlockchainConfig{
			RPCURL:              getEnv("EVM_RPC_URL", "http://localhost:8545"),
			TreasuryPrivateKey:  getEnv("TREASURY_PRIVATE_KEY", ""),
			ConfirmationTimeout: getEnvAsDuration("PAYOUT_CONFIRMATION_TIMEOUT", 2*time.Minute),
		},
		Registry: RegistryConfig{
			OwnerAddress: getEnv("REGISTRY_OWNER_ADDRESS", ""),
			ContractURI:  getEnv("REGISTRY_CONTRACT_URI", "https://pixelchads.com/"),
			BaseURI:      getEnv("REGISTRY_BASE_URI", "https://pixelchads.com/tokens/"),
		},
		Auth: AuthConfig{
			LoginMaxSkew: getEnvAsDuration("LOGIN_MAX_SKEW", 5*time.Minute),
		},
		Relay: RelayConfig{
			Interval: getEnvAsDuration("EVENT_RELAY_INTERVAL", 5*time.Second),
			Channel:  getEnv("EVENT_RELAY_CHANNEL", "registry-events"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
