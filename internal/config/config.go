package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Blockchain BlockchainConfig
	Swap       SwapConfig
	Devnet     DevnetConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration. An empty URL disables Redis.
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// BlockchainConfig holds the JSON-RPC endpoint used for read-only calls
type BlockchainConfig struct {
	RPCURL string
}

// SwapConfig describes the factory and the shared registry served by this process.
type SwapConfig struct {
	FactoryAddress        string
	FactoryOwner          string
	TemplateAddress       string
	SharedRegistryAddress string
	SharedRegistryOwner   string
	PaymentToken          string
	EventsChannel         string
	LockTTL               time.Duration
	ChallengeTTL          time.Duration
	GaugeInterval         time.Duration
}

// DevnetConfig controls the in-memory ERC-721 / WETH ledgers.
type DevnetConfig struct {
	Enabled     bool
	Deployer    string
	Collections []string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     getEnv("SERVER_PORT", "8080"),
			Env:      getEnv("SERVER_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", ""),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "nftswapper"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Blockchain: BlockchainConfig{
			RPCURL: getEnv("EVM_RPC_URL", "http://127.0.0.1:8545"),
		},
		Swap: SwapConfig{
			FactoryAddress:        getEnv("SWAP_FACTORY_ADDRESS", "0x5FC8d32690cc91D4c39d9d3abcBD16989F875707"),
			FactoryOwner:          getEnv("SWAP_FACTORY_OWNER", "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
			TemplateAddress:       getEnv("SWAP_TEMPLATE_ADDRESS", "0xDc64a140Aa3E981100a9becA4E685f962f0cF6C9"),
			SharedRegistryAddress: getEnv("SWAP_REGISTRY_ADDRESS", "0x9A676e781A523b5d0C0e43731313A708CB607508"),
			SharedRegistryOwner:   getEnv("SWAP_REGISTRY_OWNER", "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
			PaymentToken:          getEnv("SWAP_PAYMENT_TOKEN", "0x5FbDB2315678afecb367f032d93F642f64180aa3"),
			EventsChannel:         getEnv("SWAP_EVENTS_CHANNEL", "swap:events"),
			LockTTL:               getEnvAsDuration("SWAP_LOCK_TTL", 30*time.Second),
			ChallengeTTL:          getEnvAsDuration("AUTH_CHALLENGE_TTL", 5*time.Minute),
			GaugeInterval:         getEnvAsDuration("SWAP_GAUGE_INTERVAL", time.Minute),
		},
		Devnet: DevnetConfig{
			Enabled:     getEnvAsBool("DEVNET_ENABLED", true),
			Deployer:    getEnv("DEVNET_DEPLOYER", "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
			Collections: getEnvAsList("DEVNET_COLLECTIONS", []string{"NftA:NFTA", "NftB:NFTB"}),
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
