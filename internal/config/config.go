package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Explorer ExplorerConfig
	Identity IdentityConfig
	Platform PlatformConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	JWTSecret    string
	AllowOrigins string
	LogLevel     string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type ExplorerConfig struct {
	BaseURL          string
	APIKey           string
	ReceivingAddress string
	TokenDecimals    int32
	RequestTimeout   time.Duration
	MaxRetries       int
}

type IdentityConfig struct {
	BaseURL string
	APIKey  string
}

// PlatformConfig holds the money constants of the platform. Amounts are in
// currency units (USDT).
type PlatformConfig struct {
	SignupDeposit     decimal.Decimal // expected registration deposit
	DepositTolerance  decimal.Decimal // allowed deviation when verifying
	MinWithdrawal     decimal.Decimal
	ReferralBonus     decimal.Decimal // one-time signup bonus to the referrer
	CommissionRate    decimal.Decimal // lifetime commission on transfers
	WithdrawalFeeRate decimal.Decimal // display-only, not debited
}

type WorkerConfig struct {
	CommissionInterval    time.Duration
	CommissionMaxAttempts int
}

func (d DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	tokenDecimals, _ := strconv.Atoi(getEnv("EXPLORER_TOKEN_DECIMALS", "18"))
	explorerTimeout, _ := time.ParseDuration(getEnv("EXPLORER_TIMEOUT", "15s"))
	explorerRetries, _ := strconv.Atoi(getEnv("EXPLORER_MAX_RETRIES", "2"))
	commissionInterval, _ := time.ParseDuration(getEnv("COMMISSION_WORKER_INTERVAL", "30s"))
	commissionAttempts, _ := strconv.Atoi(getEnv("COMMISSION_MAX_ATTEMPTS", "10"))

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			JWTSecret:    getEnv("JWT_SECRET", "change-me-in-production"),
			AllowOrigins: getEnv("ALLOW_ORIGINS", "*"),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "payvault"),
			Password: getEnv("DB_PASSWORD", "payvault"),
			Name:     getEnv("DB_NAME", "payvault"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Explorer: ExplorerConfig{
			BaseURL:          getEnv("EXPLORER_BASE_URL", "https://api.bscscan.com/api"),
			APIKey:           getEnv("EXPLORER_API_KEY", ""),
			ReceivingAddress: getEnv("EXPLORER_RECEIVING_ADDRESS", ""),
			TokenDecimals:    int32(tokenDecimals),
			RequestTimeout:   explorerTimeout,
			MaxRetries:       explorerRetries,
		},
		Identity: IdentityConfig{
			BaseURL: getEnv("IDENTITY_BASE_URL", "http://localhost:9090"),
			APIKey:  getEnv("IDENTITY_API_KEY", ""),
		},
		Platform: PlatformConfig{
			SignupDeposit:     getEnvDecimal("SIGNUP_DEPOSIT", "10"),
			DepositTolerance:  getEnvDecimal("DEPOSIT_TOLERANCE", "0.1"),
			MinWithdrawal:     getEnvDecimal("MIN_WITHDRAWAL", "10"),
			ReferralBonus:     getEnvDecimal("REFERRAL_BONUS", "6"),
			CommissionRate:    getEnvDecimal("COMMISSION_RATE", "0.025"),
			WithdrawalFeeRate: getEnvDecimal("WITHDRAWAL_FEE_RATE", "0.01"),
		},
		Worker: WorkerConfig{
			CommissionInterval:    commissionInterval,
			CommissionMaxAttempts: commissionAttempts,
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDecimal(key, defaultValue string) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return decimal.RequireFromString(defaultValue)
}
