package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"cryptoSignalEngine/internal/adapters/logger"
	"cryptoSignalEngine/internal/ports"
	"cryptoSignalEngine/internal/signal"
)

// LogFormat selects the logger adapter.
type LogFormat string

const (
	LogFormatText LogFormat = "text" // leveled std logger
	LogFormatJSON LogFormat = "json" // zap JSON logger
)

// Config holds all tooling configuration. Engine thresholds are grouped in
// Engine and handed to the signal engine as one immutable value.
type Config struct {
	// Binance API (optional; candle endpoints are public)
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Market selection
	Symbol          string // e.g., "BTCUSDT"
	PrimaryInterval string // e.g., "5m"
	HigherInterval  string // e.g., "1h"

	// Signal engine parameters
	Engine signal.Config

	// Trailing stop parameters used once a position is open
	TrailingActivation float64 // e.g., 0.02
	TrailingDistance   float64 // e.g., 0.01

	// Replay
	ReplayInitialFunds float64

	// Database
	DBPath string

	// Logging
	LogLevel  logger.LogLevel
	LogFormat LogFormat

	// Connection settings for the market-data client
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int
}

// LoadConfig loads configuration from environment variables (.env file).
// All validation errors are collected and surfaced together, once, at
// startup; nothing is silently clamped.
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string

	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", true) // default to testnet for safety

	cfg.Symbol = getEnv("SYMBOL", "BTCUSDT")
	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}
	cfg.PrimaryInterval = getEnv("PRIMARY_INTERVAL", "5m")
	cfg.HigherInterval = getEnv("HIGHER_INTERVAL", "1h")
	if cfg.PrimaryInterval == cfg.HigherInterval {
		errs = append(errs, "PRIMARY_INTERVAL and HIGHER_INTERVAL must differ")
	}

	// Engine parameters drive leverage and stoploss sizing; a typo'd value
	// must surface as a startup error, never fall back to the default.
	requiredInt := func(key string, defaultValue int) int {
		value, err := getEnvAsIntRequired(key, defaultValue)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid %s: %v", key, err))
		}
		return value
	}
	requiredFloat := func(key string, defaultValue float64) float64 {
		value, err := getEnvAsFloatRequired(key, defaultValue)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid %s: %v", key, err))
		}
		return value
	}

	cfg.Engine = signal.Config{
		RSIPeriod:         requiredInt("ENGINE_RSI_PERIOD", 14),
		RSIOversold:       requiredFloat("ENGINE_RSI_OVERSOLD", 30.0),
		RSIOverbought:     requiredFloat("ENGINE_RSI_OVERBOUGHT", 70.0),
		HigherTFRSIPeriod: requiredInt("ENGINE_HTF_RSI_PERIOD", 14),
		HigherTFNeutral:   requiredFloat("ENGINE_HTF_NEUTRAL_RSI", 50.0),
		MACDFastPeriod:    requiredInt("ENGINE_MACD_FAST_PERIOD", 12),
		MACDSlowPeriod:    requiredInt("ENGINE_MACD_SLOW_PERIOD", 26),
		MACDSignalPeriod:  requiredInt("ENGINE_MACD_SIGNAL_PERIOD", 9),
		ATRPeriod:         requiredInt("ENGINE_ATR_PERIOD", 14),
		ATRBandLow:        requiredFloat("ENGINE_ATR_BAND_LOW", 0.001),
		ATRBandHigh:       requiredFloat("ENGINE_ATR_BAND_HIGH", 0.05),
		MinLeverage:       requiredFloat("ENGINE_MIN_LEVERAGE", 2.0),
		MaxLeverage:       requiredFloat("ENGINE_MAX_LEVERAGE", 3.0),
		ATRStopMultiplier: requiredFloat("ENGINE_ATR_STOP_MULTIPLIER", 1.5),
	}
	if err := cfg.Engine.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	cfg.TrailingActivation = requiredFloat("TRAILING_ACTIVATION", 0.02)
	cfg.TrailingDistance = requiredFloat("TRAILING_DISTANCE", 0.01)
	if cfg.TrailingActivation <= 0 {
		errs = append(errs, "TRAILING_ACTIVATION must be positive")
	}
	if cfg.TrailingDistance <= 0 {
		errs = append(errs, "TRAILING_DISTANCE must be positive")
	}

	var err error
	cfg.ReplayInitialFunds, err = getEnvAsFloatRequired("REPLAY_INITIAL_FUNDS", 10_000.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid REPLAY_INITIAL_FUNDS: %v", err))
	} else if cfg.ReplayInitialFunds <= 0 {
		errs = append(errs, "REPLAY_INITIAL_FUNDS must be positive")
	}

	cfg.DBPath = getEnv("DB_PATH", "./data/candles.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))
	switch format := strings.ToLower(getEnv("LOG_FORMAT", "text")); format {
	case "text":
		cfg.LogFormat = LogFormatText
	case "json":
		cfg.LogFormat = LogFormatJSON
	default:
		errs = append(errs, fmt.Sprintf("unknown LOG_FORMAT %q (want text or json)", format))
	}

	reconnectDelaySeconds := getEnvAsInt("RECONNECT_DELAY_SECONDS", 5)
	if reconnectDelaySeconds <= 0 {
		errs = append(errs, "RECONNECT_DELAY_SECONDS must be positive")
	}
	cfg.ReconnectDelay = time.Duration(reconnectDelaySeconds) * time.Second

	cfg.MaxReconnectAttempts = getEnvAsInt("MAX_RECONNECT_ATTEMPTS", 10)
	if cfg.MaxReconnectAttempts < 0 {
		errs = append(errs, "MAX_RECONNECT_ATTEMPTS cannot be negative")
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ports.ErrConfigurationError, strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
