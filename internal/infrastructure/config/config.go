package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	Server      ServerConfig     `mapstructure:"server"`
	Engine      EngineConfig     `mapstructure:"engine"`
	Gemini      GeminiConfig     `mapstructure:"gemini"`
	MarketData  MarketDataConfig `mapstructure:"market_data"`
	Redis       RedisConfig      `mapstructure:"redis"`
}

type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	Host            string   `mapstructure:"host"`
	ReadTimeout     int      `mapstructure:"read_timeout"`
	WriteTimeout    int      `mapstructure:"write_timeout"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	RateLimitPerMin int      `mapstructure:"rate_limit_per_min"`
}

// EngineConfig carries the economic assumptions of the calculation engines.
// Values are read once at startup and passed into the engines as immutable
// records; nothing reads them globally at computation time.
type EngineConfig struct {
	AnnualMeanReturn  float64 `mapstructure:"annual_mean_return"`
	AnnualVolatility  float64 `mapstructure:"annual_volatility"`
	InflationRate     float64 `mapstructure:"inflation_rate"`
	SimulationPaths   int     `mapstructure:"simulation_paths"`
	RiskFreeRate      float64 `mapstructure:"risk_free_rate"`
	ExpectedReturn    float64 `mapstructure:"expected_return"`
	DefaultVolatility float64 `mapstructure:"default_volatility"`
	// The analyze and rebalance endpoints calibrate the diversification
	// score differently; these are separate tunables, not one constant.
	AnalyzeDiversificationK   float64 `mapstructure:"analyze_diversification_k"`
	RebalanceDiversificationK float64 `mapstructure:"rebalance_diversification_k"`
}

type GeminiConfig struct {
	APIKey       string  `mapstructure:"api_key"`
	Model        string  `mapstructure:"model"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	Temperature  float64 `mapstructure:"temperature"`
	Timeout      int     `mapstructure:"timeout"` // seconds
	RateLimitRPM int     `mapstructure:"rate_limit_rpm"`
}

type MarketDataConfig struct {
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	Timeout  int    `mapstructure:"timeout"`   // seconds
	CacheTTL int    `mapstructure:"cache_ttl"` // seconds
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Credentials come from the environment, not config files.
	viper.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	viper.BindEnv("market_data.api_key", "ALPHA_VANTAGE_KEY")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("server.allowed_origins", []string{"*"})
	viper.SetDefault("server.rate_limit_per_min", 100)

	viper.SetDefault("engine.annual_mean_return", 0.12)
	viper.SetDefault("engine.annual_volatility", 0.15)
	viper.SetDefault("engine.inflation_rate", 0.06)
	viper.SetDefault("engine.simulation_paths", 1000)
	viper.SetDefault("engine.risk_free_rate", 0.045)
	viper.SetDefault("engine.expected_return", 0.08)
	viper.SetDefault("engine.default_volatility", 0.20)
	viper.SetDefault("engine.analyze_diversification_k", 135)
	viper.SetDefault("engine.rebalance_diversification_k", 125)

	viper.SetDefault("gemini.model", "gemini-2.5-flash")
	viper.SetDefault("gemini.max_tokens", 2048)
	viper.SetDefault("gemini.temperature", 0.4)
	viper.SetDefault("gemini.timeout", 15)
	viper.SetDefault("gemini.rate_limit_rpm", 60)

	viper.SetDefault("market_data.base_url", "https://www.alphavantage.co/query")
	viper.SetDefault("market_data.timeout", 10)
	viper.SetDefault("market_data.cache_ttl", 60)

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
}

func validate(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Engine.SimulationPaths <= 0 {
		return fmt.Errorf("engine.simulation_paths must be positive")
	}
	if config.Engine.AnnualVolatility < 0 {
		return fmt.Errorf("engine.annual_volatility must not be negative")
	}
	if config.Engine.AnalyzeDiversificationK <= 0 || config.Engine.RebalanceDiversificationK <= 0 {
		return fmt.Errorf("diversification calibration constants must be positive")
	}
	return nil
}
