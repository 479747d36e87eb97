package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Logger   Logger   `mapstructure:"logger"`
	Database Database `mapstructure:"database"`
	Fetch    Fetch    `mapstructure:"fetch"`
	Backtest Backtest `mapstructure:"backtest"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Database holds the configuration for the dataset catalog.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Fetch holds the configuration for the remote dataset fetcher.
type Fetch struct {
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// Backtest holds the default run parameters. Each of them can be
// overridden per run from the command line.
type Backtest struct {
	Strategy        string  `mapstructure:"strategy"`
	FastPeriod      int     `mapstructure:"fast_period"`
	SlowPeriod      int     `mapstructure:"slow_period"`
	TradeMode       string  `mapstructure:"trade_mode"`
	InitialCash     float64 `mapstructure:"initial_cash"`
	Commission      float64 `mapstructure:"commission"`
	IndicatorEngine string  `mapstructure:"indicator_engine"`
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error: the defaults stand in.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("database.dsn", "datasets.db")
	viper.SetDefault("fetch.rate_limit", 5) // requests per second
	viper.SetDefault("fetch.rate_limit_burst", 2)
	viper.SetDefault("fetch.timeout_seconds", 30)
	viper.SetDefault("backtest.strategy", "EMA Crossover")
	viper.SetDefault("backtest.fast_period", 12)
	viper.SetDefault("backtest.slow_period", 26)
	viper.SetDefault("backtest.trade_mode", "both_buy_sell")
	viper.SetDefault("backtest.initial_cash", 100_000)
	viper.SetDefault("backtest.commission", 0.001)
	viper.SetDefault("backtest.indicator_engine", "standard")

	err = viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}
