// Package config loads the mm configuration from a file, a .env file and the
// environment, in increasing order of priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/etnz/whatif"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds everything mm can be configured with.
type Config struct {
	LogLevel     string             `mapstructure:"log_level"`
	Currency     string             `mapstructure:"currency"`
	UseRealData  bool               `mapstructure:"use_real_data"`
	StateDir     string             `mapstructure:"state_dir"`
	Namespace    string             `mapstructure:"namespace"`
	Redis        RedisConfig        `mapstructure:"redis"`
	AlphaVantage AlphaVantageConfig `mapstructure:"alphavantage"`
	CoinGecko    CoinGeckoConfig    `mapstructure:"coingecko"`
	OpenFIGI     OpenFIGIConfig     `mapstructure:"openfigi"`
	Symbols      SymbolsConfig      `mapstructure:"symbols"`
	Provider     ProviderConfig     `mapstructure:"provider"`
	Server       ServerConfig       `mapstructure:"server"`
}

// RedisConfig selects the Redis session store when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AlphaVantageConfig struct {
	APIKey            string `mapstructure:"api_key"`
	BaseURL           string `mapstructure:"base_url"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

type CoinGeckoConfig struct {
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	Currency string `mapstructure:"currency"`
}

type OpenFIGIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// SymbolsConfig maps scenarios to provider symbols.
type SymbolsConfig struct {
	SP500 string `mapstructure:"sp500"`
	MSCI  string `mapstructure:"msci"`
	BTC   string `mapstructure:"btc"`
}

// ProviderConfig is common to all market data providers.
type ProviderConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	CacheDir string        `mapstructure:"cache_dir"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Scenarios returns the symbol of each scenario.
func (s SymbolsConfig) Scenarios() whatif.Symbols {
	return whatif.Symbols{
		whatif.SP500: s.SP500,
		whatif.MSCI:  s.MSCI,
		whatif.BTC:   s.BTC,
	}
}

// env lists the legacy environment variable names of some keys. The first one
// set wins.
var env = map[string][]string{
	"use_real_data":        {"MM_USE_REAL_DATA", "USE_REAL_DATA", "NEXT_PUBLIC_USE_REAL_DATA"},
	"alphavantage.api_key": {"MM_ALPHAVANTAGE_API_KEY", "ALPHA_VANTAGE_API_KEY"},
	"openfigi.api_key":     {"MM_OPENFIGI_API_KEY", "OPENFIGI_API_KEY"},
	"symbols.sp500":        {"MM_SYMBOLS_SP500", "SYMBOL_SP500"},
	"symbols.msci":         {"MM_SYMBOLS_MSCI", "SYMBOL_MSCI"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("currency", whatif.DefaultCurrency)
	v.SetDefault("use_real_data", false)
	v.SetDefault("state_dir", ".mm")
	v.SetDefault("namespace", whatif.DefaultNamespace)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("alphavantage.api_key", "")
	v.SetDefault("alphavantage.base_url", "https://www.alphavantage.co/query")
	v.SetDefault("alphavantage.requests_per_minute", 5)

	v.SetDefault("coingecko.api_key", "")
	v.SetDefault("coingecko.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("coingecko.currency", "eur")

	v.SetDefault("openfigi.api_key", "")
	v.SetDefault("openfigi.base_url", "https://api.openfigi.com/v3")

	for s, sym := range whatif.DefaultSymbols() {
		v.SetDefault("symbols."+string(s), sym)
	}

	v.SetDefault("provider.timeout", 10*time.Second)
	v.SetDefault("provider.cache_ttl", 5*time.Minute)
	v.SetDefault("provider.cache_dir", filepath.Join(os.TempDir(), "mm-cache"))

	v.SetDefault("server.addr", ":8080")
}

// Load reads the configuration.
//
// A .env file in the current directory is loaded into the environment if it
// exists. If file is empty, mm.yaml is looked up in the current directory and
// in $HOME/.config/mm, and is optional. Environment variables are MM_ prefixed
// with '.' replaced by '_' (MM_REDIS_ADDR) and override the file.
func Load(file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("mm")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "mm"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("MM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range env {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}

func (c *Config) validate() error {
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("provider.timeout must be positive, got %v", c.Provider.Timeout)
	}
	if c.AlphaVantage.RequestsPerMinute <= 0 {
		return fmt.Errorf("alphavantage.requests_per_minute must be positive, got %d", c.AlphaVantage.RequestsPerMinute)
	}
	if c.Currency == "" {
		return errors.New("currency is empty")
	}
	return nil
}

// NewLogger returns a console logger on stderr at level ("debug", "info",
// "warn", "error"). An unknown level means info.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
