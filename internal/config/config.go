// Package config loads tracker settings from an optional TOML file, a dotenv
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/example/finance-tracker/internal/common"
)

// Config represents the application configuration
type Config struct {
	APIToken       string          `mapstructure:"api_token"`
	APIBaseURL     string          `mapstructure:"api_base_url"`
	ProfileType    string          `mapstructure:"profile_type"`
	TablePath      string          `mapstructure:"table_path"`
	DebugLogPath   string          `mapstructure:"debug_log_path"`
	EnvFile        string          `mapstructure:"env_file"`
	Range          RangeConfig     `mapstructure:"range"`
	ExpenseLimit   decimal.Decimal `mapstructure:"-"`
	SavingsRate    decimal.Decimal `mapstructure:"-"`
	SalaryCategory string          `mapstructure:"salary_category"`
	Currency       string          `mapstructure:"currency"`
	TopN           int             `mapstructure:"top_n"`
	Interactive    bool            `mapstructure:"interactive"`
	HTTP           HTTPConfig      `mapstructure:"http"`
	Logging        LoggingConfig   `mapstructure:"logging"`
}

// RangeConfig is the historical window requested from the remote API
type RangeConfig struct {
	From time.Time `mapstructure:"from"`
	To   time.Time `mapstructure:"to"`
}

// HTTPConfig tunes the remote client
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Retries int           `mapstructure:"retries"`
}

// LoggingConfig selects the slog level and handler
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Defaults applied before the config file and environment.
const (
	DefaultBaseURL = "https://api.transferwise.com"
	DefaultEnvFile = "touch.env"
	// DefaultRangeTo is far enough out that a default run always reaches today.
	DefaultRangeTo = "2099-12-31T23:59:59Z"
)

// New returns a viper instance with defaults and environment bindings set.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("api_base_url", DefaultBaseURL)
	v.SetDefault("profile_type", "personal")
	v.SetDefault("table_path", "transactions.csv")
	v.SetDefault("debug_log_path", "wise_debug.log")
	v.SetDefault("env_file", DefaultEnvFile)
	v.SetDefault("range.from", "2020-01-01T00:00:00Z")
	v.SetDefault("range.to", DefaultRangeTo)
	v.SetDefault("expense_limit", "10000")
	v.SetDefault("savings_rate", "0.25")
	v.SetDefault("salary_category", "salary")
	v.SetDefault("currency", "EUR")
	v.SetDefault("top_n", 5)
	v.SetDefault("interactive", true)
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.retries", 3)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	_ = v.BindEnv("api_token", "WISE_API_TOKEN")
	_ = v.BindEnv("api_base_url", "WISE_API_BASE_URL")

	v.SetEnvPrefix("FINANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadConfig loads configuration from file and environment variables.
// An empty configPath skips the file and uses defaults plus environment.
func LoadConfig(configPath string) (*Config, error) {
	return Load(New(), configPath)
}

// Load reads configuration into v, which may already carry bound flags.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(ExpandPath(configPath))
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := LoadEnvFile(v.GetString("env_file")); err != nil {
		return nil, err
	}

	var config Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&config, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var err error
	if config.ExpenseLimit, err = decimal.NewFromString(v.GetString("expense_limit")); err != nil {
		return nil, fmt.Errorf("%w: expense_limit: %v", common.ErrInvalidConfig, err)
	}
	if config.SavingsRate, err = decimal.NewFromString(v.GetString("savings_rate")); err != nil {
		return nil, fmt.Errorf("%w: savings_rate: %v", common.ErrInvalidConfig, err)
	}

	config.TablePath = ExpandPath(config.TablePath)
	config.DebugLogPath = ExpandPath(config.DebugLogPath)
	config.APIBaseURL = strings.TrimRight(config.APIBaseURL, "/")

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	path = ExpandPath(path)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration and reports every problem found
func (c *Config) Validate() error {
	var problems []string

	if c.TablePath == "" {
		problems = append(problems, "table_path cannot be empty")
	}
	if c.DebugLogPath == "" {
		problems = append(problems, "debug_log_path cannot be empty")
	}
	if c.APIBaseURL == "" {
		problems = append(problems, "api_base_url cannot be empty")
	}
	if !c.Range.From.Before(c.Range.To) {
		problems = append(problems, fmt.Sprintf("range.from %s must be before range.to %s",
			c.Range.From.Format(time.RFC3339), c.Range.To.Format(time.RFC3339)))
	}
	if c.ExpenseLimit.IsNegative() {
		problems = append(problems, "expense_limit cannot be negative")
	}
	if c.SavingsRate.IsNegative() || c.SavingsRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		problems = append(problems, "savings_rate must be in [0, 1)")
	}
	if c.TopN <= 0 {
		problems = append(problems, "top_n must be positive")
	}
	if c.HTTP.Retries < 0 {
		problems = append(problems, "http.retries cannot be negative")
	}
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		problems = append(problems, fmt.Sprintf("invalid log format: %s", c.Logging.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", common.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
