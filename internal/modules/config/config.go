package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDir         = "configs"
)

// Config ...
type Config struct {
	Telegram struct {
		Token string `yaml:"token"`
	} `yaml:"telegram"`

	Binance struct {
		BaseURL    string        `yaml:"base_url"`
		APIKey     string        `yaml:"api_key"`
		APISecret  string        `yaml:"api_secret"`
		RecvWindow int64         `yaml:"recv_window"` // ms
		RPS        float64       `yaml:"rps"`         // запросов в секунду
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"binance"`

	TradingView struct {
		BaseURL  string `yaml:"base_url"`
		Screener string `yaml:"screener"`
		Exchange string `yaml:"exchange"`
	} `yaml:"tradingview"`

	Service struct {
		Host      string `yaml:"host"`
		AdminPort int    `yaml:"admin_port"`
	} `yaml:"service"`

	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`

	Tracing struct {
		Enabled bool   `yaml:"enabled"`
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
	} `yaml:"tracing"`

	Journal struct {
		Driver        string `yaml:"driver"` // none | postgres | sqlite
		DSN           string `yaml:"dsn"`
		PruneSchedule string `yaml:"prune_schedule"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"journal"`

	Strategy StrategyConfig `yaml:"strategy"`
}

// StrategyConfig — константы обеих стратегий. Дефолты совпадают с поведением бота "из коробки".
type StrategyConfig struct {
	QuoteAsset       string   `yaml:"quote_asset"`
	LeveragedMarkers []string `yaml:"leveraged_markers"`

	StopLossFactor    float64       `yaml:"stop_loss_factor"`
	TargetFactor      float64       `yaml:"target_factor"`
	BreakoutThreshold float64       `yaml:"breakout_threshold"`
	BreakoutWindow    int           `yaml:"breakout_window"` // минутных свечей
	FetchCooldown     time.Duration `yaml:"fetch_cooldown"`
	RescanDelay       time.Duration `yaml:"rescan_delay"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	SignalInterval    time.Duration `yaml:"signal_interval"`
}

func defaults() Config {
	var c Config
	c.Binance.BaseURL = "https://api.binance.com"
	c.Binance.RecvWindow = 5000
	c.Binance.RPS = 10
	c.Binance.Timeout = 10 * time.Second

	c.TradingView.BaseURL = "https://scanner.tradingview.com"
	c.TradingView.Screener = "crypto"
	c.TradingView.Exchange = "BINANCE"

	c.Service.AdminPort = 8080
	c.Log.Level = "info"

	c.Tracing.Host = "localhost"
	c.Tracing.Port = 6831

	c.Journal.Driver = "none"
	c.Journal.PruneSchedule = "0 30 3 * * *"
	c.Journal.RetentionDays = 30

	c.Strategy = StrategyConfig{
		QuoteAsset:        "USDT",
		LeveragedMarkers:  []string{"UP", "DOWN"},
		StopLossFactor:    0.985,
		TargetFactor:      1.02,
		BreakoutThreshold: 100000,
		BreakoutWindow:    120,
		FetchCooldown:     61 * time.Second,
		RescanDelay:       20 * time.Second,
		PollInterval:      3 * time.Second,
		SignalInterval:    time.Second,
	}
	return c
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	config := defaults()

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	if err := decodeFile(filepath.Join(configDir, configFileName), &config); err != nil {
		return nil, err
	}

	applyEnv(&config, newEnv())

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func decodeFile(path string, config *Config) error {
	file, err := os.Open(path)
	if err != nil {
		// файла может не быть, тогда всё из env
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

func newEnv() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	return v
}

// applyEnv: переменные окружения перекрывают yaml.
func applyEnv(config *Config, v *viper.Viper) {
	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v.IsSet(k) && v.GetString(k) != "" {
				*dst = v.GetString(k)
				return
			}
		}
	}

	setString(&config.Telegram.Token, "BOT_TOKEN", "TELEGRAM_TOKEN")
	setString(&config.Binance.APIKey, "API_KEY", "BINANCE_API_KEY")
	setString(&config.Binance.APISecret, "SECRET_KEY", "BINANCE_API_SECRET")
	setString(&config.Binance.BaseURL, "BINANCE_BASE_URL")
	setString(&config.Journal.DSN, "DATABASE_DSN")
	setString(&config.Journal.Driver, "JOURNAL_DRIVER")
	setString(&config.Log.Level, "LOG_LEVEL")
	setString(&config.Strategy.QuoteAsset, "QUOTE_ASSET")

	if v.IsSet("LEVERAGED_MARKERS") {
		config.Strategy.LeveragedMarkers = splitList(v.GetString("LEVERAGED_MARKERS"))
	}
	if v.IsSet("STOP_LOSS_FACTOR") {
		config.Strategy.StopLossFactor = v.GetFloat64("STOP_LOSS_FACTOR")
	}
	if v.IsSet("TARGET_FACTOR") {
		config.Strategy.TargetFactor = v.GetFloat64("TARGET_FACTOR")
	}
	if v.IsSet("BREAKOUT_THRESHOLD") {
		config.Strategy.BreakoutThreshold = v.GetFloat64("BREAKOUT_THRESHOLD")
	}
	if v.IsSet("ADMIN_PORT") {
		config.Service.AdminPort = v.GetInt("ADMIN_PORT")
	}
	if v.IsSet("TRACING_ENABLED") {
		config.Tracing.Enabled = v.GetBool("TRACING_ENABLED")
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}

func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram token is required (BOT_TOKEN)")
	}
	s := c.Strategy
	if s.StopLossFactor <= 0 || s.StopLossFactor >= 1 {
		return fmt.Errorf("stop_loss_factor must be in (0,1), got %v", s.StopLossFactor)
	}
	if s.TargetFactor <= 1 {
		return fmt.Errorf("target_factor must be > 1, got %v", s.TargetFactor)
	}
	if s.BreakoutWindow < 2 {
		return fmt.Errorf("breakout_window must be >= 2, got %d", s.BreakoutWindow)
	}
	if s.QuoteAsset == "" {
		return errors.New("quote_asset is required")
	}
	switch c.Journal.Driver {
	case "", "none":
	case "postgres", "sqlite":
		if c.Journal.DSN == "" {
			return fmt.Errorf("journal driver %s requires dsn", c.Journal.Driver)
		}
	default:
		return fmt.Errorf("unknown journal driver %q", c.Journal.Driver)
	}
	return nil
}
