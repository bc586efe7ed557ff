package config

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	_defaultSpotBaseURL    = "https://api.binance.com"
	_defaultSpotPath       = "/api/v3/klines"
	_defaultFuturesBaseURL = "https://fapi.binance.com"
	_defaultFuturesPath    = "/fapi/v1/klines"
	_defaultFREDBaseURL    = "https://api.stlouisfed.org/fred"

	_defaultTimeout    = Duration(10 * time.Second)
	_defaultMaxRetries = 3
	_defaultPageLimit  = 1000
)

// Duration makes yaml carry values like "10s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("%w: can't parse duration %q", err, value.Value)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type BinanceConfig struct {
	SpotBaseURL    string   `yaml:"spot_base_url"`
	SpotPath       string   `yaml:"spot_path"`
	FuturesBaseURL string   `yaml:"futures_base_url"`
	FuturesPath    string   `yaml:"futures_path"`
	Timeout        Duration `yaml:"timeout"`
	MaxRetries     int      `yaml:"max_retries"`
	PageLimit      int      `yaml:"page_limit"`
}

func (c *BinanceConfig) Setup() {
	c.SpotBaseURL = cmp.Or(c.SpotBaseURL, _defaultSpotBaseURL)
	c.SpotPath = cmp.Or(c.SpotPath, _defaultSpotPath)
	c.FuturesBaseURL = cmp.Or(c.FuturesBaseURL, _defaultFuturesBaseURL)
	c.FuturesPath = cmp.Or(c.FuturesPath, _defaultFuturesPath)
	if c.Timeout <= 0 {
		c.Timeout = _defaultTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = _defaultMaxRetries
	}
	if c.PageLimit <= 0 {
		c.PageLimit = _defaultPageLimit
	}
}

type FREDConfig struct {
	BaseURL    string   `yaml:"base_url"`
	APIKey     string   `yaml:"-"` // FRED_API_KEY env only, never the yaml file
	Timeout    Duration `yaml:"timeout"`
	MaxRetries int      `yaml:"max_retries"`
	PageLimit  int      `yaml:"page_limit"`
}

func (c *FREDConfig) Setup() {
	c.BaseURL = cmp.Or(c.BaseURL, _defaultFREDBaseURL)
	if c.APIKey == "" {
		c.APIKey = os.Getenv("FRED_API_KEY")
	}
	if c.Timeout <= 0 {
		c.Timeout = _defaultTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = _defaultMaxRetries
	}
	if c.PageLimit <= 0 {
		c.PageLimit = _defaultPageLimit
	}
}

type LoaderConfig struct {
	Binance BinanceConfig `yaml:"binance"`
	FRED    FREDConfig    `yaml:"fred"`
}

func (c *LoaderConfig) Setup() {
	c.Binance.Setup()
	c.FRED.Setup()
}

// DefaultLoaderConfig is for library callers that don't carry a config file.
func DefaultLoaderConfig() LoaderConfig {
	var cfg LoaderConfig
	cfg.Setup()
	return cfg
}

func LoadLoaderConfig(filename string) (LoaderConfig, error) {
	var cfg LoaderConfig
	input, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("%w: can't read file", err)
	}

	if err := yaml.Unmarshal(input, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: can't unmarshal config", err)
	}

	cfg.Setup()

	return cfg, nil
}
