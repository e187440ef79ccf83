package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"io/ioutil"
	"path/filepath"
	"strings"
	"time"

	"github.com/drakos74/grid-coin/internal/feed"
	"github.com/drakos74/grid-coin/internal/grid"
	"github.com/drakos74/grid-coin/internal/model"
	"github.com/drakos74/grid-coin/internal/storage"
	"github.com/drakos74/grid-coin/internal/trader"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file used when none is given.
const DefaultPath = "infra/config/grid.json"

const (
	FeedBinance       = "binance"
	FeedCoinMarketCap = "coinmarketcap"
	FeedKraken        = "kraken"
	FeedLocal         = "local"

	UserTelegram = "telegram"
	UserLocal    = "local"
)

// Duration is a time.Duration that is configured as a string e.g. "15s".
type Duration time.Duration

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration '%s': %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

// Grid configures the grid ladder.
type Grid struct {
	Capital float64 `json:"capital" yaml:"capital"`
	Slots   int     `json:"slots" yaml:"slots"`
	Step    float64 `json:"step" yaml:"step"`
}

// Trading configures the trading loop.
type Trading struct {
	Interval Duration `json:"interval" yaml:"interval"`
	Currency string   `json:"currency" yaml:"currency"`
	Coins    []string `json:"coins" yaml:"coins"`
	WindDown *bool    `json:"wind_down" yaml:"wind_down"`
}

// Feed configures the price source.
type Feed struct {
	Source  string   `json:"source" yaml:"source"`
	Retries int      `json:"retries" yaml:"retries"`
	Delay   Duration `json:"delay" yaml:"delay"`
}

// User configures the user interface.
type User struct {
	Source string `json:"source" yaml:"source"`
	// Log is the file the local user additionally logs the messages to.
	Log string `json:"log" yaml:"log"`
}

type Server struct {
	Port int `json:"port" yaml:"port"`
}

type Storage struct {
	Journal string `json:"journal" yaml:"journal"`
}

type Log struct {
	Level  string `json:"level" yaml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

// Config is the application configuration.
type Config struct {
	Grid    Grid    `json:"grid" yaml:"grid"`
	Trading Trading `json:"trading" yaml:"trading"`
	Feed    Feed    `json:"feed" yaml:"feed"`
	User    User    `json:"user" yaml:"user"`
	Server  Server  `json:"server" yaml:"server"`
	Storage Storage `json:"storage" yaml:"storage"`
	Log     Log     `json:"log" yaml:"log"`
}

// Default returns the configuration with all defaults applied.
func Default() Config {
	windDown := true
	coins := make([]string, len(model.DefaultCoins))
	for i, c := range model.DefaultCoins {
		coins[i] = string(c)
	}
	return Config{
		Grid: Grid{
			Capital: 100,
			Slots:   10,
			Step:    1,
		},
		Trading: Trading{
			Interval: Duration(trader.DefaultInterval),
			Currency: feed.DefaultCurrency,
			Coins:    coins,
			WindDown: &windDown,
		},
		Feed: Feed{
			Source:  FeedBinance,
			Retries: feed.DefaultAttempts,
			Delay:   Duration(feed.DefaultDelay),
		},
		User: User{
			Source: UserTelegram,
		},
		Server: Server{
			Port: 8080,
		},
		Storage: Storage{
			Journal: filepath.Join(storage.DefaultDir, storage.JournalDir),
		},
		Log: Log{
			Level: zerolog.InfoLevel.String(),
		},
	}
}

// Load reads the config file at the given path on top of the defaults.
// Files ending in .yaml or .yml are decoded as yaml, everything else as json.
func Load(path string) (*Config, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not load config '%s': %w", path, err)
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	default:
		err = json.Unmarshal(b, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("could not decode config '%s': %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", path, err)
	}
	log.Info().Str("path", path).Msg("loaded config")
	return &cfg, nil
}

// MustLoad loads the config at the given path and panics on failure.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

// LoadEnv loads the environment from the given files, or .env if none is given.
// Missing files are ignored, variables already set are not overridden.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Debug().Str("file", f).Msg("no env file")
				continue
			}
			return fmt.Errorf("could not load env file '%s': %w", f, err)
		}
	}
	return nil
}

// Validate checks the configuration for inconsistencies.
func (c Config) Validate() error {
	if err := c.GridConfig().Validate(); err != nil {
		return err
	}
	if c.Trading.Interval <= 0 {
		return fmt.Errorf("interval must be positive '%s'", c.Trading.Interval)
	}
	if len(c.Coins()) == 0 {
		return errors.New("no coins configured")
	}
	switch c.Feed.Source {
	case FeedBinance, FeedCoinMarketCap, FeedKraken, FeedLocal:
	default:
		return fmt.Errorf("unknown feed source '%s'", c.Feed.Source)
	}
	if c.Feed.Retries <= 0 {
		return fmt.Errorf("retries must be positive '%d'", c.Feed.Retries)
	}
	if c.Feed.Delay < 0 {
		return fmt.Errorf("retry delay cannot be negative '%s'", c.Feed.Delay)
	}
	switch c.User.Source {
	case UserTelegram, UserLocal:
	default:
		return fmt.Errorf("unknown user source '%s'", c.User.Source)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port '%d'", c.Server.Port)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// GridConfig returns the grid parameters.
func (c Config) GridConfig() grid.Config {
	return grid.Config{
		Capital: c.Grid.Capital,
		Step:    c.Grid.Step,
		Slots:   c.Grid.Slots,
	}
}

// WindDown returns true if the loop should keep selling once the capital is exhausted.
func (c Config) WindDown() bool {
	return c.Trading.WindDown == nil || *c.Trading.WindDown
}

// Settings returns the trading loop settings.
func (c Config) Settings() trader.Settings {
	return trader.Settings{
		Grid:     c.GridConfig(),
		Currency: c.Trading.Currency,
		Interval: time.Duration(c.Trading.Interval),
		WindDown: c.WindDown(),
	}
}

// Coins returns the coins offered to the user.
func (c Config) Coins() []model.Coin {
	return model.Coins(c.Trading.Coins...)
}

// Level returns the configured log level.
func (c Config) Level() (zerolog.Level, error) {
	if c.Log.Level == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level '%s': %w", c.Log.Level, err)
	}
	return level, nil
}
