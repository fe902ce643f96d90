package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const MinTick = 100 * time.Millisecond

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	UI       UIConfig       `yaml:"ui"`
	Timer    TimerConfig    `yaml:"timer"`
	Alarm    AlarmConfig    `yaml:"alarm"`
	Log      LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type UIConfig struct {
	Kiosk    bool   `yaml:"kiosk"`
	Language string `yaml:"language"`
	// PIN gates the configuration view. Empty disables the prompt.
	PIN string `yaml:"pin"`
}

type TimerConfig struct {
	Tick time.Duration `yaml:"tick"`
}

type AlarmConfig struct {
	Enabled bool    `yaml:"enabled"`
	Sound   string  `yaml:"sound"`
	Volume  float64 `yaml:"volume"`
}

type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "klocka.db"},
		UI: UIConfig{
			Language: "de",
		},
		Timer: TimerConfig{Tick: 500 * time.Millisecond},
		Alarm: AlarmConfig{Enabled: true},
		Log: LogConfig{
			Path:  "klocka.log",
			Level: "info",
		},
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// KLOCKA_* environment variables (a .env file in the working directory is
// loaded first if present). A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("KLOCKA_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("KLOCKA_LANGUAGE"); v != "" {
		c.UI.Language = v
	}
	if v, ok := os.LookupEnv("KLOCKA_PIN"); ok {
		c.UI.PIN = v
	}
	if v := os.Getenv("KLOCKA_KIOSK"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("KLOCKA_KIOSK: %w", err)
		}
		c.UI.Kiosk = b
	}
	if v := os.Getenv("KLOCKA_TICK"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("KLOCKA_TICK: %w", err)
		}
		c.Timer.Tick = d
	}
	if v := os.Getenv("KLOCKA_ALARM_SOUND"); v != "" {
		c.Alarm.Sound = v
	}
	if v := os.Getenv("KLOCKA_LOG_PATH"); v != "" {
		c.Log.Path = v
	}
	if v := os.Getenv("KLOCKA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database.path is empty")
	}
	if c.Timer.Tick < MinTick {
		return fmt.Errorf("timer.tick %s is below %s", c.Timer.Tick, MinTick)
	}
	switch c.UI.Language {
	case "de", "en":
	default:
		return fmt.Errorf("ui.language %q: want de or en", c.UI.Language)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q: want debug, info, warn or error", c.Log.Level)
	}
	return nil
}
