package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nstehr/ares/ares-core/focus"
	"github.com/spf13/viper"
)

// Advisor kinds.
const (
	AdvisorRules = "rules"
	AdvisorModel = "model"
)

type Config struct {
	LogLevel   string        `mapstructure:"logLevel"`
	SocketPath string        `mapstructure:"socketPath"`
	TypeTable  string        `mapstructure:"typeTable"` // empty uses the built-in table
	RulesFile  string        `mapstructure:"rulesFile"` // empty uses the built-in rules
	Focus      focus.Config  `mapstructure:"focus"`
	Advisor    AdvisorConfig `mapstructure:"advisor"`
	Journal    JournalConfig `mapstructure:"journal"`
	Engage     EngageConfig  `mapstructure:"engage"`
}

// AdvisorConfig selects and tunes the posture advisor.
type AdvisorConfig struct {
	Kind     string        `mapstructure:"kind"`
	Interval int           `mapstructure:"interval"` // ticks between consultations
	Model    string        `mapstructure:"model"`
	Host     string        `mapstructure:"host"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Buffer  int    `mapstructure:"buffer"`
}

type EngageConfig struct {
	BaseRadius float64 `mapstructure:"baseRadius"`
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("socketPath", "/tmp/ares.sock")
	viper.SetDefault("typeTable", "")
	viper.SetDefault("rulesFile", "")

	fc := focus.DefaultConfig()
	viper.SetDefault("focus.pursuitBuffer", fc.PursuitBuffer)
	viper.SetDefault("focus.overkillSlack", fc.OverkillSlack)
	viper.SetDefault("focus.gridCellSize", fc.GridCellSize)
	viper.SetDefault("focus.tickDuration", fc.TickDuration)
	viper.SetDefault("focus.dangerHorizon", fc.DangerHorizon)
	viper.SetDefault("focus.healthFloor", fc.HealthFloor)
	viper.SetDefault("focus.epsilon", fc.Epsilon)
	viper.SetDefault("focus.parallelMinUnits", fc.ParallelMinUnits)

	viper.SetDefault("advisor.kind", AdvisorRules)
	viper.SetDefault("advisor.interval", 400)
	viper.SetDefault("advisor.model", "llama3.2")
	viper.SetDefault("advisor.host", "")
	viper.SetDefault("advisor.timeout", "30s")

	viper.SetDefault("journal.enabled", false)
	viper.SetDefault("journal.path", "./ares-journal.db")
	viper.SetDefault("journal.buffer", 256)

	viper.SetDefault("engage.baseRadius", 20.0)
}

// Load sets defaults, reads path when given (format from its extension), and
// lets ARES_* environment variables override any key, e.g.
// ARES_FOCUS_OVERKILLSLACK or ARES_ADVISOR_KIND.
func Load(path string) (Config, error) {
	setDefaults()

	viper.SetEnvPrefix("ares")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.SocketPath == "" {
		return errors.New("socketPath is required")
	}
	if err := c.Focus.Validate(); err != nil {
		return err
	}
	switch c.Advisor.Kind {
	case AdvisorRules, AdvisorModel:
	default:
		return fmt.Errorf("advisor.kind %q: want %q or %q", c.Advisor.Kind, AdvisorRules, AdvisorModel)
	}
	if c.Advisor.Interval <= 0 {
		return fmt.Errorf("advisor.interval must be positive, got %d", c.Advisor.Interval)
	}
	if c.Journal.Enabled && c.Journal.Buffer <= 0 {
		return fmt.Errorf("journal.buffer must be positive, got %d", c.Journal.Buffer)
	}
	if c.Engage.BaseRadius < 0 {
		return fmt.Errorf("engage.baseRadius must not be negative, got %v", c.Engage.BaseRadius)
	}
	return nil
}

// SlogLevel converts LogLevel for the default handler. Validate has already
// rejected unknown names.
func (c Config) SlogLevel() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("logLevel: %w", err)
	}
	return l, nil
}
