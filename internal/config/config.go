package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// TIMEAI_SCHEDULE_HORIZON_DAYS.
const EnvPrefix = "TIMEAI"

// Config holds all timeai settings.
type Config struct {
	Schedule ScheduleConfig
	DB       DBConfig
	Log      LogConfig
	Batch    BatchConfig
}

type ScheduleConfig struct {
	WorkStartHour   int
	WorkEndHour     int
	HorizonDays     int
	FallbackMinutes int
	Timezone        string
}

type DBConfig struct {
	Path string
}

type LogConfig struct {
	Level string
}

type BatchConfig struct {
	Concurrency int
}

// Load reads configuration from path when given, otherwise from timeai.yaml
// in the working directory or $HOME/.timeai. A missing default file is not
// an error. Environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("timeai")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := homeDir(); dir != "" {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	cfg.Schedule.WorkStartHour = v.GetInt("schedule.work_start_hour")
	cfg.Schedule.WorkEndHour = v.GetInt("schedule.work_end_hour")
	cfg.Schedule.HorizonDays = v.GetInt("schedule.horizon_days")
	cfg.Schedule.FallbackMinutes = v.GetInt("schedule.fallback_minutes")
	cfg.Schedule.Timezone = v.GetString("schedule.timezone")
	cfg.DB.Path = v.GetString("db.path")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Batch.Concurrency = v.GetInt("batch.concurrency")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	return &Config{
		Schedule: ScheduleConfig{
			WorkStartHour:   v.GetInt("schedule.work_start_hour"),
			WorkEndHour:     v.GetInt("schedule.work_end_hour"),
			HorizonDays:     v.GetInt("schedule.horizon_days"),
			FallbackMinutes: v.GetInt("schedule.fallback_minutes"),
			Timezone:        v.GetString("schedule.timezone"),
		},
		DB:    DBConfig{Path: v.GetString("db.path")},
		Log:   LogConfig{Level: v.GetString("log.level")},
		Batch: BatchConfig{Concurrency: v.GetInt("batch.concurrency")},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("schedule.work_start_hour", 9)
	v.SetDefault("schedule.work_end_hour", 17)
	v.SetDefault("schedule.horizon_days", 7)
	v.SetDefault("schedule.fallback_minutes", 30)
	v.SetDefault("schedule.timezone", "Local")

	dbPath := filepath.Join(".timeai", "timeai.db")
	if dir := homeDir(); dir != "" {
		dbPath = filepath.Join(dir, "timeai.db")
	}
	v.SetDefault("db.path", dbPath)

	v.SetDefault("log.level", "warn")
	v.SetDefault("batch.concurrency", 4)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".timeai")
}

// Validate rejects settings the scheduler cannot work with.
func (c *Config) Validate() error {
	s := c.Schedule
	if s.WorkStartHour < 0 || s.WorkStartHour > 24 || s.WorkEndHour < 0 || s.WorkEndHour > 24 {
		return fmt.Errorf("work hours must be within 0..24, got %d..%d", s.WorkStartHour, s.WorkEndHour)
	}
	if s.WorkEndHour <= s.WorkStartHour {
		return fmt.Errorf("work_end_hour (%d) must be after work_start_hour (%d)", s.WorkEndHour, s.WorkStartHour)
	}
	if s.HorizonDays < 1 {
		return fmt.Errorf("horizon_days must be at least 1, got %d", s.HorizonDays)
	}
	if s.FallbackMinutes < 1 {
		return fmt.Errorf("fallback_minutes must be at least 1, got %d", s.FallbackMinutes)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch concurrency must be at least 1, got %d", c.Batch.Concurrency)
	}
	return nil
}

// Location resolves the configured timezone. "Local" and "" mean the
// process's local zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Schedule.Timezone {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Schedule.Timezone, err)
	}
	return loc, nil
}

// LogLevel returns the slog level for log.level, defaulting to warn.
func (c *Config) LogLevel() slog.Level {
	lvl, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelWarn
	}
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelWarn, fmt.Errorf("unknown log level %q", s)
}
