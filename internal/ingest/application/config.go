package application

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// FTPConfig defines the logger's FTP endpoint.
type FTPConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	BaseDir        string `yaml:"base_dir"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the dial timeout.
func (c FTPConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogConfig defines the daily log sink.
type LogConfig struct {
	Dir      string `yaml:"dir"`
	MaxFiles int    `yaml:"max_files"`
}

// ScheduleConfig defines the optional in-process hourly trigger.
// When disabled the process runs a single ingestion and exits, leaving
// cadence (and non-overlap) to an external scheduler.
type ScheduleConfig struct {
	Enabled      bool `yaml:"enabled"`
	MinuteOfHour int  `yaml:"minute_of_hour"`
}

// HTTPConfig defines the read API listener.
type HTTPConfig struct {
	Addr      string `yaml:"addr"`
	JWTSecret string `yaml:"jwt_secret"`
}

// Config defines the full job configuration.
type Config struct {
	DatabaseURL string         `yaml:"database_url"`
	FTP         FTPConfig      `yaml:"ftp"`
	LocalCSVDir string         `yaml:"local_csv_dir"`
	Log         LogConfig      `yaml:"log"`
	Schedule    ScheduleConfig `yaml:"schedule"`
	HTTP        HTTPConfig     `yaml:"http"`
}

// LoadConfig loads config from the yaml file named by SOLAR_CONFIG, with
// env fallbacks for every field.
func LoadConfig() (Config, error) {
	cfg := Config{
		FTP: FTPConfig{
			BaseDir: "/LOG",
		},
		LocalCSVDir: filepath.FromSlash("var/tmp/csv"),
		Log: LogConfig{
			Dir:      filepath.FromSlash("var/log/solar"),
			MaxFiles: 366,
		},
		Schedule: ScheduleConfig{
			MinuteOfHour: 5,
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
	}

	if path := os.Getenv("SOLAR_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("SOLAR_DATABASE_URL")
	}
	if cfg.FTP.Host == "" {
		cfg.FTP.Host = os.Getenv("SOLAR_FTP_HOST")
	}
	if cfg.FTP.Port == 0 {
		cfg.FTP.Port = getenvIntDefault("SOLAR_FTP_PORT", 21)
	}
	if cfg.FTP.Username == "" {
		cfg.FTP.Username = os.Getenv("SOLAR_FTP_USER")
	}
	if cfg.FTP.Password == "" {
		cfg.FTP.Password = os.Getenv("SOLAR_FTP_PASSWORD")
	}
	if cfg.HTTP.JWTSecret == "" {
		cfg.HTTP.JWTSecret = os.Getenv("SOLAR_JWT_SECRET")
	}
	if v := os.Getenv("SOLAR_SCHEDULE_ENABLED"); v != "" {
		cfg.Schedule.Enabled = v == "1" || v == "true"
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("config: database url required")
	}
	if cfg.FTP.Host == "" {
		return cfg, errors.New("config: ftp host required")
	}
	if cfg.Schedule.MinuteOfHour < 0 || cfg.Schedule.MinuteOfHour > 59 {
		return cfg, errors.New("config: minute_of_hour out of range")
	}
	return cfg, nil
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
