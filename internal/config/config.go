// Package config loads zpersona settings from a YAML file, a .env file and
// ZPERSONA_ environment variables, in increasing order of precedence.
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

	"github.com/zarlcorp/zpersona/internal/identity"
	"github.com/zarlcorp/zpersona/internal/logging"
)

const (
	envPrefix = "ZPERSONA"
	appName   = "zpersona"
)

// Config holds every setting.
type Config struct {
	DataDir        string
	LogLevel       string
	LogFormat      string
	HTTPTimeout    time.Duration
	BatchDelay     time.Duration
	DefaultCountry string

	// Offline skips every network provider and uses local data only.
	Offline bool

	RandomUserURL    string
	IPEchoURL        string
	GeoIPURL         string
	GeocodeURL       string
	GeocodeUserAgent string
	MailAPIURL       string
	MailEventsURL    string

	// StorePassword unlocks the history without a prompt.
	StorePassword string
}

// DataDir returns the default data directory.
func DataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(home, ".local", "share", appName)
}

// configDir returns the directory searched for config.yaml.
func configDir() string {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return filepath.Join(d, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(home, ".config", appName)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", DataDir())
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
	v.SetDefault("http_timeout", 10*time.Second)
	v.SetDefault("batch_delay", 100*time.Millisecond)
	v.SetDefault("default_country", "US")
	v.SetDefault("offline", false)
	v.SetDefault("randomuser_url", "https://randomuser.me/api/")
	v.SetDefault("ip_echo_url", "https://api.ipify.org?format=json")
	v.SetDefault("geoip_url", "http://ip-api.com/json/")
	v.SetDefault("geocode_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode_user_agent", "zpersona/1.0")
	v.SetDefault("mail_api_url", "https://api.mail.tm")
	v.SetDefault("mail_events_url", "https://mercure.mail.tm/.well-known/mercure")
	v.SetDefault("store_password", "")
}

// Load reads the configuration. An empty file searches for config.yaml in
// the user config directory and the working directory; a missing file
// there is not an error. A .env file in the working directory is loaded
// when present.
func Load(file string) (*Config, error) {
	// .env is optional; variables already set win
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(configDir())
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		DataDir:          v.GetString("data_dir"),
		LogLevel:         v.GetString("log_level"),
		LogFormat:        v.GetString("log_format"),
		HTTPTimeout:      v.GetDuration("http_timeout"),
		BatchDelay:       v.GetDuration("batch_delay"),
		DefaultCountry:   strings.ToUpper(v.GetString("default_country")),
		Offline:          v.GetBool("offline"),
		RandomUserURL:    v.GetString("randomuser_url"),
		IPEchoURL:        v.GetString("ip_echo_url"),
		GeoIPURL:         v.GetString("geoip_url"),
		GeocodeURL:       v.GetString("geocode_url"),
		GeocodeUserAgent: v.GetString("geocode_user_agent"),
		MailAPIURL:       v.GetString("mail_api_url"),
		MailEventsURL:    v.GetString("mail_events_url"),
		StorePassword:    v.GetString("store_password"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if !identity.IsSupported(c.DefaultCountry) {
		errs = append(errs, fmt.Errorf("default_country: unsupported country %q", c.DefaultCountry))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("http_timeout: must be positive, got %s", c.HTTPTimeout))
	}
	if c.BatchDelay < 0 {
		errs = append(errs, fmt.Errorf("batch_delay: must not be negative, got %s", c.BatchDelay))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, fmt.Errorf("log_format: %w", err))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir: must not be empty"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
