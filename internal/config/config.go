package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"ranktrack/internal/common"
)

type DiscordConfig struct {
	Token          string        `mapstructure:"token" validate:"required"`
	CommandTimeout time.Duration `mapstructure:"commandTimeout" validate:"required|min:1"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Pretty bool   `mapstructure:"pretty"`
}

// ProviderConfig is shared by every rank provider. A provider without an
// api key is not started
type ProviderConfig struct {
	ApiKey       string               `mapstructure:"apiKey"`
	Region       string               `mapstructure:"region"`
	Platform     string               `mapstructure:"platform"`
	Timeout      time.Duration        `mapstructure:"timeout" validate:"required|min:1"`
	Restrictions []common.Restriction `mapstructure:"restrictions"`
}

func (provider ProviderConfig) Enabled() bool {
	return provider.ApiKey != ""
}

type ScheduleConfig struct {
	SlotsPerMinute      int `mapstructure:"slotsPerMinute" validate:"required|min:1"`
	DeliveriesPerMinute int `mapstructure:"deliveriesPerMinute" validate:"required|min:1"`
	Parallelism         int `mapstructure:"parallelism" validate:"required|min:1"`
}

type TrackingConfig struct {
	ProviderTimeout time.Duration `mapstructure:"providerTimeout" validate:"required|min:1"`
}

type CacheConfig struct {
	Size int `mapstructure:"size"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

type Config struct {
	Path         string
	Discord      DiscordConfig  `mapstructure:"discord"`
	Database     DatabaseConfig `mapstructure:"database"`
	Logger       LoggerConfig   `mapstructure:"logger"`
	Riot         ProviderConfig `mapstructure:"riot"`
	Valorant     ProviderConfig `mapstructure:"valorant"`
	Apex         ProviderConfig `mapstructure:"apex"`
	RocketLeague ProviderConfig `mapstructure:"rocketLeague"`
	Schedule     ScheduleConfig `mapstructure:"schedule"`
	Tracking     TrackingConfig `mapstructure:"tracking"`
	Cache        CacheConfig    `mapstructure:"cache"`
	Metrics      MetricsConfig  `mapstructure:"metrics"`
}

var envBindings = map[string]string{
	"discord.token":                "DISCORD_TOKEN",
	"database.path":                "DATABASE_PATH",
	"logger.level":                 "LOG_LEVEL",
	"logger.pretty":                "LOG_PRETTY",
	"riot.apiKey":                  "RIOT_API_KEY",
	"riot.region":                  "RIOT_REGION",
	"riot.platform":                "RIOT_PLATFORM",
	"valorant.apiKey":              "VALORANT_API_KEY",
	"valorant.region":              "VALORANT_REGION",
	"apex.apiKey":                  "APEX_API_KEY",
	"apex.platform":                "APEX_PLATFORM",
	"rocketLeague.apiKey":          "ROCKET_LEAGUE_API_KEY",
	"schedule.slotsPerMinute":      "REPORT_SLOTS_PER_MINUTE",
	"schedule.deliveriesPerMinute": "DELIVERIES_PER_MINUTE",
	"cache.size":                   "CACHE_SIZE_MB",
	"metrics.enabled":              "METRICS_ENABLED",
	"metrics.address":              "METRICS_ADDRESS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("discord.commandTimeout", "30s")
	v.SetDefault("database.path", "./data/ranktrack.db")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.pretty", false)

	// Development keys allow 20 requests every second and 100 every two minutes
	v.SetDefault("riot.region", "europe")
	v.SetDefault("riot.platform", "euw1")
	v.SetDefault("riot.timeout", "10s")
	v.SetDefault("riot.restrictions", []map[string]interface{}{
		{"requests": 20, "duration": "1s"},
		{"requests": 100, "duration": "2m"},
	})
	v.SetDefault("valorant.region", "eu")
	v.SetDefault("valorant.timeout", "10s")
	v.SetDefault("valorant.restrictions", []map[string]interface{}{{"requests": 30, "duration": "1m"}})
	v.SetDefault("apex.platform", "PC")
	v.SetDefault("apex.timeout", "10s")
	v.SetDefault("apex.restrictions", []map[string]interface{}{{"requests": 2, "duration": "1s"}})
	v.SetDefault("rocketLeague.timeout", "10s")
	v.SetDefault("rocketLeague.restrictions", []map[string]interface{}{{"requests": 60, "duration": "1m"}})

	v.SetDefault("schedule.slotsPerMinute", 25)
	v.SetDefault("schedule.deliveriesPerMinute", 60)
	v.SetDefault("schedule.parallelism", 4)
	v.SetDefault("tracking.providerTimeout", "15s")
	v.SetDefault("cache.size", 16)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", ":9090")
}

// Load reads the optional yaml file at path, then the environment (and a
// .env file if there is one). The environment wins
func Load(path string) (*Config, error) {
	// Missing .env files are fine
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		filename := filepath.Base(path)
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("unable to read config file: %w", err)
			}
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	conf.Path = path

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

func (conf *Config) Validate() error {
	sections := []struct {
		name  string
		value interface{}
	}{
		{"discord", &conf.Discord},
		{"database", &conf.Database},
		{"logger", &conf.Logger},
		{"riot", &conf.Riot},
		{"valorant", &conf.Valorant},
		{"apex", &conf.Apex},
		{"rocketLeague", &conf.RocketLeague},
		{"schedule", &conf.Schedule},
		{"tracking", &conf.Tracking},
	}
	for _, section := range sections {
		if v := validate.Struct(section.value); !v.Validate() {
			return fmt.Errorf("invalid %s configuration: %w", section.name, v.Errors)
		}
	}
	return nil
}
