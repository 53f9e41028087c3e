package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds everything the service reads from the environment (or an
// optional config.yaml next to the binary).
type Config struct {
	Port   string `mapstructure:"port"`
	DBURL  string `mapstructure:"db_url"`
	APIKey string `mapstructure:"password"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	LogLevel  string `mapstructure:"log_level"`
	LogPretty bool   `mapstructure:"log_pretty"`

	BotMinDelayMs int    `mapstructure:"bot_min_delay_ms"`
	BotMaxDelayMs int    `mapstructure:"bot_max_delay_ms"`
	StaffFile     string `mapstructure:"staff_file"`
}

// Load reads configuration from config.yaml (if present) and environment
// variables. Environment variables always win.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Every key needs a default registered, or AutomaticEnv values are
	// invisible to Unmarshal.
	v.SetDefault("port", "8000")
	v.SetDefault("db_url", "")
	v.SetDefault("password", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("bot_min_delay_ms", 400)
	v.SetDefault("bot_max_delay_ms", 1800)
	v.SetDefault("staff_file", "staff.json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No config file, rely on env vars.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
