package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Slack   SlackConfig
	Server  ServerConfig
	Redis   RedisConfig
	Logging LoggingConfig
}

// SlackConfig holds workspace credentials.
type SlackConfig struct {
	Token         string
	SigningSecret string `mapstructure:"signing_secret"`
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	Addr    string
	Metrics bool
}

// RedisConfig holds container-store settings. An empty Addr selects the
// in-memory store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Lock     bool
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level string
}

// Load reads configuration from file and env. Env var overrides use prefix
// MARQUEE_, e.g. MARQUEE_SLACK_TOKEN.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("slack.token", "")
	v.SetDefault("slack.signing_secret", "")
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.metrics", true)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock", false)
	v.SetDefault("logging.level", "info")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("MARQUEE_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "marquee"))
		v.AddConfigPath(".")
		v.SetConfigName("marquee")
	}

	v.SetEnvPrefix("MARQUEE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// config file is optional
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
