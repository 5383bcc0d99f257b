package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/oauth2"

	"github.com/Sternrassler/ytdata-client/pkg/client"
	"github.com/Sternrassler/ytdata-client/pkg/logging"
)

const envPrefix = "YTDATA"

// Config is the CLI configuration, read from flags, YTDATA_* environment
// variables and an optional config file, in that order of precedence.
type Config struct {
	APIKey      string
	AccessToken string
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration

	RateLimit      float64
	Burst          int
	CircuitBreaker bool

	RedisURL  string
	CursorTTL time.Duration
	Owner     string

	LogLevel  logging.LogLevel
	LogPretty bool
	JSON      bool
}

// newViper returns a viper instance bound to the persistent flags.
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	return v, nil
}

// loadConfig reads the configuration file named by --config, if any, and
// resolves every setting.
func loadConfig(v *viper.Viper) (*Config, error) {
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	level, err := logging.ParseLogLevel(v.GetString("log-level"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIKey:         v.GetString("api-key"),
		AccessToken:    v.GetString("access-token"),
		BaseURL:        getStringOrDefault(v, "base-url", client.DefaultBaseURL),
		UserAgent:      getStringOrDefault(v, "user-agent", "ytdata/"+version),
		Timeout:        getDurationOrDefault(v, "timeout", 30*time.Second),
		RateLimit:      v.GetFloat64("rate-limit"),
		Burst:          getIntOrDefault(v, "burst", 1),
		CircuitBreaker: v.GetBool("circuit-breaker"),
		RedisURL:       v.GetString("redis-url"),
		CursorTTL:      v.GetDuration("cursor-ttl"),
		Owner:          getStringOrDefault(v, "owner", "default"),
		LogLevel:       level,
		LogPretty:      v.GetBool("log-pretty"),
		JSON:           v.GetBool("json"),
	}

	if cfg.APIKey == "" && cfg.AccessToken == "" {
		return nil, fmt.Errorf("one of --api-key or --access-token (or %s_API_KEY / %s_ACCESS_TOKEN) is required", envPrefix, envPrefix)
	}
	if cfg.APIKey != "" && cfg.AccessToken != "" {
		return nil, fmt.Errorf("--api-key and --access-token are mutually exclusive")
	}

	return cfg, nil
}

// ClientConfig converts the CLI settings to a client configuration.
func (c *Config) ClientConfig() client.Config {
	cfg := client.DefaultConfig(c.APIKey, c.UserAgent)
	cfg.BaseURL = c.BaseURL
	cfg.Timeout = c.Timeout
	cfg.RateLimit = c.RateLimit
	cfg.Burst = c.Burst
	cfg.CircuitBreaker = c.CircuitBreaker
	if c.AccessToken != "" {
		cfg.TokenSource = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.AccessToken, TokenType: "Bearer"})
	}
	return cfg
}

func getStringOrDefault(v *viper.Viper, key, defaultValue string) string {
	if s := v.GetString(key); s != "" {
		return s
	}
	return defaultValue
}

func getIntOrDefault(v *viper.Viper, key string, defaultValue int) int {
	if v.IsSet(key) {
		return v.GetInt(key)
	}
	return defaultValue
}

func getDurationOrDefault(v *viper.Viper, key string, defaultValue time.Duration) time.Duration {
	if d := v.GetDuration(key); d > 0 {
		return d
	}
	return defaultValue
}
