package config

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// Config holds the gateway's configuration values.
type Config struct {
	Port           int           `validate:"required,gt=0,lt=65536"`
	RedisURL       string        `validate:"omitempty,url"`
	RedisHost      string        `validate:"required_without=RedisURL"`
	RedisPort      int           `validate:"gte=0,lt=65536"`
	RedisUsername  string
	RedisPassword  string
	RedisDB        int           `validate:"gte=0"`
	CORSOrigins    []string      `validate:"dive,required,startswith=http|eq=*"`
	EnqueueTimeout time.Duration `validate:"gt=0"`
	LogLevel       string        `validate:"required,oneof=debug info warn error"`
	LogFormat      string        `validate:"required,oneof=text json"`
}

// Load reads configuration from the environment and, when present, envFile.
// Environment variables take precedence over values in the file.
func Load(envFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", 3000)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("ENQUEUE_TIMEOUT", "5s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	for _, key := range []string{"REDIS_URL", "REDIS_USERNAME", "REDIS_PASSWORD"} {
		_ = v.BindEnv(key)
	}
	v.AutomaticEnv()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			slog.Debug("no env file loaded", "path", envFile, "error", err)
		}
	}

	cfg := &Config{
		Port:           v.GetInt("PORT"),
		RedisURL:       strings.TrimSpace(v.GetString("REDIS_URL")),
		RedisHost:      v.GetString("REDIS_HOST"),
		RedisPort:      v.GetInt("REDIS_PORT"),
		RedisUsername:  v.GetString("REDIS_USERNAME"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		CORSOrigins:    splitList(v.GetString("CORS_ORIGIN")),
		EnqueueTimeout: v.GetDuration("ENQUEUE_TIMEOUT"),
		LogLevel:       strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:      strings.ToLower(v.GetString("LOG_FORMAT")),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// RedisOptions resolves the store connection settings. REDIS_URL wins over
// the discrete host, port and credential settings.
func (c *Config) RedisOptions() (*redis.Options, error) {
	if c.RedisURL != "" {
		opts, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		if c.RedisUsername != "" || c.RedisPassword != "" {
			slog.Warn("REDIS_URL is set; ignoring REDIS_USERNAME and REDIS_PASSWORD")
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     net.JoinHostPort(c.RedisHost, strconv.Itoa(c.RedisPort)),
		Username: c.RedisUsername,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
