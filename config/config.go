package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

var ErrUnknownStore = errors.New("unknown session store")

type Config struct {
	HTTPPort string `yaml:"http_port" env:"HTTP_PORT" env-default:"8080"`
	GinMode  string `yaml:"gin_mode" env:"GIN_MODE" env-default:"release"`

	Log   Log   `yaml:"log"`
	Store Store `yaml:"store"`
	Redis Redis `yaml:"redis"`

	SSEKeepAlive time.Duration `yaml:"sse_keep_alive" env:"SSE_KEEP_ALIVE" env-default:"15s"`
}

type Log struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

type Store struct {
	Backend    string        `yaml:"backend" env:"STORE_BACKEND" env-default:"memory"`
	SessionTTL time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"24h"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// GetRedisAddr returns host:port of the redis server.
func (that Redis) GetRedisAddr() string {
	if that.Host == "" {
		return ""
	}
	return net.JoinHostPort(that.Host, strconv.Itoa(that.Port))
}

// Load reads the YAML file named by CONFIG_PATH, if any, and then the
// environment. Environment variables win over the file.
func Load() (*Config, error) {
	var conf Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &conf); err != nil {
			return nil, fmt.Errorf("could not read config file %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&conf); err != nil {
		return nil, fmt.Errorf("could not read config from env: %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}

func (that *Config) Validate() error {
	switch that.Store.Backend {
	case StoreMemory:
	case StoreRedis:
		if that.Redis.GetRedisAddr() == "" {
			return errors.New("redis address string is empty")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, that.Store.Backend)
	}
	return nil
}

// SlogLevel maps the configured level name, defaulting to info.
func (that Log) SlogLevel() slog.Level {
	switch strings.ToLower(that.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger from the log section.
func (that Log) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: that.SlogLevel()}

	if strings.EqualFold(that.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
