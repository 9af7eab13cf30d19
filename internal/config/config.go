package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Crypto      CryptoConfig
	Cache       CacheConfig
	Queue       QueueConfig
	Notify      NotifyConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Path string
}

type CryptoConfig struct {
	// PropertiesKey is the hex-encoded 32-byte key sealing integration
	// properties at rest.
	PropertiesKey []byte
}

type CacheConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

type QueueConfig struct {
	Buffer  int
	Workers int
}

type NotifyConfig struct {
	SigningSecret string
	ChannelLimit  int
}

func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("dispatchd_env", "")
	v.SetDefault("app_env", "")
	v.SetDefault("go_env", "")
	v.SetDefault("dispatchd_port", 8080)
	v.SetDefault("dispatchd_db_path", "data/dispatchd")
	v.SetDefault("dispatchd_properties_key", "")
	v.SetDefault("dispatchd_cache_ttl_seconds", 300)
	v.SetDefault("dispatchd_cache_sweep_seconds", 600)
	v.SetDefault("dispatchd_queue_buffer", 256)
	v.SetDefault("dispatchd_queue_workers", 4)
	v.SetDefault("dispatchd_notify_signing_secret", "")
	v.SetDefault("dispatchd_channel_limit", 10)

	env := resolveEnvironment(v)
	port := v.GetInt("dispatchd_port")
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid DISPATCHD_PORT: %d", port)
	}

	cacheTTL := v.GetInt("dispatchd_cache_ttl_seconds")
	if cacheTTL <= 0 {
		cacheTTL = 300
	}

	sweep := v.GetInt("dispatchd_cache_sweep_seconds")
	if sweep <= 0 {
		sweep = 600
	}

	buffer := v.GetInt("dispatchd_queue_buffer")
	if buffer <= 0 {
		buffer = 256
	}
	if buffer > 65536 {
		buffer = 65536
	}

	workers := v.GetInt("dispatchd_queue_workers")
	if workers <= 0 {
		workers = 4
	}
	if workers > 256 {
		workers = 256
	}

	channelLimit := v.GetInt("dispatchd_channel_limit")
	if channelLimit <= 0 {
		channelLimit = 10
	}

	cfg := Config{
		Environment: env,
		Server:      ServerConfig{Port: port},
		Database: DatabaseConfig{
			Path: strings.TrimSpace(v.GetString("dispatchd_db_path")),
		},
		Cache: CacheConfig{
			TTL:           time.Duration(cacheTTL) * time.Second,
			SweepInterval: time.Duration(sweep) * time.Second,
		},
		Queue: QueueConfig{
			Buffer:  buffer,
			Workers: workers,
		},
		Notify: NotifyConfig{
			SigningSecret: strings.TrimSpace(v.GetString("dispatchd_notify_signing_secret")),
			ChannelLimit:  channelLimit,
		},
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/dispatchd"
	}

	rawKey := strings.TrimSpace(v.GetString("dispatchd_properties_key"))
	switch {
	case rawKey != "":
		key, err := hex.DecodeString(rawKey)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DISPATCHD_PROPERTIES_KEY: %w", err)
		}
		if len(key) != 32 {
			return Config{}, fmt.Errorf("DISPATCHD_PROPERTIES_KEY must decode to 32 bytes, got %d", len(key))
		}
		cfg.Crypto.PropertiesKey = key
	case !cfg.IsLocalDevelopment():
		return Config{}, fmt.Errorf("DISPATCHD_PROPERTIES_KEY is required outside local/dev environments")
	case cfg.IsLocalDevelopment():
		cfg.Crypto.PropertiesKey = localDevKey()
	}

	return cfg, nil
}

// localDevKey is a fixed key so local databases survive restarts. Never
// used outside local/dev environments.
func localDevKey() []byte {
	key := make([]byte, 32)
	copy(key, []byte("dispatchd-local-dev"))
	return key
}

func (c Config) IsLocalDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "", "local", "dev", "development", "test":
		return true
	default:
		return false
	}
}

func resolveEnvironment(v *viper.Viper) string {
	for _, key := range []string{"dispatchd_env", "app_env", "go_env"} {
		value := strings.TrimSpace(v.GetString(key))
		if value != "" {
			return strings.ToLower(value)
		}
	}
	return ""
}
