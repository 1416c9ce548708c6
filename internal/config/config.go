package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// APIConfig points at the remote REST API.
type APIConfig struct {
	BaseURL string
	// Static admin key sent as x-api-key; a key saved in local storage wins.
	Key     string
	Timeout time.Duration
}

type ServerConfig struct {
	Address string
}

type StorageConfig struct {
	// sqlite file holding the token and admin API key
	Path string
}

// RedisConfig enables the listing cache when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	TTL      time.Duration
}

type ListingConfig struct {
	PageSize      int
	LocationsPath string
}

type LogConfig struct {
	Level  string
	Format string
}

type Config struct {
	API     APIConfig
	Server  ServerConfig
	Storage StorageConfig
	Redis   RedisConfig
	Listing ListingConfig
	Log     LogConfig
}

// bindings maps config keys to environment variables and defaults.
var bindings = []struct {
	key, env string
	def      any
}{
	{"api.base_url", "API_BASE_URL", "http://localhost:4000/api"},
	{"api.key", "API_KEY", ""},
	{"api.timeout", "API_TIMEOUT", "15s"},
	{"server.address", "PORTAL_ADDRESS", ":8080"},
	{"storage.path", "LOCAL_STORAGE_PATH", "portal.db"},
	{"redis.addr", "REDIS_ADDR", ""},
	{"redis.password", "REDIS_PASSWORD", ""},
	{"redis.ttl", "CACHE_TTL", "30s"},
	{"listing.page_size", "PAGE_SIZE", 9},
	{"listing.locations_path", "LOCATION_KEYWORDS_PATH", ""},
	{"log.level", "LOG_LEVEL", "info"},
	{"log.format", "LOG_FORMAT", "json"},
}

// Load reads .env (when present) and the environment. file, when non-empty, is
// an additional config file (yaml, json or toml) read before the environment
// is applied.
func Load(file string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return load(viper.New(), file)
}

func load(v *viper.Viper, file string) (Config, error) {
	for _, b := range bindings {
		v.SetDefault(b.key, b.def)
		if err := v.BindEnv(b.key, b.env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", b.env, err)
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := Config{
		API: APIConfig{
			BaseURL: strings.TrimRight(v.GetString("api.base_url"), "/"),
			Key:     v.GetString("api.key"),
			Timeout: v.GetDuration("api.timeout"),
		},
		Server:  ServerConfig{Address: v.GetString("server.address")},
		Storage: StorageConfig{Path: v.GetString("storage.path")},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			TTL:      v.GetDuration("redis.ttl"),
		},
		Listing: ListingConfig{
			PageSize:      v.GetInt("listing.page_size"),
			LocationsPath: v.GetString("listing.locations_path"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.API.BaseURL == "" {
		return errors.New("config: api.base_url is empty")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config: api.timeout must be positive, got %s", c.API.Timeout)
	}
	if c.Listing.PageSize <= 0 {
		return fmt.Errorf("config: listing.page_size must be positive, got %d", c.Listing.PageSize)
	}
	return nil
}
