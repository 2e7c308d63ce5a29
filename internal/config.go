package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, e.g. IDEASURGE_DATABASE__DRIVER
const EnvPrefix = "IDEASURGE_"

// Config is the runtime configuration of the CLI and server
type Config struct {
	StoreDir    string            `koanf:"store_dir"`
	LLM         LLMConfig         `koanf:"llm"`
	Database    DatabaseConfig    `koanf:"database"`
	Lifecycle   LifecycleConfig   `koanf:"lifecycle"`
	Persistence PersistenceConfig `koanf:"persistence"`
	Server      ServerConfig      `koanf:"server"`
}

// LLMConfig points at the streaming backend
type LLMConfig struct {
	Endpoint  string `koanf:"endpoint"`
	Provider  string `koanf:"provider"`
	BaseURL   string `koanf:"base_url"`
	ModelID   string `koanf:"model_id"`
	APIKey    string `koanf:"api_key"`
	ExaAPIKey string `koanf:"exa_api_key"`
}

// DatabaseConfig selects the durable idea store
type DatabaseConfig struct {
	Driver   string `koanf:"driver"` // "sqlite" or "postgres"
	Path     string `koanf:"path"`
	URL      string `koanf:"url"`
	MaxConns int32  `koanf:"max_conns"`
	MinConns int32  `koanf:"min_conns"`
}

// LifecycleConfig controls when unpicked ideas are recycled
type LifecycleConfig struct {
	RecycleOnPick bool `koanf:"recycle_on_pick"`
}

// PersistenceConfig bounds the fire-and-forget persistence tasks
type PersistenceConfig struct {
	Timeout     time.Duration `koanf:"timeout"`
	MaxInFlight int           `koanf:"max_in_flight"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// Settings returns the backend settings for this configuration
func (c LLMConfig) Settings() LLMSettings {
	return LLMSettings{
		Provider:  c.Provider,
		BaseURL:   c.BaseURL,
		ModelID:   c.ModelID,
		APIKey:    c.APIKey,
		ExaAPIKey: c.ExaAPIKey,
	}
}

// LoadConfig builds the configuration from defaults, the optional YAML file
// at path, a .env file in the working directory, IDEASURGE_ variables and
// overrides (dotted keys such as "store_dir"), in increasing order of
// precedence
func LoadConfig(path string, overrides map[string]string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		LogWarn(".env file could not be loaded: %v", err)
	}

	k := koanf.New(".")
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, &StorageError{Path: path, Op: "read", Err: err}
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to apply override %s: %w", key, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// envKey maps IDEASURGE_DATABASE__MAX_CONNS to database.max_conns
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func applyDefaults(cfg *Config) error {
	if cfg.StoreDir == "" {
		paths, err := DetectStorePaths("")
		if err != nil {
			return err
		}
		cfg.StoreDir = paths.Dir
	}
	if cfg.LLM.Endpoint == "" {
		cfg.LLM.Endpoint = "http://localhost:3000"
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLM.ModelID == "" {
		cfg.LLM.ModelID = "gpt-4o-mini"
	}
	if cfg.LLM.ExaAPIKey == "" {
		cfg.LLM.ExaAPIKey = os.Getenv("EXA_API_KEY")
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(cfg.StoreDir, "ideas.db")
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 25
	}
	if cfg.Database.MinConns == 0 {
		cfg.Database.MinConns = min(5, cfg.Database.MaxConns)
	}
	if cfg.Persistence.Timeout == 0 {
		cfg.Persistence.Timeout = 10 * time.Second
	}
	if cfg.Persistence.MaxInFlight == 0 {
		cfg.Persistence.MaxInFlight = 4
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	return nil
}

// Validate checks the configuration for unusable values
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database driver: %q (supported: sqlite, postgres)", c.Database.Driver)
	}
	if c.Persistence.Timeout < 0 {
		return fmt.Errorf("persistence.timeout must not be negative")
	}
	if c.Persistence.MaxInFlight < 1 {
		return fmt.Errorf("persistence.max_in_flight must be at least 1")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns must not exceed database.max_conns")
	}
	return nil
}
