package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable that points at the config file.
const EnvPath = "COMPLOG_CONFIG"

// Archive backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config is the complete runtime configuration of a complog process.
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Archive  ArchiveConfig  `yaml:"archive" mapstructure:"archive"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Exec     ExecConfig     `yaml:"exec" mapstructure:"exec"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	// StreamBuffer is the per-subscriber channel size for SSE and WebSocket streams.
	StreamBuffer int `yaml:"stream_buffer" mapstructure:"stream_buffer"`
	// MaxInputSize bounds each name and log part received over HTTP or MCP.
	MaxInputSize int `yaml:"max_input_size" mapstructure:"max_input_size"`
}

type RegistryConfig struct {
	// OnDuplicate is "reject" or "replace".
	OnDuplicate string `yaml:"on_duplicate" mapstructure:"on_duplicate"`
}

type ArchiveConfig struct {
	Backend string      `yaml:"backend" mapstructure:"backend"`
	Path    string      `yaml:"path" mapstructure:"path"`
	Redis   RedisConfig `yaml:"redis" mapstructure:"redis"`
	// Redact lists regular expressions masked in archived log texts and unit names.
	Redact []string `yaml:"redact" mapstructure:"redact"`
	// EncryptionKey is a base64 AES-256 key. When set, archived documents are encrypted.
	EncryptionKey string   `yaml:"encryption_key" mapstructure:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys" mapstructure:"fallback_keys"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" mapstructure:"addr"`
	Password string        `yaml:"password" mapstructure:"password"`
	DB       int           `yaml:"db" mapstructure:"db"`
	Prefix   string        `yaml:"prefix" mapstructure:"prefix"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
	// Lock enables the distributed archive lock for multi-replica deployments.
	Lock bool `yaml:"lock" mapstructure:"lock"`
	// LockTTL bounds how long a crashed replica can hold the lock. Zero keeps archive.DefaultLockTTL.
	LockTTL time.Duration `yaml:"lock_ttl" mapstructure:"lock_ttl"`
}

type ExecConfig struct {
	// Commands is a YAML or JSON allow-list offered to MCP clients as run_command.
	Commands string `yaml:"commands" mapstructure:"commands"`
	// Dir is the working directory of executed commands.
	Dir string `yaml:"dir" mapstructure:"dir"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
			StreamBuffer:    64,
			MaxInputSize:    64 << 10,
		},
		Registry: RegistryConfig{
			OnDuplicate: "reject",
		},
		Archive: ArchiveConfig{
			Backend: BackendMemory,
			Path:    ".complog/archive",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "complog:archive:",
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path on top of the defaults.
// An empty path falls back to $COMPLOG_CONFIG; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := Decode(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode merges YAML data into cfg. Durations accept "30s" as well as plain
// seconds, and scalar fields are weakly typed so `db: "2"` still works.
func Decode(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if raw == nil {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			secondsToDurationHook,
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Archive.Backend) {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("unknown archive backend %q", c.Archive.Backend)
	}
	switch strings.ToLower(c.Registry.OnDuplicate) {
	case "", "reject", "replace":
	default:
		return fmt.Errorf("unknown on_duplicate policy %q", c.Registry.OnDuplicate)
	}
	if c.Archive.Redis.LockTTL < 0 {
		return fmt.Errorf("archive.redis.lock_ttl must not be negative, got %s", c.Archive.Redis.LockTTL)
	}
	if c.Server.StreamBuffer <= 0 {
		return fmt.Errorf("server.stream_buffer must be positive, got %d", c.Server.StreamBuffer)
	}
	return nil
}

func secondsToDurationHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	}
	return data, nil
}
