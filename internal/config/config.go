// Package config loads intsteps.yaml.
//
// A missing file yields Default(). Values present in the file override the
// defaults field by field; the result is validated with go-playground
// validator and every failing field is reported at once.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// MaxFileSize bounds the configuration file.
const MaxFileSize = 1 << 20

// Cache backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

type Config struct {
	LogLevel string      `yaml:"log_level" validate:"oneof=debug info warn error"`
	HTTP     HTTPConfig  `yaml:"http"`
	MCP      MCPConfig   `yaml:"mcp"`
	Cache    CacheConfig `yaml:"cache"`
}

type HTTPConfig struct {
	Port int `yaml:"port" validate:"min=1,max=65535"`
}

type MCPConfig struct {
	Transport string `yaml:"transport" validate:"oneof=stdio sse"`
	Port      int    `yaml:"port" validate:"min=1,max=65535"`
}

type CacheConfig struct {
	Backend string        `yaml:"backend" validate:"oneof=none memory redis sqlite"`
	TTL     time.Duration `yaml:"ttl" validate:"min=0"`
	Redis   RedisConfig   `yaml:"redis"`
	SQLite  SQLiteConfig  `yaml:"sqlite"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"min=0,max=15"`
	Prefix   string `yaml:"prefix"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LogLevel: "info",
		HTTP:     HTTPConfig{Port: 8080},
		MCP:      MCPConfig{Transport: "stdio", Port: 8081},
		Cache: CacheConfig{
			Backend: BackendMemory,
			TTL:     time.Hour,
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "intsteps:"},
			SQLite:  SQLiteConfig{Path: "intsteps.db"},
		},
	}
}

// Load reads path over the defaults. An empty path or a missing file is
// not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("stat config: %w", err)
	}
	if info.Size() > MaxFileSize {
		return cfg, fmt.Errorf("config %s exceeds %d bytes", path, MaxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateBackend, CacheConfig{})
	return v
}

// validateBackend requires the settings of the selected cache backend.
func validateBackend(sl validator.StructLevel) {
	c := sl.Current().Interface().(CacheConfig)
	switch c.Backend {
	case BackendRedis:
		if c.Redis.Addr == "" {
			sl.ReportError(c.Redis.Addr, "redis.addr", "Addr", "required_for_redis", "")
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			sl.ReportError(c.SQLite.Path, "sqlite.path", "Path", "required_for_sqlite", "")
		}
	}
}

// Validate checks every field and returns a *ValidationError listing all
// failures.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, &FieldError{
			Key:    fieldKey(fe.Namespace()),
			Reason: reason(fe),
			Value:  fe.Value(),
		})
	}
	return out
}

// fieldKey drops the root struct name: "Config.cache.backend" -> "cache.backend".
func fieldKey(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return "must be one of " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "required_for_redis":
		return "is required when the cache backend is redis"
	case "required_for_sqlite":
		return "is required when the cache backend is sqlite"
	}
	return "failed " + fe.Tag()
}
