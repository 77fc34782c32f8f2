package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/reshetovitsme/rss-catalog/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// EnvPrefix is stripped from environment variables before they become keys:
// RSS_CATALOG_CATALOG_PATH -> catalog_path
const EnvPrefix = "RSS_CATALOG_"

const (
	KeyCatalogPath = "catalog_path"
	KeyPagesPath   = "pages_path"
	KeyHTTPPort    = "http_port"
	KeyLogLevel    = "log_level"
	KeyLogFile     = "log_file"
	KeyStrictParse = "strict_parse"
	KeyAppEnv      = "app_env"
)

type Config struct {
	CatalogPath string `koanf:"catalog_path"`
	PagesPath   string `koanf:"pages_path"`
	HTTPPort    string `koanf:"http_port"`
	LogLevel    string `koanf:"log_level"`
	LogFile     string `koanf:"log_file"`
	StrictParse bool   `koanf:"strict_parse"`
	AppEnv      AppEnv `koanf:"app_env"`
}

// Options carries values that take precedence over config files and the environment
type Options struct {
	// ConfigFile is loaded instead of searching the working directory
	ConfigFile string
	// Overrides are keyed like the koanf tags of Config
	Overrides map[string]any
}

// DefaultConfigFiles are searched in the working directory, first match wins
var DefaultConfigFiles = []string{
	"config.yaml",
	"config.yml",
	"config.json",
	"config.toml",
}

func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile, _ = lo.Find(DefaultConfigFiles, func(file string) bool {
			_, err := os.Stat(file)
			return err == nil
		})
	}

	if configFile != "" {
		parser, err := ParserFor(configFile)
		if err != nil {
			return nil, err
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Environment variables override config file values
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	for key, value := range opts.Overrides {
		if err := k.Set(key, value); err != nil {
			return nil, oops.With("key", key).Wrap(err)
		}
	}

	// Set defaults
	if !k.Exists(KeyCatalogPath) {
		k.Set(KeyCatalogPath, "./rss-sources-complete.json")
	}
	if !k.Exists(KeyPagesPath) {
		k.Set(KeyPagesPath, "./pages.yaml")
	}
	if !k.Exists(KeyHTTPPort) {
		k.Set(KeyHTTPPort, "8080")
	}
	if !k.Exists(KeyLogLevel) {
		k.Set(KeyLogLevel, "info")
	}
	if !k.Exists(KeyAppEnv) {
		k.Set(KeyAppEnv, "production")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	if env, err := ParseAppEnv(k.String(KeyAppEnv)); err == nil {
		cfg.AppEnv = env
	} else {
		cfg.AppEnv = AppEnvProduction
	}

	if _, err := cfg.Level(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Level parses LogLevel ("debug", "info", "warn", "error", optionally with an offset like "info+2")
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, oops.With("log_level", c.LogLevel).Wrap(errors.ErrInvalidLogLevel)
	}
	return level, nil
}

// ParserFor picks the koanf parser matching the extension of path
func ParserFor(path string) (koanf.Parser, error) {
	ext := filepath.Ext(path)

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		return nil, oops.With("path", path).Errorf("unsupported file extension: %s", ext)
	}
}
