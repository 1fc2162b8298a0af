package advisor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultConfigFile = "config.json"
	envPrefix         = "ADVISOR"
)

// LoadConfig loads configuration from the given path or the default config.json.
// Values can be overridden through ADVISOR_* environment variables, e.g.
// ADVISOR_RUNTIME_ORTDLL or ADVISOR_ARTIFACTS_DIR.
func LoadConfig(path string) (Config, error) {
	return LoadConfigFrom(viper.New(), path)
}

// LoadConfigFrom reads the configuration through v, which may already carry
// bound command line flags. A missing file yields the defaults.
func LoadConfigFrom(v *viper.Viper, path string) (Config, error) {
	if path == "" {
		path = defaultConfigFile
	}
	var cfg Config
	if err := registerDefaults(v); err != nil {
		return cfg, err
	}
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// registerDefaults declares every known key so environment overrides apply
// even when the config file omits them.
func registerDefaults(v *viper.Viper) error {
	var defaults Config
	defaults.ApplyDefaults()
	data, err := json.Marshal(defaults)
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("decode default config: %w", err)
	}
	setDefaults(v, "", tree)
	return nil
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for key, value := range tree {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			setDefaults(v, full, nested)
			continue
		}
		v.SetDefault(full, value)
	}
}

// SaveConfig persists configuration to disk.
func SaveConfig(path string, cfg Config) error {
	if path == "" {
		path = defaultConfigFile
	}
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	cfg.ApplyDefaults()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
