package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bloombooks/bloomshelf/internal/util"
	"github.com/bloombooks/bloomshelf/internal/wifi"
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "bloomshelf", "config.yml")
}

// Load reads the config from disk (or env). Returns a config filled
// with defaults if no file exists yet.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("library.roots", []string{defaultLibraryDir()})
	v.SetDefault("library.cache_dir", defaultDataDir("cache"))
	v.SetDefault("library.scratch_dir", defaultDataDir("scratch"))
	v.SetDefault("wifi.advert_port", wifi.DefaultAdvertPort)
	v.SetDefault("wifi.request_port", wifi.DefaultRequestPort)
	v.SetDefault("wifi.receive_port", wifi.DefaultReceivePort)
	v.SetDefault("device.name", defaultDeviceName())
	v.SetDefault("device.language", "en")

	v.SetEnvPrefix("BLOOMSHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := os.Getenv("BLOOMSHELF_CONFIG")
	if configPath == "" {
		configPath = DefaultPath()
	}
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, everything has a default.
		if !os.IsNotExist(err) {
			if _, isCfgNotFound := err.(viper.ConfigFileNotFoundError); !isCfgNotFound {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	for i, root := range cfg.Library.Roots {
		cfg.Library.Roots[i] = util.ExpandHome(root)
	}
	cfg.Library.CacheDir = util.ExpandHome(cfg.Library.CacheDir)
	cfg.Library.ScratchDir = util.ExpandHome(cfg.Library.ScratchDir)

	return &cfg, nil
}

// Save writes the config to the default path.
func Save(cfg *Config) error {
	path := DefaultPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(cfg)
}

func defaultLibraryDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Bloom")
}

func defaultDataDir(sub string) string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "bloomshelf", sub)
}

func defaultDeviceName() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "bloomshelf device"
}
