package config

import "path/filepath"

// Config is the top-level bloomshelf configuration.
type Config struct {
	Library LibraryConfig `mapstructure:"library"`
	WiFi    WiFiConfig    `mapstructure:"wifi"`
	Device  DeviceConfig  `mapstructure:"device"`
}

// LibraryConfig holds library location settings.
type LibraryConfig struct {
	// Roots lists the directories scanned for books, in priority order.
	// The first entry is the primary storage root and the destination
	// for new books.
	Roots      []string `mapstructure:"roots"`
	CacheDir   string   `mapstructure:"cache_dir"`
	ScratchDir string   `mapstructure:"scratch_dir"`
}

// WiFiConfig holds the transfer protocol's port settings.
type WiFiConfig struct {
	AdvertPort  int `mapstructure:"advert_port"`
	RequestPort int `mapstructure:"request_port"`
	ReceivePort int `mapstructure:"receive_port"`
}

// DeviceConfig identifies this device to transfer peers and sets the
// language used when resolving shelf display names.
type DeviceConfig struct {
	Name     string `mapstructure:"name"`
	Language string `mapstructure:"language"`
}

// PrimaryRoot returns the first library root, where new books land.
func (c *Config) PrimaryRoot() string {
	if len(c.Library.Roots) == 0 {
		return ""
	}
	return c.Library.Roots[0]
}

// ThumbsDir returns the directory for cached thumbnails.
func (c *Config) ThumbsDir() string {
	return filepath.Join(c.Library.CacheDir, "thumbs")
}
