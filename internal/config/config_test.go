package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bloombooks/bloomshelf/internal/config"
	"github.com/bloombooks/bloomshelf/internal/wifi"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BLOOMSHELF_CONFIG", filepath.Join(t.TempDir(), "absent.yml"))

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load with no file: %v", err)
	}
	if cfg.PrimaryRoot() == "" {
		t.Error("no default library root")
	}
	if cfg.WiFi.AdvertPort != wifi.DefaultAdvertPort {
		t.Errorf("AdvertPort = %d", cfg.WiFi.AdvertPort)
	}
	if cfg.WiFi.ReceivePort != wifi.DefaultReceivePort {
		t.Errorf("ReceivePort = %d", cfg.WiFi.ReceivePort)
	}
	if cfg.Device.Language != "en" {
		t.Errorf("Language = %q", cfg.Device.Language)
	}
	if cfg.Library.CacheDir == "" || cfg.Library.ScratchDir == "" {
		t.Error("cache or scratch dir missing a default")
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	body := `library:
  roots:
    - /books/primary
    - /books/sdcard
  cache_dir: /books/cache
wifi:
  advert_port: 6913
device:
  name: reading tablet
  language: fr
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BLOOMSHELF_CONFIG", path)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PrimaryRoot() != "/books/primary" {
		t.Errorf("PrimaryRoot = %q", cfg.PrimaryRoot())
	}
	if len(cfg.Library.Roots) != 2 {
		t.Errorf("Roots = %v", cfg.Library.Roots)
	}
	if cfg.WiFi.AdvertPort != 6913 {
		t.Errorf("AdvertPort = %d", cfg.WiFi.AdvertPort)
	}
	// Unset ports keep their defaults.
	if cfg.WiFi.RequestPort != wifi.DefaultRequestPort {
		t.Errorf("RequestPort = %d", cfg.WiFi.RequestPort)
	}
	if cfg.Device.Name != "reading tablet" || cfg.Device.Language != "fr" {
		t.Errorf("Device = %+v", cfg.Device)
	}
	if cfg.ThumbsDir() != filepath.Join("/books/cache", "thumbs") {
		t.Errorf("ThumbsDir = %q", cfg.ThumbsDir())
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(":\tnot yaml"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BLOOMSHELF_CONFIG", path)

	if _, err := config.Load(); err == nil {
		t.Error("malformed config accepted")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("BLOOMSHELF_CONFIG", filepath.Join(t.TempDir(), "absent.yml"))
	t.Setenv("BLOOMSHELF_DEVICE_NAME", "env device")

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Device.Name != "env device" {
		t.Errorf("Device.Name = %q, want env override", cfg.Device.Name)
	}
}

func TestPrimaryRoot_Empty(t *testing.T) {
	cfg := &config.Config{}
	if cfg.PrimaryRoot() != "" {
		t.Errorf("PrimaryRoot = %q, want empty", cfg.PrimaryRoot())
	}
}
