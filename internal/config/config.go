package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"kolscan/internal/model"
)

// Config is the application's configuration model. It captures gateway
// credentials, KOL criteria thresholds, scan limits, and storage.
type Config struct {
	Gateway  GatewayConfig     `yaml:"gateway"`
	Criteria model.KOLCriteria `yaml:"criteria"`
	Scan     ScanConfig        `yaml:"scan"`
	Track    TrackConfig       `yaml:"track"`
	Storage  StorageConfig     `yaml:"storage"`
	Metrics  MetricsConfig     `yaml:"metrics"`
}

type GatewayConfig struct {
	// Base URL of the MTProto gateway service. If empty, read TG_GATEWAY_URL.
	BaseURL string `yaml:"baseURL"`
	// Auth token for the gateway. If empty, read TG_GATEWAY_TOKEN.
	Token string `yaml:"token"`
}

type ScanConfig struct {
	// MessageLimit bounds the recent channel-message query.
	MessageLimit int `yaml:"messageLimit"`
	// RecentParticipantLimit bounds the recent-participant query.
	RecentParticipantLimit int `yaml:"recentParticipantLimit"`
	// PostFetchWindow and PostLimit govern per-user post collection.
	PostFetchWindow int `yaml:"postFetchWindow"`
	PostLimit       int `yaml:"postLimit"`
}

type TrackConfig struct {
	// Channels searched when tracking a single user's posts.
	Channels []string `yaml:"channels"`
	// PerChannelLimit bounds each channel's message query.
	PerChannelLimit int `yaml:"perChannelLimit"`
}

type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Gateway:  GatewayConfig{},
		Criteria: model.DefaultCriteria(),
		Scan: ScanConfig{
			MessageLimit:           100,
			RecentParticipantLimit: 200,
			PostFetchWindow:        200,
			PostLimit:              50,
		},
		Track:   TrackConfig{PerChannelLimit: 100},
		Storage: StorageConfig{DBPath: "./kolscan.db"},
		Metrics: MetricsConfig{Addr: ""},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if c.Gateway.BaseURL == "" {
		c.Gateway.BaseURL = os.Getenv("TG_GATEWAY_URL")
	}
	if c.Gateway.Token == "" {
		c.Gateway.Token = os.Getenv("TG_GATEWAY_TOKEN")
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = os.Getenv("METRICS_ADDR")
	}
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
