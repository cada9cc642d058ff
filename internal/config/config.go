package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	XAPI        XAPIConfig        `yaml:"x_api"`
	Syndication SyndicationConfig `yaml:"syndication"`
	OEmbed      OEmbedConfig      `yaml:"oembed"`
	RSSMirror   RSSMirrorConfig   `yaml:"rss_mirror"`
	Ingest      IngestConfig      `yaml:"ingest"`
	Storage     StorageConfig     `yaml:"storage"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// In a container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// XAPIConfig holds the authenticated X API credentials. All four values
// must be present for the authenticated fetch and reply paths; missing
// values downgrade ingestion to syndication/import-only mode.
type XAPIConfig struct {
	APIKey         string `yaml:"api_key"`
	APISecret      string `yaml:"api_secret"`
	AccessToken    string `yaml:"access_token"`
	AccessSecret   string `yaml:"access_secret"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Configured reports whether all four credential values are set
func (c XAPIConfig) Configured() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

// Timeout returns the configured timeout as a duration
func (c XAPIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SyndicationConfig holds the public timeline endpoint configuration
type SyndicationConfig struct {
	BaseURL        string `yaml:"base_url"`
	UserAgent      string `yaml:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c SyndicationConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// OEmbedConfig holds the public oEmbed endpoint configuration
type OEmbedConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c OEmbedConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RSSMirrorConfig holds the optional RSS timeline mirror configuration.
// The adapter is active only when a base URL is set.
type RSSMirrorConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Enabled reports whether the RSS mirror adapter should be wired
func (c RSSMirrorConfig) Enabled() bool {
	return c.BaseURL != ""
}

// Timeout returns the configured timeout as a duration
func (c RSSMirrorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// IngestConfig holds batch limits for ingestion requests
type IngestConfig struct {
	FetchBatchLimit  int `yaml:"fetch_batch_limit"`
	ImportBatchLimit int `yaml:"import_batch_limit"`
	PerAccount       int `yaml:"per_account"`
}

// StorageConfig holds persistence configuration. Type selects the blob
// backend: "memory", "local", "redis" or "s3".
type StorageConfig struct {
	Type      string `yaml:"type"`
	LocalPath string `yaml:"local_path"`
	RedisAddr string `yaml:"redis_addr"`
	S3Bucket  string `yaml:"s3_bucket"`
	AWSRegion string `yaml:"aws_region"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.XAPI.BaseURL == "" {
		cfg.XAPI.BaseURL = "https://api.x.com"
	}
	if cfg.XAPI.TimeoutSeconds == 0 {
		cfg.XAPI.TimeoutSeconds = 30
	}
	if cfg.Syndication.BaseURL == "" {
		cfg.Syndication.BaseURL = "https://syndication.twitter.com"
	}
	if cfg.Syndication.UserAgent == "" {
		cfg.Syndication.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	}
	if cfg.Syndication.TimeoutSeconds == 0 {
		cfg.Syndication.TimeoutSeconds = 10
	}
	if cfg.OEmbed.BaseURL == "" {
		cfg.OEmbed.BaseURL = "https://publish.twitter.com"
	}
	if cfg.OEmbed.TimeoutSeconds == 0 {
		cfg.OEmbed.TimeoutSeconds = 8
	}
	if cfg.RSSMirror.TimeoutSeconds == 0 {
		cfg.RSSMirror.TimeoutSeconds = 10
	}
	if cfg.Ingest.FetchBatchLimit == 0 {
		cfg.Ingest.FetchBatchLimit = 15
	}
	if cfg.Ingest.ImportBatchLimit == 0 {
		cfg.Ingest.ImportBatchLimit = 20
	}
	if cfg.Ingest.PerAccount == 0 {
		cfg.Ingest.PerAccount = 5
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.LocalPath == "" {
		cfg.Storage.LocalPath = "./data"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env
// vars, so credentials can live in .env locally and in real env vars in
// deployment.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("TWITTER_API_KEY"); v != "" {
		cfg.XAPI.APIKey = v
	}
	if v := os.Getenv("TWITTER_API_SECRET"); v != "" {
		cfg.XAPI.APISecret = v
	}
	if v := os.Getenv("TWITTER_ACCESS_TOKEN"); v != "" {
		cfg.XAPI.AccessToken = v
	}
	if v := os.Getenv("TWITTER_ACCESS_SECRET"); v != "" {
		cfg.XAPI.AccessSecret = v
	}
	if v := os.Getenv("X_API_BASE_URL"); v != "" {
		cfg.XAPI.BaseURL = v
	}
	if v := os.Getenv("SYNDICATION_BASE_URL"); v != "" {
		cfg.Syndication.BaseURL = v
	}
	if v := os.Getenv("OEMBED_BASE_URL"); v != "" {
		cfg.OEmbed.BaseURL = v
	}
	if v := os.Getenv("RSS_MIRROR_BASE_URL"); v != "" {
		cfg.RSSMirror.BaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Storage.RedisAddr = v
		if cfg.Storage.Type == "local" {
			cfg.Storage.Type = "redis"
		}
	}
	if v := os.Getenv("STORAGE_S3_BUCKET"); v != "" {
		cfg.Storage.S3Bucket = v
		cfg.Storage.Type = "s3"
	}

	return cfg, nil
}
