// Package config defines all configuration structures for the ToxPredict
// service.  No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"math"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	// RateLimitRPS is the per-client request rate; zero disables limiting.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// Artifact bundle locations.
const (
	SourceFile  = "file"
	SourceMinIO = "minio"
)

// ArtifactsConfig locates the artifact bundle.
type ArtifactsConfig struct {
	Source string `mapstructure:"source"` // "file" | "minio"
	// Path is a directory for the file source and an object prefix for minio.
	Path               string `mapstructure:"path"`
	Manifest           string `mapstructure:"manifest"`
	FingerprintWorkers int    `mapstructure:"fingerprint_workers"`
	// Required makes a load failure fatal instead of starting in degraded mode.
	Required bool `mapstructure:"required"`
}

// MinIOConfig holds MinIO / S3-compatible object-storage parameters.
type MinIOConfig struct {
	Endpoint       string        `mapstructure:"endpoint"`
	AccessKey      string        `mapstructure:"access_key"`
	SecretKey      string        `mapstructure:"secret_key"`
	Bucket         string        `mapstructure:"bucket"`
	Region         string        `mapstructure:"region"`
	UseSSL         bool          `mapstructure:"use_ssl"`
	MaxObjectSize  int64         `mapstructure:"max_object_size"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// StandardizerConfig bounds the ionization fixed-point loop and the input
// accepted for standardization.
type StandardizerConfig struct {
	MaxIterations   int `mapstructure:"max_iterations"`
	MaxSMILESLength int `mapstructure:"max_smiles_length"`
}

// ApplicabilityConfig overrides bundle-level applicability settings.
type ApplicabilityConfig struct {
	// Threshold replaces the bundle's similarity threshold when > 0.
	Threshold float64 `mapstructure:"threshold"`
}

// MetricsConfig controls the Prometheus collector.
type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Namespace      string `mapstructure:"namespace"`
	Path           string `mapstructure:"path"`
	ProcessMetrics bool   `mapstructure:"process_metrics"`
}

// EventsConfig controls the Kafka prediction event publisher.
type EventsConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Brokers           []string      `mapstructure:"brokers"`
	Topic             string        `mapstructure:"topic"`
	BundleTopic       string        `mapstructure:"bundle_topic"`
	Acks              string        `mapstructure:"acks"`
	Compression       string        `mapstructure:"compression"`
	Async             bool          `mapstructure:"async"`
	BatchTimeout      time.Duration `mapstructure:"batch_timeout"`
	CreateTopics      bool          `mapstructure:"create_topics"`
	ReplicationFactor int           `mapstructure:"replication_factor"`
	Source            string        `mapstructure:"source"`
}

// GRPCConfig controls the gRPC health endpoint.
type GRPCConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Reflection      bool          `mapstructure:"reflection"`
	HealthInterval  time.Duration `mapstructure:"health_interval"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout"`
}

func (c GRPCConfig) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// CacheConfig controls the Redis prediction result cache.
type CacheConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	Prefix       string        `mapstructure:"prefix"`
	TTL          time.Duration `mapstructure:"ttl"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	TLSEnabled   bool          `mapstructure:"tls_enabled"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the service and CLI.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Artifacts     ArtifactsConfig     `mapstructure:"artifacts"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Standardizer  StandardizerConfig  `mapstructure:"standardizer"`
	Applicability ApplicabilityConfig `mapstructure:"applicability"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	Events        EventsConfig        `mapstructure:"events"`
	Cache         CacheConfig         `mapstructure:"cache"`
	GRPC          GRPCConfig          `mapstructure:"grpc"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	if c.Server.MaxBodySize < 0 {
		return fmt.Errorf("config: server.max_body_size must be >= 0")
	}
	if c.Server.RateLimitRPS < 0 || c.Server.RateLimitBurst < 0 {
		return fmt.Errorf("config: server rate limit settings must be >= 0")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	switch c.Artifacts.Source {
	case SourceFile:
		if c.Artifacts.Path == "" {
			return fmt.Errorf("config: artifacts.path is required for the file source")
		}
	case SourceMinIO:
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required for the minio source")
		}
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.bucket is required for the minio source")
		}
	default:
		return fmt.Errorf("config: artifacts.source %q is invalid; expected file|minio", c.Artifacts.Source)
	}
	if c.Artifacts.FingerprintWorkers < 0 {
		return fmt.Errorf("config: artifacts.fingerprint_workers must be >= 0")
	}

	if c.Standardizer.MaxIterations < 1 {
		return fmt.Errorf("config: standardizer.max_iterations must be >= 1")
	}
	if c.Standardizer.MaxSMILESLength < 1 {
		return fmt.Errorf("config: standardizer.max_smiles_length must be >= 1")
	}

	t := c.Applicability.Threshold
	if math.IsNaN(t) || t < 0 || t > 1 {
		return fmt.Errorf("config: applicability.threshold %v is out of range [0, 1]", t)
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
	}

	if c.Events.Enabled {
		if len(c.Events.Brokers) == 0 {
			return fmt.Errorf("config: events.brokers is required when events are enabled")
		}
		if c.Events.Topic == "" {
			return fmt.Errorf("config: events.topic is required when events are enabled")
		}
	}

	if c.GRPC.Enabled {
		if c.GRPC.Port < 0 || c.GRPC.Port > 65535 {
			return fmt.Errorf("config: grpc.port %d is out of range [0, 65535]", c.GRPC.Port)
		}
		if c.GRPC.Port == c.Server.Port && c.GRPC.Host == c.Server.Host {
			return fmt.Errorf("config: grpc.port must differ from server.port")
		}
	}

	if c.Cache.Enabled {
		if c.Cache.Addr == "" {
			return fmt.Errorf("config: cache.addr is required when the cache is enabled")
		}
		if c.Cache.TTL < 0 {
			return fmt.Errorf("config: cache.ttl must be >= 0")
		}
	}

	return nil
}

//Personal.AI order the ending
