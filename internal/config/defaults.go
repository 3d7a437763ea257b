package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort            = 8080
	DefaultServerReadTimeout     = 15 * time.Second
	DefaultServerWriteTimeout    = 30 * time.Second
	DefaultServerMaxBodySize     = 1 << 20
	DefaultServerShutdownTimeout = 15 * time.Second
	DefaultServerRateLimitBurst  = 20

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultArtifactsSource   = SourceFile
	DefaultArtifactsPath     = "./artifacts"
	DefaultArtifactsManifest = "manifest.json"

	DefaultMinIOBucket = "toxpredict-artifacts"
	DefaultMinIORegion = "us-east-1"

	DefaultStandardizerMaxIterations   = 10
	DefaultStandardizerMaxSMILESLength = 1000

	DefaultMetricsNamespace = "toxpredict"
	DefaultMetricsPath      = "/metrics"

	DefaultEventsTopic       = "toxpredict.prediction.completed"
	DefaultEventsBundleTopic = "toxpredict.bundle.loaded"
	DefaultEventsSource      = "toxpredict-apiserver"

	DefaultGRPCPort            = 9090
	DefaultGRPCHealthInterval  = 10 * time.Second
	DefaultGRPCGracefulTimeout = 10 * time.Second

	DefaultCacheAddr   = "localhost:6379"
	DefaultCachePrefix = "toxpredict:prediction:"
	DefaultCacheTTL    = time.Hour
)

// ApplyDefaults fills every zero-value field in cfg with the default.
// Fields that have already been set (non-zero values) are left unchanged so
// that explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultServerMaxBodySize
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}
	if cfg.Server.RateLimitRPS > 0 && cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = DefaultServerRateLimitBurst
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Artifacts ─────────────────────────────────────────────────────────────
	if cfg.Artifacts.Source == "" {
		cfg.Artifacts.Source = DefaultArtifactsSource
	}
	if cfg.Artifacts.Path == "" && cfg.Artifacts.Source == SourceFile {
		cfg.Artifacts.Path = DefaultArtifactsPath
	}
	if cfg.Artifacts.Manifest == "" {
		cfg.Artifacts.Manifest = DefaultArtifactsManifest
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.Region == "" {
		cfg.MinIO.Region = DefaultMinIORegion
	}

	// ── Standardizer ──────────────────────────────────────────────────────────
	if cfg.Standardizer.MaxIterations == 0 {
		cfg.Standardizer.MaxIterations = DefaultStandardizerMaxIterations
	}
	if cfg.Standardizer.MaxSMILESLength == 0 {
		cfg.Standardizer.MaxSMILESLength = DefaultStandardizerMaxSMILESLength
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Events ────────────────────────────────────────────────────────────────
	if cfg.Events.Topic == "" {
		cfg.Events.Topic = DefaultEventsTopic
	}
	if cfg.Events.BundleTopic == "" {
		cfg.Events.BundleTopic = DefaultEventsBundleTopic
	}
	if cfg.Events.Source == "" {
		cfg.Events.Source = DefaultEventsSource
	}
	if cfg.Events.ReplicationFactor == 0 {
		cfg.Events.ReplicationFactor = 1
	}

	// ── gRPC ──────────────────────────────────────────────────────────────────
	if cfg.GRPC.HealthInterval == 0 {
		cfg.GRPC.HealthInterval = DefaultGRPCHealthInterval
	}
	if cfg.GRPC.GracefulTimeout == 0 {
		cfg.GRPC.GracefulTimeout = DefaultGRPCGracefulTimeout
	}

	// ── Cache ─────────────────────────────────────────────────────────────────
	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = DefaultCacheAddr
	}
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = DefaultCachePrefix
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
}

// Default returns a Config populated only with defaults.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

//Personal.AI order the ending
