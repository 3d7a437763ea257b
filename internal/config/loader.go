package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	"github.com/turtacn/ToxPredict/pkg/errors"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "TOXPRED"

var (
	ErrConfigFileNotFound = errors.New(errors.ErrCodeConfigInvalid, "config file not found")
	ErrConfigParseError   = errors.New(errors.ErrCodeConfigInvalid, "config file could not be parsed")
)

// newViper builds a Viper instance with YAML file type, TOXPRED_ env prefix,
// automatic env binding, and a "." → "_" key replacer so that nested keys
// like "artifacts.path" resolve to "TOXPRED_ARTIFACTS_PATH".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	registerDefaults(v)
	return v
}

// registerDefaults declares every key so that Unmarshal picks up env
// overrides for keys absent from the file.
func registerDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.max_body_size", d.Server.MaxBodySize)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.rate_limit_rps", 0.0)
	v.SetDefault("server.rate_limit_burst", 0)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output_paths", []string{"stdout"})

	v.SetDefault("artifacts.source", d.Artifacts.Source)
	v.SetDefault("artifacts.path", "")
	v.SetDefault("artifacts.manifest", d.Artifacts.Manifest)
	v.SetDefault("artifacts.fingerprint_workers", 0)
	v.SetDefault("artifacts.required", false)

	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", d.MinIO.Bucket)
	v.SetDefault("minio.region", d.MinIO.Region)
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.max_object_size", 0)
	v.SetDefault("minio.connect_timeout", 0)

	v.SetDefault("standardizer.max_iterations", d.Standardizer.MaxIterations)
	v.SetDefault("standardizer.max_smiles_length", d.Standardizer.MaxSMILESLength)
	v.SetDefault("applicability.threshold", 0.0)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
	v.SetDefault("metrics.path", d.Metrics.Path)
	v.SetDefault("metrics.process_metrics", true)

	v.SetDefault("events.enabled", false)
	v.SetDefault("events.brokers", []string{})
	v.SetDefault("events.topic", d.Events.Topic)
	v.SetDefault("events.bundle_topic", d.Events.BundleTopic)
	v.SetDefault("events.acks", "one")
	v.SetDefault("events.compression", "")
	v.SetDefault("events.async", true)
	v.SetDefault("events.batch_timeout", 0)
	v.SetDefault("events.create_topics", false)
	v.SetDefault("events.replication_factor", d.Events.ReplicationFactor)
	v.SetDefault("events.source", d.Events.Source)

	v.SetDefault("grpc.enabled", false)
	v.SetDefault("grpc.host", "")
	v.SetDefault("grpc.port", DefaultGRPCPort)
	v.SetDefault("grpc.reflection", false)
	v.SetDefault("grpc.health_interval", d.GRPC.HealthInterval)
	v.SetDefault("grpc.graceful_timeout", d.GRPC.GracefulTimeout)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", d.Cache.Addr)
	v.SetDefault("cache.username", "")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.prefix", d.Cache.Prefix)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.pool_size", 0)
	v.SetDefault("cache.dial_timeout", 0)
	v.SetDefault("cache.read_timeout", 0)
	v.SetDefault("cache.write_timeout", 0)
	v.SetDefault("cache.tls_enabled", false)
}

// Load reads the YAML file at configPath, merges any TOXPRED_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.  An empty configPath is equivalent to LoadFromEnv.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if stderrors.As(err, &notFound) || stderrors.Is(err, fs.ErrNotExist) {
			return nil, ErrConfigFileNotFound.WithDetail(configPath).WithCause(err)
		}
		return nil, ErrConfigParseError.WithDetail(configPath).WithCause(err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from TOXPRED_* environment variables,
// with no config file required.
//
//	TOXPRED_<SECTION>_<FIELD>   e.g.  TOXPRED_ARTIFACTS_PATH, TOXPRED_EVENTS_ENABLED
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "config: failed to unmarshal configuration")
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "config: validation failed")
	}
	return cfg, nil
}

// MustLoad is a convenience wrapper around Load that panics on any error.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
