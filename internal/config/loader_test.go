package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ToxPredict/pkg/errors"
)

const validConfigYAML = `
server:
  port: 9000
  read_timeout: 5s
log:
  level: debug
  format: console
artifacts:
  source: minio
  path: pfas/v1
  manifest: manifest.yaml
  fingerprint_workers: 4
minio:
  endpoint: localhost:9000
  access_key: key
  secret_key: secret
  bucket: models
standardizer:
  max_iterations: 5
  max_smiles_length: 400
applicability:
  threshold: 0.7
events:
  enabled: true
  brokers: ["localhost:9092"]
cache:
  enabled: true
  addr: redis:6379
  ttl: 10m
grpc:
  enabled: true
  reflection: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DefaultServerWriteTimeout, cfg.Server.WriteTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, SourceMinIO, cfg.Artifacts.Source)
	assert.Equal(t, "pfas/v1", cfg.Artifacts.Path)
	assert.Equal(t, "manifest.yaml", cfg.Artifacts.Manifest)
	assert.Equal(t, 4, cfg.Artifacts.FingerprintWorkers)
	assert.Equal(t, "models", cfg.MinIO.Bucket)
	assert.Equal(t, 5, cfg.Standardizer.MaxIterations)
	assert.Equal(t, 400, cfg.Standardizer.MaxSMILESLength)
	assert.InDelta(t, 0.7, cfg.Applicability.Threshold, 1e-12)
	assert.True(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.Events.Enabled)
	assert.True(t, cfg.Events.Async)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Events.Brokers)
	assert.Equal(t, DefaultEventsTopic, cfg.Events.Topic)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "redis:6379", cfg.Cache.Addr)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, DefaultCachePrefix, cfg.Cache.Prefix)
	assert.True(t, cfg.GRPC.Enabled)
	assert.True(t, cfg.GRPC.Reflection)
	assert.Equal(t, DefaultGRPCPort, cfg.GRPC.Port)
	assert.Equal(t, ":9090", cfg.GRPC.Addr())
	assert.Equal(t, DefaultGRPCGracefulTimeout, cfg.GRPC.GracefulTimeout)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TOXPRED_SERVER_PORT", "7000")
	t.Setenv("TOXPRED_STANDARDIZER_MAX_ITERATIONS", "20")

	cfg, err := Load(writeConfig(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Standardizer.MaxIterations)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TOXPRED_ARTIFACTS_PATH", "/srv/bundle")
	t.Setenv("TOXPRED_APPLICABILITY_THRESHOLD", "0.5")
	t.Setenv("TOXPRED_METRICS_ENABLED", "false")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, SourceFile, cfg.Artifacts.Source)
	assert.Equal(t, "/srv/bundle", cfg.Artifacts.Path)
	assert.InDelta(t, 0.5, cfg.Applicability.Threshold, 1e-12)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}

func TestLoad_EmptyPathUsesEnv(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultArtifactsPath, cfg.Artifacts.Path)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, "config file not found", errors.MessageOf(err))
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))
}

func TestLoad_ParseError(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [port"))
	require.Error(t, err)
	assert.Equal(t, "config file could not be parsed", errors.MessageOf(err))
}

func TestLoad_ValidationError(t *testing.T) {
	_, err := Load(writeConfig(t, "log:\n  level: loud\n"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))
	assert.Contains(t, err.Error(), "validation failed")
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "missing.yaml")) })
}

//Personal.AI order the ending
