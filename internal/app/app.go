// Package app wires configuration, infrastructure and services into a
// runnable prediction server.  Both the apiserver binary and the CLI serve
// command build their process through New.
package app

import (
	"context"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/ToxPredict/internal/application/molecule"
	"github.com/turtacn/ToxPredict/internal/application/prediction"
	"github.com/turtacn/ToxPredict/internal/config"
	domainMol "github.com/turtacn/ToxPredict/internal/domain/molecule"
	"github.com/turtacn/ToxPredict/internal/infrastructure/artifacts"
	"github.com/turtacn/ToxPredict/internal/infrastructure/database/redis"
	kafkainfra "github.com/turtacn/ToxPredict/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ToxPredict/internal/infrastructure/storage/minio"
	grpcserver "github.com/turtacn/ToxPredict/internal/interfaces/grpc"
	httpserver "github.com/turtacn/ToxPredict/internal/interfaces/http"
	"github.com/turtacn/ToxPredict/internal/interfaces/http/handlers"
	"github.com/turtacn/ToxPredict/internal/interfaces/http/middleware"
	"github.com/turtacn/ToxPredict/pkg/errors"
)

// Version is reported by the liveness probe.  Binaries overwrite it from
// their ldflags-injected build info.
var Version = "dev"

// App holds every long-lived component of a server process.
type App struct {
	Config     *config.Config
	Logger     logging.Logger
	Collector  prometheus.MetricsCollector
	Metrics    *prometheus.AppMetrics
	Bundle     *artifacts.Bundle
	Prediction prediction.Service
	Molecule   molecule.Service
	Handler    http.Handler
	Server     *httpserver.Server
	GRPC       *grpcserver.Server

	closers []closer
}

type closer struct {
	name string
	fn   func() error
}

// ─────────────────────────────────────────────────────────────────────────────
// Building blocks shared with the CLI
// ─────────────────────────────────────────────────────────────────────────────

// NewStandardizer builds the standardizer described by cfg.
func NewStandardizer(cfg *config.Config) *domainMol.Standardizer {
	return domainMol.NewStandardizer(
		domainMol.WithMaxIterations(cfg.Standardizer.MaxIterations),
		domainMol.WithMaxSMILESLength(cfg.Standardizer.MaxSMILESLength),
	)
}

// NewMinIOClient connects to the configured object store.
func NewMinIOClient(cfg *config.Config, logger logging.Logger) (*minio.MinIOClient, error) {
	return minio.NewMinIOClient(&minio.MinIOConfig{
		Endpoint:        cfg.MinIO.Endpoint,
		AccessKeyID:     cfg.MinIO.AccessKey,
		SecretAccessKey: cfg.MinIO.SecretKey,
		UseSSL:          cfg.MinIO.UseSSL,
		Region:          cfg.MinIO.Region,
		Bucket:          cfg.MinIO.Bucket,
		MaxObjectSize:   cfg.MinIO.MaxObjectSize,
		ConnectTimeout:  cfg.MinIO.ConnectTimeout,
	}, logger.Named("minio"))
}

// NewSource returns the bundle source selected by cfg.Artifacts.Source.  The
// MinIO client is returned as well so callers can close it and probe it; it
// is nil for the file source.
func NewSource(cfg *config.Config, logger logging.Logger) (artifacts.Source, *minio.MinIOClient, error) {
	switch cfg.Artifacts.Source {
	case config.SourceFile:
		return artifacts.FileSource{Dir: cfg.Artifacts.Path}, nil, nil
	case config.SourceMinIO:
		client, err := NewMinIOClient(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		src := artifacts.ObjectSource{
			Repo:   minio.NewMinIORepository(client, logger.Named("minio")),
			Bucket: client.Bucket(),
			Prefix: cfg.Artifacts.Path,
		}
		return src, client, nil
	default:
		return nil, nil, errors.New(errors.ErrCodeConfigInvalid, "unknown artifacts source").WithDetail(cfg.Artifacts.Source)
	}
}

// LoadBundle loads the manifest named in cfg from src and records the
// attempt in metrics, which may be nil.
func LoadBundle(ctx context.Context, cfg *config.Config, src artifacts.Source, std *domainMol.Standardizer, logger logging.Logger, metrics *prometheus.AppMetrics) (*artifacts.Bundle, error) {
	loader := artifacts.NewLoader(src, logger.Named("artifacts"),
		artifacts.WithFingerprintWorkers(cfg.Artifacts.FingerprintWorkers),
		artifacts.WithThreshold(cfg.Applicability.Threshold),
		artifacts.WithStandardizer(std),
	)
	start := time.Now()
	bundle, err := loader.Load(ctx, cfg.Artifacts.Manifest)
	if err != nil {
		prometheus.RecordBundleLoad(metrics, "", 0, time.Since(start), err)
		return nil, err
	}
	prometheus.RecordBundleLoad(metrics, bundle.Version, bundle.Corpus.Len(), time.Since(start), nil)
	return bundle, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Assembly
// ─────────────────────────────────────────────────────────────────────────────

// New builds the server process.  A bundle that fails to load is fatal only
// when cfg.Artifacts.Required is set; otherwise the process starts degraded
// and every prediction reports that the model is not loaded.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "configuration is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	a := &App{Config: cfg, Logger: logger}

	if err := a.initMetrics(); err != nil {
		return nil, err
	}

	std := NewStandardizer(cfg)
	var checkers []handlers.HealthChecker

	src, minioClient, err := NewSource(cfg, logger)
	if err != nil {
		if cfg.Artifacts.Required {
			return nil, err
		}
		logger.Warn("Artifact source unavailable", logging.Err(err))
	}
	if minioClient != nil {
		a.addCloser("minio", minioClient.Close)
		checkers = append(checkers, handlers.CheckerFunc{CheckName: "minio", Fn: func(ctx context.Context) error {
			_, err := minioClient.HealthCheck(ctx)
			return err
		}})
	}

	if src != nil {
		a.Bundle, err = LoadBundle(ctx, cfg, src, std, logger, a.Metrics)
		if err != nil {
			if cfg.Artifacts.Required {
				a.Close()
				return nil, err
			}
			logger.Warn("Starting in degraded mode", logging.Err(err), logging.String("source", src.String()))
		}
	}

	var producer prediction.MessageProducer
	if cfg.Events.Enabled {
		p, err := a.initEvents(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		producer = p
		a.publishBundleLoaded(ctx, p)
	}

	svcCfg := prediction.ServiceConfig{
		EventTopic:  cfg.Events.Topic,
		EventSource: cfg.Events.Source,
		CacheTTL:    cfg.Cache.TTL,
	}
	if cfg.Cache.Enabled {
		if cache := a.initCache(); cache != nil {
			svcCfg.Cache = cache
			checkers = append(checkers, handlers.CheckerFunc{CheckName: "redis", Fn: cache.Ping})
		}
	}

	a.Prediction = prediction.NewService(a.Bundle, std, producer, a.Metrics, logger, svcCfg)
	a.Molecule = molecule.NewService(std, logger.Named("molecule"))

	checkers = append([]handlers.HealthChecker{handlers.ModelChecker(a.Prediction)}, checkers...)
	health := handlers.NewHealthHandler(Version, checkers...)
	routerCfg := httpserver.RouterConfig{
		PredictionHandler: handlers.NewPredictionHandler(a.Prediction, logger),
		MoleculeHandler:   handlers.NewMoleculeHandler(a.Molecule, logger),
		HealthHandler:     health,
		Logging:           middleware.DefaultLoggingConfig(),
		MaxBodySize:       cfg.Server.MaxBodySize,
		Logger:            logger,
		Metrics:           a.Metrics,
	}
	if cfg.Metrics.Enabled {
		routerCfg.MetricsCollector = a.Collector
		routerCfg.MetricsPath = cfg.Metrics.Path
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		cors := middleware.DefaultCORSConfig()
		cors.AllowedOrigins = cfg.Server.CORSOrigins
		routerCfg.CORS = &cors
	}
	if cfg.Server.RateLimitRPS > 0 {
		routerCfg.RateLimiter = middleware.NewTokenBucketLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, 0)
	}
	a.Handler = httpserver.NewRouter(routerCfg)
	a.Server = httpserver.NewServer(cfg.Server, a.Handler, logger.Named("server"))

	if cfg.GRPC.Enabled {
		srv, err := grpcserver.NewServer(cfg.GRPC,
			grpcserver.WithLogger(logger.Named("grpc")),
			grpcserver.WithMetrics(a.Metrics),
			grpcserver.WithReadiness(health.Check, cfg.GRPC.HealthInterval),
			grpcserver.WithGracefulTimeout(cfg.GRPC.GracefulTimeout),
		)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.GRPC = srv
		a.addCloser("grpc", func() error { return srv.Stop(context.Background()) })
	}

	logger.Info("Application initialized",
		logging.Bool("model_loaded", a.Prediction.Ready()),
		logging.Bool("events", cfg.Events.Enabled),
		logging.Bool("cache", cfg.Cache.Enabled),
		logging.Bool("metrics", cfg.Metrics.Enabled),
		logging.Bool("grpc", cfg.GRPC.Enabled),
		logging.String("addr", cfg.Server.Addr()))
	return a, nil
}

func (a *App) initMetrics() error {
	if !a.Config.Metrics.Enabled {
		a.Collector = prometheus.NewNoopCollector()
		a.Metrics = prometheus.NewAppMetrics(a.Collector)
		return nil
	}
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            a.Config.Metrics.Namespace,
		EnableProcessMetrics: a.Config.Metrics.ProcessMetrics,
		EnableGoMetrics:      a.Config.Metrics.ProcessMetrics,
	}, a.Logger.Named("metrics"))
	if err != nil {
		return err
	}
	a.Collector = collector
	a.Metrics = prometheus.NewAppMetrics(collector)
	return nil
}

func (a *App) initEvents(ctx context.Context) (*kafkainfra.Producer, error) {
	ev := a.Config.Events
	if ev.CreateTopics {
		a.ensureTopics(ctx)
	}

	log := a.Logger.Named("events")
	producer, err := kafkainfra.NewProducer(kafkainfra.ProducerConfig{
		Brokers:          ev.Brokers,
		Acks:             ev.Acks,
		BatchTimeout:     ev.BatchTimeout,
		CompressionCodec: ev.Compression,
		Async:            ev.Async,
		AsyncErrorHandler: func(err error, topic string, count int) {
			prometheus.RecordEventPublish(a.Metrics, topic, err)
			log.Warn("Async event delivery failed", logging.Err(err), logging.String("topic", topic),
				logging.Int("messages", count))
		},
	}, log)
	if err != nil {
		return nil, err
	}
	a.addCloser("kafka producer", producer.Close)
	return producer, nil
}

// initCache connects the prediction result cache.  An unreachable Redis
// disables caching instead of failing startup.
func (a *App) initCache() redis.Cache {
	c := a.Config.Cache
	log := a.Logger.Named("cache")
	client, err := redis.NewClient(&redis.RedisConfig{
		Addr:         c.Addr,
		Username:     c.Username,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
		TLSEnabled:   c.TLSEnabled,
	}, log)
	if err != nil {
		a.Logger.Warn("Prediction cache disabled", logging.Err(err))
		return nil
	}
	a.addCloser("redis", client.Close)
	return redis.NewRedisCache(client, log, redis.WithPrefix(c.Prefix), redis.WithDefaultTTL(c.TTL))
}

// ensureTopics provisions the configured topics.  Failures are logged only,
// since the brokers may auto-create topics or deny admin requests.
func (a *App) ensureTopics(ctx context.Context) {
	ev := a.Config.Events
	mgr, err := kafkainfra.NewTopicManager(ctx, ev.Brokers, a.Logger.Named("events"))
	if err != nil {
		a.Logger.Warn("Topic provisioning skipped", logging.Err(err))
		return
	}
	defer mgr.Close()

	topics := kafkainfra.DefaultTopics(ev.ReplicationFactor)
	for i := range topics {
		switch topics[i].Name {
		case kafkainfra.TopicPredictionCompleted:
			topics[i].Name = ev.Topic
		case kafkainfra.TopicBundleLoaded:
			topics[i].Name = ev.BundleTopic
		}
	}
	if err := mgr.EnsureTopics(ctx, topics); err != nil {
		a.Logger.Warn("Topic provisioning failed", logging.Err(err))
	}
}

func (a *App) publishBundleLoaded(ctx context.Context, producer prediction.MessageProducer) {
	if a.Bundle == nil {
		return
	}
	payload := kafkainfra.BundleLoadedPayload{
		Version:    a.Bundle.Version,
		Source:     a.Bundle.Source,
		Features:   a.Bundle.Artifacts.Dim(),
		CorpusSize: a.Bundle.Corpus.Len(),
		Threshold:  a.Bundle.Corpus.Threshold(),
		LoadedAt:   a.Bundle.LoadedAt,
	}
	if a.Bundle.Model != nil {
		payload.ModelTrees = a.Bundle.Model.NumTrees()
	}
	topic := a.Config.Events.BundleTopic
	env, err := kafkainfra.NewEventEnvelope(kafkainfra.EventTypeBundleLoaded, a.Config.Events.Source, payload)
	if err == nil {
		var msg *kafkainfra.ProducerMessage
		if msg, err = env.ToMessage(topic, a.Bundle.Version); err == nil {
			err = producer.Publish(ctx, msg)
		}
	}
	prometheus.RecordEventPublish(a.Metrics, topic, err)
	if err != nil {
		a.Logger.Warn("Failed to publish bundle event", logging.Err(err), logging.String("topic", topic))
	}
}

func (a *App) addCloser(name string, fn func() error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// ─────────────────────────────────────────────────────────────────────────────
// Lifecycle
// ─────────────────────────────────────────────────────────────────────────────

// Run listens on the configured address and serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", a.Server.Addr())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to listen on "+a.Server.Addr())
	}
	return a.Serve(ctx, l)
}

// Serve serves HTTP on l, and gRPC health when enabled, until ctx is
// cancelled or either server fails.  Both servers are then drained and every
// component is released.
func (a *App) Serve(ctx context.Context, l net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Server.Serve(l) })
	if a.GRPC != nil {
		g.Go(a.GRPC.Start)
	}
	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			a.Logger.Info("Shutdown requested")
		}
		var err error
		if a.GRPC != nil {
			err = a.GRPC.Stop(context.Background())
		}
		if serr := a.Server.Shutdown(context.Background()); serr != nil && err == nil {
			err = serr
		}
		return err
	})

	err := g.Wait()
	a.Close()
	return err
}

// Close releases components in reverse construction order.  It is safe to
// call more than once.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(); err != nil {
			a.Logger.Warn("Close failed", logging.String("component", c.name), logging.Err(err))
		}
	}
	a.closers = nil
}

//Personal.AI order the ending
