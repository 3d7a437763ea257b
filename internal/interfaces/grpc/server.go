// Package grpc exposes the standard gRPC health protocol for the prediction
// server so that gRPC-native load balancers and orchestrators can probe it.
//
// Two services are reported:
//   - "" (the whole server) is SERVING while the process runs, like /healthz.
//   - ReadinessService follows the same component checks as /readyz and is
//     refreshed on a fixed interval.
package grpc

import (
	"context"
	"fmt"
	"net"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/turtacn/ToxPredict/internal/config"
	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ToxPredict/pkg/errors"
)

// ReadinessService is the health service name whose status mirrors /readyz.
const ReadinessService = "toxpredict.readiness"

const (
	defaultGracefulTimeout   = 10 * time.Second
	defaultReadinessInterval = 10 * time.Second
)

var defaultKeepaliveParams = keepalive.ServerParameters{
	MaxConnectionIdle:     15 * time.Minute,
	MaxConnectionAge:      30 * time.Minute,
	MaxConnectionAgeGrace: 5 * time.Second,
	Time:                  5 * time.Minute,
	Timeout:               1 * time.Second,
}

var defaultKeepalivePolicy = keepalive.EnforcementPolicy{
	MinTime:             5 * time.Second,
	PermitWithoutStream: true,
}

// CheckFunc reports readiness; a nil error means ready.
type CheckFunc func(ctx context.Context) error

// Option configures the gRPC Server.
type Option func(*serverOptions)

type serverOptions struct {
	logger            logging.Logger
	metrics           *prometheus.AppMetrics
	gracefulTimeout   time.Duration
	readiness         CheckFunc
	readinessInterval time.Duration
}

func WithLogger(l logging.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(o *serverOptions) {
		o.metrics = m
	}
}

// WithGracefulTimeout bounds how long Stop waits for in-flight calls.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *serverOptions) {
		if d > 0 {
			o.gracefulTimeout = d
		}
	}
}

// WithReadiness sets the check behind ReadinessService and how often it runs.
// Without it ReadinessService is always SERVING.
func WithReadiness(check CheckFunc, interval time.Duration) Option {
	return func(o *serverOptions) {
		o.readiness = check
		if interval > 0 {
			o.readinessInterval = interval
		}
	}
}

// Server wraps a grpc.Server that serves the health protocol.
type Server struct {
	grpcServer   *grpc.Server
	listener     net.Listener
	opts         *serverOptions
	healthServer *health.Server

	mu        sync.Mutex
	started   bool
	stopped   bool
	ready     healthpb.HealthCheckResponse_ServingStatus
	stopWatch chan struct{}
	watchDone chan struct{}
}

// NewServer binds the listener described by cfg and registers the health
// service, plus reflection when cfg.Reflection is set.
func NewServer(cfg config.GRPCConfig, opts ...Option) (*Server, error) {
	sopts := &serverOptions{
		logger:            logging.NewNopLogger(),
		gracefulTimeout:   defaultGracefulTimeout,
		readinessInterval: defaultReadinessInterval,
	}
	for _, o := range opts {
		o(sopts)
	}

	addr := cfg.Addr()
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to listen on "+addr)
	}

	gs := grpc.NewServer(
		grpc.KeepaliveParams(defaultKeepaliveParams),
		grpc.KeepaliveEnforcementPolicy(defaultKeepalivePolicy),
		grpc.ChainUnaryInterceptor(
			recoveryUnaryInterceptor(sopts.logger),
			loggingUnaryInterceptor(sopts.logger),
			metricsUnaryInterceptor(sopts.metrics),
		),
		grpc.ChainStreamInterceptor(
			recoveryStreamInterceptor(sopts.logger),
			loggingStreamInterceptor(sopts.logger),
			metricsStreamInterceptor(sopts.metrics),
		),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	ready := healthpb.HealthCheckResponse_SERVING
	if sopts.readiness != nil {
		ready = healthpb.HealthCheckResponse_NOT_SERVING
	}
	hs.SetServingStatus(ReadinessService, ready)

	if cfg.Reflection {
		reflection.Register(gs)
		sopts.logger.Info("gRPC reflection service registered")
	}

	return &Server{
		grpcServer:   gs,
		listener:     lis,
		opts:         sopts,
		healthServer: hs,
		ready:        ready,
		stopWatch:    make(chan struct{}),
		watchDone:    make(chan struct{}),
	}, nil
}

// Start runs the first readiness check and serves until Stop is called.  It
// returns nil after a Stop.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New(errors.ErrCodeInternal, "gRPC server already started")
	}
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	if s.opts.readiness != nil {
		s.probe()
		go s.watchReadiness()
	} else {
		close(s.watchDone)
	}

	s.opts.logger.Info("gRPC server starting", logging.String("addr", s.Addr()))
	if err := s.grpcServer.Serve(s.listener); err != nil && err != grpc.ErrServerStopped {
		return errors.Wrap(err, errors.ErrCodeInternal, "gRPC server failed")
	}
	return nil
}

func (s *Server) watchReadiness() {
	defer close(s.watchDone)
	ticker := time.NewTicker(s.opts.readinessInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopWatch:
			return
		case <-ticker.C:
			s.probe()
		}
	}
}

func (s *Server) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.readinessInterval)
	defer cancel()

	err := s.opts.readiness(ctx)
	next := healthpb.HealthCheckResponse_SERVING
	if err != nil {
		next = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.mu.Lock()
	changed := next != s.ready
	s.ready = next
	s.mu.Unlock()

	if changed {
		if err != nil {
			s.opts.logger.Warn("gRPC readiness lost", logging.Err(err))
		} else {
			s.opts.logger.Info("gRPC readiness restored")
		}
	}
	s.healthServer.SetServingStatus(ReadinessService, next)
}

// Stop marks every service NOT_SERVING and drains in-flight calls.  Calls
// still running after the graceful timeout, or after ctx ends, are cut off.
// A server that never started only releases its listener.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	started := s.started
	s.mu.Unlock()

	if !started {
		return s.listener.Close()
	}

	s.opts.logger.Info("gRPC server stopping")
	close(s.stopWatch)
	<-s.watchDone
	s.healthServer.Shutdown()

	gracefulCtx, cancel := context.WithTimeout(ctx, s.opts.gracefulTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.opts.logger.Info("gRPC server stopped gracefully")
	case <-gracefulCtx.Done():
		s.opts.logger.Warn("gRPC graceful stop timed out, forcing stop")
		s.grpcServer.Stop()
	}
	return nil
}

// Addr returns the bound address, which carries the OS-assigned port when
// the configured port is 0.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// ─────────────────────────────────────────────────────────────────────────────
// Interceptors
// ─────────────────────────────────────────────────────────────────────────────

func recoveryUnaryInterceptor(logger logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("gRPC panic recovered",
					logging.String("method", info.FullMethod),
					logging.String("panic", fmt.Sprintf("%v", r)),
					logging.String("stack", string(debug.Stack())))
				err = status.Errorf(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}

func recoveryStreamInterceptor(logger logging.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("gRPC stream panic recovered",
					logging.String("method", info.FullMethod),
					logging.String("panic", fmt.Sprintf("%v", r)),
					logging.String("stack", string(debug.Stack())))
				err = status.Errorf(codes.Internal, "internal server error")
			}
		}()
		return handler(srv, ss)
	}
}

// isHealthCheck reports whether method belongs to the health service.  Probes
// are frequent, so they are logged at debug level only.
func isHealthCheck(method string) bool {
	return strings.HasPrefix(method, "/grpc.health.v1.Health/")
}

func logCall(logger logging.Logger, kind, method string, start time.Time, err error) {
	log := logger.Info
	if isHealthCheck(method) {
		log = logger.Debug
	}
	log("gRPC "+kind,
		logging.String("method", method),
		logging.Int64("duration_ms", time.Since(start).Milliseconds()),
		logging.String("code", status.Code(err).String()))
}

func loggingUnaryInterceptor(logger logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logCall(logger, "request", info.FullMethod, start, err)
		return resp, err
	}
}

func loggingStreamInterceptor(logger logging.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		logCall(logger, "stream", info.FullMethod, start, err)
		return err
	}
}

func metricsUnaryInterceptor(m *prometheus.AppMetrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if m == nil {
			return handler(ctx, req)
		}
		start := time.Now()
		resp, err := handler(ctx, req)
		service, method := splitMethodName(info.FullMethod)
		prometheus.RecordGRPCRequest(m, service, method, status.Code(err).String(), time.Since(start))
		return resp, err
	}
}

func metricsStreamInterceptor(m *prometheus.AppMetrics) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if m == nil {
			return handler(srv, ss)
		}
		start := time.Now()
		err := handler(srv, ss)
		service, method := splitMethodName(info.FullMethod)
		prometheus.RecordGRPCRequest(m, service, method, status.Code(err).String(), time.Since(start))
		return err
	}
}

// splitMethodName splits "/package.Service/Method" into ("package.Service", "Method").
func splitMethodName(fullMethod string) (string, string) {
	fullMethod = strings.TrimPrefix(fullMethod, "/")
	idx := strings.LastIndex(fullMethod, "/")
	if idx < 0 {
		return "unknown", fullMethod
	}
	return fullMethod[:idx], fullMethod[idx+1:]
}

//Personal.AI order the ending
