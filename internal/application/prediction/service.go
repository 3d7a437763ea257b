// Package prediction provides the application service that turns a raw
// SMILES string and exposure metadata into a toxicity prediction with an
// applicability-domain verdict.
package prediction

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/ToxPredict/internal/domain/applicability"
	"github.com/turtacn/ToxPredict/internal/domain/exposure"
	"github.com/turtacn/ToxPredict/internal/domain/features"
	"github.com/turtacn/ToxPredict/internal/domain/molecule"
	"github.com/turtacn/ToxPredict/internal/infrastructure/artifacts"
	kafkainfra "github.com/turtacn/ToxPredict/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ToxPredict/pkg/errors"
)

// Service defines the prediction operations exposed to the HTTP and CLI layers.
type Service interface {
	// Predict runs the full pipeline for one request.
	Predict(ctx context.Context, req *Request) (*Result, error)

	// Options returns the allowed categorical values per field.
	Options(ctx context.Context) (map[string][]string, error)

	// Ready reports whether a bundle is loaded.
	Ready() bool

	// Info describes the loaded bundle; nil in degraded mode.
	Info() *BundleInfo
}

// Request is one prediction request.  Inputs are keyed by the exposure.Key*
// constants and may hold numbers or strings.
type Request struct {
	SMILES    string
	Inputs    map[string]any
	RequestID string
}

// Result is the prediction outcome.  JSON keys match the legacy web API.
type Result struct {
	Prediction         float64 `json:"prediction"`
	ADStatus           string  `json:"ad_status"`
	ADMessage          string  `json:"ad_message"`
	Similarity         float64 `json:"similarity"`
	StandardizedSMILES string  `json:"standardized_smiles"`
}

// BundleInfo summarizes the served artifact bundle.
type BundleInfo struct {
	Version    string    `json:"version"`
	Source     string    `json:"source"`
	Features   int       `json:"features"`
	CorpusSize int       `json:"corpus_size"`
	Threshold  float64   `json:"threshold"`
	ModelTrees int       `json:"model_trees"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// MessageProducer abstracts the messaging system.
type MessageProducer interface {
	Publish(ctx context.Context, msg *kafkainfra.ProducerMessage) error
}

// ServiceConfig holds the initialization parameters for the service.
type ServiceConfig struct {
	EventTopic  string
	EventSource string

	// Cache is optional.  A zero CacheTTL uses the cache default.
	Cache    ResultCache
	CacheTTL time.Duration
}

// ErrModelNotLoaded is returned by every operation in degraded mode.
var ErrModelNotLoaded = errors.New(errors.ErrCodeModelNotLoaded, "Model not loaded")

type serviceImpl struct {
	bundle       *artifacts.Bundle
	standardizer *molecule.Standardizer
	validator    *applicability.Validator
	assembler    *features.Assembler
	producer     MessageProducer
	metrics      *prometheus.AppMetrics
	logger       logging.Logger
	cfg          ServiceConfig
	cacheTag     string
}

// NewService constructs the prediction service.  A nil bundle yields a
// degraded service whose Predict and Options report ErrModelNotLoaded.
// producer and metrics are optional.
func NewService(
	bundle *artifacts.Bundle,
	standardizer *molecule.Standardizer,
	producer MessageProducer,
	metrics *prometheus.AppMetrics,
	logger logging.Logger,
	cfg ServiceConfig,
) Service {
	if standardizer == nil {
		standardizer = molecule.NewStandardizer()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.EventTopic == "" {
		cfg.EventTopic = kafkainfra.TopicPredictionCompleted
	}
	if cfg.EventSource == "" {
		cfg.EventSource = "toxpredict"
	}
	s := &serviceImpl{
		bundle:       bundle,
		standardizer: standardizer,
		producer:     producer,
		metrics:      metrics,
		logger:       logger.Named("prediction"),
		cfg:          cfg,
	}
	if bundle != nil && bundle.Artifacts != nil && bundle.Corpus != nil {
		s.validator = applicability.NewValidator(bundle.Corpus)
		s.assembler = features.NewAssembler(bundle.Artifacts)
		s.cacheTag = fmt.Sprintf("%s@%g", bundle.Version, bundle.Corpus.Threshold())
	}
	return s
}

func (s *serviceImpl) Ready() bool { return s.assembler != nil }

func (s *serviceImpl) Info() *BundleInfo {
	if !s.Ready() {
		return nil
	}
	info := &BundleInfo{
		Version:    s.bundle.Version,
		Source:     s.bundle.Source,
		Features:   s.bundle.Artifacts.Dim(),
		CorpusSize: s.bundle.Corpus.Len(),
		Threshold:  s.bundle.Corpus.Threshold(),
		LoadedAt:   s.bundle.LoadedAt,
	}
	if s.bundle.Model != nil {
		info.ModelTrees = s.bundle.Model.NumTrees()
	}
	return info
}

func (s *serviceImpl) Options(_ context.Context) (map[string][]string, error) {
	if !s.Ready() {
		return nil, ErrModelNotLoaded
	}
	return s.bundle.Artifacts.UniqueOptions(), nil
}

// Predict validates inputs, standardizes the structure once, evaluates the
// applicability domain and feeds the assembled vector to the predictor.  An
// applicability warning never blocks the prediction.
func (s *serviceImpl) Predict(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()
	res, err := s.predict(ctx, req)
	if err != nil {
		prometheus.RecordPredictionFailure(s.metrics, errors.GetCode(err).String())
		return nil, err
	}
	elapsed := time.Since(start)
	prometheus.RecordPrediction(s.metrics, res.ADStatus, res.Prediction, elapsed)
	return res, nil
}

func (s *serviceImpl) predict(ctx context.Context, req *Request) (*Result, error) {
	if !s.Ready() {
		return nil, ErrModelNotLoaded
	}
	if req == nil {
		return nil, errors.New(errors.ErrCodeBadRequest, "request is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "request cancelled")
	}
	log := s.logger.WithContext(ctx)
	start := time.Now()

	meta, err := exposure.Build(req.Inputs)
	if err != nil {
		log.Debug("Rejected numeric inputs", logging.Err(err))
		return nil, err
	}

	t := time.Now()
	std := s.standardizer.StandardizeResult(req.SMILES)
	prometheus.RecordPredictionStage(s.metrics, prometheus.StageStandardize, time.Since(t))
	if !std.OK() {
		log.Debug("Standardization failed", logging.String("smiles", req.SMILES), logging.Err(std.Err))
		return nil, errors.New(errors.ErrCodeMoleculeInvalidSMILES, "Invalid SMILES").WithCause(std.Err)
	}

	key := cacheKey(s.cacheTag, std.SMILES, meta)
	if res, ok := s.cached(ctx, key); ok {
		log.Debug("Served prediction from cache", logging.String("smiles", std.SMILES))
		s.publish(ctx, req, meta, res, time.Since(start))
		return res, nil
	}

	t = time.Now()
	fp := molecule.EncodeMACCS(std.Molecule)
	verdict := s.validator.EvaluateFingerprint(fp, meta)
	prometheus.RecordPredictionStage(s.metrics, prometheus.StageApplicability, time.Since(t))

	t = time.Now()
	vec, err := s.assembler.AssembleFingerprint(fp, meta)
	prometheus.RecordPredictionStage(s.metrics, prometheus.StageAssemble, time.Since(t))
	if err != nil {
		return nil, err
	}

	t = time.Now()
	value, err := s.bundle.Artifacts.Predictor().Predict(vec)
	prometheus.RecordPredictionStage(s.metrics, prometheus.StageInference, time.Since(t))
	if err != nil {
		log.Error("Predictor failed", logging.Int("dim", len(vec)), logging.Err(err))
		return nil, errors.Wrap(err, errors.ErrCodeAIInferenceFailed, "inference failed")
	}

	res := &Result{
		Prediction:         value,
		ADStatus:           verdict.Status(),
		ADMessage:          verdict.Reason,
		Similarity:         verdict.MaxSimilarity,
		StandardizedSMILES: std.SMILES,
	}
	if !verdict.Valid {
		log.Info("Prediction outside applicability domain",
			logging.String("smiles", std.SMILES), logging.String("reason", verdict.Reason))
	}
	s.store(ctx, key, res)
	s.publish(ctx, req, meta, res, time.Since(start))
	return res, nil
}

// publish emits a prediction.completed event.  Failures are logged only.
func (s *serviceImpl) publish(ctx context.Context, req *Request, meta exposure.Record, res *Result, elapsed time.Duration) {
	if s.producer == nil {
		return
	}
	payload := kafkainfra.PredictionCompletedPayload{
		RequestID:          req.RequestID,
		InputSMILES:        req.SMILES,
		StandardizedSMILES: res.StandardizedSMILES,
		Prediction:         res.Prediction,
		ADStatus:           res.ADStatus,
		ADMessage:          res.ADMessage,
		Similarity:         res.Similarity,
		Numeric:            make(map[string]float64),
		Categorical:        make(map[string]string),
		BundleVersion:      s.bundle.Version,
		DurationMs:         float64(elapsed.Microseconds()) / 1000,
	}
	for _, b := range exposure.Bindings {
		v, ok := meta.Value(b.Field)
		if !ok {
			continue
		}
		if f, isNum := v.(float64); isNum && b.Numeric {
			payload.Numeric[b.Field] = f
			continue
		}
		payload.Categorical[b.Field] = exposure.Format(v)
	}

	env, err := kafkainfra.NewEventEnvelope(kafkainfra.EventTypePredictionCompleted, s.cfg.EventSource, payload)
	if err == nil {
		env.TraceID = req.RequestID
		var msg *kafkainfra.ProducerMessage
		if msg, err = env.ToMessage(s.cfg.EventTopic, req.RequestID); err == nil {
			err = s.producer.Publish(ctx, msg)
		}
	}
	prometheus.RecordEventPublish(s.metrics, s.cfg.EventTopic, err)
	if err != nil {
		s.logger.Warn("Failed to publish prediction event",
			logging.String("topic", s.cfg.EventTopic), logging.String("request_id", req.RequestID), logging.Err(err))
	}
}

//Personal.AI order the ending
