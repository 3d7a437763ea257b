package artifacts

import (
	"context"
	"fmt"
	"path"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/ToxPredict/internal/domain/applicability"
	"github.com/turtacn/ToxPredict/internal/domain/features"
	"github.com/turtacn/ToxPredict/internal/domain/molecule"
	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ToxPredict/internal/infrastructure/storage/minio"
	"github.com/turtacn/ToxPredict/internal/intelligence/regressor"
	"github.com/turtacn/ToxPredict/pkg/errors"
)

// Bundle is the loaded, validated and immutable model context shared by
// every request.
type Bundle struct {
	Artifacts *features.ModelArtifacts
	Corpus    *applicability.ReferenceCorpus
	Model     *regressor.Model
	Version   string
	Source    string
	LoadedAt  time.Time
}

// Loader assembles a Bundle from a Source.
type Loader struct {
	source       Source
	logger       logging.Logger
	workers      int
	threshold    float64
	standardizer *molecule.Standardizer
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFingerprintWorkers bounds the goroutines used to fingerprint training
// SMILES.  Values below 1 select GOMAXPROCS.
func WithFingerprintWorkers(n int) LoaderOption {
	return func(l *Loader) { l.workers = n }
}

// WithThreshold overrides the manifest's similarity threshold when t > 0.
func WithThreshold(t float64) LoaderOption {
	return func(l *Loader) { l.threshold = t }
}

// WithStandardizer sets the standardizer applied to training SMILES.
func WithStandardizer(s *molecule.Standardizer) LoaderOption {
	return func(l *Loader) { l.standardizer = s }
}

// NewLoader returns a Loader reading bundles from src. Reference
// fingerprinting defaults to GOMAXPROCS workers and the default standardizer.
func NewLoader(src Source, log logging.Logger, opts ...LoaderOption) *Loader {
	l := &Loader{source: src, logger: log}
	for _, o := range opts {
		o(l)
	}
	if l.workers < 1 {
		l.workers = runtime.GOMAXPROCS(0)
	}
	if l.standardizer == nil {
		l.standardizer = molecule.NewStandardizer()
	}
	return l
}

// Load reads the manifest, then decodes the model and builds the reference
// corpus concurrently.  Any inconsistency fails the whole load.
func (l *Loader) Load(ctx context.Context, manifestName string) (*Bundle, error) {
	if manifestName == "" {
		manifestName = DefaultManifestName
	}
	start := time.Now()
	l.logger.Info("Loading artifact bundle", logging.String("source", l.source.String()),
		logging.String("manifest", manifestName))

	data, err := l.source.Read(ctx, manifestName)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBundleUnreachable, "read manifest")
	}
	m, err := DecodeManifest(manifestName, data)
	if err != nil {
		return nil, err
	}

	var (
		model  *regressor.Model
		corpus *applicability.ReferenceCorpus
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		model, err = l.loadModel(gctx, manifestName, m.Model)
		return err
	})
	g.Go(func() error {
		var err error
		corpus, err = l.buildCorpus(gctx, m.Applicability)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	arts, err := buildArtifacts(m, model)
	if err != nil {
		return nil, err
	}

	b := &Bundle{
		Artifacts: arts,
		Corpus:    corpus,
		Model:     model,
		Version:   m.Version,
		Source:    l.source.String(),
		LoadedAt:  time.Now(),
	}
	l.logger.Info("Artifact bundle loaded",
		logging.String("version", b.Version),
		logging.Int("train_columns", len(m.TrainColumns)),
		logging.Int("feature_dim", arts.Dim()),
		logging.Int("trees", model.NumTrees()),
		logging.Int("reference_fingerprints", corpus.Len()),
		logging.Float64("threshold", corpus.Threshold()),
		logging.Duration("elapsed", time.Since(start)))
	return b, nil
}

func (l *Loader) loadModel(ctx context.Context, manifestName string, spec ModelSpec) (*regressor.Model, error) {
	switch spec.Format {
	case "", regressor.FormatXGBoostJSON:
	default:
		return nil, errors.Newf(errors.ErrCodeBundleInvalid, "unsupported model format %q", spec.Format)
	}
	if spec.Path == "" {
		return nil, errors.New(errors.ErrCodeBundleInvalid, "model.path is required")
	}
	data, err := l.source.Read(ctx, resolve(manifestName, spec.Path))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBundleUnreachable, "read model")
	}
	model, err := regressor.Decode(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBundleInvalid, "decode model")
	}
	return model, nil
}

func (l *Loader) buildCorpus(ctx context.Context, spec ApplicabilitySpec) (*applicability.ReferenceCorpus, error) {
	fps := make([]molecule.Fingerprint, 0, len(spec.TrainFingerprints)+len(spec.TrainSMILES))
	for i, s := range spec.TrainFingerprints {
		fp, err := molecule.ParseFingerprint(s)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeBundleInvalid, fmt.Sprintf("train_fingerprints[%d]", i))
		}
		fps = append(fps, fp)
	}

	if len(spec.TrainSMILES) > 0 {
		computed := make([]*molecule.Fingerprint, len(spec.TrainSMILES))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(l.workers)
		for i, smi := range spec.TrainSMILES {
			i, smi := i, smi
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				mol := l.standardizer.Standardize(smi)
				if mol == nil {
					return nil
				}
				fp := molecule.EncodeMACCS(mol)
				computed[i] = &fp
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		skipped := 0
		for i, fp := range computed {
			if fp == nil {
				skipped++
				l.logger.Warn("Skipping unparseable training SMILES",
					logging.Int("index", i), logging.String("smiles", spec.TrainSMILES[i]))
				continue
			}
			fps = append(fps, *fp)
		}
		if skipped > 0 {
			l.logger.Warn("Training SMILES skipped", logging.Int("skipped", skipped),
				logging.Int("total", len(spec.TrainSMILES)))
		}
	}

	threshold := applicability.DefaultThreshold
	if spec.Threshold != nil {
		threshold = *spec.Threshold
	}
	if l.threshold > 0 {
		threshold = l.threshold
	}
	return applicability.NewReferenceCorpus(threshold, spec.Ranges, spec.Categories, fps)
}

func buildArtifacts(m *Manifest, model *regressor.Model) (*features.ModelArtifacts, error) {
	kind, err := features.ParseScalerKind(m.Scaler.Kind)
	if err != nil {
		return nil, err
	}
	scaler, err := features.NewScaler(kind, m.Scaler.Offset(), m.Scaler.Scale)
	if err != nil {
		return nil, err
	}
	if len(m.FPMask) != molecule.MACCSNumBits {
		return nil, errors.Newf(errors.ErrCodeBundleInvalid, "fp_mask has %d entries, want %d",
			len(m.FPMask), molecule.MACCSNumBits)
	}
	var mask [molecule.MACCSNumBits]bool
	copy(mask[:], m.FPMask)

	return features.NewModelArtifacts(features.Config{
		TrainColumns:      m.TrainColumns,
		FeatureNames:      m.FeatureNames,
		NumIndices:        m.NumIndices,
		Scaler:            scaler,
		FPMask:            mask,
		CategoricalFields: m.CategoricalFields,
		UniqueOptions:     m.UniqueOptions,
		Predictor:         model,
	})
}

// resolve interprets p relative to the manifest's directory.
func resolve(manifestName, p string) string {
	if path.IsAbs(p) {
		return p
	}
	return path.Join(path.Dir(manifestName), p)
}

// Publish copies a bundle's manifest and model from src into object storage
// under prefix and returns the keys written.
func Publish(ctx context.Context, src Source, manifestName string, repo minio.ObjectStorageRepository, bucket, prefix string) ([]string, error) {
	if manifestName == "" {
		manifestName = DefaultManifestName
	}
	data, err := src.Read(ctx, manifestName)
	if err != nil {
		return nil, err
	}
	m, err := DecodeManifest(manifestName, data)
	if err != nil {
		return nil, err
	}
	if m.Model.Path == "" || path.IsAbs(m.Model.Path) {
		return nil, errors.New(errors.ErrCodeBundleInvalid, "model.path must be relative to publish a bundle")
	}

	dst := ObjectSource{Repo: repo, Bucket: bucket, Prefix: prefix}
	files := []string{path.Base(manifestName), resolve(path.Base(manifestName), m.Model.Path)}
	var keys []string
	for i, name := range files {
		body := data
		if i > 0 {
			if body, err = src.Read(ctx, resolve(manifestName, m.Model.Path)); err != nil {
				return nil, err
			}
		}
		key := dst.key(name)
		if _, err := repo.Upload(ctx, &minio.UploadRequest{Bucket: bucket, ObjectKey: key, Data: body, ContentType: contentType(name)}); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func contentType(name string) string {
	switch path.Ext(name) {
	case ".json":
		return "application/json"
	case ".yaml", ".yml":
		return "application/yaml"
	}
	return "application/octet-stream"
}

//Personal.AI order the ending
