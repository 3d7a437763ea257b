package prediction

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/turtacn/ToxPredict/internal/domain/exposure"
	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ToxPredict/pkg/errors"
)

// ResultCache memoizes finished predictions.  Get reports a miss with an
// ErrCodeNotFound error; the Redis cache satisfies this interface.
type ResultCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// cacheKey identifies a prediction by bundle tag (version and similarity
// threshold), standardized structure and every exposure value in boundary
// order.
func cacheKey(tag, smiles string, meta exposure.Record) string {
	h := sha256.New()
	h.Write([]byte(tag))
	h.Write([]byte{0})
	h.Write([]byte(smiles))
	for _, b := range exposure.Bindings {
		h.Write([]byte{0})
		h.Write([]byte(b.Field))
		h.Write([]byte{'='})
		if v, ok := meta.Value(b.Field); ok {
			h.Write([]byte(exposure.Format(v)))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// cached looks key up.  Cache failures never fail a prediction; a value that
// cannot be decoded is evicted.
func (s *serviceImpl) cached(ctx context.Context, key string) (*Result, bool) {
	if s.cfg.Cache == nil {
		return nil, false
	}
	var res Result
	err := s.cfg.Cache.Get(ctx, key, &res)
	switch {
	case err == nil:
		prometheus.RecordCacheLookup(s.metrics, prometheus.CacheHit)
		return &res, true
	case errors.IsCode(err, errors.ErrCodeNotFound):
		prometheus.RecordCacheLookup(s.metrics, prometheus.CacheMiss)
	default:
		prometheus.RecordCacheLookup(s.metrics, prometheus.CacheError)
		s.logger.Warn("Prediction cache lookup failed", logging.Err(err))
		if errors.IsCode(err, errors.ErrCodeSerialization) {
			if derr := s.cfg.Cache.Delete(ctx, key); derr != nil {
				s.logger.Warn("Failed to evict corrupt cache entry", logging.Err(derr))
			}
		}
	}
	return nil, false
}

func (s *serviceImpl) store(ctx context.Context, key string, res *Result) {
	if s.cfg.Cache == nil {
		return
	}
	if err := s.cfg.Cache.Set(ctx, key, res, s.cfg.CacheTTL); err != nil {
		prometheus.RecordCacheLookup(s.metrics, prometheus.CacheError)
		s.logger.Warn("Failed to cache prediction", logging.Err(err))
	}
}

//Personal.AI order the ending
