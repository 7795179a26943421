package profile

import (
	"context"
	"sync"

	"arcade/pkg/logger"
	"arcade/pkg/metrics"

	"go.uber.org/zap"
)

// Enricher resolves sets of identity keys to display profiles, issuing at
// most one outbound directory call per distinct key per invocation. Failed
// lookups degrade to an empty profile instead of failing the batch.
type Enricher struct {
	directory Directory
	cache     Cache
	workers   int
	logger    *logger.Logger
}

// NewEnricher creates a new Enricher instance
func NewEnricher(directory Directory, cache Cache, workers int, l *logger.Logger) *Enricher {
	if workers < 1 {
		workers = 1
	}
	return &Enricher{
		directory: directory,
		cache:     cache,
		workers:   workers,
		logger:    l,
	}
}

// Resolve looks up every distinct identity key and returns the merged
// key→profile map. Lookups run concurrently; the merge is commutative, so
// completion order does not matter.
func (e *Enricher) Resolve(ctx context.Context, identityKeys []string) map[string]Profile {
	distinct := dedupe(identityKeys)
	results := make(map[string]Profile, len(distinct))
	if len(distinct) == 0 {
		return results
	}

	jobs := make(chan string)
	var mu sync.Mutex
	var wg sync.WaitGroup

	workers := e.workers
	if workers > len(distinct) {
		workers = len(distinct)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range jobs {
				p := e.resolveOne(ctx, key)
				mu.Lock()
				results[key] = p
				mu.Unlock()
			}
		}()
	}

	for _, key := range distinct {
		jobs <- key
	}
	close(jobs)
	wg.Wait()

	return results
}

func (e *Enricher) resolveOne(ctx context.Context, key string) Profile {
	if cached, ok, err := e.cache.Get(ctx, key); err == nil && ok {
		metrics.ProfileCacheHitsTotal.Inc()
		return cached
	} else if err != nil {
		e.logger.Debug("profile cache read failed", zap.String("identity", key), zap.Error(err))
	}
	metrics.ProfileCacheMissesTotal.Inc()

	metrics.ProfileLookupsTotal.Inc()
	p, err := e.directory.Lookup(ctx, key)
	if err != nil {
		metrics.ProfileLookupErrorsTotal.Inc()
		e.logger.Warn("profile lookup failed, using empty profile",
			zap.String("identity", key), zap.Error(err))
		p = Profile{}
	}

	// Empty results are cached too, to suppress repeated failing lookups.
	if err := e.cache.Set(ctx, key, p); err != nil {
		e.logger.Debug("profile cache write failed", zap.String("identity", key), zap.Error(err))
	}

	return p
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
