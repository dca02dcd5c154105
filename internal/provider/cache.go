package provider

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/genoskip/genoskip/internal/bed"
	"github.com/genoskip/genoskip/internal/hgvs"
	"github.com/genoskip/genoskip/internal/track"
	"github.com/genoskip/genoskip/internal/transcript"
)

// CachingFetcher wraps a Fetcher with an identity-keyed cache. Successful
// answers are kept for the lifetime of the process (and optionally in a
// persistent Store); failed lookups are never cached, so a later call
// retries. Concurrent lookups for the same identity are collapsed into a
// single upstream call.
type CachingFetcher struct {
	inner  Fetcher
	store  *Store
	logger *zap.Logger

	group singleflight.Group

	mu           sync.RWMutex
	structures   map[string]*bed.Record
	tracks       map[string]map[string][]track.Interval
	variants     map[string]*NormalizedVariant
	descriptions map[string]*hgvs.Description
}

// CacheOption configures a CachingFetcher.
type CacheOption func(*CachingFetcher)

// WithStore adds a persistent payload store consulted between the
// in-memory cache and the network.
func WithStore(s *Store) CacheOption {
	return func(c *CachingFetcher) { c.store = s }
}

// WithCacheLogger sets the logger for cache events.
func WithCacheLogger(l *zap.Logger) CacheOption {
	return func(c *CachingFetcher) { c.logger = l }
}

// NewCachingFetcher wraps inner with caching.
func NewCachingFetcher(inner Fetcher, opts ...CacheOption) *CachingFetcher {
	c := &CachingFetcher{
		inner:        inner,
		logger:       zap.NewNop(),
		structures:   make(map[string]*bed.Record),
		tracks:       make(map[string]map[string][]track.Interval),
		variants:     make(map[string]*NormalizedVariant),
		descriptions: make(map[string]*hgvs.Description),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchStructure returns the structural record for a transcript, fetching
// it at most once per identity.
func (c *CachingFetcher) FetchStructure(ctx context.Context, id transcript.ID) (*bed.Record, error) {
	key := id.String()

	c.mu.RLock()
	rec, ok := c.structures[key]
	c.mu.RUnlock()
	if ok {
		return rec, nil
	}

	v, err, _ := c.group.Do(kindStructure+":"+key, func() (any, error) {
		if c.store != nil {
			var stored bed.Record
			hit, err := c.store.Get(kindStructure, key, &stored)
			if err != nil {
				c.logger.Warn("payload store read failed", zap.String("ident", key), zap.Error(err))
			} else if hit {
				c.remember(key, &stored)
				return &stored, nil
			}
		}

		rec, err := c.inner.FetchStructure(ctx, id)
		if err != nil {
			return nil, err
		}
		if c.store != nil {
			if err := c.store.Put(kindStructure, key, rec); err != nil {
				c.logger.Warn("payload store write failed", zap.String("ident", key), zap.Error(err))
			}
		}
		c.remember(key, rec)
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*bed.Record), nil
}

func (c *CachingFetcher) remember(key string, rec *bed.Record) {
	c.mu.Lock()
	c.structures[key] = rec
	c.mu.Unlock()
}

// FetchTracks returns the extra annotation tracks for a transcript,
// fetching them at most once per identity.
func (c *CachingFetcher) FetchTracks(ctx context.Context, id transcript.ID) (map[string][]track.Interval, error) {
	key := id.String()

	c.mu.RLock()
	tr, ok := c.tracks[key]
	c.mu.RUnlock()
	if ok {
		return tr, nil
	}

	v, err, _ := c.group.Do(kindTracks+":"+key, func() (any, error) {
		if c.store != nil {
			stored := make(map[string][]track.Interval)
			hit, err := c.store.Get(kindTracks, key, &stored)
			if err != nil {
				c.logger.Warn("payload store read failed", zap.String("ident", key), zap.Error(err))
			} else if hit {
				c.mu.Lock()
				c.tracks[key] = stored
				c.mu.Unlock()
				return stored, nil
			}
		}

		tr, err := c.inner.FetchTracks(ctx, id)
		if err != nil {
			return nil, err
		}
		if c.store != nil {
			if err := c.store.Put(kindTracks, key, tr); err != nil {
				c.logger.Warn("payload store write failed", zap.String("ident", key), zap.Error(err))
			}
		}
		c.mu.Lock()
		c.tracks[key] = tr
		c.mu.Unlock()
		return tr, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string][]track.Interval), nil
}

// Validate validates a variant expression, consulting the cache first.
// Validation answers are keyed by the full expression.
func (c *CachingFetcher) Validate(ctx context.Context, expr string, id transcript.ID) (*NormalizedVariant, error) {
	c.mu.RLock()
	nv, ok := c.variants[expr]
	c.mu.RUnlock()
	if ok {
		return nv, nil
	}

	v, err, _ := c.group.Do(kindVariant+":"+expr, func() (any, error) {
		if c.store != nil {
			var stored NormalizedVariant
			hit, err := c.store.Get(kindVariant, expr, &stored)
			if err != nil {
				c.logger.Warn("payload store read failed", zap.String("ident", expr), zap.Error(err))
			} else if hit {
				c.mu.Lock()
				c.variants[expr] = &stored
				c.mu.Unlock()
				return &stored, nil
			}
		}

		nv, err := c.inner.Validate(ctx, expr, id)
		if err != nil {
			return nil, err
		}
		if c.store != nil {
			if err := c.store.Put(kindVariant, expr, nv); err != nil {
				c.logger.Warn("payload store write failed", zap.String("ident", expr), zap.Error(err))
			}
		}
		c.mu.Lock()
		c.variants[expr] = nv
		c.mu.Unlock()
		return nv, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*NormalizedVariant), nil
}

// Description parses an HGVS expression, memoizing the result so repeat
// submissions of the same expression yield the same parsed value.
func (c *CachingFetcher) Description(expr string) (*hgvs.Description, error) {
	c.mu.RLock()
	d, ok := c.descriptions[expr]
	c.mu.RUnlock()
	if ok {
		return d, nil
	}

	d, err := hgvs.Parse(expr)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.descriptions[expr] = d
	c.mu.Unlock()
	return d, nil
}

// Reset discards all in-memory cached answers. The persistent store, if
// any, is left untouched.
func (c *CachingFetcher) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.structures = make(map[string]*bed.Record)
	c.tracks = make(map[string]map[string][]track.Interval)
	c.variants = make(map[string]*NormalizedVariant)
	c.descriptions = make(map[string]*hgvs.Description)
}

// Stats reports the number of cached answers per kind.
func (c *CachingFetcher) Stats() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return map[string]int{
		kindStructure: len(c.structures),
		kindTracks:    len(c.tracks),
		kindVariant:   len(c.variants),
	}
}

var _ Fetcher = (*CachingFetcher)(nil)
