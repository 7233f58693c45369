package geolib

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/time/rate"
)

const (
	// ip-api.com allows ~45 requests a minute on the free tier.
	DefaultSingleInterval = 1400 * time.Millisecond

	// Batch endpoints are throttled harder than single lookups.
	DefaultBatchInterval = 4 * time.Second

	DefaultBatchGroupSize = 100
	DefaultRetryWorkers   = 4
)

type ResolverOpts struct {
	// Providers is the fallback chain, primary first. Required.
	Providers []Provider

	// Batch is used by ResolveBatch for group lookups. Optional;
	// without it every uncached address goes through the retry pool.
	Batch BatchProvider

	Cache  *Cache
	Logger Logger

	SingleInterval time.Duration
	BatchInterval  time.Duration
	BatchGroupSize int
	RetryWorkers   int
}

// Resolver maps addresses to locations. It owns a cache shared by the
// single and batch paths and two independent rate limiter channels:
// one for single lookups and a coarser one for batch calls.
type Resolver struct {
	providers     []Provider
	batch         BatchProvider
	cache         *Cache
	logger        Logger
	singleLimiter *rate.Limiter
	batchLimiter  *rate.Limiter
	groupSize     int
	retryWorkers  int
}

func NewResolver(opts ResolverOpts) (*Resolver, error) {
	if len(opts.Providers) == 0 {
		return nil, fmt.Errorf("at least one provider is required")
	}

	if opts.Cache == nil {
		opts.Cache = NewCache(DefaultCacheSize, DefaultCacheTTL)
	}

	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}

	if opts.SingleInterval <= 0 {
		opts.SingleInterval = DefaultSingleInterval
	}

	if opts.BatchInterval <= 0 {
		opts.BatchInterval = DefaultBatchInterval
	}

	if opts.BatchGroupSize <= 0 {
		opts.BatchGroupSize = DefaultBatchGroupSize
	}

	if opts.RetryWorkers <= 0 {
		opts.RetryWorkers = DefaultRetryWorkers
	}

	return &Resolver{
		providers:     opts.Providers,
		batch:         opts.Batch,
		cache:         opts.Cache,
		logger:        opts.Logger,
		singleLimiter: rate.NewLimiter(rate.Every(opts.SingleInterval), 1),
		batchLimiter:  rate.NewLimiter(rate.Every(opts.BatchInterval), 1),
		groupSize:     opts.BatchGroupSize,
		retryWorkers:  opts.RetryWorkers,
	}, nil
}

// Resolve maps a single address to a location. A cached outcome, even
// a negative one, is returned without touching the network; otherwise
// the call waits on the single-lookup limiter and walks the provider
// chain in order. Provider errors are logged and swallowed. If the
// whole chain fails, a negative entry is cached so the address is not
// retried until it expires.
func (r *Resolver) Resolve(ctx context.Context, addr string) (Location, error) {
	if net.ParseIP(addr) == nil {
		return Location{}, fmt.Errorf("%w: %s", ErrInvalidAddress, addr)
	}

	if loc, ok, found := r.cache.Get(addr); found {
		if !ok {
			return Location{}, ErrAddressUnresolved
		}

		return loc, nil
	}

	if err := r.singleLimiter.Wait(ctx); err != nil {
		return Location{}, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	return r.lookupChain(ctx, addr)
}

func (r *Resolver) lookupChain(ctx context.Context, addr string) (Location, error) {
	for _, provider := range r.providers {
		if err := ctx.Err(); err != nil {
			return Location{}, err
		}

		loc, err := provider.Lookup(ctx, addr)
		if err != nil {
			r.logger.LookupError(addr, provider.Name(), err)

			continue
		}

		r.cache.Put(addr, loc)

		return loc, nil
	}

	// A cancelled context is not evidence the address is
	// unresolvable, so it must not poison the cache.
	if err := ctx.Err(); err != nil {
		return Location{}, err
	}

	r.cache.PutNegative(addr)

	return Location{}, ErrAddressUnresolved
}
