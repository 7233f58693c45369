package geolib

import (
	"context"
	"net"
	"sync"

	"github.com/panjf2000/ants/v2"
)

type batchState struct {
	mutex     sync.Mutex
	completed int
	total     int
	results   map[string]Location
	progress  ProgressFunc
}

// finish is called exactly once per input address. The progress
// callback runs under the lock so completed counts stay monotonic
// even when retries land out of order.
func (b *batchState) finish(addr string, loc Location, resolved bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.completed++

	if resolved {
		b.results[addr] = loc
	}

	if b.progress != nil {
		b.progress(b.completed, b.total, addr)
	}
}

// ResolveBatch resolves many addresses at once. Cached outcomes are
// final immediately; the rest are split into fixed-size groups, one
// batch call per group behind the batch-channel limiter. Addresses
// the batch provider could not answer are retried individually on a
// bounded worker pool running the single-resolution path.
//
// The returned map holds only successfully resolved addresses; the
// caller can derive the unresolved count from the input size. Network
// failures never escape.
func (r *Resolver) ResolveBatch(ctx context.Context, addrs []string, progress ProgressFunc) map[string]Location {
	state := &batchState{
		total:    len(addrs),
		results:  make(map[string]Location, len(addrs)),
		progress: progress,
	}

	pending := make([]string, 0, len(addrs))

	for _, addr := range addrs {
		if net.ParseIP(addr) == nil {
			state.finish(addr, Location{}, false)

			continue
		}

		if loc, ok, found := r.cache.Get(addr); found {
			state.finish(addr, loc, ok)

			continue
		}

		pending = append(pending, addr)
	}

	retries := r.resolveGroups(ctx, pending, state)

	r.retryIndividually(ctx, retries, state)

	return state.results
}

// resolveGroups issues one batch call per fixed-size group and
// returns the addresses that still need an individual retry.
func (r *Resolver) resolveGroups(ctx context.Context, pending []string, state *batchState) []string {
	if r.batch == nil {
		return pending
	}

	retries := make([]string, 0, len(pending))

	for start := 0; start < len(pending); start += r.groupSize {
		end := start + r.groupSize
		if end > len(pending) {
			end = len(pending)
		}

		group := pending[start:end]

		if err := r.batchLimiter.Wait(ctx); err != nil {
			// Context is gone; everything left, earlier retries
			// included, is unresolved but the cache stays clean.
			for _, addr := range pending[start:] {
				state.finish(addr, Location{}, false)
			}

			for _, addr := range retries {
				state.finish(addr, Location{}, false)
			}

			return nil
		}

		resolved, err := r.batch.BatchLookup(ctx, group)
		if err != nil {
			r.logger.BatchError(r.batch.Name(), err)

			retries = append(retries, group...)

			continue
		}

		for _, addr := range group {
			loc, ok := resolved[addr]
			if !ok {
				retries = append(retries, addr)

				continue
			}

			r.cache.Put(addr, loc)
			state.finish(addr, loc, true)
		}
	}

	return retries
}

func (r *Resolver) retryIndividually(ctx context.Context, retries []string, state *batchState) {
	if len(retries) == 0 {
		return
	}

	wg := &sync.WaitGroup{}

	pool, err := ants.NewPoolWithFunc(r.retryWorkers, func(arg interface{}) {
		addr := arg.(string)
		defer wg.Done()

		loc, err := r.Resolve(ctx, addr)
		state.finish(addr, loc, err == nil)
	})
	if err != nil {
		for _, addr := range retries {
			loc, err := r.Resolve(ctx, addr)
			state.finish(addr, loc, err == nil)
		}

		return
	}

	defer pool.Release()

	for _, addr := range retries {
		wg.Add(1)

		if err := pool.Invoke(addr); err != nil {
			wg.Done()
			state.finish(addr, Location{}, false)
		}
	}

	wg.Wait()
}
