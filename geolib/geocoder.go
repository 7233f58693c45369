package geolib

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"
)

const (
	DefaultGeocodeInterval = time.Second
	DefaultGeocodeWorkers  = 4
	DefaultGeocodeTimeout  = 30 * time.Second
)

type GeocoderOpts struct {
	// Providers is the geocoding fallback chain. It may be empty, in
	// which case only the static city table answers.
	Providers []GeocodeProvider

	Cache  *Cache
	Logger Logger

	Interval     time.Duration
	Workers      int
	GroupTimeout time.Duration
}

// Geocoder resolves city names to coordinates with the same cache,
// rate-limit and fallback skeleton the address resolver uses, keyed
// by city and country instead of address.
type Geocoder struct {
	providers    []GeocodeProvider
	cache        *Cache
	logger       Logger
	limiter      *rate.Limiter
	workers      int
	groupTimeout time.Duration
}

func NewGeocoder(opts GeocoderOpts) *Geocoder {
	if opts.Cache == nil {
		opts.Cache = NewCache(DefaultCacheSize, DefaultCacheTTL)
	}

	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}

	if opts.Interval <= 0 {
		opts.Interval = DefaultGeocodeInterval
	}

	if opts.Workers <= 0 {
		opts.Workers = DefaultGeocodeWorkers
	}

	if opts.GroupTimeout <= 0 {
		opts.GroupTimeout = DefaultGeocodeTimeout
	}

	return &Geocoder{
		providers:    opts.Providers,
		cache:        opts.Cache,
		logger:       opts.Logger,
		limiter:      rate.NewLimiter(rate.Every(opts.Interval), 1),
		workers:      opts.Workers,
		groupTimeout: opts.GroupTimeout,
	}
}

func geocodeKey(city, country string) string {
	return strings.ToLower(strings.TrimSpace(city)) + "|" + strings.ToLower(strings.TrimSpace(country))
}

// Geocode resolves a city and country pair to coordinates. When the
// provider chain is exhausted the static city table is consulted
// before caching a negative outcome.
func (g *Geocoder) Geocode(ctx context.Context, city, country string) (Location, error) {
	key := geocodeKey(city, country)

	if loc, ok, found := g.cache.Get(key); found {
		if !ok {
			return Location{}, ErrPlaceUnresolved
		}

		return loc, nil
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return Location{}, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	for _, provider := range g.providers {
		if err := ctx.Err(); err != nil {
			return Location{}, err
		}

		loc, err := provider.Geocode(ctx, city, country)
		if err != nil {
			g.logger.GeocodeError(city, country, provider.Name(), err)

			continue
		}

		g.cache.Put(key, loc)

		return loc, nil
	}

	if err := ctx.Err(); err != nil {
		return Location{}, err
	}

	if loc, ok := staticCityCoordinates(city, country); ok {
		g.cache.Put(key, loc)

		return loc, nil
	}

	g.cache.PutNegative(key)

	return Location{}, ErrPlaceUnresolved
}

// GeocodeAll geocodes a group of places in parallel on a bounded
// worker pool, under one wall-clock timeout for the whole group.
// Work still pending when the timeout elapses is not left running:
// each pending item fails fast against the dead context and is
// substituted from the static city table when possible. Places absent
// from the table stay out of the result.
func (g *Geocoder) GeocodeAll(ctx context.Context, places []Place) map[Place]Location {
	groupCtx, cancel := context.WithTimeout(ctx, g.groupTimeout)
	defer cancel()

	results := make(map[Place]Location, len(places))
	mutex := &sync.Mutex{}
	wg := &sync.WaitGroup{}

	worker := func(arg interface{}) {
		place := arg.(Place)
		defer wg.Done()

		loc, err := g.Geocode(groupCtx, place.City, place.Country)

		if err != nil && groupCtx.Err() != nil {
			loc, err = g.staticFallback(place)
		}

		if err != nil {
			return
		}

		mutex.Lock()
		results[place] = loc
		mutex.Unlock()
	}

	pool, err := ants.NewPoolWithFunc(g.workers, worker)
	if err != nil {
		for _, place := range dedupePlaces(places) {
			wg.Add(1)
			worker(place)
		}

		return results
	}

	defer pool.Release()

	for _, place := range dedupePlaces(places) {
		wg.Add(1)

		if err := pool.Invoke(place); err != nil {
			wg.Done()
		}
	}

	wg.Wait()

	return results
}

func (g *Geocoder) staticFallback(place Place) (Location, error) {
	if loc, ok := staticCityCoordinates(place.City, place.Country); ok {
		return loc, nil
	}

	return Location{}, ErrPlaceUnresolved
}

func dedupePlaces(places []Place) []Place {
	seen := make(map[Place]struct{}, len(places))
	rv := make([]Place, 0, len(places))

	for _, place := range places {
		if _, ok := seen[place]; ok {
			continue
		}

		seen[place] = struct{}{}
		rv = append(rv, place)
	}

	return rv
}
