package geolib

import (
	"context"
	"net/http"
)

// Provider resolves a single address to a location. Implementations
// must be safe for concurrent use.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, addr string) (Location, error)
}

// BatchProvider resolves many addresses in one network call. The
// returned map contains an entry for every address the provider could
// resolve; missing entries mean the provider had no answer for that
// address. Callers must not pass more addresses than the provider's
// group ceiling allows.
type BatchProvider interface {
	Name() string
	BatchLookup(ctx context.Context, addrs []string) (map[string]Location, error)
}

// GeocodeProvider resolves a city and country name pair to
// coordinates.
type GeocodeProvider interface {
	Name() string
	Geocode(ctx context.Context, city, country string) (Location, error)
}

// HTTPClient is implemented by the rate-limited client returned by
// NewHTTPClient. Providers should use it for all outgoing requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Logger interface {
	LookupError(addr string, name string, err error)
	BatchError(name string, err error)
	GeocodeError(city, country string, name string, err error)
}

type noopLogger struct{}

func (n noopLogger) LookupError(addr string, name string, err error)          {}
func (n noopLogger) BatchError(name string, err error)                        {}
func (n noopLogger) GeocodeError(city, country string, name string, err error) {}
