package geolib_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/rarebird/peerscope/geolib"
)

type ProviderMock struct {
	mock.Mock
}

func (m *ProviderMock) Name() string {
	return m.Called().String(0)
}

func (m *ProviderMock) Lookup(ctx context.Context, addr string) (geolib.Location, error) {
	args := m.Called(ctx, addr)

	return args.Get(0).(geolib.Location), args.Error(1)
}

type GeocodeProviderMock struct {
	mock.Mock
}

func (m *GeocodeProviderMock) Name() string {
	return m.Called().String(0)
}

func (m *GeocodeProviderMock) Geocode(ctx context.Context, city, country string) (geolib.Location, error) {
	args := m.Called(ctx, city, country)

	return args.Get(0).(geolib.Location), args.Error(1)
}

// batchProviderFake records group sizes and answers through a
// caller-supplied function. A testify mock cannot compute its return
// value from the arguments, which batch tests need.
type batchProviderFake struct {
	mutex      sync.Mutex
	groupSizes []int
	resolve    func(addrs []string) (map[string]geolib.Location, error)
}

func (b *batchProviderFake) Name() string {
	return "batch-fake"
}

func (b *batchProviderFake) BatchLookup(ctx context.Context, addrs []string) (map[string]geolib.Location, error) {
	b.mutex.Lock()
	b.groupSizes = append(b.groupSizes, len(addrs))
	b.mutex.Unlock()

	return b.resolve(addrs)
}

// geocodeProviderFunc lets a test plug in blocking behavior.
type geocodeProviderFunc struct {
	name string
	fn   func(ctx context.Context, city, country string) (geolib.Location, error)
}

func (g geocodeProviderFunc) Name() string {
	return g.name
}

func (g geocodeProviderFunc) Geocode(ctx context.Context, city, country string) (geolib.Location, error) {
	return g.fn(ctx, city, country)
}
