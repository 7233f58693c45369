package providers

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"

	"github.com/rarebird/peerscope/geolib"
)

const NameMaxMind = "maxmind"

// MaxMind reads a local GeoLite2/GeoIP2 City database. It is an
// offline last-resort fallback: no network, no rate limits, answers
// even when every hosted provider is down. The database file is
// supplied by the user.
type MaxMind struct {
	db *geoip2.Reader
}

func (m *MaxMind) Name() string {
	return NameMaxMind
}

func (m *MaxMind) Lookup(ctx context.Context, addr string) (geolib.Location, error) {
	ip := net.ParseIP(addr)
	if ip == nil {
		return geolib.Location{}, fmt.Errorf("cannot parse address %s", addr)
	}

	record, err := m.db.City(ip)
	if err != nil {
		return geolib.Location{}, fmt.Errorf("cannot resolve address: %w", err)
	}

	if record.Country.IsoCode == "" && record.City.GeoNameID == 0 {
		return geolib.Location{}, ErrNoData
	}

	return geolib.Location{
		Latitude:  record.Location.Latitude,
		Longitude: record.Location.Longitude,
		Country:   record.Country.Names["en"],
		City:      record.City.Names["en"],
	}, nil
}

func (m *MaxMind) Close() error {
	return m.db.Close()
}

func NewMaxMind(path string) (*MaxMind, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open maxmind database: %w", err)
	}

	return &MaxMind{db: db}, nil
}
