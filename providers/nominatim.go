package providers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rarebird/peerscope/geolib"
)

const NameNominatim = "nominatim"

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Nominatim geocodes free-text place names through the public OSM
// Nominatim instance. The usage policy caps clients at 1 request per
// second, so the HTTPClient passed in must be built with at least
// that interval.
type Nominatim struct {
	client geolib.HTTPClient
}

func (n *Nominatim) Name() string {
	return NameNominatim
}

func (n *Nominatim) Geocode(ctx context.Context, city, country string) (geolib.Location, error) {
	getQuery := url.Values{}

	getQuery.Set("q", city+", "+country)
	getQuery.Set("format", "json")
	getQuery.Set("limit", "1")

	u := url.URL{
		Scheme:   "https",
		Host:     "nominatim.openstreetmap.org",
		Path:     "/search",
		RawQuery: getQuery.Encode(),
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)

	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return geolib.Location{}, fmt.Errorf("cannot send a request: %w", err)
	}

	defer flushResponse(resp.Body)

	jsonResults := []nominatimResult{}
	jsonDecoder := json.NewDecoder(bufio.NewReader(resp.Body))

	if err := jsonDecoder.Decode(&jsonResults); err != nil {
		return geolib.Location{}, fmt.Errorf("cannot parse a response: %w", err)
	}

	if len(jsonResults) == 0 {
		return geolib.Location{}, ErrNoData
	}

	lat, err := strconv.ParseFloat(jsonResults[0].Lat, 64)
	if err != nil {
		return geolib.Location{}, fmt.Errorf("cannot parse latitude: %w", err)
	}

	lon, err := strconv.ParseFloat(jsonResults[0].Lon, 64)
	if err != nil {
		return geolib.Location{}, fmt.Errorf("cannot parse longitude: %w", err)
	}

	return geolib.Location{
		Latitude:  lat,
		Longitude: lon,
		Country:   country,
		City:      city,
	}, nil
}

func NewNominatim(client geolib.HTTPClient) *Nominatim {
	return &Nominatim{client: client}
}
