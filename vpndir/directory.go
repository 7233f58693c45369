// Package vpndir fetches the candidate endpoint directory: a JSON
// feed of VPN servers, filtered to the P2P-capable ones and enriched
// with coordinates for servers whose feed entry lacks them.
package vpndir

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/pariz/gountries"

	"github.com/rarebird/peerscope/geolib"
)

const DefaultFeedURL = "https://raw.githubusercontent.com/Huzky/protonvpn-servers/main/servers.json"

const statusOnline = 1

// feedServer mirrors the upstream feed schema, spaces in key names
// included.
type feedServer struct {
	Name      string   `json:"Name"`
	Country   string   `json:"Country"`
	City      string   `json:"City"`
	Latitude  *float64 `json:"Latitude"`
	Longitude *float64 `json:"Longitude"`
	Load      float64  `json:"Load"`
	Status    int      `json:"Status"`
	P2P       bool     `json:"P2P Feature Enabled"`
}

type Directory struct {
	url       string
	client    geolib.HTTPClient
	geocoder  *geolib.Geocoder
	countries *gountries.Query
}

func NewDirectory(feedURL string, client geolib.HTTPClient, geocoder *geolib.Geocoder) *Directory {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}

	return &Directory{
		url:       feedURL,
		client:    client,
		geocoder:  geocoder,
		countries: gountries.New(),
	}
}

// Endpoints returns the P2P-capable online servers as candidate
// endpoints. Servers the feed ships without coordinates are geocoded
// per city as one group, under the geocoder's group timeout; the ones
// that still cannot be placed stay in the result without coordinates
// and the scorer skips them.
func (d *Directory) Endpoints(ctx context.Context) ([]geolib.CandidateEndpoint, error) {
	servers, err := d.fetch(ctx)
	if err != nil {
		return nil, err
	}

	rv := make([]geolib.CandidateEndpoint, 0, len(servers))
	missing := make([]int, 0, len(servers))

	for _, server := range servers {
		if !server.P2P || server.Status != statusOnline {
			continue
		}

		endpoint := geolib.CandidateEndpoint{
			Identity: server.Name,
			Load:     server.Load,
			Location: geolib.Location{
				Country: d.countryName(server.Country),
				City:    server.City,
			},
		}

		if server.Latitude != nil && server.Longitude != nil {
			endpoint.Location.Latitude = *server.Latitude
			endpoint.Location.Longitude = *server.Longitude
			endpoint.HasCoordinates = true
		} else {
			missing = append(missing, len(rv))
		}

		rv = append(rv, endpoint)
	}

	d.geocodeMissing(ctx, rv, missing)

	return rv, nil
}

func (d *Directory) geocodeMissing(ctx context.Context, endpoints []geolib.CandidateEndpoint, missing []int) {
	if d.geocoder == nil || len(missing) == 0 {
		return
	}

	places := make([]geolib.Place, 0, len(missing))

	for _, idx := range missing {
		places = append(places, geolib.Place{
			City:    endpoints[idx].Location.City,
			Country: endpoints[idx].Location.Country,
		})
	}

	located := d.geocoder.GeocodeAll(ctx, places)

	for _, idx := range missing {
		place := geolib.Place{
			City:    endpoints[idx].Location.City,
			Country: endpoints[idx].Location.Country,
		}

		loc, ok := located[place]
		if !ok {
			continue
		}

		endpoints[idx].Location.Latitude = loc.Latitude
		endpoints[idx].Location.Longitude = loc.Longitude
		endpoints[idx].HasCoordinates = true
	}
}

// fetch retrieves the feed over HTTP, or from a local file when the
// configured location is a "file://" URL or a bare filesystem path.
func (d *Directory) fetch(ctx context.Context) ([]feedServer, error) {
	if path, ok := feedFilePath(d.url); ok {
		return fetchFile(path)
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)

	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch the server feed: %w", err)
	}

	defer resp.Body.Close()

	servers := []feedServer{}

	if err := json.NewDecoder(bufio.NewReader(resp.Body)).Decode(&servers); err != nil {
		return nil, fmt.Errorf("cannot parse the server feed: %w", err)
	}

	return servers, nil
}

func feedFilePath(raw string) (string, bool) {
	if strings.HasPrefix(raw, "file://") {
		return strings.TrimPrefix(raw, "file://"), true
	}

	if !strings.Contains(raw, "://") {
		return raw, true
	}

	return "", false
}

func fetchFile(path string) ([]feedServer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open the server feed: %w", err)
	}

	defer file.Close()

	servers := []feedServer{}

	if err := json.NewDecoder(bufio.NewReader(file)).Decode(&servers); err != nil {
		return nil, fmt.Errorf("cannot parse the server feed: %w", err)
	}

	return servers, nil
}

// countryName normalizes whatever the feed carries (alpha-2 code or
// some spelling of the name) to the common country name, so geocode
// cache keys and the static city table line up.
func (d *Directory) countryName(raw string) string {
	raw = strings.TrimSpace(raw)

	if len(raw) == 2 {
		if country, err := d.countries.FindCountryByAlpha(raw); err == nil {
			return country.Name.Common
		}
	}

	if country, err := d.countries.FindCountryByName(raw); err == nil {
		return country.Name.Common
	}

	return raw
}
