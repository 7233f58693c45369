package providers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rarebird/peerscope/geolib"
)

const NameIPAPI = "ip-api"

const ipapiFields = "status,message,country,city,lat,lon,query"

type ipapiResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Country string  `json:"country"`
	City    string  `json:"city"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Query   string  `json:"query"`
}

func (i ipapiResponse) location() geolib.Location {
	return geolib.Location{
		Latitude:  i.Lat,
		Longitude: i.Lon,
		Country:   i.Country,
		City:      i.City,
	}
}

// IPAPI talks to ip-api.com, the primary geolocation provider. The
// free tier serves plain HTTP only and throttles by source IP, so
// callers are expected to sit behind the resolver's rate limiters.
type IPAPI struct {
	client geolib.HTTPClient
}

func (i *IPAPI) Name() string {
	return NameIPAPI
}

func (i *IPAPI) Lookup(ctx context.Context, addr string) (geolib.Location, error) {
	resp, err := i.query(ctx, addr)
	if err != nil {
		return geolib.Location{}, err
	}

	return resp.location(), nil
}

// Self resolves the caller's own public address. It returns the
// location together with the address ip-api saw the request from.
func (i *IPAPI) Self(ctx context.Context) (geolib.Location, string, error) {
	resp, err := i.query(ctx, "")
	if err != nil {
		return geolib.Location{}, "", err
	}

	return resp.location(), resp.Query, nil
}

func (i *IPAPI) query(ctx context.Context, addr string) (ipapiResponse, error) {
	jsonResponse := ipapiResponse{}

	u := url.URL{
		Scheme:   "http",
		Host:     "ip-api.com",
		Path:     "/json/" + addr,
		RawQuery: url.Values{"fields": []string{ipapiFields}}.Encode(),
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)

	req.Header.Set("Accept", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return jsonResponse, fmt.Errorf("cannot send a request: %w", err)
	}

	defer flushResponse(resp.Body)

	jsonDecoder := json.NewDecoder(bufio.NewReader(resp.Body))

	if err := jsonDecoder.Decode(&jsonResponse); err != nil {
		return jsonResponse, fmt.Errorf("cannot parse a response: %w", err)
	}

	if jsonResponse.Status != "success" {
		return jsonResponse, fmt.Errorf("%w: %s", ErrFailedResponse, jsonResponse.Message)
	}

	return jsonResponse, nil
}

func NewIPAPI(client geolib.HTTPClient) *IPAPI {
	return &IPAPI{client: client}
}
