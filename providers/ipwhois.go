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

const NameIPWhois = "ipwhois"

type ipwhoisResponse struct {
	Success   bool    `json:"success"`
	Message   string  `json:"message"`
	Country   string  `json:"country"`
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IPWhois talks to ipwhois.app, used as a fallback when the primary
// provider cannot answer.
type IPWhois struct {
	client geolib.HTTPClient
}

func (i *IPWhois) Name() string {
	return NameIPWhois
}

func (i *IPWhois) Lookup(ctx context.Context, addr string) (geolib.Location, error) {
	u := url.URL{
		Scheme: "http",
		Host:   "ipwhois.app",
		Path:   "/json/" + addr,
		RawQuery: url.Values{
			"objects": []string{"success,message,country,city,latitude,longitude"},
		}.Encode(),
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)

	req.Header.Set("Accept", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return geolib.Location{}, fmt.Errorf("cannot send a request: %w", err)
	}

	defer flushResponse(resp.Body)

	jsonResponse := ipwhoisResponse{}
	jsonDecoder := json.NewDecoder(bufio.NewReader(resp.Body))

	if err := jsonDecoder.Decode(&jsonResponse); err != nil {
		return geolib.Location{}, fmt.Errorf("cannot parse a response: %w", err)
	}

	if !jsonResponse.Success {
		return geolib.Location{}, fmt.Errorf("%w: %s", ErrFailedResponse, jsonResponse.Message)
	}

	return geolib.Location{
		Latitude:  jsonResponse.Latitude,
		Longitude: jsonResponse.Longitude,
		Country:   jsonResponse.Country,
		City:      jsonResponse.City,
	}, nil
}

func NewIPWhois(client geolib.HTTPClient) *IPWhois {
	return &IPWhois{client: client}
}
