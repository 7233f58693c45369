package providers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rarebird/peerscope/geolib"
)

const NameIPAPIBatch = "ip-api-batch"

// IPAPIBatchCeiling is the provider-imposed maximum number of queries
// in one batch call.
const IPAPIBatchCeiling = 100

// IPAPIBatch talks to the ip-api.com /batch endpoint. Failed entries
// come back with their own per-entry status, so one bad address never
// sinks the group.
type IPAPIBatch struct {
	client geolib.HTTPClient
}

func (i *IPAPIBatch) Name() string {
	return NameIPAPIBatch
}

func (i *IPAPIBatch) BatchLookup(ctx context.Context, addrs []string) (map[string]geolib.Location, error) {
	if len(addrs) > IPAPIBatchCeiling {
		return nil, fmt.Errorf("batch size %d exceeds the ceiling of %d", len(addrs), IPAPIBatchCeiling)
	}

	payload, err := json.Marshal(addrs)
	if err != nil {
		return nil, fmt.Errorf("cannot serialize a request: %w", err)
	}

	u := url.URL{
		Scheme:   "http",
		Host:     "ip-api.com",
		Path:     "/batch",
		RawQuery: url.Values{"fields": []string{ipapiFields}}.Encode(),
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot send a request: %w", err)
	}

	defer flushResponse(resp.Body)

	jsonResponses := []ipapiResponse{}
	jsonDecoder := json.NewDecoder(bufio.NewReader(resp.Body))

	if err := jsonDecoder.Decode(&jsonResponses); err != nil {
		return nil, fmt.Errorf("cannot parse a response: %w", err)
	}

	rv := make(map[string]geolib.Location, len(jsonResponses))

	for _, entry := range jsonResponses {
		if entry.Status != "success" || entry.Query == "" {
			continue
		}

		rv[entry.Query] = entry.location()
	}

	return rv, nil
}

func NewIPAPIBatch(client geolib.HTTPClient) *IPAPIBatch {
	return &IPAPIBatch{client: client}
}
