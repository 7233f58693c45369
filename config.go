package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hjson/hjson-go"

	"github.com/rarebird/peerscope/geolib"
)

const (
	DefaultHTTPTimeout = 10 * time.Second
	DefaultClusters    = 5

	DefaultQBtHost = "localhost"
	DefaultQBtPort = 8080
)

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v interface{}

	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("cannot unmarshal duration: %w", err)
	}

	vv, ok := v.(string)
	if !ok {
		return fmt.Errorf("incorrect duration: %v", v)
	}

	dur, err := time.ParseDuration(vv)
	if err != nil {
		return fmt.Errorf("cannot parse duration: %w", err)
	}

	d.Duration = dur

	return nil
}

type configQBt struct {
	Host     string `json:"host"`
	Port     uint   `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type configScore struct {
	WeightDivisorOffset float64 `json:"weight_divisor_offset"`
	ReferenceMultiplier float64 `json:"reference_multiplier"`
	LoadMultiplier      float64 `json:"load_multiplier"`
}

type config struct {
	CacheTTL       duration    `json:"cache_ttl"`
	CacheSize      uint        `json:"cache_size"`
	SingleInterval duration    `json:"single_interval"`
	BatchInterval  duration    `json:"batch_interval"`
	BatchGroupSize uint        `json:"batch_group_size"`
	RetryWorkers   uint        `json:"retry_workers"`
	GeocodeTimeout duration    `json:"geocode_timeout"`
	Clusters       uint        `json:"clusters"`
	HTTPTimeout    duration    `json:"http_timeout"`
	MaxmindPath    string      `json:"maxmind_path"`
	VPNFeedURL     string      `json:"vpn_feed_url"`
	QBt            configQBt   `json:"qbittorrent"`
	Score          configScore `json:"score"`
}

func (c config) GetCacheTTL() time.Duration {
	if c.CacheTTL.Duration == 0 {
		return geolib.DefaultCacheTTL
	}

	return c.CacheTTL.Duration
}

func (c config) GetCacheSize() int {
	if c.CacheSize == 0 {
		return geolib.DefaultCacheSize
	}

	return int(c.CacheSize)
}

func (c config) GetSingleInterval() time.Duration {
	if c.SingleInterval.Duration == 0 {
		return geolib.DefaultSingleInterval
	}

	return c.SingleInterval.Duration
}

func (c config) GetBatchInterval() time.Duration {
	if c.BatchInterval.Duration == 0 {
		return geolib.DefaultBatchInterval
	}

	return c.BatchInterval.Duration
}

func (c config) GetBatchGroupSize() int {
	if c.BatchGroupSize == 0 {
		return geolib.DefaultBatchGroupSize
	}

	return int(c.BatchGroupSize)
}

func (c config) GetRetryWorkers() int {
	if c.RetryWorkers == 0 {
		return geolib.DefaultRetryWorkers
	}

	return int(c.RetryWorkers)
}

func (c config) GetGeocodeTimeout() time.Duration {
	if c.GeocodeTimeout.Duration == 0 {
		return geolib.DefaultGeocodeTimeout
	}

	return c.GeocodeTimeout.Duration
}

func (c config) GetClusters() int {
	if c.Clusters == 0 {
		return DefaultClusters
	}

	return int(c.Clusters)
}

func (c config) GetHTTPTimeout() time.Duration {
	if c.HTTPTimeout.Duration == 0 {
		return DefaultHTTPTimeout
	}

	return c.HTTPTimeout.Duration
}

func (c config) GetQBtHost() string {
	if c.QBt.Host == "" {
		return DefaultQBtHost
	}

	return c.QBt.Host
}

func (c config) GetQBtPort() uint {
	if c.QBt.Port == 0 {
		return DefaultQBtPort
	}

	return c.QBt.Port
}

// GetScorer treats zero multipliers as unset. Disabling a term
// entirely is done by setting it to a tiny value, not to zero.
func (c config) GetScorer() geolib.Scorer {
	scorer := geolib.NewScorer()

	if c.Score.WeightDivisorOffset != 0 {
		scorer.WeightDivisorOffset = c.Score.WeightDivisorOffset
	}

	if c.Score.ReferenceMultiplier != 0 {
		scorer.ReferenceMultiplier = c.Score.ReferenceMultiplier
	}

	if c.Score.LoadMultiplier != 0 {
		scorer.LoadMultiplier = c.Score.LoadMultiplier
	}

	return scorer
}

func parseConfig(path string) (*config, error) {
	conf := &config{}

	if path == "" {
		return conf, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	rawMap := map[string]interface{}{}

	if err := hjson.Unmarshal(content, &rawMap); err != nil {
		return nil, fmt.Errorf("cannot parse config: %w", err)
	}

	rawBytes, _ := json.Marshal(rawMap)

	if err := json.Unmarshal(rawBytes, conf); err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}

	return conf, nil
}
