package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rarebird/peerscope/geolib"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.hjson")

	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestParseConfigEmptyPathGivesDefaults(t *testing.T) {
	conf, err := parseConfig("")

	require.NoError(t, err)
	assert.Equal(t, geolib.DefaultCacheTTL, conf.GetCacheTTL())
	assert.Equal(t, geolib.DefaultCacheSize, conf.GetCacheSize())
	assert.Equal(t, geolib.DefaultSingleInterval, conf.GetSingleInterval())
	assert.Equal(t, geolib.DefaultBatchInterval, conf.GetBatchInterval())
	assert.Equal(t, geolib.DefaultBatchGroupSize, conf.GetBatchGroupSize())
	assert.Equal(t, geolib.DefaultRetryWorkers, conf.GetRetryWorkers())
	assert.Equal(t, geolib.DefaultGeocodeTimeout, conf.GetGeocodeTimeout())
	assert.Equal(t, DefaultClusters, conf.GetClusters())
	assert.Equal(t, DefaultHTTPTimeout, conf.GetHTTPTimeout())
	assert.Equal(t, DefaultQBtHost, conf.GetQBtHost())
	assert.Equal(t, uint(DefaultQBtPort), conf.GetQBtPort())
}

func TestParseConfigMissingFile(t *testing.T) {
	_, err := parseConfig(filepath.Join(t.TempDir(), "nope.hjson"))

	assert.Error(t, err)
}

func TestParseConfigBrokenSyntax(t *testing.T) {
	_, err := parseConfig(writeConfig(t, "{{{"))

	assert.Error(t, err)
}

func TestParseConfigHjson(t *testing.T) {
	// hjson: unquoted keys, comments, no comma ceremony.
	conf, err := parseConfig(writeConfig(t, `
{
  # resolver tuning
  cache_ttl: 30m
  cache_size: 200
  single_interval: 2s
  batch_interval: 10s
  batch_group_size: 50
  retry_workers: 2
  geocode_timeout: 1m
  clusters: 3
  http_timeout: 5s
  maxmind_path: /var/lib/GeoLite2-City.mmdb
  vpn_feed_url: https://feed.example.com/servers.json
  qbittorrent: {
    host: torrentbox
    port: 9090
    username: admin
    password: hunter2
  }
}
`))

	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, conf.GetCacheTTL())
	assert.Equal(t, 200, conf.GetCacheSize())
	assert.Equal(t, 2*time.Second, conf.GetSingleInterval())
	assert.Equal(t, 10*time.Second, conf.GetBatchInterval())
	assert.Equal(t, 50, conf.GetBatchGroupSize())
	assert.Equal(t, 2, conf.GetRetryWorkers())
	assert.Equal(t, time.Minute, conf.GetGeocodeTimeout())
	assert.Equal(t, 3, conf.GetClusters())
	assert.Equal(t, 5*time.Second, conf.GetHTTPTimeout())
	assert.Equal(t, "/var/lib/GeoLite2-City.mmdb", conf.MaxmindPath)
	assert.Equal(t, "https://feed.example.com/servers.json", conf.VPNFeedURL)
	assert.Equal(t, "torrentbox", conf.GetQBtHost())
	assert.Equal(t, uint(9090), conf.GetQBtPort())
	assert.Equal(t, "admin", conf.QBt.Username)
	assert.Equal(t, "hunter2", conf.QBt.Password)
}

func TestParseConfigUnparseableDuration(t *testing.T) {
	_, err := parseConfig(writeConfig(t, `{cache_ttl: "soon"}`))

	assert.Error(t, err)
}

func TestGetScorerDefaults(t *testing.T) {
	conf := &config{}

	scorer := conf.GetScorer()

	assert.Equal(t, geolib.DefaultWeightDivisorOffset, scorer.WeightDivisorOffset)
	assert.Equal(t, geolib.DefaultReferenceMultiplier, scorer.ReferenceMultiplier)
	assert.Equal(t, geolib.DefaultLoadMultiplier, scorer.LoadMultiplier)
}

func TestGetScorerOverrides(t *testing.T) {
	conf, err := parseConfig(writeConfig(t, `
{
  score: {
    weight_divisor_offset: 2.0
    load_multiplier: 0.5
  }
}
`))

	require.NoError(t, err)

	scorer := conf.GetScorer()

	assert.Equal(t, 2.0, scorer.WeightDivisorOffset)
	assert.Equal(t, geolib.DefaultReferenceMultiplier, scorer.ReferenceMultiplier)
	assert.Equal(t, 0.5, scorer.LoadMultiplier)
}
