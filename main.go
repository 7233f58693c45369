package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/rarebird/peerscope/geolib"
	"github.com/rarebird/peerscope/providers"
	"github.com/rarebird/peerscope/qbt"
	"github.com/rarebird/peerscope/vpndir"
)

var version = "dev"

var (
	app = kingpin.New(
		"peerscope",
		"Torrent peer clustering and VPN endpoint recommender")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("PEERSCOPE_DEBUG").
		Bool()
	configFile = app.Flag("config", "Path to the config file.").
			Short('c').
			Envar("PEERSCOPE_CONFIG").
			String()
	qbtHost = app.Flag("host", "qBittorrent WebUI host.").
		Envar("PEERSCOPE_QBT_HOST").
		String()
	qbtPort = app.Flag("port", "qBittorrent WebUI port.").
		Envar("PEERSCOPE_QBT_PORT").
		Uint()
	qbtUsername = app.Flag("username", "qBittorrent WebUI username.").
			Envar("PEERSCOPE_QBT_USERNAME").
			Default("admin").
			String()
	qbtPassword = app.Flag("password", "qBittorrent WebUI password.").
			Envar("PEERSCOPE_QBT_PASSWORD").
			String()
	clusterCount = app.Flag("clusters", "Number of peer clusters.").
			Short('k').
			Uint()
)

func init() {
	app.Version(version)
}

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	conf, err := parseConfig(*configFile)
	if err != nil {
		app.Fatalf("cannot read config: %v", err)
	}

	applyFlags(conf)

	log := newLogger(*debug)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	peers := fetchPeers(ctx, conf, log)
	if len(peers) == 0 {
		fmt.Println("No peers found in active torrents.")

		return
	}

	apiClient := geolib.NewHTTPClient(
		&http.Client{Timeout: conf.GetHTTPTimeout()},
		"peerscope/"+version,
		200*time.Millisecond, 5)

	chain, closeChain, err := buildProviderChain(apiClient, conf)
	if err != nil {
		app.Fatalf("cannot initialize providers: %v", err)
	}

	defer closeChain()

	resolver, err := geolib.NewResolver(geolib.ResolverOpts{
		Providers:      chain,
		Batch:          providers.NewIPAPIBatch(apiClient),
		Cache:          geolib.NewCache(conf.GetCacheSize(), conf.GetCacheTTL()),
		Logger:         log,
		SingleInterval: conf.GetSingleInterval(),
		BatchInterval:  conf.GetBatchInterval(),
		BatchGroupSize: conf.GetBatchGroupSize(),
		RetryWorkers:   conf.GetRetryWorkers(),
	})
	if err != nil {
		app.Fatalf("cannot initialize resolver: %v", err)
	}

	addrs := make([]string, 0, len(peers))
	for addr := range peers {
		addrs = append(addrs, addr)
	}

	sort.Strings(addrs)

	fmt.Printf("Resolving %d unique peer addresses...\n", len(addrs))

	resolved := resolver.ResolveBatch(ctx, addrs, newProgress(len(addrs)))

	fmt.Printf("Resolved %d of %d addresses.\n", len(resolved), len(addrs))

	points := make(map[string]geolib.WeightedPoint, len(resolved))
	for addr, loc := range resolved {
		points[addr] = geolib.WeightedPoint{Location: loc, Weight: peers[addr]}
	}

	reference := selfLocation(ctx, apiClient)
	endpoints := fetchEndpoints(ctx, conf, log, apiClient)

	clusters := geolib.ClusterPoints(points, conf.GetClusters())
	recommendations := conf.GetScorer().Recommend(clusters, endpoints, reference)

	printRecommendations(recommendations, reference)
}

func applyFlags(conf *config) {
	if *qbtHost != "" {
		conf.QBt.Host = *qbtHost
	}

	if *qbtPort != 0 {
		conf.QBt.Port = *qbtPort
	}

	if *qbtUsername != "" {
		conf.QBt.Username = *qbtUsername
	}

	if *qbtPassword != "" {
		conf.QBt.Password = *qbtPassword
	}

	if *clusterCount != 0 {
		conf.Clusters = *clusterCount
	}
}

func fetchPeers(ctx context.Context, conf *config, log *logger) map[string]uint {
	client := qbt.NewClient(conf.GetQBtHost(), conf.GetQBtPort(),
		conf.QBt.Username, conf.QBt.Password, log)

	if err := client.Login(ctx); err != nil {
		app.Fatalf("cannot connect to qBittorrent: %v", err)
	}

	defer client.Logout(ctx)

	peers, err := client.PeerAddresses(ctx)
	if err != nil {
		app.Fatalf("cannot fetch peers: %v", err)
	}

	return peers
}

func buildProviderChain(apiClient geolib.HTTPClient, conf *config) ([]geolib.Provider, func(), error) {
	chain := []geolib.Provider{
		providers.NewIPAPI(apiClient),
		providers.NewIPWhois(apiClient),
	}

	closeChain := func() {}

	if conf.MaxmindPath != "" {
		maxmind, err := providers.NewMaxMind(conf.MaxmindPath)
		if err != nil {
			return nil, nil, err
		}

		chain = append(chain, maxmind)
		closeChain = func() {
			maxmind.Close() // nolint: errcheck
		}
	}

	return chain, closeChain, nil
}

func newProgress(total int) geolib.ProgressFunc {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return nil
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("resolving"),
		progressbar.OptionClearOnFinish())

	return func(completed, _ int, _ string) {
		bar.Set(completed) // nolint: errcheck
	}
}

func selfLocation(ctx context.Context, apiClient geolib.HTTPClient) *geolib.Location {
	loc, _, err := providers.NewIPAPI(apiClient).Self(ctx)
	if err != nil {
		return nil
	}

	return &loc
}

func fetchEndpoints(ctx context.Context, conf *config, log *logger, apiClient geolib.HTTPClient) []geolib.CandidateEndpoint {
	geocodeClient := geolib.NewHTTPClient(
		&http.Client{Timeout: conf.GetHTTPTimeout()},
		"peerscope/"+version,
		geolib.DefaultGeocodeInterval, 1)

	geocoder := geolib.NewGeocoder(geolib.GeocoderOpts{
		Providers:    []geolib.GeocodeProvider{providers.NewNominatim(geocodeClient)},
		Logger:       log,
		GroupTimeout: conf.GetGeocodeTimeout(),
	})

	directory := vpndir.NewDirectory(conf.VPNFeedURL, apiClient, geocoder)

	endpoints, err := directory.Endpoints(ctx)
	if err != nil {
		app.Fatalf("cannot fetch the endpoint directory: %v", err)
	}

	return endpoints
}

func printRecommendations(recommendations []geolib.Recommendation, reference *geolib.Location) {
	if reference != nil {
		fmt.Printf("\nYour location: %s, %s\n", reference.City, reference.Country)
	}

	if len(recommendations) == 0 {
		fmt.Println("\nNo recommendations could be produced.")

		return
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Cluster.TotalWeight > recommendations[j].Cluster.TotalWeight
	})

	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "#\tPEER CLUSTER\tPEERS\tENDPOINT\tLOCATION\tDISTANCE\tLOAD")

	for i, rec := range recommendations {
		fmt.Fprintf(w, "%d\t%s, %s\t%d\t%s\t%s, %s\t%.0f km\t%.0f%%\n",
			i+1,
			rec.Cluster.City, rec.Cluster.Country,
			rec.Cluster.TotalWeight,
			rec.Endpoint.Identity,
			rec.Endpoint.Location.City, rec.Endpoint.Location.Country,
			rec.DistanceKm,
			rec.Endpoint.Load)
	}

	w.Flush() // nolint: errcheck
}
