package geolib

// Location is a resolved geographic position. A Location is only ever
// produced by a successful lookup, so (0, 0) coordinates inside one
// are a real place and not a missing value.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country"`
	City      string  `json:"city"`
}

// WeightedPoint is a resolved location annotated with an occurrence
// count, e.g. the number of distinct connections seen from the same
// address.
type WeightedPoint struct {
	Location Location `json:"location"`
	Weight   uint     `json:"weight"`
}

// Cluster is a geographic grouping of weighted points.
//
// Country and City are the plurality values among member locations.
// Members keeps the addresses assigned to the cluster in the engine's
// iteration order.
type Cluster struct {
	CentroidLat float64  `json:"centroid_lat"`
	CentroidLon float64  `json:"centroid_lon"`
	TotalWeight uint     `json:"total_weight"`
	Members     []string `json:"members"`
	Country     string   `json:"country"`
	City        string   `json:"city"`
}

// CandidateEndpoint is a server being ranked against clusters. Load
// is a normalized 0-100 congestion indicator, 0 when unknown.
// Endpoints without coordinates are never selected.
type CandidateEndpoint struct {
	Identity       string   `json:"identity"`
	Location       Location `json:"location"`
	HasCoordinates bool     `json:"has_coordinates"`
	Load           float64  `json:"load"`
}

// Recommendation pairs a cluster with the endpoint that scored best
// for it. DistanceKm is the great-circle distance between the cluster
// centroid and the endpoint, not the reference-biased score.
type Recommendation struct {
	Cluster    Cluster           `json:"cluster"`
	Endpoint   CandidateEndpoint `json:"endpoint"`
	DistanceKm float64           `json:"distance_km"`
	Score      float64           `json:"score"`
}

// ProgressFunc is invoked by ResolveBatch after each address is
// finalized. completed is monotonic; addresses may finish out of
// order when individual retries run in parallel.
type ProgressFunc func(completed, total int, addr string)

// Place names a city to geocode.
type Place struct {
	City    string
	Country string
}
