package geolib

// Scoring constants. These are tuning parameters, not arbitrary: the
// divisor offset keeps small clusters from dividing by zero while
// letting heavy clusters forgive distance, the reference multiplier
// trades peer proximity against the caller's own latency, and the
// load multiplier breaks near-ties toward less congested endpoints.
// Changing them changes which endpoints win.
const (
	DefaultWeightDivisorOffset = 1.0
	DefaultReferenceMultiplier = 0.1
	DefaultLoadMultiplier      = 0.01
)

// Scorer ranks candidate endpoints against clusters. Lower score is
// better.
type Scorer struct {
	WeightDivisorOffset float64
	ReferenceMultiplier float64
	LoadMultiplier      float64
}

func NewScorer() Scorer {
	return Scorer{
		WeightDivisorOffset: DefaultWeightDivisorOffset,
		ReferenceMultiplier: DefaultReferenceMultiplier,
		LoadMultiplier:      DefaultLoadMultiplier,
	}
}

// Recommend selects the best endpoint for every cluster. Endpoints
// without coordinates are never candidates; a cluster for which no
// endpoint can be scored is omitted from the result. When two
// endpoints score exactly equal the first one in slice order wins.
func (s Scorer) Recommend(clusters []Cluster, endpoints []CandidateEndpoint, reference *Location) []Recommendation {
	rv := make([]Recommendation, 0, len(clusters))

	for _, cluster := range clusters {
		if rec, found := s.bestEndpoint(cluster, endpoints, reference); found {
			rv = append(rv, rec)
		}
	}

	return rv
}

func (s Scorer) bestEndpoint(cluster Cluster, endpoints []CandidateEndpoint, reference *Location) (Recommendation, bool) {
	best := Recommendation{Cluster: cluster}
	found := false

	for _, endpoint := range endpoints {
		if !endpoint.HasCoordinates {
			continue
		}

		distance := HaversineKm(cluster.CentroidLat, cluster.CentroidLon,
			endpoint.Location.Latitude, endpoint.Location.Longitude)

		score := distance / (float64(cluster.TotalWeight) + s.WeightDivisorOffset)

		if reference != nil {
			score += HaversineKm(reference.Latitude, reference.Longitude,
				endpoint.Location.Latitude, endpoint.Location.Longitude) * s.ReferenceMultiplier
		}

		score += endpoint.Load * s.LoadMultiplier

		if !found || score < best.Score {
			best.Endpoint = endpoint
			best.DistanceKm = distance
			best.Score = score
			found = true
		}
	}

	return best, found
}
