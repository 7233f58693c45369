package geolib

import (
	"math"
	"sort"

	"github.com/antzucaro/matchr"
)

const clusterMaxIterations = 50

type clusterPoint struct {
	addr    string
	lat     float64
	lon     float64
	weight  float64
	country string
	city    string
}

// ClusterPoints partitions resolved, weighted points into at most k
// geographic clusters using weighted Lloyd iteration over plain
// (lat, lon) space. Squared Euclidean distance is a deliberate
// approximation: the clusters are coarse geographic buckets, not
// navigation output.
//
// Fewer than two points short-circuit into a single cluster. Output
// is deterministic for identical input: points are processed in
// lexicographic address order, centroids are seeded from the k
// heaviest points and assignment ties go to the lowest cluster index.
func ClusterPoints(points map[string]WeightedPoint, k int) []Cluster {
	pts := sortedPoints(points)

	if len(pts) == 0 {
		return nil
	}

	if len(pts) < 2 || k < 2 {
		return []Cluster{makeCluster(pts)}
	}

	if k > len(pts) {
		k = len(pts)
	}

	centroids := seedCentroids(pts, k)
	assign := make([]int, len(pts))

	for i := range assign {
		assign[i] = -1
	}

	for iter := 0; iter < clusterMaxIterations; iter++ {
		changed := false

		for i, p := range pts {
			best := nearestCentroid(p, centroids)

			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}

		if !changed {
			break
		}

		recomputeCentroids(pts, assign, centroids)
	}

	rv := make([]Cluster, 0, k)

	for clusterIdx := 0; clusterIdx < k; clusterIdx++ {
		members := make([]clusterPoint, 0, len(pts))

		for i, p := range pts {
			if assign[i] == clusterIdx {
				members = append(members, p)
			}
		}

		if len(members) == 0 {
			continue
		}

		rv = append(rv, makeCluster(members))
	}

	return rv
}

// OverallCentroid is the weight-averaged centroid of all points. ok
// is false when there are no points to average.
func OverallCentroid(points map[string]WeightedPoint) (lat, lon float64, ok bool) {
	pts := sortedPoints(points)

	if len(pts) == 0 {
		return 0, 0, false
	}

	lat, lon = weightedMean(pts)

	return lat, lon, true
}

func sortedPoints(points map[string]WeightedPoint) []clusterPoint {
	rv := make([]clusterPoint, 0, len(points))

	for addr, p := range points {
		rv = append(rv, clusterPoint{
			addr:    addr,
			lat:     p.Location.Latitude,
			lon:     p.Location.Longitude,
			weight:  float64(p.Weight),
			country: p.Location.Country,
			city:    p.Location.City,
		})
	}

	sort.Slice(rv, func(i, j int) bool {
		return rv[i].addr < rv[j].addr
	})

	return rv
}

// seedCentroids places initial centroids on the k heaviest points.
// The sort is stable so equal weights keep address order and seeding
// stays reproducible.
func seedCentroids(pts []clusterPoint, k int) [][2]float64 {
	order := make([]int, len(pts))

	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(i, j int) bool {
		return pts[order[i]].weight > pts[order[j]].weight
	})

	centroids := make([][2]float64, k)

	for i := 0; i < k; i++ {
		centroids[i] = [2]float64{pts[order[i]].lat, pts[order[i]].lon}
	}

	return centroids
}

func nearestCentroid(p clusterPoint, centroids [][2]float64) int {
	best := 0
	bestDist := math.Inf(1)

	for i, centroid := range centroids {
		dLat := p.lat - centroid[0]
		dLon := p.lon - centroid[1]
		dist := dLat*dLat + dLon*dLon

		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}

	return best
}

func recomputeCentroids(pts []clusterPoint, assign []int, centroids [][2]float64) {
	for clusterIdx := range centroids {
		members := make([]clusterPoint, 0, len(pts))

		for i, p := range pts {
			if assign[i] == clusterIdx {
				members = append(members, p)
			}
		}

		// An empty cluster keeps its previous centroid.
		if len(members) == 0 {
			continue
		}

		lat, lon := weightedMean(members)
		centroids[clusterIdx] = [2]float64{lat, lon}
	}
}

// weightedMean biases the centroid by occurrence counts: a point with
// weight 5 pulls as if it were 5 points at that location. A group
// whose weights sum to zero falls back to the unweighted mean.
func weightedMean(pts []clusterPoint) (lat, lon float64) {
	sumWeight := 0.0

	for _, p := range pts {
		sumWeight += p.weight
	}

	if sumWeight == 0 {
		for _, p := range pts {
			lat += p.lat
			lon += p.lon
		}

		return lat / float64(len(pts)), lon / float64(len(pts))
	}

	for _, p := range pts {
		lat += p.lat * p.weight
		lon += p.lon * p.weight
	}

	return lat / sumWeight, lon / sumWeight
}

func makeCluster(members []clusterPoint) Cluster {
	lat, lon := weightedMean(members)

	totalWeight := uint(0)
	addrs := make([]string, 0, len(members))

	for _, p := range members {
		totalWeight += uint(p.weight)
		addrs = append(addrs, p.addr)
	}

	return Cluster{
		CentroidLat: lat,
		CentroidLon: lon,
		TotalWeight: totalWeight,
		Members:     addrs,
		Country:     dominantValue(members, func(p clusterPoint) string { return p.country }),
		City:        dominantCity(members),
	}
}

// dominantValue is a plurality vote. Iteration follows member order,
// and a later value never displaces an earlier one with an equal
// count, so ties resolve to the first-seen value.
func dominantValue(members []clusterPoint, get func(clusterPoint) string) string {
	counters := make(map[string]int)

	for _, p := range members {
		if v := get(p); v != "" {
			counters[v]++
		}
	}

	best := ""
	maxCount := 0

	for _, p := range members {
		v := get(p)

		if counters[v] > maxCount {
			best = v
			maxCount = counters[v]
		}
	}

	return best
}

// dominantCity votes over double metaphone buckets so that spelling
// variants of the same city coming from different providers collapse
// into one candidate.
func dominantCity(members []clusterPoint) string {
	counters := make(map[string]int)
	names := make(map[string]string)
	order := make([]string, 0, len(members))

	for _, p := range members {
		if p.city == "" {
			continue
		}

		normalized, _ := matchr.DoubleMetaphone(p.city)

		if _, ok := counters[normalized]; !ok {
			order = append(order, normalized)
			names[normalized] = p.city
		}

		counters[normalized]++
	}

	best := ""
	maxCount := 0

	for _, key := range order {
		if counters[key] > maxCount {
			best = names[key]
			maxCount = counters[key]
		}
	}

	return best
}
