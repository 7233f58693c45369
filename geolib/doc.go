// geolib is a library for resolving network addresses to approximate
// geographic coordinates and turning the resolved set into ranked
// endpoint recommendations.
//
// The pipeline has three stages. A Resolver maps addresses to
// locations using a chain of geolocation providers with caching, rate
// limiting and bounded-parallel retries. Cluster partitions the
// resolved, occurrence-weighted points into geographic clusters. A
// Scorer ranks candidate endpoints against each cluster by distance,
// cluster mass and endpoint load.
//
// Network and provider failures never escape the pipeline: every
// address ends up either resolved or explicitly unresolved, and the
// later stages simply skip what could not be resolved.
package geolib
