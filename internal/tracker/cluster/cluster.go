// Package cluster groups preprocessed detections from a single dwell into
// plot clusters before they are handed to the association stage. Three
// strategies are supported: density-based (DBSCAN-like), range-gated, and
// range+strength-gated, selected by configuration.
package cluster

import (
	"math"
	"sort"

	"github.com/cuas-radar/tracker/internal/tracker/detection"
)

// Cluster is one grouped plot: a centroid in both spherical and Cartesian
// coordinates plus the member detections that fed it.
type Cluster struct {
	ID           int
	Centroid     detection.Cartesian
	Spherical    detection.Spherical
	Strength     float64
	SNR          float64
	RCS          float64
	MicroDoppler float64
	Detections   []detection.Detection
}

// Clusterer groups a dwell's detections into clusters. Implementations are
// expected to assign monotonically increasing IDs starting at 1 and to
// produce output sorted by centroid for reproducible downstream ordering.
type Clusterer interface {
	Cluster(dets []detection.Detection) []Cluster
}

func sortClusters(clusters []Cluster) {
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Centroid.X != clusters[j].Centroid.X {
			return clusters[i].Centroid.X < clusters[j].Centroid.X
		}
		return clusters[i].Centroid.Y < clusters[j].Centroid.Y
	})
	for i := range clusters {
		clusters[i].ID = i + 1
	}
}

// clusterAggregate holds a cluster's strength-weighted spherical centroid
// plus its aggregated SNR/RCS/micro-Doppler, and the arithmetic-mean
// strength (not weighted, matching the original aggregation).
type clusterAggregate struct {
	sph          detection.Spherical
	cart         detection.Cartesian
	strength     float64
	snr          float64
	rcs          float64
	microDoppler float64
}

// centroidOf computes the strength-weighted mean of the members' spherical
// coordinates (range/azimuth/elevation) and SNR/RCS/micro-Doppler, then
// projects the resulting range/azimuth/elevation to Cartesian. Weighting in
// spherical space (rather than projecting each member to Cartesian first)
// matches how range/azimuth/elevation measurements are actually reported.
func centroidOf(members []detection.Detection) clusterAggregate {
	linStrengths := make([]float64, len(members))
	var sumLinear float64
	for i, d := range members {
		linStrengths[i] = math.Pow(10, d.Strength/10)
		sumLinear += linStrengths[i]
	}

	var rng, az, el, snr, rcs, md, strengthSum float64
	if sumLinear < 1e-12 {
		// Degenerate: every member had negligible linear strength, fall
		// back to an unweighted arithmetic mean.
		n := float64(len(members))
		for _, d := range members {
			rng += d.Range / n
			az += d.Azimuth / n
			el += d.Elevation / n
			snr += d.SNR / n
			rcs += d.RCS / n
			md += d.MicroDoppler / n
			strengthSum += d.Strength
		}
	} else {
		for i, d := range members {
			w := linStrengths[i] / sumLinear
			rng += w * d.Range
			az += w * d.Azimuth
			el += w * d.Elevation
			snr += w * d.SNR
			rcs += w * d.RCS
			md += w * d.MicroDoppler
			strengthSum += d.Strength
		}
	}
	avgStrength := strengthSum / float64(len(members))

	cart := detection.SphericalToCartesian(rng, az, el)
	return clusterAggregate{
		sph:          detection.Spherical{Range: rng, Azimuth: az, Elevation: el},
		cart:         cart,
		strength:     avgStrength,
		snr:          snr,
		rcs:          rcs,
		microDoppler: md,
	}
}

// DensityConfig parameterizes DensityClusterer.
type DensityConfig struct {
	EpsilonRange     float64
	EpsilonAzimuth   float64
	EpsilonElevation float64
	MinPoints        int
}

// DensityClusterer implements a DBSCAN-like density clustering over the
// range/azimuth/elevation space. A point is a core point when its
// neighborhood, counting the point itself, holds at least MinPoints
// detections. Unlike a textbook DBSCAN, noise points are not discarded: each
// becomes its own singleton cluster, since a lone detection may still be a
// valid, if weak, plot.
type DensityClusterer struct {
	Config DensityConfig
}

func (c DensityClusterer) neighborDistance(a, b detection.Detection) (float64, float64, float64) {
	return math.Abs(a.Range - b.Range), angularDelta(a.Azimuth, b.Azimuth), math.Abs(a.Elevation - b.Elevation)
}

func angularDelta(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

func (c DensityClusterer) withinEpsilon(a, b detection.Detection) bool {
	dr, daz, del := c.neighborDistance(a, b)
	nr := dr / c.Config.EpsilonRange
	na := daz / c.Config.EpsilonAzimuth
	ne := del / c.Config.EpsilonElevation
	return math.Sqrt(nr*nr+na*na+ne*ne) <= 1.0
}

func (c DensityClusterer) regionQuery(dets []detection.Detection, idx int) []int {
	var out []int
	for j := range dets {
		if j == idx {
			continue
		}
		if c.withinEpsilon(dets[idx], dets[j]) {
			out = append(out, j)
		}
	}
	return out
}

func (c DensityClusterer) Cluster(dets []detection.Detection) []Cluster {
	n := len(dets)
	if n == 0 {
		return nil
	}

	const unvisited = 0
	const noise = -1
	labels := make([]int, n)
	nextID := 0

	for i := 0; i < n; i++ {
		if labels[i] != unvisited {
			continue
		}
		neighbors := c.regionQuery(dets, i)
		if len(neighbors)+1 < c.Config.MinPoints {
			labels[i] = noise
			continue
		}
		nextID++
		c.expand(dets, labels, i, neighbors, nextID)
	}

	groups := map[int][]int{}
	for i, l := range labels {
		if l == noise {
			nextID++
			groups[nextID] = []int{i}
			continue
		}
		groups[l] = append(groups[l], i)
	}

	clusters := make([]Cluster, 0, len(groups))
	for _, members := range groups {
		detsInCluster := make([]detection.Detection, len(members))
		for k, idx := range members {
			detsInCluster[k] = dets[idx]
		}
		agg := centroidOf(detsInCluster)
		clusters = append(clusters, Cluster{
			Centroid:     agg.cart,
			Spherical:    agg.sph,
			Strength:     agg.strength,
			SNR:          agg.snr,
			RCS:          agg.rcs,
			MicroDoppler: agg.microDoppler,
			Detections:   detsInCluster,
		})
	}

	sortClusters(clusters)
	return clusters
}

func (c DensityClusterer) expand(dets []detection.Detection, labels []int, seedIdx int, neighbors []int, clusterID int) {
	labels[seedIdx] = clusterID
	queue := append([]int{}, neighbors...)

	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]

		if labels[idx] == -1 {
			labels[idx] = clusterID
		}
		if labels[idx] != 0 {
			continue
		}
		labels[idx] = clusterID

		newNeighbors := c.regionQuery(dets, idx)
		if len(newNeighbors)+1 >= c.Config.MinPoints {
			queue = append(queue, newNeighbors...)
		}
	}
}

// RangeGateConfig parameterizes RangeClusterer.
type RangeGateConfig struct {
	RangeGateSize     float64
	AzimuthGateSize   float64
	ElevationGateSize float64
}

// RangeClusterer sorts detections by range and greedily groups consecutive
// detections that fall within the configured range/azimuth/elevation gates
// of the cluster's first member.
type RangeClusterer struct {
	Config RangeGateConfig
}

func (c RangeClusterer) Cluster(dets []detection.Detection) []Cluster {
	if len(dets) == 0 {
		return nil
	}

	sorted := append([]detection.Detection{}, dets...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Range < sorted[j].Range })

	var clusters []Cluster
	used := make([]bool, len(sorted))

	for i := range sorted {
		if used[i] {
			continue
		}
		group := []detection.Detection{sorted[i]}
		used[i] = true
		anchor := sorted[i]

		for j := i + 1; j < len(sorted); j++ {
			if used[j] {
				continue
			}
			if sorted[j].Range-anchor.Range > c.Config.RangeGateSize {
				break
			}
			if math.Abs(sorted[j].Azimuth-anchor.Azimuth) > c.Config.AzimuthGateSize {
				continue
			}
			if math.Abs(sorted[j].Elevation-anchor.Elevation) > c.Config.ElevationGateSize {
				continue
			}
			group = append(group, sorted[j])
			used[j] = true
		}

		agg := centroidOf(group)
		clusters = append(clusters, Cluster{
			Centroid:     agg.cart,
			Spherical:    agg.sph,
			Strength:     agg.strength,
			SNR:          agg.snr,
			RCS:          agg.rcs,
			MicroDoppler: agg.microDoppler,
			Detections:   group,
		})
	}

	sortClusters(clusters)
	return clusters
}

// RangeStrengthConfig parameterizes RangeStrengthClusterer.
type RangeStrengthConfig struct {
	RangeGateSize     float64
	AzimuthGateSize   float64
	ElevationGateSize float64
	StrengthGateSize  float64
}

// RangeStrengthClusterer behaves like RangeClusterer but additionally
// requires candidate members to fall within a strength gate of the anchor,
// which helps separate overlapping plots of very different radar cross
// section at similar range.
type RangeStrengthClusterer struct {
	Config RangeStrengthConfig
}

func (c RangeStrengthClusterer) Cluster(dets []detection.Detection) []Cluster {
	if len(dets) == 0 {
		return nil
	}

	sorted := append([]detection.Detection{}, dets...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Range < sorted[j].Range })

	var clusters []Cluster
	used := make([]bool, len(sorted))

	for i := range sorted {
		if used[i] {
			continue
		}
		group := []detection.Detection{sorted[i]}
		used[i] = true
		anchor := sorted[i]

		for j := i + 1; j < len(sorted); j++ {
			if used[j] {
				continue
			}
			if sorted[j].Range-anchor.Range > c.Config.RangeGateSize {
				break
			}
			if math.Abs(sorted[j].Azimuth-anchor.Azimuth) > c.Config.AzimuthGateSize {
				continue
			}
			if math.Abs(sorted[j].Elevation-anchor.Elevation) > c.Config.ElevationGateSize {
				continue
			}
			if math.Abs(sorted[j].Strength-anchor.Strength) > c.Config.StrengthGateSize {
				continue
			}
			group = append(group, sorted[j])
			used[j] = true
		}

		agg := centroidOf(group)
		clusters = append(clusters, Cluster{
			Centroid:     agg.cart,
			Spherical:    agg.sph,
			Strength:     agg.strength,
			SNR:          agg.snr,
			RCS:          agg.rcs,
			MicroDoppler: agg.microDoppler,
			Detections:   group,
		})
	}

	sortClusters(clusters)
	return clusters
}
