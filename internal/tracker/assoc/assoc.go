// Package assoc implements the three track-to-cluster association
// strategies: nearest-neighbor, global nearest-neighbor (via Hungarian
// assignment), and joint probabilistic data association.
package assoc

import (
	"math"
	"sort"

	"github.com/cuas-radar/tracker/internal/tracker/matkernel"
)

// TrackGate is the minimal per-track information an associator needs:
// its predicted measurement and innovation covariance, both computed by the
// track's filter before association runs.
type TrackGate struct {
	TrackID       uint32
	PredictedMeas matkernel.Meas
	InnovCov      matkernel.MeasMatrix
}

// Result is the outcome of one association pass over a dwell's clusters.
type Result struct {
	// MatchedTrackToCluster maps TrackID -> cluster index for clusters
	// assigned to that track.
	MatchedTrackToCluster map[uint32]int
	// UnmatchedClusters holds indices of clusters not assigned to any track.
	UnmatchedClusters []int
	// UnmatchedTracks holds TrackIDs that received no cluster this dwell.
	UnmatchedTracks []uint32
	// SoftWeights holds, for JPDA only, per-track association-probability
	// weighted measurements usable in a probabilistic update. Empty for NN/GNN.
	SoftWeights map[uint32]matkernel.Meas
}

// Method names the Get* style config discriminator used elsewhere.
type Method string

const (
	NearestNeighbor Method = "nn"
	GlobalNearest   Method = "gnn"
	JPDA            Method = "jpda"
)

func squaredMahalanobis(meas matkernel.Meas, gate TrackGate) (float64, matkernel.MeasMatrix, bool) {
	sInv, ok := matkernel.InvertMeas(gate.InnovCov)
	if !ok {
		return math.Inf(1), sInv, false
	}
	innov := matkernel.SubMeas(meas, gate.PredictedMeas)
	return matkernel.Mahalanobis(innov, sInv), sInv, true
}

// NearestNeighborAssociate greedily assigns each cluster to its closest
// gated track, processing cluster-track pairs in ascending distance order so
// the best-fitting pairs claim their match first.
func NearestNeighborAssociate(clusters []matkernel.Meas, gates []TrackGate, gateThreshold float64) Result {
	type pair struct {
		clusterIdx int
		gateIdx    int
		dist       float64
	}

	var pairs []pair
	for ci, c := range clusters {
		for gi, g := range gates {
			d, _, ok := squaredMahalanobis(c, g)
			if !ok || d > gateThreshold {
				continue
			}
			pairs = append(pairs, pair{ci, gi, d})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].dist < pairs[j].dist })

	usedCluster := make(map[int]bool)
	usedTrack := make(map[int]bool)
	matched := make(map[uint32]int)

	for _, p := range pairs {
		if usedCluster[p.clusterIdx] || usedTrack[p.gateIdx] {
			continue
		}
		usedCluster[p.clusterIdx] = true
		usedTrack[p.gateIdx] = true
		matched[gates[p.gateIdx].TrackID] = p.clusterIdx
	}

	return buildResult(clusters, gates, matched)
}

// GlobalNearestNeighborAssociate solves the assignment problem over all
// gated cluster-track pairs using the Hungarian algorithm, minimizing total
// squared Mahalanobis distance across the whole dwell rather than greedily.
func GlobalNearestNeighborAssociate(clusters []matkernel.Meas, gates []TrackGate, costThreshold float64) Result {
	if len(clusters) == 0 || len(gates) == 0 {
		return buildResult(clusters, gates, map[uint32]int{})
	}

	cost := make([][]float64, len(clusters))
	for ci, c := range clusters {
		cost[ci] = make([]float64, len(gates))
		for gi, g := range gates {
			d, _, ok := squaredMahalanobis(c, g)
			if !ok || d > costThreshold {
				cost[ci][gi] = hungarianInf
			} else {
				cost[ci][gi] = d
			}
		}
	}

	assignment := hungarianAssign(cost)
	matched := make(map[uint32]int)
	for ci, gi := range assignment {
		if gi < 0 {
			continue
		}
		matched[gates[gi].TrackID] = ci
	}

	return buildResult(clusters, gates, matched)
}

// JPDAConfig parameterizes the joint probabilistic data association
// associator.
type JPDAConfig struct {
	GateSize             float64
	ClutterDensity       float64
	DetectionProbability float64
}

// JPDAAssociate computes, for each track, a probability-weighted combination
// of every gated cluster (plus a "no detection" hypothesis), producing a
// single soft pseudo-measurement per track suitable for a probabilistic
// update. Hard matches are also reported using the highest-weight cluster
// per track, so downstream hit/miss bookkeeping has a definite answer.
func JPDAAssociate(clusters []matkernel.Meas, gates []TrackGate, cfg JPDAConfig) Result {
	soft := make(map[uint32]matkernel.Meas)
	matched := make(map[uint32]int)

	for _, g := range gates {
		sInv, ok := matkernel.InvertMeas(g.InnovCov)
		if !ok {
			continue
		}
		det := matkernel.Det3(g.InnovCov)
		if det <= 0 {
			continue
		}
		norm := 1.0 / math.Sqrt(math.Pow(2*math.Pi, 3)*det)

		type candidate struct {
			idx    int
			weight float64
			meas   matkernel.Meas
		}
		var cands []candidate
		// Null hypothesis: no detection associated to this track.
		nullWeight := cfg.ClutterDensity * (1 - cfg.DetectionProbability)

		for ci, c := range clusters {
			innov := matkernel.SubMeas(c, g.PredictedMeas)
			d := matkernel.Mahalanobis(innov, sInv)
			if d > cfg.GateSize {
				continue
			}
			likelihood := norm * math.Exp(-0.5*d)
			w := cfg.DetectionProbability * likelihood
			cands = append(cands, candidate{ci, w, c})
		}

		if len(cands) == 0 {
			continue
		}

		total := nullWeight
		for _, c := range cands {
			total += c.weight
		}
		if total < 1e-300 {
			continue
		}

		var weighted matkernel.Meas
		bestIdx := -1
		bestWeight := -1.0
		for _, c := range cands {
			p := c.weight / total
			for k := 0; k < matkernel.MeasDim; k++ {
				weighted[k] += p * c.meas[k]
			}
			if p > bestWeight {
				bestWeight = p
				bestIdx = c.idx
			}
		}
		// Renormalize against the detection-only mass so the pseudo
		// measurement stays within the convex hull of gated clusters.
		detMass := total - nullWeight
		if detMass > 1e-300 {
			scale := total / detMass
			for k := 0; k < matkernel.MeasDim; k++ {
				weighted[k] *= scale
			}
		}

		soft[g.TrackID] = weighted
		// Only report a hard match if the no-detection hypothesis doesn't
		// dominate; beta0 > 0.5 means "probably no real detection here".
		beta0 := nullWeight / total
		if bestIdx >= 0 && beta0 <= 0.5 {
			matched[g.TrackID] = bestIdx
		}
	}

	result := buildResult(clusters, gates, matched)
	result.SoftWeights = soft
	return result
}

func buildResult(clusters []matkernel.Meas, gates []TrackGate, matched map[uint32]int) Result {
	usedClusters := make(map[int]bool)
	for _, ci := range matched {
		usedClusters[ci] = true
	}
	var unmatchedClusters []int
	for i := range clusters {
		if !usedClusters[i] {
			unmatchedClusters = append(unmatchedClusters, i)
		}
	}

	var unmatchedTracks []uint32
	for _, g := range gates {
		if _, ok := matched[g.TrackID]; !ok {
			unmatchedTracks = append(unmatchedTracks, g.TrackID)
		}
	}

	return Result{
		MatchedTrackToCluster: matched,
		UnmatchedClusters:     unmatchedClusters,
		UnmatchedTracks:       unmatchedTracks,
	}
}
