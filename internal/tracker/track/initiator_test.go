package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuas-radar/tracker/internal/tracker/cluster"
	"github.com/cuas-radar/tracker/internal/tracker/detection"
	"github.com/cuas-radar/tracker/internal/tracker/imm"
)

func testInitiatorConfig() InitiatorConfig {
	return InitiatorConfig{
		M:                        3,
		N:                        5,
		MaxInitiationRange:       15000,
		VelocityGate:             100,
		Models:                   testModels(),
		Transition:               testTransition(),
		InitialModeProbabilities: [imm.NumModels]float64{0.4, 0.15, 0.15, 0.15, 0.15},
		PositionStd:              50,
		VelocityStd:              20,
		AccelerationStd:          5,
	}
}

func clusterAt(x, y, z float64, dwell uint64) cluster.Cluster {
	sph := detection.CartesianToSpherical(x, y, z)
	return cluster.Cluster{
		Centroid:  detection.Cartesian{X: x, Y: y, Z: z},
		Spherical: sph,
	}
}

func TestInitiatorPromotesAfterMHits(t *testing.T) {
	t.Parallel()

	in := NewInitiator(testInitiatorConfig(), 1)

	for i := 0; i < 3; i++ {
		clusters := []cluster.Cluster{clusterAt(1000+float64(i)*10, 0, 100, uint64(i))}
		promoted := in.ProcessUnmatched(clusters, uint64(i), uint64(i)*100000)
		if i < 2 {
			assert.Empty(t, promoted)
		} else {
			require.Len(t, promoted, 1)
			assert.Equal(t, uint32(1), promoted[0].ID)
		}
	}
}

func TestInitiatorRejectsClustersBeyondMaxRange(t *testing.T) {
	t.Parallel()

	in := NewInitiator(testInitiatorConfig(), 1)
	clusters := []cluster.Cluster{clusterAt(20000, 0, 0, 0)}
	promoted := in.ProcessUnmatched(clusters, 0, 0)
	assert.Empty(t, promoted)
	assert.Equal(t, 0, in.CandidateCount())
}

func TestInitiatorDoesNotPromoteScatteredSingleHitCandidates(t *testing.T) {
	t.Parallel()

	in := NewInitiator(testInitiatorConfig(), 1)

	// 6 widely scattered clusters: none reuse the same candidate, so every
	// one starts its own 1-hit candidate and none ever reaches m=3.
	var promotedAny bool
	for i := 0; i < 6; i++ {
		clusters := []cluster.Cluster{clusterAt(float64(i)*5000, float64(i)*5000, 0, uint64(i))}
		promoted := in.ProcessUnmatched(clusters, uint64(i), uint64(i)*100000)
		if len(promoted) > 0 {
			promotedAny = true
		}
	}
	assert.False(t, promotedAny)
}

func TestInitiatorPurgeRemovesStaleCandidates(t *testing.T) {
	t.Parallel()

	in := NewInitiator(testInitiatorConfig(), 1)
	in.ProcessUnmatched([]cluster.Cluster{clusterAt(1000, 0, 0, 0)}, 0, 0)
	require.Equal(t, 1, in.CandidateCount())

	in.Purge(100) // far beyond n+5=10
	assert.Equal(t, 0, in.CandidateCount())
}

func TestInitiatorPromotedTrackHasVelocityFromHistory(t *testing.T) {
	t.Parallel()

	in := NewInitiator(testInitiatorConfig(), 1)

	var last []*Track
	for i := 0; i < 3; i++ {
		clusters := []cluster.Cluster{clusterAt(1000+float64(i)*100, 0, 0, uint64(i))}
		last = in.ProcessUnmatched(clusters, uint64(i), uint64(i)*1000000)
	}
	require.Len(t, last, 1)
	assert.InDelta(t, 100.0, last[0].Filter.X[1], 1e-6)
}
