package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuas-radar/tracker/internal/tracker/detection"
)

func TestDensityClustererGroupsNearbyDetections(t *testing.T) {
	t.Parallel()

	dets := []detection.Detection{
		{Range: 1000, Azimuth: 0.1, Elevation: 0.05, Strength: -40},
		{Range: 1005, Azimuth: 0.105, Elevation: 0.052, Strength: -42},
		{Range: 5000, Azimuth: 1.0, Elevation: 0.2, Strength: -30},
	}
	c := DensityClusterer{Config: DensityConfig{
		EpsilonRange: 50, EpsilonAzimuth: 0.02, EpsilonElevation: 0.02, MinPoints: 2,
	}}

	clusters := c.Cluster(dets)
	require.Len(t, clusters, 2)

	total := 0
	for _, cl := range clusters {
		total += len(cl.Detections)
	}
	assert.Equal(t, 3, total)
}

func TestDensityClustererNoisePointsBecomeSingletons(t *testing.T) {
	t.Parallel()

	dets := []detection.Detection{
		{Range: 1000, Azimuth: 0, Elevation: 0, Strength: -40},
		{Range: 9000, Azimuth: 2.0, Elevation: 0.3, Strength: -30},
		{Range: 15000, Azimuth: -1.0, Elevation: 0.1, Strength: -20},
	}
	c := DensityClusterer{Config: DensityConfig{
		EpsilonRange: 50, EpsilonAzimuth: 0.02, EpsilonElevation: 0.02, MinPoints: 2,
	}}

	clusters := c.Cluster(dets)
	// Every point is isolated (no neighbors within epsilon), so each must
	// still survive as its own cluster rather than being dropped as noise.
	require.Len(t, clusters, 3)
	for _, cl := range clusters {
		assert.Len(t, cl.Detections, 1)
	}
}

func TestDensityClustererEmptyInput(t *testing.T) {
	t.Parallel()

	c := DensityClusterer{Config: DensityConfig{MinPoints: 2}}
	assert.Nil(t, c.Cluster(nil))
}

func TestRangeClustererGatesOnRangeAzEl(t *testing.T) {
	t.Parallel()

	dets := []detection.Detection{
		{Range: 1000, Azimuth: 0.0, Elevation: 0.0, Strength: -40},
		{Range: 1010, Azimuth: 0.005, Elevation: 0.005, Strength: -41},
		{Range: 3000, Azimuth: 0.5, Elevation: 0.1, Strength: -35},
	}
	c := RangeClusterer{Config: RangeGateConfig{RangeGateSize: 75, AzimuthGateSize: 0.03, ElevationGateSize: 0.03}}

	clusters := c.Cluster(dets)
	require.Len(t, clusters, 2)
}

func TestRangeClustererIDsAreSequential(t *testing.T) {
	t.Parallel()

	dets := []detection.Detection{
		{Range: 100, Azimuth: 0, Elevation: 0},
		{Range: 5000, Azimuth: 1, Elevation: 0.2},
		{Range: 9000, Azimuth: -1, Elevation: -0.1},
	}
	c := RangeClusterer{Config: RangeGateConfig{RangeGateSize: 10, AzimuthGateSize: 0.01, ElevationGateSize: 0.01}}

	clusters := c.Cluster(dets)
	require.Len(t, clusters, 3)
	for i, cl := range clusters {
		assert.Equal(t, i+1, cl.ID)
	}
}

func TestRangeStrengthClustererSplitsOnStrength(t *testing.T) {
	t.Parallel()

	dets := []detection.Detection{
		{Range: 1000, Azimuth: 0, Elevation: 0, Strength: -40},
		{Range: 1005, Azimuth: 0.001, Elevation: 0.001, Strength: -20}, // far in strength
	}
	c := RangeStrengthClusterer{Config: RangeStrengthConfig{
		RangeGateSize: 75, AzimuthGateSize: 0.03, ElevationGateSize: 0.03, StrengthGateSize: 6.0,
	}}

	clusters := c.Cluster(dets)
	require.Len(t, clusters, 2)
}

func TestCentroidWeightsByLinearStrength(t *testing.T) {
	t.Parallel()

	dets := []detection.Detection{
		{Range: 1000, Azimuth: 0, Elevation: 0, Strength: -10},
		{Range: 2000, Azimuth: 0, Elevation: 0, Strength: -40},
	}
	agg := centroidOf(dets)
	// The stronger (less negative dBm) return should pull the centroid
	// closer to its own position.
	assert.Less(t, agg.cart.X, 1500.0)
}
