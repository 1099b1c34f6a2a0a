package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyConfigDefaults(t *testing.T) {
	t.Parallel()

	c := EmptyConfig()
	assert.Equal(t, 100, c.System.GetCyclePeriodMs())
	assert.Equal(t, 256, c.System.GetMaxDetectionsPerDwell())
	assert.Equal(t, 200, c.System.GetMaxTracks())
	assert.Equal(t, "./logs", c.System.GetLogDirectory())
	assert.Equal(t, 50.0, c.Preprocessing.GetMinRange())
	assert.Equal(t, 20000.0, c.Preprocessing.GetMaxRange())
	assert.Equal(t, ClusterDBSCAN, c.Clustering.GetMethod())
	assert.Equal(t, AssocGNN, c.Association.GetMethod())
	assert.Equal(t, 16.0, c.Association.GetGatingThreshold())
	assert.Equal(t, 25.0, c.Association.GetMeasurementNoiseStd())
	assert.InDelta(t, 9.21, c.Association.GetMahalanobis().GetDistanceThreshold(), 1e-9)
	assert.Equal(t, 3, c.TrackManagement.GetInitiation().GetM())
	assert.Equal(t, 5, c.TrackManagement.GetInitiation().GetN())
	assert.Equal(t, 15, c.TrackManagement.GetDeletion().GetMaxCoastingDwells())
}

func TestIMMDefaultModeProbabilitiesSumToOne(t *testing.T) {
	t.Parallel()

	var imm *IMMConfig
	probs := imm.GetInitialModeProbabilities()
	sum := 0.0
	for _, p := range probs {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Equal(t, [5]float64{0.4, 0.15, 0.15, 0.15, 0.15}, probs)
}

func TestIMMDefaultTransitionMatrixRowsSumToOne(t *testing.T) {
	t.Parallel()

	var imm *IMMConfig
	m := imm.GetTransitionMatrix()
	for i := 0; i < numModels; i++ {
		sum := 0.0
		for j := 0; j < numModels; j++ {
			sum += m[i][j]
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestLoadConfigPartialOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tracker.json")
	body := `{"system": {"cyclePeriodMs": 50}, "association": {"method": "jpda"}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.System.GetCyclePeriodMs())
	assert.Equal(t, 200, cfg.System.GetMaxTracks()) // untouched leaf keeps default
	assert.Equal(t, AssocJPDA, cfg.Association.GetMethod())
}

func TestLoadConfigRejectsNonJSONExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tracker.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidateRejectsBadModeProbabilities(t *testing.T) {
	t.Parallel()

	cfg := EmptyConfig()
	cfg.Prediction = &PredictionConfig{IMM: &IMMConfig{InitialModeProbabilities: []float64{0.5, 0.5}}}
	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidateRejectsInitiationMGreaterThanN(t *testing.T) {
	t.Parallel()

	cfg := EmptyConfig()
	cfg.TrackManagement = &TrackManagementConfig{Initiation: &InitiationConfig{M: ptrI(6), N: ptrI(5)}}
	err := cfg.Validate()
	assert.Error(t, err)
}

func TestEnvOverrideCyclePeriod(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tracker.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	t.Setenv("TRACKER_CYCLE_PERIOD_MS", "25")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.System.GetCyclePeriodMs())
}
