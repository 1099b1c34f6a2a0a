package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuas-radar/tracker/internal/tracker/imm"
	"github.com/cuas-radar/tracker/internal/tracker/matkernel"
	"github.com/cuas-radar/tracker/internal/tracker/motion"
)

func testModels() [imm.NumModels]motion.Model {
	return [imm.NumModels]motion.Model{
		motion.CV{ProcessNoiseStd: 1.0},
		motion.CA{ProcessNoiseStd: 2.0, AccelDecayRate: 0.95},
		motion.CA{ProcessNoiseStd: 2.0, AccelDecayRate: 0.95},
		motion.CTR{ProcessNoiseStd: 1.5, TurnRateNoiseStd: 0.05},
		motion.CTR{ProcessNoiseStd: 1.5, TurnRateNoiseStd: 0.05},
	}
}

func testTransition() [imm.NumModels][imm.NumModels]float64 {
	var t [imm.NumModels][imm.NumModels]float64
	for i := 0; i < imm.NumModels; i++ {
		for j := 0; j < imm.NumModels; j++ {
			if i == j {
				t[i][j] = 0.9
			} else {
				t[i][j] = 0.025
			}
		}
	}
	return t
}

func newTestTrack(id uint32) *Track {
	var x0 matkernel.State
	x0[0], x0[1] = 1000, 10
	x0[3], x0[4] = 0, 0
	var p0 matkernel.StateMatrix
	for i := 0; i < matkernel.StateDim; i++ {
		p0[i][i] = 100
	}
	f := imm.NewFilter(testModels(), testTransition(), [imm.NumModels]float64{0.4, 0.15, 0.15, 0.15, 0.15}, x0, p0)
	return New(id, f, 0)
}

func TestNewTrackStartsTentativeWithHitOne(t *testing.T) {
	t.Parallel()

	tr := newTestTrack(1)
	assert.Equal(t, StatusTentative, tr.Status)
	assert.Equal(t, uint32(1), tr.HitCount)
	assert.Equal(t, 0.5, tr.Quality)
}

func TestRecordHitResetsConsecutiveMisses(t *testing.T) {
	t.Parallel()

	tr := newTestTrack(1)
	tr.ConsecutiveMisses = 3
	tr.RecordHit(1000, 0.1)

	assert.Equal(t, uint32(0), tr.ConsecutiveMisses)
	assert.Equal(t, uint32(2), tr.HitCount)
	assert.InDelta(t, 0.6, tr.Quality, 1e-9)
}

func TestRecordHitClampsQualityAtOne(t *testing.T) {
	t.Parallel()

	tr := newTestTrack(1)
	tr.Quality = 0.95
	tr.RecordHit(1000, 0.5)
	assert.Equal(t, 1.0, tr.Quality)
}

func TestRecordMissDecaysQualityAndIncrementsCounters(t *testing.T) {
	t.Parallel()

	tr := newTestTrack(1)
	tr.RecordMiss(0.9)
	assert.Equal(t, uint32(1), tr.MissCount)
	assert.Equal(t, uint32(1), tr.ConsecutiveMisses)
	assert.InDelta(t, 0.45, tr.Quality, 1e-9)
}

func TestSpeedMatchesVelocityNorm(t *testing.T) {
	t.Parallel()

	tr := newTestTrack(1)
	assert.InDelta(t, 10.0, tr.Speed(), 1e-9)
}

func TestClassifyClutterBelowSpeedThreshold(t *testing.T) {
	t.Parallel()

	var x0 matkernel.State
	var p0 matkernel.StateMatrix
	for i := 0; i < matkernel.StateDim; i++ {
		p0[i][i] = 10
	}
	f := imm.NewFilter(testModels(), testTransition(), [imm.NumModels]float64{0.4, 0.15, 0.15, 0.15, 0.15}, x0, p0)
	tr := New(1, f, 0)

	tr.Classify()
	assert.Equal(t, ClassClutter, tr.Classification)
}

func TestClassifyDroneRotaryWhenCTRDominantAndModerateSpeed(t *testing.T) {
	t.Parallel()

	var x0 matkernel.State
	x0[1] = 10
	var p0 matkernel.StateMatrix
	for i := 0; i < matkernel.StateDim; i++ {
		p0[i][i] = 10
	}
	f := imm.NewFilter(testModels(), testTransition(), [imm.NumModels]float64{0.1, 0.1, 0.1, 0.35, 0.35}, x0, p0)
	tr := New(1, f, 0)

	tr.Classify()
	assert.Equal(t, ClassDroneRotary, tr.Classification)
}

func TestRangeRateZeroAtOrigin(t *testing.T) {
	t.Parallel()

	var x0 matkernel.State
	f := imm.NewFilter(testModels(), testTransition(), [imm.NumModels]float64{0.4, 0.15, 0.15, 0.15, 0.15}, x0, matkernel.StateMatrix{})
	tr := New(1, f, 0)
	require.Equal(t, 0.0, tr.RangeRate())
}
