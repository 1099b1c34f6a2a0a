// Package track defines the track entity (IMM state plus lifecycle
// bookkeeping) and the M-of-N initiator that promotes unmatched clusters
// into new tracks.
package track

import (
	"math"

	"github.com/cuas-radar/tracker/internal/tracker/detection"
	"github.com/cuas-radar/tracker/internal/tracker/imm"
	"github.com/cuas-radar/tracker/internal/tracker/matkernel"
)

// Status is the track lifecycle state.
type Status uint32

const (
	StatusTentative Status = iota
	StatusConfirmed
	StatusCoasting
	StatusDeleted
)

// Classification is the heuristic target-type label.
type Classification uint32

const (
	ClassUnknown Classification = iota
	ClassDroneRotary
	ClassDroneFixedWing
	ClassBird
	ClassClutter
)

// Track is the tracker's belief about one physical target.
type Track struct {
	ID             uint32
	Status         Status
	Classification Classification

	Filter *imm.Filter

	HitCount          uint32
	MissCount         uint32
	ConsecutiveMisses uint32
	Age               uint32
	Quality           float64

	InitiationTimeUs uint64
	LastUpdateTimeUs uint64
}

// New constructs a freshly initiated track with the conventional starting
// bookkeeping: hitCount=1, quality=0.5, status=Tentative.
func New(id uint32, filter *imm.Filter, nowUs uint64) *Track {
	return &Track{
		ID:               id,
		Status:           StatusTentative,
		Classification:   ClassUnknown,
		Filter:           filter,
		HitCount:         1,
		Quality:          0.5,
		InitiationTimeUs: nowUs,
		LastUpdateTimeUs: nowUs,
	}
}

// RecordHit applies the on-hit bookkeeping update.
func (t *Track) RecordHit(nowUs uint64, qualityBoost float64) {
	t.HitCount++
	t.ConsecutiveMisses = 0
	t.LastUpdateTimeUs = nowUs
	t.Quality = math.Min(1.0, t.Quality+qualityBoost)
}

// RecordMiss applies the on-miss bookkeeping update.
func (t *Track) RecordMiss(qualityDecayRate float64) {
	t.MissCount++
	t.ConsecutiveMisses++
	t.Quality *= qualityDecayRate
}

// Position returns the merged state's Cartesian position.
func (t *Track) Position() detection.Cartesian {
	x := t.Filter.X
	return detection.Cartesian{X: x[0], Y: x[3], Z: x[6]}
}

// Velocity returns the merged state's Cartesian velocity.
func (t *Track) Velocity() detection.Cartesian {
	x := t.Filter.X
	return detection.Cartesian{X: x[1], Y: x[4], Z: x[7]}
}

// Speed returns the Euclidean norm of velocity.
func (t *Track) Speed() float64 {
	v := t.Velocity()
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// RangeRate returns the scalar closing rate: (x*vx + y*vy + z*vz)/range.
func (t *Track) RangeRate() float64 {
	p := t.Position()
	v := t.Velocity()
	r := math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
	if r < 1e-9 {
		return 0
	}
	return (p.X*v.X + p.Y*v.Y + p.Z*v.Z) / r
}

// Range returns the merged state's range from the origin.
func (t *Track) Range() float64 {
	p := t.Position()
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// ModeFamilies sums mode probabilities into the three dynamics families
// used by classification: CV (model 0), CA (models 1,2), CTR (models 3,4).
func (t *Track) ModeFamilies() (cv, ca, ctr float64) {
	p := t.Filter.ModeProbabilities()
	return p[0], p[1] + p[2], p[3] + p[4]
}

// Gate returns the predicted measurement and innovation covariance for
// association gating, folding in the measurement noise r.
func (t *Track) Gate(r matkernel.MeasMatrix) (matkernel.Meas, matkernel.MeasMatrix) {
	return t.Filter.PredictedMeasurement(), t.Filter.InnovationCovarianceFor(r)
}

// Classify applies the speed + mode-probability-family heuristic.
func (t *Track) Classify() {
	speed := t.Speed()
	cv, ca, ctr := t.ModeFamilies()

	switch {
	case speed < 2:
		t.Classification = ClassClutter
	case ctr > 0.4 && speed > 5 && speed < 30:
		t.Classification = ClassDroneRotary
	case cv > 0.3 && speed > 15 && speed < 80:
		t.Classification = ClassDroneFixedWing
	case ca > 0.3 && speed > 5 && speed < 25:
		t.Classification = ClassBird
	default:
		t.Classification = ClassUnknown
	}
}
