// Package imm implements the Interacting Multiple Model filter: a bank of
// kinematic motion models whose state estimates are mixed, predicted, and
// fused using likelihood-weighted mode probabilities.
package imm

import (
	"math"

	"github.com/cuas-radar/tracker/internal/tracker/matkernel"
	"github.com/cuas-radar/tracker/internal/tracker/motion"
)

// NumModels is the size of the model bank: CV, CA (x2 tunings), CTR (x2 tunings).
const NumModels = 5

// MeasurementMatrix selects the Cartesian position triple out of the
// 9-dimensional state [x,vx,ax, y,vy,ay, z,vz,az].
var MeasurementMatrix = matkernel.MeasStateMatrix{
	{1, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 1, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 1, 0, 0},
}

const minLikelihood = 1e-30

// Filter is one IMM instance tracking a single target.
type Filter struct {
	models     [NumModels]motion.Model
	transition [NumModels][NumModels]float64
	modeProbs  [NumModels]float64

	states [NumModels]matkernel.State
	covs   [NumModels]matkernel.StateMatrix

	// X and P are the merged, authoritative state and covariance.
	X matkernel.State
	P matkernel.StateMatrix

	// lastInnovation and lastS are retained for gating computations on the
	// most recent update.
	lastInnovation matkernel.Meas
	lastS          matkernel.MeasMatrix
}

// NewFilter constructs a filter with every model initialized to the same
// state and covariance, matching the reference behavior of seeding all
// five models identically at track initiation.
func NewFilter(models [NumModels]motion.Model, transition [NumModels][NumModels]float64, initialModeProbs [NumModels]float64, x0 matkernel.State, p0 matkernel.StateMatrix) *Filter {
	f := &Filter{
		models:     models,
		transition: transition,
		modeProbs:  initialModeProbs,
		X:          x0,
		P:          p0,
	}
	for i := 0; i < NumModels; i++ {
		f.states[i] = x0
		f.covs[i] = p0
	}
	return f
}

// ModeProbabilities returns a copy of the current per-model mode
// probabilities, ordered to match the model bank passed to NewFilter.
func (f *Filter) ModeProbabilities() [NumModels]float64 {
	return f.modeProbs
}

// Innovation returns the innovation and innovation covariance from the most
// recent Update call, for use by association gating.
func (f *Filter) Innovation() (matkernel.Meas, matkernel.MeasMatrix) {
	return f.lastInnovation, f.lastS
}

// Predict runs the interaction/mixing step followed by each model's
// kinematic prediction, and updates f.X/f.P with the mixed prediction.
func (f *Filter) Predict(dt float64) {
	var cbar [NumModels]float64
	var mu [NumModels][NumModels]float64

	for j := 0; j < NumModels; j++ {
		sum := 0.0
		for i := 0; i < NumModels; i++ {
			sum += f.transition[i][j] * f.modeProbs[i]
		}
		cbar[j] = sum
	}
	for i := 0; i < NumModels; i++ {
		for j := 0; j < NumModels; j++ {
			if cbar[j] < 1e-12 {
				mu[i][j] = 0
				continue
			}
			mu[i][j] = f.transition[i][j] * f.modeProbs[i] / cbar[j]
		}
	}

	var mixedX [NumModels]matkernel.State
	var mixedP [NumModels]matkernel.StateMatrix
	for j := 0; j < NumModels; j++ {
		var x0 matkernel.State
		for i := 0; i < NumModels; i++ {
			x0 = matkernel.AddState(x0, matkernel.ScaleState(f.states[i], mu[i][j]))
		}
		mixedX[j] = x0

		var p0 matkernel.StateMatrix
		for i := 0; i < NumModels; i++ {
			diff := matkernel.SubState(f.states[i], x0)
			spread := matkernel.OuterState(diff, diff)
			term := matkernel.AddMat(f.covs[i], spread)
			p0 = matkernel.AddMat(p0, matkernel.ScaleMat(term, mu[i][j]))
		}
		mixedP[j] = p0
	}

	var predX [NumModels]matkernel.State
	var predP [NumModels]matkernel.StateMatrix
	for j := 0; j < NumModels; j++ {
		xp, pp, _ := f.models[j].Predict(mixedX[j], mixedP[j], dt)
		predX[j] = xp
		predP[j] = pp
	}

	f.states = predX
	f.covs = predP
	f.modeProbs = cbar

	f.mergeInto(&f.X, &f.P)
}

// Update corrects each model against a Cartesian measurement z with
// measurement noise covariance r, recomputes mode probabilities from each
// model's likelihood, and re-merges the authoritative state.
func (f *Filter) Update(z matkernel.Meas, r matkernel.MeasMatrix) {
	var likelihoods [NumModels]float64
	var updX [NumModels]matkernel.State
	var updP [NumModels]matkernel.StateMatrix

	for j := 0; j < NumModels; j++ {
		zhat := matkernel.MeasFromState(MeasurementMatrix, f.states[j])
		innov := matkernel.SubMeas(z, zhat)
		s := matkernel.AddMeasMat(matkernel.HPHt(MeasurementMatrix, f.covs[j]), r)

		sInv, ok := matkernel.InvertMeas(s)
		if !ok {
			likelihoods[j] = minLikelihood
			updX[j] = f.states[j]
			updP[j] = f.covs[j]
			continue
		}

		pht := matkernel.PHt(f.covs[j], MeasurementMatrix)
		k := matkernel.KalmanGain(pht, sInv)
		correction := matkernel.KalmanCorrection(k, innov)
		updX[j] = matkernel.AddState(f.states[j], correction)

		kh := matkernel.KH(k, MeasurementMatrix)
		ikh := matkernel.SubMat(matkernel.Identity(), kh)
		updP[j] = matkernel.MulMat(ikh, f.covs[j])

		d := matkernel.Det3(s)
		if d <= 0 {
			likelihoods[j] = minLikelihood
			continue
		}
		mdist := matkernel.Mahalanobis(innov, sInv)
		logL := -0.5*mdist - 0.5*math.Log(math.Pow(2*math.Pi, 3)*d)
		l := math.Exp(logL)
		if l < minLikelihood || math.IsNaN(l) {
			l = minLikelihood
		}
		likelihoods[j] = l

		if j == 0 {
			f.lastInnovation = innov
			f.lastS = s
		}
	}

	f.states = updX
	f.covs = updP

	var updatedProbs [NumModels]float64
	sum := 0.0
	for j := 0; j < NumModels; j++ {
		updatedProbs[j] = likelihoods[j] * f.modeProbs[j]
		sum += updatedProbs[j]
	}
	if sum < minLikelihood {
		for j := 0; j < NumModels; j++ {
			updatedProbs[j] = 1.0 / NumModels
		}
	} else {
		for j := 0; j < NumModels; j++ {
			updatedProbs[j] /= sum
		}
	}
	f.modeProbs = updatedProbs

	f.mergeInto(&f.X, &f.P)
}

func (f *Filter) mergeInto(x *matkernel.State, p *matkernel.StateMatrix) {
	var merged matkernel.State
	for j := 0; j < NumModels; j++ {
		merged = matkernel.AddState(merged, matkernel.ScaleState(f.states[j], f.modeProbs[j]))
	}

	var mergedP matkernel.StateMatrix
	for j := 0; j < NumModels; j++ {
		diff := matkernel.SubState(f.states[j], merged)
		spread := matkernel.OuterState(diff, diff)
		term := matkernel.AddMat(f.covs[j], spread)
		mergedP = matkernel.AddMat(mergedP, matkernel.ScaleMat(term, f.modeProbs[j]))
	}

	*x = merged
	*p = mergedP
}

// PredictedMeasurement projects the merged state into measurement space.
func (f *Filter) PredictedMeasurement() matkernel.Meas {
	return matkernel.MeasFromState(MeasurementMatrix, f.X)
}

// InnovationCovarianceFor computes H*P*H^T + r for the merged state, used by
// association gating before an Update call is committed.
func (f *Filter) InnovationCovarianceFor(r matkernel.MeasMatrix) matkernel.MeasMatrix {
	return matkernel.AddMeasMat(matkernel.HPHt(MeasurementMatrix, f.P), r)
}
