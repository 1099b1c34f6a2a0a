// Package motion implements the constant-velocity, constant-acceleration,
// and coordinated-turn kinematic models that make up the IMM filter bank.
// Each model exposes the same Predict contract: given a state, covariance,
// and elapsed time, return the predicted state, covariance, and the
// transition matrix used.
package motion

import (
	"math"

	"github.com/cuas-radar/tracker/internal/tracker/matkernel"
)

// Model predicts a 9-dimensional kinematic state forward by dt seconds.
type Model interface {
	// Predict returns the predicted state, predicted covariance, and the
	// state transition matrix F used to produce them.
	Predict(x matkernel.State, p matkernel.StateMatrix, dt float64) (matkernel.State, matkernel.StateMatrix, matkernel.StateMatrix)
	Name() string
}

// CV is the constant-velocity model: acceleration terms are pure noise.
type CV struct {
	ProcessNoiseStd float64
}

func (m CV) Name() string { return "CV" }

func (m CV) Predict(x matkernel.State, p matkernel.StateMatrix, dt float64) (matkernel.State, matkernel.StateMatrix, matkernel.StateMatrix) {
	f := cvTransition(dt)
	q := cvProcessNoise(dt, m.ProcessNoiseStd)
	xp, pp, f := propagate(x, p, f, q)
	// Acceleration is forced to zero in CV, both in F and the predicted state.
	xp[2], xp[5], xp[8] = 0, 0, 0
	return xp, pp, f
}

func cvTransition(dt float64) matkernel.StateMatrix {
	f := matkernel.Identity()
	// x, y, z blocks: position += vel*dt, accel forced to zero.
	for _, base := range []int{0, 3, 6} {
		f[base][base+1] = dt
		f[base][base+2] = 0
		f[base+1][base+2] = 0
		f[base+2][base+2] = 0
	}
	return f
}

// cvProcessNoise implements the white-noise-on-velocity model: the
// position/velocity block uses dt^4/4, dt^3/2, dt^2 scaled by the process
// noise variance, and the acceleration diagonal carries a small residual so
// the (unused) acceleration state still has a well-defined covariance.
func cvProcessNoise(dt, q float64) matkernel.StateMatrix {
	var Q matkernel.StateMatrix
	dt2 := dt * dt
	dt3 := dt2 * dt
	dt4 := dt3 * dt
	q2 := q * q
	for _, base := range []int{0, 3, 6} {
		Q[base][base] = dt4 / 4 * q2
		Q[base][base+1] = dt3 / 2 * q2
		Q[base+1][base] = dt3 / 2 * q2
		Q[base+1][base+1] = dt2 * q2
		Q[base+2][base+2] = 0.01 * q2
	}
	return Q
}

// CA is the constant-acceleration model with decaying acceleration.
type CA struct {
	ProcessNoiseStd float64
	AccelDecayRate  float64
}

func (m CA) Name() string { return "CA" }

func (m CA) Predict(x matkernel.State, p matkernel.StateMatrix, dt float64) (matkernel.State, matkernel.StateMatrix, matkernel.StateMatrix) {
	f := caTransition(dt, m.AccelDecayRate)
	q := caProcessNoise(dt, m.ProcessNoiseStd)
	return propagate(x, p, f, q)
}

func caTransition(dt, decay float64) matkernel.StateMatrix {
	f := matkernel.Identity()
	dt2 := dt * dt / 2
	for _, base := range []int{0, 3, 6} {
		f[base][base+1] = dt
		f[base][base+2] = dt2
		f[base+1][base+2] = dt
		f[base+2][base+2] = decay
	}
	return f
}

func caProcessNoise(dt, q float64) matkernel.StateMatrix {
	var Q matkernel.StateMatrix
	dt2 := dt * dt
	dt3 := dt2 * dt
	dt4 := dt3 * dt
	dt5 := dt4 * dt
	q2 := q * q
	for _, base := range []int{0, 3, 6} {
		Q[base][base] = dt5 / 20 * q2
		Q[base][base+1] = dt4 / 8 * q2
		Q[base][base+2] = dt3 / 6 * q2
		Q[base+1][base] = dt4 / 8 * q2
		Q[base+1][base+1] = dt3 / 3 * q2
		Q[base+1][base+2] = dt2 / 2 * q2
		Q[base+2][base] = dt3 / 6 * q2
		Q[base+2][base+1] = dt2 / 2 * q2
		Q[base+2][base+2] = dt * q2
	}
	return Q
}

// CTR is the coordinated-turn-rate model. The turn rate is estimated from
// the current x/y velocity and acceleration each step; near-zero turn rate
// degenerates to a CV-like propagation to avoid a division singularity.
type CTR struct {
	ProcessNoiseStd  float64
	TurnRateNoiseStd float64
}

func (m CTR) Name() string { return "CTR" }

func estimateTurnRate(x matkernel.State) float64 {
	vx, ax := x[1], x[2]
	vy, ay := x[4], x[5]
	v2 := vx*vx + vy*vy
	if v2 < 1e-6 {
		return 0
	}
	return (vx*ay - vy*ax) / v2
}

func (m CTR) Predict(x matkernel.State, p matkernel.StateMatrix, dt float64) (matkernel.State, matkernel.StateMatrix, matkernel.StateMatrix) {
	omega := estimateTurnRate(x)
	f := ctrTransition(x, dt, omega)
	q := ctrProcessNoise(dt, m.ProcessNoiseStd, m.TurnRateNoiseStd)
	return propagate(x, p, f, q)
}

func ctrTransition(x matkernel.State, dt, omega float64) matkernel.StateMatrix {
	f := matkernel.Identity()
	if math.Abs(omega) < 1e-6 {
		f[0][1] = dt
		f[3][4] = dt
		f[0][2] = 0
		f[3][5] = 0
		f[1][2] = 0
		f[4][5] = 0
		f[2][2] = 0
		f[5][5] = 0
		f[6][7] = dt
		return f
	}

	sinwt := math.Sin(omega * dt)
	coswt := math.Cos(omega * dt)

	f[0][1] = sinwt / omega
	f[0][4] = -(1 - coswt) / omega
	f[1][1] = coswt
	f[1][4] = -sinwt
	f[3][1] = (1 - coswt) / omega
	f[3][4] = sinwt / omega
	f[4][1] = sinwt
	f[4][4] = coswt

	// acceleration terms decay; z axis remains CV.
	f[2][2] = 0.5
	f[5][5] = 0.5
	f[6][7] = dt
	f[8][8] = 0

	return f
}

func ctrProcessNoise(dt, qAxis, qOmega float64) matkernel.StateMatrix {
	var Q matkernel.StateMatrix
	dt2 := dt * dt
	dt3 := dt2 * dt
	qa2 := qAxis * qAxis
	qo2 := qOmega * qOmega

	for _, base := range []int{0, 3} {
		Q[base][base] = dt3/3*qa2 + qo2
		Q[base][base+1] = dt2 / 2 * qa2
		Q[base+1][base] = dt2 / 2 * qa2
		Q[base+1][base+1] = dt * qa2
		Q[base+2][base+2] = 0.1 * qa2
	}
	// z axis kept at CV-level noise.
	Q[6][6] = dt3 / 3 * qa2
	Q[6][7] = dt2 / 2 * qa2
	Q[7][6] = dt2 / 2 * qa2
	Q[7][7] = dt * qa2

	return Q
}

func propagate(x matkernel.State, p matkernel.StateMatrix, f, q matkernel.StateMatrix) (matkernel.State, matkernel.StateMatrix, matkernel.StateMatrix) {
	xp := matkernel.MulMatVec(f, x)
	fp := matkernel.MulMat(f, p)
	fpft := matkernel.MulMat(fp, matkernel.Transpose(f))
	pp := matkernel.AddMat(fpft, q)
	return xp, pp, f
}
