package matkernel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityInverse(t *testing.T) {
	t.Parallel()

	id := Identity()
	inv, ok := InvertState(id)
	require.True(t, ok)
	assert.Equal(t, id, inv)
}

func TestInvertSingular(t *testing.T) {
	t.Parallel()

	var m StateMatrix // all-zero is singular
	_, ok := InvertState(m)
	assert.False(t, ok)
}

func TestInvertMeasRoundTrip(t *testing.T) {
	t.Parallel()

	m := MeasMatrix{
		{4, 1, 0},
		{1, 3, 1},
		{0, 1, 2},
	}
	inv, ok := InvertMeas(m)
	require.True(t, ok)

	prod := MulSmall(m, inv)
	for i := 0; i < MeasDim; i++ {
		for j := 0; j < MeasDim; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			assert.InDelta(t, want, prod[i][j], 1e-9)
		}
	}
}

func MulSmall(a, b MeasMatrix) MeasMatrix {
	var r MeasMatrix
	for i := 0; i < MeasDim; i++ {
		for j := 0; j < MeasDim; j++ {
			sum := 0.0
			for k := 0; k < MeasDim; k++ {
				sum += a[i][k] * b[k][j]
			}
			r[i][j] = sum
		}
	}
	return r
}

func TestMahalanobisZeroInnovation(t *testing.T) {
	t.Parallel()

	sInv := MeasMatrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	d := Mahalanobis(Meas{}, sInv)
	assert.Equal(t, 0.0, d)
}

func TestDet3Identity(t *testing.T) {
	t.Parallel()

	m := MeasMatrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	assert.Equal(t, 1.0, Det3(m))
}

func TestMulMatVecIdentity(t *testing.T) {
	t.Parallel()

	x := State{1, 2, 3, 4, 5, 6, 7, 8, 9}
	r := MulMatVec(Identity(), x)
	assert.Equal(t, x, r)
}

func TestOuterStateSymmetryWhenSameVector(t *testing.T) {
	t.Parallel()

	x := State{1, 2, 3, 4, 5, 6, 7, 8, 9}
	outer := OuterState(x, x)
	for i := 0; i < StateDim; i++ {
		for j := 0; j < StateDim; j++ {
			assert.True(t, math.Abs(outer[i][j]-outer[j][i]) < 1e-9)
		}
	}
}
